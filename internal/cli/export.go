package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadopc/focusflow/internal/export"
)

// ExportFlags holds flags specific to the export command.
type ExportFlags struct {
	Format string
	Out    string
}

func newExportCmd(env *cmdEnv) *cobra.Command {
	flags := &ExportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects and tasks",
		Long: `Write every project with its tasks and tracked time to a file.

Examples:
  focusflow export                       # CSV in the current directory
  focusflow export --format json --out report.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), env, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Format, "format", "f", "csv", "export format (csv|json|yaml)")
	cmd.Flags().StringVarP(&flags.Out, "out", "o", "", "output file (default focusflow-export-<timestamp>.<format>)")

	return cmd
}

func runExport(ctx context.Context, w io.Writer, env *cmdEnv, flags *ExportFlags) (err error) {
	rt, err := openRuntime(env.cfg, *zerolog.Ctx(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	if err := rt.loadSnapshot(ctx); err != nil {
		return err
	}

	path := flags.Out
	if path == "" {
		path = export.FileName(flags.Format, time.Now())
	}

	projects := rt.state.Projects()
	if err := export.Write(flags.Format, projects, rt.state.Tasks(), path); err != nil {
		return fmt.Errorf("export %s: %w", flags.Format, err)
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Str("format", flags.Format).Msg("export written")
	fmt.Fprintf(w, "Exported %d projects to %s\n", len(projects), path)
	return nil
}
