package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ResetFlags holds flags specific to the reset command.
type ResetFlags struct {
	// DryRun prints the plan without writing.
	DryRun bool
}

func newResetCmd(env *cmdEnv) *cobra.Command {
	flags := &ResetFlags{}
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Apply pending calendar resets",
		Long: `Zero the today, week and month stats whose calendar boundary has passed
since the last recorded reset, and record the new markers in the same batch.

The tracker runs the same check whenever projects change and on
reset.check_interval while it is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd.Context(), cmd.OutOrStdout(), env, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "print the pending resets without applying them")

	return cmd
}

func runReset(ctx context.Context, w io.Writer, env *cmdEnv, flags *ResetFlags) (err error) {
	rt, err := openRuntime(env.cfg, *zerolog.Ctx(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	if flags.DryRun {
		plan, meta, err := rt.coordinator.Plan(ctx)
		if err != nil {
			return err
		}
		if !plan.Any() {
			fmt.Fprintf(w, "Nothing to reset (last daily reset %s).\n", meta.LastDailyReset)
			return nil
		}
		fmt.Fprintf(w, "Would reset: %s\n", strings.Join(plan.Periods(), ", "))
		return nil
	}

	projects, err := rt.loadProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects to reset.")
		return nil
	}

	plan, err := rt.coordinator.Check(ctx, projects)
	if err != nil {
		return err
	}
	if !plan.Any() {
		fmt.Fprintln(w, "Nothing to reset.")
		return nil
	}
	fmt.Fprintf(w, "Reset %s on %d projects.\n", strings.Join(plan.Periods(), ", "), len(projects))
	return nil
}
