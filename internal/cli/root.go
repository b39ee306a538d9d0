// Package cli provides the focusflow command line: the interactive tracker
// plus one-shot status, reset, export and config commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/focusflow/internal/config"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// cmdEnv is shared by every command of one root. PersistentPreRunE fills in
// cfg and logClose before any RunE executes.
type cmdEnv struct {
	flags    GlobalFlags
	cfg      *config.Config
	logClose io.Closer
}

// close releases the log file opened for this invocation.
func (e *cmdEnv) close() {
	if e.logClose != nil {
		_ = e.logClose.Close()
		e.logClose = nil
	}
}

func newRootCmd(env *cmdEnv, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focusflow",
		Short: "Focus timer and project tracker for the terminal",
		Long: `focusflow tracks focused time against projects and tasks.

Rolling today, week and month totals reset on calendar boundaries and feed
the daily goal and the weekly and monthly goals.

Run without a subcommand to open the interactive tracker.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), env)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.setup(cmd)
		},
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, &env.flags)

	cmd.AddCommand(newTUICmd(env))
	cmd.AddCommand(newStatusCmd(env))
	cmd.AddCommand(newResetCmd(env))
	cmd.AddCommand(newExportCmd(env))
	addConfigCommand(cmd, env)

	return cmd
}

// setup loads the configuration and installs the logger on the command
// context. Interactive commands log to the file only.
func (e *cmdEnv) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, e.flags.ConfigPath, e.flags.overrides())
	if err != nil {
		return err
	}
	e.cfg = cfg

	interactive := cmd == cmd.Root() || cmd.Name() == "tui"
	level := selectLevel(e.flags.Verbose, e.flags.Quiet, cfg.Log.Level)

	e.close()
	logger, closer := InitLogger(level, interactive)
	e.logClose = closer

	cmd.SetContext(logger.WithContext(ctx))
	logger.Debug().Str("command", cmd.CommandPath()).Msg("command starting")
	return nil
}

func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	env := &cmdEnv{}
	defer env.close()
	cmd := newRootCmd(env, info)
	return cmd.ExecuteContext(ctx)
}
