package cli

import (
	"github.com/spf13/cobra"

	"github.com/sadopc/focusflow/internal/config"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// ConfigPath names an explicit config file.
	ConfigPath string
	// DBPath overrides db_path.
	DBPath string
	// UID overrides account.uid.
	UID string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "config file (default ~/.config/focusflow/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.DBPath, "db", "", "document store file")
	cmd.PersistentFlags().StringVar(&flags.UID, "uid", "", "account namespace (empty uses top-level collections)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

func (f *GlobalFlags) overrides() config.Overrides {
	return config.Overrides{DBPath: f.DBPath, UID: f.UID}
}
