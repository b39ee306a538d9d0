package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/focusflow/internal/config"
)

// addConfigCommand adds the config command group.
func addConfigCommand(root *cobra.Command, env *cmdEnv) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	configCmd.AddCommand(newConfigShowCmd(env))
	root.AddCommand(configCmd)
}

func newConfigShowCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration as YAML.

Values are resolved from, highest precedence first:
  - command-line flags (--db, --uid)
  - FOCUSFLOW_* environment variables (e.g. FOCUSFLOW_ACCOUNT_UID)
  - the config file (--config or ~/.config/focusflow/config.yaml)
  - built-in defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), env.cfg)
		},
	}
}

func runConfigShow(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
