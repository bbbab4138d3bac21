package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deutron/deutron/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the backend configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite existing values with defaults")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cfgPath := resolveConfigPath()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfgPath); err == nil && !configForce {
		// Refresh: keep existing values, add any new keys.
		existing, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("existing config is invalid (use --force to replace it): %w", err)
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Config refreshed at %s\n", cfgPath)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := config.Save(&cfg, cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Created config at %s\n", cfgPath)
	return nil
}
