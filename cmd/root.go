// Package cmd implements the deutron backend CLI using cobra.
//
// The host talks to the backend over stdin and stdout, so commands that run
// under a host write nothing but protocol envelopes to stdout; human-readable
// output goes to stderr.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deutron/deutron/internal/config"
	"github.com/deutron/deutron/internal/dependency"
)

const version = "0.1.0"

var configPath string

// hostStreams returns the channel to the host. Tests replace it.
var hostStreams = func() dependency.Streams {
	return dependency.Streams{In: os.Stdin, Out: os.Stdout}
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:           "deutron",
	Short:         "Deutron backend",
	Long:          "deutron runs a backend for the Deutron host, talking to it over stdin and stdout",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $"+config.EnvConfigPath+" or ./deutron.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deutron %s\n", version)
	},
}
