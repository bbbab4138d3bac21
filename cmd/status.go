package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgPath := resolveConfigPath()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "deutron %s\n\n", version)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗ (using defaults)"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Fprintf(out, "Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "  (could not load config: %v)\n", err)
		return nil
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = "stderr only"
	}
	fmt.Fprintf(out, "Log:       %s / %s, %s\n", cfg.Log.Level, cfg.Log.Format, logFile)
	fmt.Fprintf(out, "IPC:       max line %d bytes, request timeout %s\n", cfg.IPC.MaxLineBytes, cfg.IPC.RequestTimeout)

	w := cfg.WindowOptions()
	fmt.Fprintf(out, "Window:    %q %s (%dx%d)\n", w.Title, w.URL, w.Width, w.Height)

	if cfg.Heartbeat.Enabled {
		fmt.Fprintf(out, "Heartbeat: ✓ %s, timeout %s\n", cfg.Heartbeat.Schedule, cfg.Heartbeat.Timeout)
	} else {
		fmt.Fprintf(out, "Heartbeat: ✗ disabled\n")
	}
	fmt.Fprintf(out, "Echo:      prefix %q\n", cfg.Echo.Prefix)
	return nil
}
