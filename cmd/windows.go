package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deutron/deutron/internal/dependency"
)

var windowsTimeout time.Duration

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Ask the host for its open windows and print them to stderr",
	RunE:  runWindows,
}

func init() {
	windowsCmd.Flags().DurationVarP(&windowsTimeout, "timeout", "t", 0, "Response timeout (default ipc.request_timeout)")
}

func runWindows(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := dependency.New(cfg, hostStreams())
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer svc.Close()

	client := svc.Client()
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() { _ = client.Start(ctx) }()

	reqCtx := ctx
	if windowsTimeout > 0 {
		var reqCancel context.CancelFunc
		reqCtx, reqCancel = context.WithTimeout(ctx, windowsTimeout)
		defer reqCancel()
	}

	windows, err := client.Windows(reqCtx)
	if err != nil {
		return fmt.Errorf("request windows: %w", err)
	}

	enc := json.NewEncoder(cmd.ErrOrStderr())
	enc.SetIndent("", "  ")
	return enc.Encode(windows)
}
