package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/deutron/deutron/internal/dependency"
)

var runNoWindow bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the echo backend (started by the host)",
	RunE:  runBackend,
}

func init() {
	runCmd.Flags().BoolVar(&runNoWindow, "no-window", false, "Do not create the configured window on start")
}

func runBackend(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := dependency.New(cfg, hostStreams())
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer svc.Close()

	logger := svc.Logger()
	client := svc.Client()
	svc.EchoApp().Register()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !runNoWindow {
		opts := cfg.WindowOptions()
		logger.Info("creating window", "title", opts.Title, "url", opts.URL, "width", opts.Width, "height", opts.Height)
		if err := client.Create(cfg.Window); err != nil {
			return fmt.Errorf("create window: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The host closing the stream ends everything else too.
		defer cancel()
		err := client.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if hb := svc.Heartbeat(); hb != nil {
		g.Go(func() error { return hb.Start(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("backend stopped")
	return nil
}
