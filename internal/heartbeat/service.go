// Package heartbeat periodically asks the host for its window list to check
// that it is still answering.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/deutron/deutron/internal/config"
	"github.com/deutron/deutron/internal/logging"
	"github.com/deutron/deutron/internal/request"
	"github.com/deutron/deutron/internal/schema"
)

// Prober issues the liveness request. *deutron.Client satisfies it.
type Prober interface {
	Windows(ctx context.Context) ([]schema.WindowInfo, error)
}

// Result is the outcome of one probe.
type Result struct {
	At      time.Time
	Latency time.Duration
	Windows []schema.WindowInfo
	Err     error
}

// OnResultFunc is called after every probe.
type OnResultFunc func(Result)

// Service runs probes on a cron schedule.
type Service struct {
	prober   Prober
	schedule robfigcron.Schedule
	spec     string
	timeout  time.Duration
	onResult OnResultFunc
	logger   *slog.Logger
}

var parser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow | robfigcron.Descriptor,
)

// NewService parses cfg.Schedule, which accepts five-field cron expressions
// and descriptors such as "@every 30s". onResult may be nil.
func NewService(prober Prober, cfg config.HeartbeatConfig, logger *slog.Logger, onResult OnResultFunc) (*Service, error) {
	schedule, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("heartbeat schedule %q: %w", cfg.Schedule, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		prober:   prober,
		schedule: schedule,
		spec:     cfg.Schedule,
		timeout:  timeout,
		onResult: onResult,
		logger:   logging.Component(logger, "heartbeat"),
	}, nil
}

// Start runs probes until ctx is cancelled, then waits for a running probe
// to finish. Overlapping probes are skipped.
func (s *Service) Start(ctx context.Context) error {
	c := robfigcron.New(robfigcron.WithChain(robfigcron.SkipIfStillRunning(robfigcron.DiscardLogger)))
	c.Schedule(s.schedule, robfigcron.FuncJob(func() { s.Probe(ctx) }))
	c.Start()
	s.logger.Info("heartbeat started", "schedule", s.spec, "timeout", s.timeout)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("heartbeat stopped")
	return nil
}

// Probe sends one Windows request and reports the outcome.
func (s *Service) Probe(ctx context.Context) Result {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	windows, err := s.prober.Windows(probeCtx)
	res := Result{At: start, Latency: time.Since(start), Windows: windows, Err: err}

	switch {
	case err == nil:
		s.logger.Info("host alive", "windows", len(windows), "latency", res.Latency)
	case ctx.Err() != nil:
		// Shutting down; not a host failure.
		s.logger.Debug("probe cancelled", "error", err)
	case errors.Is(err, request.ErrTimeout):
		logging.Warn(s.logger, "host did not answer heartbeat", "heartbeat_timeout",
			"host may be unresponsive",
			"check the host process; raise heartbeat.timeout if it is only slow",
			"timeout", s.timeout)
	default:
		logging.Warn(s.logger, "heartbeat failed", "heartbeat_failed",
			"host liveness unknown",
			"check that the host connection is still open",
			"error", err)
	}

	if s.onResult != nil {
		s.onResult(res)
	}
	return res
}
