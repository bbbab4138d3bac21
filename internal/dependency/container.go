// Package dependency wires the backend's services using go.uber.org/dig.
package dependency

import (
	"io"
	"log/slog"

	"go.uber.org/dig"

	"github.com/deutron/deutron/deutron"
	"github.com/deutron/deutron/internal/config"
	"github.com/deutron/deutron/internal/echo"
	"github.com/deutron/deutron/internal/heartbeat"
	"github.com/deutron/deutron/internal/logging"
)

// Streams is the duplex channel to the host, normally stdin and stdout.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

// ServiceContainer holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type ServiceContainer struct {
	cfg       *config.Config
	logger    *slog.Logger
	closeLog  logCloser
	client    *deutron.Client
	heartbeat *heartbeat.Service
	echo      *echo.App
}

func (c *ServiceContainer) Config() *config.Config  { return c.cfg }
func (c *ServiceContainer) Logger() *slog.Logger    { return c.logger }
func (c *ServiceContainer) Client() *deutron.Client { return c.client }
func (c *ServiceContainer) EchoApp() *echo.App      { return c.echo }

// Heartbeat returns nil when heartbeat.enabled is false.
func (c *ServiceContainer) Heartbeat() *heartbeat.Service { return c.heartbeat }

// Close releases the log file, if one is configured.
func (c *ServiceContainer) Close() error { return c.closeLog() }

// logCloser is a named func type so dig can tell it apart from other funcs.
type logCloser func() error

// optionalHeartbeat lets the provider express "disabled" without a nil value.
type optionalHeartbeat struct{ svc *heartbeat.Service }

// New builds and wires all services from cfg.
func New(cfg *config.Config, streams Streams) (*ServiceContainer, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() Streams { return streams }); err != nil {
		return nil, err
	}
	if err := d.Provide(newLogger); err != nil {
		return nil, err
	}
	if err := d.Provide(newClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newHeartbeat); err != nil {
		return nil, err
	}
	if err := d.Provide(newEchoApp); err != nil {
		return nil, err
	}

	var result *ServiceContainer
	err := d.Invoke(func(
		logger *slog.Logger,
		closeLog logCloser,
		client *deutron.Client,
		hb optionalHeartbeat,
		app *echo.App,
	) {
		result = &ServiceContainer{
			cfg:       cfg,
			logger:    logger,
			closeLog:  closeLog,
			client:    client,
			heartbeat: hb.svc,
			echo:      app,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, logCloser, error) {
	logger, closeFn, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, logCloser(closeFn), nil
}

func newClient(cfg *config.Config, streams Streams, logger *slog.Logger) *deutron.Client {
	return deutron.New(deutron.Options{
		In:             streams.In,
		Out:            streams.Out,
		Logger:         logger,
		MaxLineBytes:   cfg.IPC.MaxLineBytes,
		RequestTimeout: cfg.IPC.RequestTimeout,
	})
}

func newHeartbeat(cfg *config.Config, client *deutron.Client, logger *slog.Logger) (optionalHeartbeat, error) {
	if !cfg.Heartbeat.Enabled {
		return optionalHeartbeat{}, nil
	}
	svc, err := heartbeat.NewService(client, cfg.Heartbeat, logger, nil)
	if err != nil {
		return optionalHeartbeat{}, err
	}
	return optionalHeartbeat{svc: svc}, nil
}

func newEchoApp(cfg *config.Config, client *deutron.Client, logger *slog.Logger) *echo.App {
	return echo.New(client, cfg.Echo, logger)
}
