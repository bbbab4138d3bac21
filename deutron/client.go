// Package deutron is the backend side of the Deutron host protocol.
//
// The host process starts the backend with its stdin and stdout connected to
// the host. A Client writes commands to stdout and dispatches the host's
// notifications from stdin to registered callbacks:
//
//	client := deutron.New(deutron.Options{Window: &deutron.WindowPatch{Title: deutron.String("Demo")}})
//	client.OnMessage(func(ev deutron.MessageEvent) { ... })
//	err := client.Start(ctx)
//
// Callbacks run on the goroutine inside Start, one event at a time and in
// arrival order. Commands may be sent from any goroutine.
package deutron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/deutron/deutron/internal/bus"
	"github.com/deutron/deutron/internal/logging"
	"github.com/deutron/deutron/internal/request"
	"github.com/deutron/deutron/internal/router"
	"github.com/deutron/deutron/internal/schema"
	"github.com/deutron/deutron/internal/wire"
)

// DefaultRequestTimeout bounds Windows and Window when ctx has no deadline.
const DefaultRequestTimeout = 10 * time.Second

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("deutron: client already started")

// Options configures a Client. The zero value talks over the process's
// stdin and stdout.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger
	// Window, when set, is created as soon as the client is constructed.
	Window *WindowPatch
	// MaxLineBytes bounds one inbound line; 0 means 4 MiB.
	MaxLineBytes int
	// RequestTimeout bounds Windows and Window; 0 means DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Client is a connection to the host.
type Client struct {
	id      string
	logger  *slog.Logger
	in      io.Reader
	maxLine int
	timeout time.Duration

	sender     *wire.Sender
	router     *router.Router
	requests   *request.Correlator
	disconnect *bus.Bus[DisconnectEvent]

	started atomic.Bool
}

func New(opts Options) *Client {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	logger = logger.With(logging.FieldClientID, id)

	c := &Client{
		id:      id,
		logger:  logging.Component(logger, "client"),
		in:      opts.In,
		maxLine: opts.MaxLineBytes,
		timeout: opts.RequestTimeout,
		sender:  wire.NewSender(opts.Out, logger),
		router:  router.New(logger),
	}
	c.requests = request.New(c.router.Info(), func(cmd schema.Command) error { return c.Send(cmd) }, logger)
	c.disconnect = bus.New[DisconnectEvent]("disconnect", logger)

	if opts.Window != nil {
		// Failures are already logged by the sender.
		_ = c.Create(*opts.Window)
	}
	return c
}

// ID returns the random id attached to this client's log records.
func (c *Client) ID() string { return c.id }

// OnReady registers fn for the host's Ready notification.
func (c *Client) OnReady(fn func(ReadyEvent)) Subscription {
	return c.router.Ready().Subscribe(fn)
}

// OnInfo registers fn for every Info notification, responses included.
func (c *Client) OnInfo(fn func(InfoEvent)) Subscription {
	return c.router.Info().Subscribe(fn)
}

// OnMessage registers fn for application messages and unrecognised lines.
func (c *Client) OnMessage(fn func(MessageEvent)) Subscription {
	return c.router.Message().Subscribe(fn)
}

// OnDisconnect registers fn for the end of the read loop.
func (c *Client) OnDisconnect(fn func(DisconnectEvent)) Subscription {
	return c.disconnect.Subscribe(fn)
}

// Start reads and dispatches host lines until the host closes the stream
// (nil), reading fails, or ctx is done. Afterwards sends fail with ErrClosed,
// blocked Windows/Window calls return, and OnDisconnect subscribers run once.
// A Client can be started only once.
func (c *Client) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	c.logger.Info("client started")
	err := wire.NewLineReader(c.in, c.maxLine, c.router.Handle).Run(ctx)

	c.sender.Close()
	c.requests.Close()
	switch {
	case err == nil:
		c.logger.Info("host closed the connection")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.logger.Info("client stopped", "reason", err)
	default:
		c.logger.Error("read loop failed",
			"error", err,
			logging.FieldEventType, "ipc_read_failed",
			logging.FieldErrorHint, "check that the host is still running and lines stay under the configured limit")
	}
	c.disconnect.Emit(DisconnectEvent{Err: err})
	return err
}

// Send writes one command. cmd may be a Command or any JSON-encodable value.
func (c *Client) Send(cmd any) error {
	return c.sender.Send(cmd)
}

// Message sends data to the window target, the host's numeric window id.
func (c *Client) Message(target int, data any) error {
	return c.Send(schema.SendMessage(target, data))
}

// Create asks the host for a new window. Fields left nil in patch take their
// DefaultWindowOptions value.
func (c *Client) Create(patch WindowPatch) error {
	return c.Send(schema.CreateWindow(schema.DefaultWindowOptions().Apply(patch)))
}

func (c *Client) ControlWindow(target int, control WindowControl) error {
	return c.Send(schema.ControlWindow(target, control))
}

func (c *Client) Close(target int) error      { return c.ControlWindow(target, ControlClose) }
func (c *Client) Minimize(target int) error   { return c.ControlWindow(target, ControlMinimize) }
func (c *Client) Maximize(target int) error   { return c.ControlWindow(target, ControlMaximize) }
func (c *Client) Fullscreen(target int) error { return c.ControlWindow(target, ControlFullscreen) }
func (c *Client) Drag(target int) error       { return c.ControlWindow(target, ControlDrag) }

// Request sends a request of the given kind; cb runs once with the matching
// response payload. params may be nil.
func (c *Client) Request(kind string, params any, cb ResponseCallback) (Subscription, error) {
	return c.requests.Request(kind, params, cb)
}

// GetWindows requests the list of open windows.
func (c *Client) GetWindows(cb func([]WindowInfo)) (Subscription, error) {
	return c.Request(schema.RequestWindows, nil, func(data json.RawMessage) {
		windows, err := decodeWindows(data)
		if err != nil {
			c.warnResponse(schema.RequestWindows, err)
			return
		}
		cb(windows)
	})
}

// GetWindow requests details of one window.
func (c *Client) GetWindow(target int, cb func(WindowInfo)) (Subscription, error) {
	return c.Request(schema.RequestWindow, target, func(data json.RawMessage) {
		var w WindowInfo
		if err := json.Unmarshal(data, &w); err != nil {
			c.warnResponse(schema.RequestWindow, err)
			return
		}
		cb(w)
	})
}

// Windows returns the open windows. It blocks, so it must not be called from
// a callback.
func (c *Client) Windows(ctx context.Context) ([]WindowInfo, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.requests.Await(ctx, schema.RequestWindows, nil)
	if err != nil {
		return nil, err
	}
	return decodeWindows(data)
}

// Window returns details of one window. It blocks, so it must not be called
// from a callback.
func (c *Client) Window(ctx context.Context, target int) (WindowInfo, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.requests.Await(ctx, schema.RequestWindow, target)
	if err != nil {
		return WindowInfo{}, err
	}
	var w WindowInfo
	if err := json.Unmarshal(data, &w); err != nil {
		return WindowInfo{}, fmt.Errorf("decode window: %w", err)
	}
	return w, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) warnResponse(kind string, err error) {
	logging.Warn(c.logger, "unexpected response payload", "ipc_bad_response",
		"response callback was not called",
		"check that the host version matches this client",
		"kind", kind, "error", err)
}

func decodeWindows(data json.RawMessage) ([]WindowInfo, error) {
	var windows []WindowInfo
	if err := json.Unmarshal(data, &windows); err != nil {
		return nil, fmt.Errorf("decode windows: %w", err)
	}
	return windows, nil
}
