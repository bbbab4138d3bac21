// Package echo is the bundled example backend: it replies to every window
// message with the same text behind a prefix.
package echo

import (
	"log/slog"
	"sync"

	"github.com/deutron/deutron/deutron"
	"github.com/deutron/deutron/internal/config"
	"github.com/deutron/deutron/internal/logging"
	"github.com/deutron/deutron/internal/shared/stringutils"
)

// App wires echo behaviour onto a client.
type App struct {
	client *deutron.Client
	prefix string
	logger *slog.Logger

	mu   sync.Mutex
	open map[int]struct{}
	subs []deutron.Subscription
}

func New(client *deutron.Client, cfg config.EchoConfig, logger *slog.Logger) *App {
	return &App{
		client: client,
		prefix: cfg.Prefix,
		logger: logging.Component(logger, "echo"),
		open:   make(map[int]struct{}),
	}
}

// Register subscribes the app's handlers. Call it before Start.
func (a *App) Register() {
	a.subs = append(a.subs,
		a.client.OnReady(a.handleReady),
		a.client.OnInfo(a.handleInfo),
		a.client.OnMessage(a.handleMessage),
	)
}

// Unregister removes everything Register added.
func (a *App) Unregister() {
	for _, sub := range a.subs {
		sub.Unsubscribe()
	}
	a.subs = nil
}

// OpenWindows returns how many windows the host reported as created and not
// yet closed.
func (a *App) OpenWindows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.open)
}

func (a *App) handleReady(ev deutron.ReadyEvent) {
	a.logger.Info("host ready", "dir", ev.Dir())
}

func (a *App) handleInfo(ev deutron.InfoEvent) {
	switch ev.Kind {
	case deutron.InfoCreated, deutron.InfoLoaded, deutron.InfoClosed:
		id, err := ev.WindowID()
		if err != nil {
			a.logger.Debug("ignoring malformed window info", "kind", ev.Kind, "error", err)
			return
		}
		a.trackWindow(ev.Kind, id)
	case deutron.InfoError:
		logging.Warn(a.logger, "host reported an error", "host_error",
			"the last command may not have taken effect",
			"check the host output for details",
			"message", ev.ErrorText())
	case deutron.InfoResponse:
		// Answered through request callbacks.
	default:
		a.logger.Info("info", "kind", ev.Kind, "data", string(ev.Data))
	}
}

func (a *App) trackWindow(kind string, id int) {
	a.mu.Lock()
	switch kind {
	case deutron.InfoCreated:
		a.open[id] = struct{}{}
	case deutron.InfoClosed:
		delete(a.open, id)
	}
	remaining := len(a.open)
	a.mu.Unlock()

	a.logger.Info("window "+kindVerb(kind), "window", id, "open", remaining)
	if kind == deutron.InfoClosed && remaining == 0 {
		a.logger.Info("last window closed")
	}
}

func kindVerb(kind string) string {
	switch kind {
	case deutron.InfoCreated:
		return "created"
	case deutron.InfoLoaded:
		return "loaded"
	default:
		return "closed"
	}
}

func (a *App) handleMessage(ev deutron.MessageEvent) {
	if ev.Opaque {
		a.logger.Info("host output", "line", stringutils.Truncate(ev.Raw, 512))
		return
	}
	msg, err := ev.WindowMessage()
	if err != nil {
		a.logger.Debug("ignoring message without sender", "error", err)
		return
	}
	a.logger.Debug("message received", "from", msg.From, "data", msg.Data)
	// Send failures are logged by the client.
	_ = a.client.Message(msg.From, a.prefix+msg.Data)
}
