// Package router classifies inbound host lines and publishes them on the
// Ready, Info and Message buses.
package router

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/deutron/deutron/internal/bus"
	"github.com/deutron/deutron/internal/logging"
	"github.com/deutron/deutron/internal/schema"
	"github.com/deutron/deutron/internal/shared/stringutils"
	"github.com/deutron/deutron/internal/wire"
)

// maxLoggedLine caps how much of a line appears in debug logs.
const maxLoggedLine = 256

const (
	keyReady   = "Ready"
	keyInfo    = "Info"
	keyMessage = "Message"
)

// Router owns the three inbound buses.
type Router struct {
	logger  *slog.Logger
	ready   *bus.Bus[schema.ReadyEvent]
	info    *bus.Bus[schema.InfoEvent]
	message *bus.Bus[schema.MessageEvent]
}

func New(logger *slog.Logger) *Router {
	logger = logging.Component(logger, "router")
	return &Router{
		logger:  logger,
		ready:   bus.New[schema.ReadyEvent]("ready", logger),
		info:    bus.New[schema.InfoEvent]("info", logger),
		message: bus.New[schema.MessageEvent]("message", logger),
	}
}

func (r *Router) Ready() *bus.Bus[schema.ReadyEvent]     { return r.ready }
func (r *Router) Info() *bus.Bus[schema.InfoEvent]       { return r.info }
func (r *Router) Message() *bus.Bus[schema.MessageEvent] { return r.message }

// Handle routes one line. Ready wins over Info, Info over Message; anything
// else, including lines that are not JSON, becomes a message.
func (r *Router) Handle(line string) {
	decoded := wire.Decode(line)
	if decoded.Kind == wire.Raw {
		r.logger.Debug("routed", "branch", "opaque", "line", stringutils.Truncate(line, maxLoggedLine))
		r.message.Emit(schema.MessageEvent{Raw: line, Opaque: true})
		return
	}

	obj := objectOf(decoded.Value)
	if data, ok := obj[keyReady]; ok {
		r.logger.Debug("routed", "branch", keyReady)
		r.ready.Emit(schema.ReadyEvent{Data: data})
		return
	}
	if data, ok := obj[keyInfo]; ok {
		ev := r.infoEvent(data)
		r.logger.Debug("routed", "branch", keyInfo, "kind", ev.Kind)
		r.info.Emit(ev)
		return
	}

	r.logger.Debug("routed", "branch", keyMessage)
	r.message.Emit(schema.MessageEvent{Data: obj[keyMessage], Raw: line})
}

// infoEvent unwraps {"<Kind>": payload}. With several keys the
// lexicographically first wins; with none, Kind is empty and Data keeps the
// whole Info value.
func (r *Router) infoEvent(data json.RawMessage) schema.InfoEvent {
	inner := objectOf(data)
	if len(inner) == 0 {
		return schema.InfoEvent{Data: data}
	}
	keys := make([]string, 0, len(inner))
	for k := range inner {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 1 {
		r.logger.Debug("info carries several kinds, using the first", "kind", keys[0], "ignored", keys[1:])
	}
	return schema.InfoEvent{Kind: keys[0], Data: inner[keys[0]]}
}

// objectOf returns the top-level members of data, or nil when data is not a
// JSON object.
func objectOf(data json.RawMessage) map[string]json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}
	return obj
}
