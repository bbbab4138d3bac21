package deutron

import (
	"github.com/deutron/deutron/internal/bus"
	"github.com/deutron/deutron/internal/request"
	"github.com/deutron/deutron/internal/schema"
	"github.com/deutron/deutron/internal/wire"
)

// Events delivered to subscribers.
type (
	ReadyEvent      = schema.ReadyEvent
	InfoEvent       = schema.InfoEvent
	MessageEvent    = schema.MessageEvent
	DisconnectEvent = schema.DisconnectEvent
	WindowMessage   = schema.WindowMessage
)

// Commands and their payloads.
type (
	Command       = schema.Command
	WindowOptions = schema.WindowOptions
	WindowPatch   = schema.WindowPatch
	WindowControl = schema.WindowControl
	WindowInfo    = schema.WindowInfo
)

// Subscription removes a callback registered with one of the On methods.
type Subscription = bus.Subscription

// ResponseCallback receives the payload of a matched response.
type ResponseCallback = request.Callback

const (
	ControlClose      = schema.ControlClose
	ControlMinimize   = schema.ControlMinimize
	ControlMaximize   = schema.ControlMaximize
	ControlFullscreen = schema.ControlFullscreen
	ControlDrag       = schema.ControlDrag
)

const (
	InfoLoaded   = schema.InfoLoaded
	InfoCreated  = schema.InfoCreated
	InfoClosed   = schema.InfoClosed
	InfoResponse = schema.InfoResponse
	InfoError    = schema.InfoError
	InfoLog      = schema.InfoLog
)

const (
	RequestWindows = schema.RequestWindows
	RequestWindow  = schema.RequestWindow
)

// Marker prefixes every line the client writes to the host.
const Marker = wire.Marker

var (
	ErrClosed         = wire.ErrClosed
	ErrTimeout        = request.ErrTimeout
	ErrRequestsClosed = request.ErrClosed
	ErrOpaqueMessage  = schema.ErrOpaqueMessage
)

// DefaultWindowOptions returns the options a window gets when nothing is
// overridden.
func DefaultWindowOptions() WindowOptions { return schema.DefaultWindowOptions() }

// Pointer helpers for building a WindowPatch.
var (
	String = schema.String
	Bool   = schema.Bool
	Int    = schema.Int
)
