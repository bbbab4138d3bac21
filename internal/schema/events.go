package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Info kinds reported by the host.
const (
	InfoLoaded   = "Loaded"
	InfoCreated  = "Created"
	InfoClosed   = "Closed"
	InfoResponse = "Response"
	InfoError    = "Error"
	InfoLog      = "Log"
)

// Request kinds understood by the host.
const (
	RequestWindows = "Windows"
	RequestWindow  = "Window"
)

// ReadyEvent is emitted once the host's event loop is running.
type ReadyEvent struct {
	Data json.RawMessage
}

// Dir returns the backend directory the host sends with Ready, or "" when the
// payload is not a string.
func (e ReadyEvent) Dir() string {
	var dir string
	if err := json.Unmarshal(e.Data, &dir); err != nil {
		return ""
	}
	return dir
}

// InfoEvent is a host notification or a response to a request.
type InfoEvent struct {
	Kind string
	Data json.RawMessage
}

// WindowID decodes the window id carried by Loaded, Created and Closed.
func (e InfoEvent) WindowID() (int, error) {
	switch e.Kind {
	case InfoLoaded, InfoCreated, InfoClosed:
	default:
		return 0, fmt.Errorf("info %q carries no window id", e.Kind)
	}
	var id int
	if err := json.Unmarshal(e.Data, &id); err != nil {
		return 0, fmt.Errorf("decode %s window id: %w", e.Kind, err)
	}
	return id, nil
}

// ErrorText returns the message of an Error info, or "" for other kinds.
func (e InfoEvent) ErrorText() string {
	if e.Kind != InfoError {
		return ""
	}
	var text string
	if err := json.Unmarshal(e.Data, &text); err != nil {
		return string(e.Data)
	}
	return text
}

// MessageEvent is an application payload. When the inbound line was not JSON,
// Opaque is set and Raw holds the line verbatim.
type MessageEvent struct {
	Data   json.RawMessage
	Raw    string
	Opaque bool
}

// ErrOpaqueMessage is returned when decoding a message that was not JSON.
var ErrOpaqueMessage = errors.New("message is not structured")

// Decode unmarshals the structured payload into v.
func (e MessageEvent) Decode(v any) error {
	if e.Opaque {
		return ErrOpaqueMessage
	}
	if len(e.Data) == 0 {
		return errors.New("message has no payload")
	}
	return json.Unmarshal(e.Data, v)
}

// WindowMessage is the payload a window sends to the backend.
type WindowMessage struct {
	From int    `json:"from"`
	Data string `json:"data"`
}

// WindowMessage decodes e as a message sent by a window.
func (e MessageEvent) WindowMessage() (WindowMessage, error) {
	var m WindowMessage
	if err := e.Decode(&m); err != nil {
		return WindowMessage{}, err
	}
	return m, nil
}

// DisconnectEvent is emitted once when the read loop stops. Err is nil when
// the host closed the stream.
type DisconnectEvent struct {
	Err error
}
