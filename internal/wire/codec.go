// Package wire frames protocol envelopes on the host's byte stream.
//
// Outbound envelopes are one line each: Marker, compact JSON, '\n'. Inbound
// lines carry bare JSON; the host strips nothing and adds no prefix. Lines
// that are not JSON are passed on verbatim rather than rejected.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marker prefixes every outbound envelope. The host treats stdout lines
// without it as plain output.
const Marker = "DEUTRON_IPC:"

// Encode returns the envelope for v, terminator included.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Marker)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoder.Encode appends the '\n' terminator and never emits a raw
	// newline inside compact JSON.
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return buf.Bytes(), nil
}

// Kind tags a decoded inbound line.
type Kind int

const (
	// Structured lines parsed as JSON; Value holds the document.
	Structured Kind = iota
	// Raw lines did not parse; Text holds the line.
	Raw
)

func (k Kind) String() string {
	switch k {
	case Structured:
		return "structured"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decoded is the result of reading one inbound line.
type Decoded struct {
	Kind  Kind
	Value json.RawMessage
	Text  string
}

// Decode classifies line as Structured JSON or Raw text. It never fails.
func Decode(line string) Decoded {
	data := []byte(line)
	if !json.Valid(data) {
		return Decoded{Kind: Raw, Text: line}
	}
	return Decoded{Kind: Structured, Value: json.RawMessage(data), Text: line}
}
