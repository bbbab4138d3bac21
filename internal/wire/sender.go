package wire

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/deutron/deutron/internal/logging"
	"github.com/deutron/deutron/internal/shared/stringutils"
)

// ErrClosed is returned by Send once the host has disconnected.
var ErrClosed = errors.New("wire: sender closed")

// Sender writes envelopes to the host. It is safe for concurrent use; each
// envelope goes out in a single Write so lines never interleave.
type Sender struct {
	w      io.Writer
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewSender(w io.Writer, logger *slog.Logger) *Sender {
	return &Sender{w: w, logger: logging.Component(logger, "sender")}
}

// Send encodes v and writes it. Failures are logged and returned; they never
// stop the process.
func (s *Sender) Send(v any) error {
	data, err := Encode(v)
	if err != nil {
		logging.Warn(s.logger, "failed to encode command", "ipc_encode_failed",
			"command was not sent to the host",
			"check that the command only contains JSON-encodable values",
			"error", err, "command", fmt.Sprintf("%+v", v))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, err := s.w.Write(data); err != nil {
		err = fmt.Errorf("write envelope: %w", err)
		logging.Warn(s.logger, "failed to send command", "ipc_write_failed",
			"command was not delivered to the host",
			"the host may have exited; check its output",
			"error", err, "bytes", len(data))
		return err
	}
	s.logger.Debug("sent", "envelope", stringutils.Truncate(string(data[len(Marker):len(data)-1]), 256))
	return nil
}

// Close makes every later Send fail with ErrClosed. It does not close the
// underlying writer.
func (s *Sender) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
