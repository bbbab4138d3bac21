package wire

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxLineBytes bounds a single inbound line.
const DefaultMaxLineBytes = 4 << 20

// LineReader splits the host's stream into lines and hands them, one at a
// time, to a handler.
type LineReader struct {
	r       io.Reader
	maxLine int
	handler func(string)
}

// NewLineReader returns a reader for r. maxLine <= 0 selects
// DefaultMaxLineBytes.
func NewLineReader(r io.Reader, maxLine int, handler func(string)) *LineReader {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	return &LineReader{r: r, maxLine: maxLine, handler: handler}
}

// Run delivers lines until the stream ends (nil), a read fails (the wrapped
// error) or ctx is cancelled (ctx.Err()). The handler for one line returns
// before the next line is delivered.
//
// On cancellation the scanning goroutine stays blocked in Read until the
// underlying reader returns; closing the reader releases it.
func (l *LineReader) Run(ctx context.Context) error {
	lines := make(chan string)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(l.r)
		initial := 64 * 1024
		if initial > l.maxLine {
			initial = l.maxLine
		}
		scanner.Buffer(make([]byte, 0, initial), l.maxLine)
		for scanner.Scan() {
			line := strings.TrimSuffix(scanner.Text(), "\r")
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			if l.handler != nil {
				l.handler(line)
			}
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("read host stream: %w", err)
			}
			return nil
		}
	}
}
