// Package request layers request/response correlation on top of the host's
// Info notifications.
//
// The host answers {"Request":{"<Kind>":params}} with
// {"Info":{"Response":{"<Kind>":payload}}}. Responses carry no request id, so
// a pending request matches the first Response of its kind.
package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/deutron/deutron/internal/bus"
	"github.com/deutron/deutron/internal/logging"
	"github.com/deutron/deutron/internal/schema"
)

var (
	// ErrTimeout is returned by Await when ctx expires before the response.
	ErrTimeout = errors.New("request: timed out waiting for response")
	// ErrClosed is returned once the correlator has been closed.
	ErrClosed = errors.New("request: correlator closed")
)

// Callback receives the payload stored under the request kind.
type Callback func(data json.RawMessage)

// Correlator matches Response infos to pending requests.
type Correlator struct {
	info   *bus.Bus[schema.InfoEvent]
	send   func(schema.Command) error
	logger *slog.Logger

	mu     sync.Mutex
	calls  map[*call]struct{}
	closed bool
	done   chan struct{}
}

func New(info *bus.Bus[schema.InfoEvent], send func(schema.Command) error, logger *slog.Logger) *Correlator {
	return &Correlator{
		info:   info,
		send:   send,
		logger: logging.Component(logger, "request"),
		calls:  make(map[*call]struct{}),
		done:   make(chan struct{}),
	}
}

// Request subscribes for the response to kind, then sends the request. cb
// runs once on the dispatch goroutine with the payload, after which the
// handler is removed. The returned handle cancels the wait.
func (c *Correlator) Request(kind string, params any, cb Callback) (bus.Subscription, error) {
	p, err := c.start(kind, params, cb)
	if err != nil {
		return bus.Subscription{}, err
	}
	return p.subscription(), nil
}

// Await sends a request and blocks until the response arrives, ctx is done or
// the correlator closes. It must not be called from a bus callback: the
// response is delivered on the goroutine that would be blocked.
func (c *Correlator) Await(ctx context.Context, kind string, params any) (json.RawMessage, error) {
	result := make(chan json.RawMessage, 1)
	p, err := c.start(kind, params, func(data json.RawMessage) { result <- data })
	if err != nil {
		return nil, err
	}
	defer p.cancel()

	select {
	case data := <-result:
		return data, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTimeout, kind, ctx.Err())
		}
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// Pending returns how many requests still wait for a response.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for p := range c.calls {
		if c.info.Active(p.subscription()) {
			n++
			continue
		}
		// Cancelled through the handle returned by Request.
		delete(c.calls, p)
	}
	return n
}

// Close drops every pending request and fails blocked Await calls with
// ErrClosed. Later requests fail immediately.
func (c *Correlator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	calls := make([]*call, 0, len(c.calls))
	for p := range c.calls {
		calls = append(calls, p)
	}
	c.mu.Unlock()

	for _, p := range calls {
		p.cancel()
	}
	if len(calls) > 0 {
		c.logger.Debug("dropped pending requests", "count", len(calls))
	}
}

func (c *Correlator) start(kind string, params any, cb Callback) (*call, error) {
	if kind == "" {
		return nil, errors.New("request: empty kind")
	}
	p := &call{owner: c, kind: kind, cb: cb}

	// Subscribe before sending so a fast response is never missed.
	p.attach(c.info.Subscribe(p.handle))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		p.cancel()
		return nil, ErrClosed
	}
	c.calls[p] = struct{}{}
	c.mu.Unlock()

	if err := c.send(schema.NewRequest(kind, params)); err != nil {
		p.cancel()
		return nil, fmt.Errorf("send %s request: %w", kind, err)
	}
	c.logger.Debug("request sent", "kind", kind)
	return p, nil
}

func (c *Correlator) forget(p *call) {
	c.mu.Lock()
	delete(c.calls, p)
	c.mu.Unlock()
}

type call struct {
	owner *Correlator
	kind  string
	cb    Callback

	mu   sync.Mutex
	sub  bus.Subscription
	done bool
}

func (p *call) attach(sub bus.Subscription) {
	p.mu.Lock()
	p.sub = sub
	done := p.done
	p.mu.Unlock()
	if done {
		sub.Unsubscribe()
	}
}

func (p *call) subscription() bus.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub
}

func (p *call) handle(ev schema.InfoEvent) {
	if ev.Kind != schema.InfoResponse {
		return
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(ev.Data, &payload); err != nil {
		return
	}
	data, ok := payload[p.kind]
	if !ok {
		return
	}

	if !p.finish() {
		return
	}
	p.owner.logger.Debug("response matched", "kind", p.kind)
	if p.cb != nil {
		p.cb(data)
	}
}

// finish marks the call done and detaches it. It reports false if the call
// had already finished.
func (p *call) finish() bool {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return false
	}
	p.done = true
	sub := p.sub
	p.mu.Unlock()

	sub.Unsubscribe()
	p.owner.forget(p)
	return true
}

func (p *call) cancel() {
	p.finish()
}
