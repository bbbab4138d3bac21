// Package bus provides the synchronous, typed event buses the client uses to
// fan inbound host events out to application callbacks.
package bus

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Handler receives one event.
type Handler[T any] func(T)

type listener[T any] struct {
	id uint64
	fn Handler[T]
}

// Bus delivers events of type T to its subscribers in registration order, on
// the goroutine that calls Emit.
type Bus[T any] struct {
	name   string
	logger *slog.Logger

	mu        sync.Mutex
	nextID    uint64
	listeners []listener[T]
	live      map[uint64]struct{}
}

// New returns an empty bus. name only appears in logs.
func New[T any](name string, logger *slog.Logger) *Bus[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus[T]{
		name:   name,
		logger: logger.With("component", "bus", "bus", name),
		live:   make(map[uint64]struct{}),
	}
}

// Subscribe registers fn and returns the handle that removes it.
func (b *Bus[T]) Subscribe(fn Handler[T]) Subscription {
	if fn == nil {
		return Subscription{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener[T]{id: id, fn: fn})
	b.live[id] = struct{}{}
	return Subscription{id: id, owner: b}
}

// Emit calls every subscriber with ev. The listener list is snapshotted first,
// so callbacks may subscribe or unsubscribe freely; a listener removed during
// the emission is skipped if it has not run yet, and one added during it only
// sees later events.
func (b *Bus[T]) Emit(ev T) {
	b.mu.Lock()
	if len(b.listeners) == 0 {
		b.mu.Unlock()
		return
	}
	snapshot := make([]listener[T], len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		if !b.isLive(l.id) {
			continue
		}
		b.call(l, ev)
	}
}

// Len returns the number of registered subscribers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Active reports whether sub was issued by b and is still registered.
func (b *Bus[T]) Active(sub Subscription) bool {
	if owner, ok := sub.owner.(*Bus[T]); !ok || owner != b {
		return false
	}
	return b.isLive(sub.id)
}

func (b *Bus[T]) call(l listener[T], ev T) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked",
				"subscription", l.id,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
				"event_type", "bus_subscriber_panic")
		}
	}()
	l.fn(ev)
}

func (b *Bus[T]) isLive(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.live[id]
	return ok
}

func (b *Bus[T]) remove(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.live[id]; !ok {
		return false
	}
	delete(b.live, id)
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			break
		}
	}
	return true
}
