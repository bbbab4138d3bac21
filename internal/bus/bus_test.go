package bus

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func newTestBus[T any]() *Bus[T] {
	return New[T]("test", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	b := newTestBus[string]()

	var got []string
	b.Subscribe(func(ev string) { got = append(got, "first:"+ev) })
	b.Subscribe(func(ev string) { got = append(got, "second:"+ev) })
	b.Subscribe(func(ev string) { got = append(got, "third:"+ev) })

	b.Emit("x")

	want := []string{"first:x", "second:x", "third:x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBus_EmitWithoutListeners(t *testing.T) {
	b := newTestBus[int]()
	b.Emit(1)
	if b.Len() != 0 {
		t.Fatalf("expected no listeners, got %d", b.Len())
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := newTestBus[int]()

	var count int
	sub := b.Subscribe(func(int) { count++ })
	b.Emit(1)
	if !sub.Unsubscribe() {
		t.Fatal("expected first Unsubscribe to remove the callback")
	}
	b.Emit(2)

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
	if b.Len() != 0 {
		t.Errorf("expected 0 listeners, got %d", b.Len())
	}
}

func TestBus_UnsubscribeTwiceKeepsLaterSubscriber(t *testing.T) {
	b := newTestBus[int]()

	first := b.Subscribe(func(int) {})
	first.Unsubscribe()

	var later int
	b.Subscribe(func(int) { later++ })

	if first.Unsubscribe() {
		t.Error("second Unsubscribe should report nothing removed")
	}
	b.Emit(1)

	if later != 1 {
		t.Errorf("later subscriber should still receive events, got %d", later)
	}
	if b.Len() != 1 {
		t.Errorf("expected 1 listener, got %d", b.Len())
	}
}

func TestBus_ZeroSubscription(t *testing.T) {
	var sub Subscription
	if sub.Unsubscribe() {
		t.Error("zero Subscription should be a no-op")
	}
	if sub.ID() != 0 {
		t.Errorf("expected id 0, got %d", sub.ID())
	}

	b := newTestBus[int]()
	if b.Subscribe(nil) != (Subscription{}) {
		t.Error("nil handler should yield the zero Subscription")
	}
	if b.Len() != 0 {
		t.Error("nil handler must not be registered")
	}
}

func TestBus_SelfUnsubscribeDuringEmit(t *testing.T) {
	b := newTestBus[int]()

	var calls []string
	var self Subscription
	self = b.Subscribe(func(int) {
		calls = append(calls, "self")
		self.Unsubscribe()
	})
	b.Subscribe(func(int) { calls = append(calls, "sibling") })

	b.Emit(1)
	b.Emit(2)

	want := []string{"self", "sibling", "sibling"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("got %v, want %v", calls, want)
	}
}

func TestBus_UnsubscribeSiblingDuringEmit(t *testing.T) {
	b := newTestBus[int]()

	var calls []string
	var sibling Subscription
	b.Subscribe(func(int) {
		calls = append(calls, "killer")
		sibling.Unsubscribe()
	})
	sibling = b.Subscribe(func(int) { calls = append(calls, "sibling") })
	b.Subscribe(func(int) { calls = append(calls, "last") })

	b.Emit(1)

	want := []string{"killer", "last"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("got %v, want %v", calls, want)
	}
}

func TestBus_SubscribeDuringEmitSeesOnlyLaterEvents(t *testing.T) {
	b := newTestBus[int]()

	var late []int
	var once sync.Once
	b.Subscribe(func(int) {
		once.Do(func() {
			b.Subscribe(func(ev int) { late = append(late, ev) })
		})
	})

	b.Emit(1)
	b.Emit(2)

	if !reflect.DeepEqual(late, []int{2}) {
		t.Fatalf("late subscriber got %v, want [2]", late)
	}
}

func TestBus_HandlerPanic(t *testing.T) {
	var logs bytes.Buffer
	b := New[int]("panicky", slog.New(slog.NewTextHandler(&logs, nil)))

	var received int
	b.Subscribe(func(int) { panic("boom") })
	b.Subscribe(func(int) { received++ })

	b.Emit(1)

	if received != 1 {
		t.Errorf("expected sibling to receive event despite panic, got %d", received)
	}
	if !strings.Contains(logs.String(), "subscriber panicked") || !strings.Contains(logs.String(), "bus=panicky") {
		t.Errorf("expected panic to be logged, got %q", logs.String())
	}
}

func TestBus_ConcurrentSubscribeAndEmit(t *testing.T) {
	b := newTestBus[int]()

	var received atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := b.Subscribe(func(int) { received.Add(1) })
			sub.Unsubscribe()
		}()
		go func(i int) {
			defer wg.Done()
			b.Emit(i)
		}(i)
	}
	wg.Wait()

	if b.Len() != 0 {
		t.Errorf("expected all subscribers removed, got %d", b.Len())
	}
}

func TestBus_Active(t *testing.T) {
	b := newTestBus[int]()
	other := newTestBus[int]()

	sub := b.Subscribe(func(int) {})
	if !b.Active(sub) {
		t.Error("fresh subscription should be active")
	}
	if other.Active(sub) {
		t.Error("subscription must only be active on its own bus")
	}
	sub.Unsubscribe()
	if b.Active(sub) {
		t.Error("removed subscription should not be active")
	}
	if b.Active(Subscription{}) {
		t.Error("zero subscription should not be active")
	}
}
