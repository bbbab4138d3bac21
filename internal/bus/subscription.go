package bus

type remover interface {
	remove(id uint64) bool
}

// Subscription is the handle returned by Subscribe. The zero value is valid
// and does nothing.
type Subscription struct {
	id    uint64
	owner remover
}

// Unsubscribe removes the callback this handle was issued for. It reports
// whether anything was removed; calling it again is a no-op, and since ids are
// never reused it can never remove a different callback.
func (s Subscription) Unsubscribe() bool {
	if s.owner == nil {
		return false
	}
	return s.owner.remove(s.id)
}

// ID returns the bus-local subscription id, 0 for the zero value.
func (s Subscription) ID() uint64 { return s.id }
