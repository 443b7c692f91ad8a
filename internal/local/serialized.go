package local

import (
	"context"
	"sync"
)

// Serialized wraps a Store so that writes to one key apply in the order they
// were started. A write that reaches the inner store after a later write to
// the same key already landed is dropped.
type Serialized struct {
	inner Store

	mu   sync.Mutex
	keys map[string]*keyState

	pending sync.WaitGroup
}

type keyState struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// NewSerialized wraps inner.
func NewSerialized(inner Store) *Serialized {
	return &Serialized{inner: inner, keys: map[string]*keyState{}}
}

// Ticket is a reserved position in a key's write order.
type Ticket struct {
	key   string
	seq   uint64
	state *keyState
}

// Reserve takes the next position for key. Reservation order is the order
// writes are applied in, regardless of when Apply runs.
func (s *Serialized) Reserve(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	ks, ok := s.keys[key]
	if !ok {
		ks = &keyState{}
		s.keys[key] = ks
	}
	ks.issued++
	return Ticket{key: key, seq: ks.issued, state: ks}
}

// Apply writes value for a reserved ticket. It reports applied=false when a
// newer ticket for the same key has already been written.
func (s *Serialized) Apply(ctx context.Context, t Ticket, value string) (applied bool, err error) {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	if t.seq < t.state.applied {
		return false, nil
	}
	if err := s.inner.SetString(ctx, t.key, value); err != nil {
		return false, err
	}
	t.state.applied = t.seq
	return true, nil
}

// GetString reads through to the wrapped store.
func (s *Serialized) GetString(ctx context.Context, key string) (string, bool, error) {
	return s.inner.GetString(ctx, key)
}

// SetString reserves and applies in one call.
func (s *Serialized) SetString(ctx context.Context, key, value string) error {
	_, err := s.Apply(ctx, s.Reserve(key), value)
	return err
}

// Go reserves a ticket now and applies it on a new goroutine. done, if not
// nil, receives the outcome.
func (s *Serialized) Go(ctx context.Context, key, value string, done func(applied bool, err error)) {
	t := s.Reserve(key)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		applied, err := s.Apply(ctx, t, value)
		if done != nil {
			done(applied, err)
		}
	}()
}

// Wait blocks until every write started with Go has finished.
func (s *Serialized) Wait() {
	s.pending.Wait()
}
