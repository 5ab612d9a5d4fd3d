// Package store provides an in-memory keyed store whose entries carry an
// absolute expiry. Expired entries are removed lazily, when a read touches
// them, so the store never runs a background goroutine.
package store

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt int64
}

// expired reports whether e is past its expiry at unix second now.
// An expiresAt of 0 never expires.
func (e entry[V]) expired(now int64) bool {
	return e.expiresAt != 0 && now >= e.expiresAt
}

// Expiring is a concurrency-safe map from string keys to values of type V
// with per-entry expiry in unix seconds.
//
// Every operation holds the instance mutex for the duration of the call
// only. Distinct instances share nothing.
type Expiring[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	clock   func() time.Time
}

// Option configures an Expiring store.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock overrides the time source used for expiry decisions.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// NewExpiring returns an empty store.
func NewExpiring[V any](opts ...Option) *Expiring[V] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Expiring[V]{
		entries: make(map[string]entry[V]),
		clock:   o.clock,
	}
}

// Put inserts or replaces the value under key. expiresAt is unix seconds;
// 0 means the entry never expires.
func (s *Expiring[V]) Put(key string, value V, expiresAt int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
}

// Get returns the live value under key. An entry found past its expiry is
// deleted and reported as absent.
func (s *Expiring[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if e.expired(s.clock().Unix()) {
		delete(s.entries, key)
		return zero, false
	}
	return e.value, true
}

// ListAll returns every live value in unspecified order and removes every
// expired entry encountered.
func (s *Expiring[V]) ListAll() []V {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().Unix()
	out := make([]V, 0, len(s.entries))
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			continue
		}
		out = append(out, e.value)
	}
	return out
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Expiring[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len is the number of stored entries, including expired ones that no read
// has evicted yet.
func (s *Expiring[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
