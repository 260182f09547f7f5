// Package session keeps per-page-load state in memory.
//
// Each load of the Hashing screen creates an entry. Entries that are not
// touched for the store's TTL are evicted, after which Get reports
// ErrExpired and the page has to be reloaded.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrExpired is returned for ids that are unknown or were evicted.
var ErrExpired = errors.New("session: expired or unknown")

type entry[T any] struct {
	value    T
	lastSeen atomic.Time
}

// Store maps page session ids to values created by a factory.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]

	create func() T
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewStore returns an empty store. create builds the value for every new
// session.
func NewStore[T any](ttl time.Duration, create func() T, opts ...Option) *Store[T] {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		create:  create,
		ttl:     ttl,
		now:     o.now,
		logger:  o.logger,
	}
}

// Create starts a session and returns its id and value.
func (s *Store[T]) Create() (string, T) {
	id := newID()
	e := &entry[T]{value: s.create()}
	e.lastSeen.Store(s.now())

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()

	return id, e.value
}

// Get returns the value for id and marks it as used.
func (s *Store[T]) Get(id string) (T, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	now := s.now()
	if !ok || s.stale(e, now) {
		var zero T
		return zero, ErrExpired
	}
	e.lastSeen.Store(now)
	return e.value, nil
}

// Len returns the number of live and not yet swept sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep evicts every session idle for longer than the TTL and returns how
// many were removed.
func (s *Store[T]) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := lo.Keys(lo.PickBy(s.entries, func(_ string, e *entry[T]) bool {
		return s.stale(e, now)
	}))
	for _, id := range expired {
		delete(s.entries, id)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("evicted page sessions", zap.Int("count", n), zap.Int("live", s.Len()))
			}
		}
	}
}

func (s *Store[T]) stale(e *entry[T], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen.Load()) > s.ttl
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
