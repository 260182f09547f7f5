package workflow

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/pthm/cyphergo/internal/present"
)

// Ordering decides which response wins when submissions of one workflow
// overlap.
type Ordering uint8

const (
	// OrderLastResolved applies every response as it arrives, so the last one
	// to resolve is what stays on screen.
	OrderLastResolved Ordering = iota
	// OrderLatestIssued drops any response whose submission is no longer the
	// most recent one.
	OrderLatestIssued
)

// ParseOrdering maps the config spelling to an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "last-resolved":
		return OrderLastResolved, nil
	case "latest-issued":
		return OrderLatestIssued, nil
	}
	return 0, fmt.Errorf("workflow: unknown ordering %q", s)
}

func (o Ordering) String() string {
	if o == OrderLatestIssued {
		return "latest-issued"
	}
	return "last-resolved"
}

// Slot is the result-or-error cell of one workflow. It is safe for
// concurrent use.
type Slot[T any] struct {
	ordering Ordering
	issued   atomic.Uint64

	mu       sync.Mutex
	state    present.State
	value    T
	hasValue bool
	err      error
	seq      uint64
	inFlight int
}

// NewSlot returns an Idle slot.
func NewSlot[T any](ordering Ordering) *Slot[T] {
	return &Slot[T]{ordering: ordering}
}

// Begin starts a submission and returns its sequence number. The previous
// error is cleared; a previous value is kept until a response replaces it.
func (s *Slot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.issued.Inc()
	s.state = present.Submitting
	s.err = nil
	s.inFlight++
	return seq
}

// Resolve records the response of submission seq and reports whether it
// was applied. A success replaces the value and a failure replaces it with
// err, so the slot never holds both.
func (s *Slot[T]) Resolve(seq uint64, v T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.ordering == OrderLatestIssued && seq != s.issued.Load() {
		return false
	}

	s.seq = seq
	if err != nil {
		var zero T
		s.state = present.Failed
		s.value, s.hasValue, s.err = zero, false, err
	} else {
		s.state = present.Succeeded
		s.value, s.hasValue, s.err = v, true, nil
	}
	// Under last-resolved any pending submission may still replace this
	// outcome, so the slot stays Submitting until the last one lands.
	if s.ordering == OrderLastResolved && s.inFlight > 0 {
		s.state = present.Submitting
	}
	return true
}

// Issued returns the sequence number of the latest Begin.
func (s *Slot[T]) Issued() uint64 {
	return s.issued.Load()
}

// Snapshot copies the slot for rendering.
func (s *Slot[T]) Snapshot() present.Outcome[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return present.Outcome[T]{
		State:    s.state,
		Value:    s.value,
		HasValue: s.hasValue,
		Err:      s.err,
		Seq:      s.seq,
		InFlight: s.inFlight,
	}
}
