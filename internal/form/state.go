// Package form holds the field values shared by the Generate and Verify
// panels of one page session.
package form

import (
	"sync"

	"github.com/samber/lo"

	"github.com/pthm/cyphergo/internal/hashapi"
)

// Field ids posted by the panels.
const (
	FieldData      = "data"
	FieldAlgorithm = "algorithm"
	FieldHashValue = "hash_value"
)

// State is a flat map from field id to its latest value. The zero value is
// not ready for use; call NewState.
type State struct {
	mu     sync.RWMutex
	fields map[string]string
}

// NewState returns a form with the algorithm preselected.
func NewState() *State {
	return &State{
		fields: map[string]string{
			FieldAlgorithm: string(hashapi.DefaultAlgorithm),
		},
	}
}

// SetField stores value under id, replacing any earlier value for id only.
// Values are not validated.
func (s *State) SetField(id, value string) {
	s.mu.Lock()
	s.fields[id] = value
	s.mu.Unlock()
}

// SetFields applies several edits under one lock, in no particular order.
func (s *State) SetFields(values map[string]string) {
	if len(values) == 0 {
		return
	}
	s.mu.Lock()
	for id, v := range values {
		s.fields[id] = v
	}
	s.mu.Unlock()
}

// CurrentPayload returns a snapshot of the fields. Edits made after the call
// do not show up in it.
func (s *State) CurrentPayload() Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Payload{fields: lo.Assign(s.fields)}
}

// Payload is an immutable snapshot of the form.
type Payload struct {
	fields map[string]string
}

// Get returns the value stored for id and whether it was ever set.
func (p Payload) Get(id string) (string, bool) {
	v, ok := p.fields[id]
	return v, ok
}

// Value returns the value stored for id, or "".
func (p Payload) Value(id string) string {
	return p.fields[id]
}

// Fields returns a copy of every field in the snapshot.
func (p Payload) Fields() map[string]string {
	return lo.Assign(p.fields)
}

// GenerateRequest builds the body of a generate call. The algorithm is
// forwarded verbatim; the service decides whether it is supported.
func (p Payload) GenerateRequest() hashapi.GenerateRequest {
	return hashapi.GenerateRequest{
		Data:      p.Value(FieldData),
		Algorithm: hashapi.Algorithm(p.Value(FieldAlgorithm)),
	}
}

// VerifyRequest builds the body of a verify call.
func (p Payload) VerifyRequest() hashapi.VerifyRequest {
	return hashapi.VerifyRequest{
		Data:      p.Value(FieldData),
		HashValue: p.Value(FieldHashValue),
		Algorithm: hashapi.Algorithm(p.Value(FieldAlgorithm)),
	}
}
