package present

// State is where a workflow is in its request cycle.
//
//	Idle → Submitting → Succeeded | Failed
//	Succeeded | Failed → Submitting
//
// Idle is never re-entered once a workflow has been submitted.
type State uint8

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is a read-only copy of one workflow's slot.
//
// At most one of HasValue and Err is set. While Submitting, the previous
// success (if any) is still carried so it can stay on screen until the new
// response replaces it; a previous error is not.
type Outcome[T any] struct {
	State    State
	Value    T
	HasValue bool
	Err      error

	// Seq is the sequence number of the submission that produced Value or
	// Err. InFlight counts submissions still waiting for a response.
	Seq      uint64
	InFlight int
}
