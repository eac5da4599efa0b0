// Package stream models the lifecycle of one independently polled resource.
package stream

import "time"

// Phase is the lifecycle position of a polled resource.
type Phase string

const (
	PhaseNeverLoaded    Phase = "NEVER_LOADED"
	PhaseInitialLoading Phase = "INITIAL_LOADING"
	PhaseReady          Phase = "READY"
	PhaseRefreshing     Phase = "REFRESHING"
	PhaseFailed         Phase = "FAILED"
)

// Display is the mutually exclusive presentation state derived from a Phase.
type Display string

const (
	DisplayLoading Display = "loading"
	DisplayError   Display = "error"
	DisplayContent Display = "content"
)

// unknownError replaces empty failure messages so Failed always carries one.
const unknownError = "unknown error"

var now = time.Now

// State is the phase/data/error wrapper around one polled resource.
//
// Values stored through ResolveSuccess are treated as immutable; callers must
// not modify a value after handing it over or after reading it from View.
//
// State is not safe for concurrent use; the owner serializes access.
type State[T any] struct {
	data      T
	hasData   bool
	phase     Phase
	err       string
	lastSeq   uint64
	pending   bool
	updatedAt time.Time
	discarded uint64
}

// New returns a State in PhaseNeverLoaded.
func New[T any]() *State[T] {
	return &State[T]{phase: PhaseNeverLoaded}
}

// Dispatch records seq as the most recent request. It moves to
// InitialLoading before any data exists and to Refreshing once it does; a
// hard-failed stream stays Failed until the new request settles so the
// loading indicator is never shown twice. A seq not greater than the last
// dispatched one is rejected.
func (s *State[T]) Dispatch(seq uint64) bool {
	if seq <= s.lastSeq {
		return false
	}
	s.lastSeq = seq
	s.pending = true
	switch {
	case s.hasData:
		s.phase = PhaseRefreshing
	case s.phase == PhaseFailed:
		// keep the blocking error visible
	default:
		s.phase = PhaseInitialLoading
	}
	return true
}

// ResolveSuccess applies v if seq answers the most recent outstanding
// request. It reports whether the response was applied.
func (s *State[T]) ResolveSuccess(seq uint64, v T) bool {
	if !s.accepts(seq) {
		s.discarded++
		return false
	}
	s.pending = false
	s.data = v
	s.hasData = true
	s.err = ""
	s.phase = PhaseReady
	s.updatedAt = now()
	return true
}

// ResolveFailure applies a failure if seq answers the most recent
// outstanding request. Existing data is kept and only the error is set;
// without data the stream becomes Failed.
func (s *State[T]) ResolveFailure(seq uint64, msg string) bool {
	if !s.accepts(seq) {
		s.discarded++
		return false
	}
	if msg == "" {
		msg = unknownError
	}
	s.pending = false
	s.err = msg
	s.updatedAt = now()
	if s.hasData {
		s.phase = PhaseReady
	} else {
		s.phase = PhaseFailed
	}
	return true
}

func (s *State[T]) accepts(seq uint64) bool {
	return s.pending && seq == s.lastSeq
}

// Phase returns the current phase.
func (s *State[T]) Phase() Phase { return s.phase }

// LastRequestSeq returns the sequence number of the latest dispatch.
func (s *State[T]) LastRequestSeq() uint64 { return s.lastSeq }

// Discarded returns how many responses were dropped as stale.
func (s *State[T]) Discarded() uint64 { return s.discarded }

// View returns a copy of the externally visible state.
func (s *State[T]) View() View[T] {
	v := View[T]{
		Phase:          s.phase,
		Error:          s.err,
		Pending:        s.pending,
		LastRequestSeq: s.lastSeq,
		UpdatedAt:      s.updatedAt,
	}
	if s.hasData {
		d := s.data
		v.Data = &d
	}
	v.Display = displayOf(v.Phase, s.hasData)
	return v
}

func displayOf(p Phase, hasData bool) Display {
	switch {
	case hasData:
		return DisplayContent
	case p == PhaseFailed:
		return DisplayError
	default:
		return DisplayLoading
	}
}

// View is an immutable snapshot of a State.
type View[T any] struct {
	Data           *T        `json:"data"`
	Phase          Phase     `json:"phase"`
	Error          string    `json:"error,omitempty"`
	Display        Display   `json:"display"`
	Pending        bool      `json:"pending"`
	LastRequestSeq uint64    `json:"last_request_seq"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// HasData reports whether the view carries data.
func (v View[T]) HasData() bool { return v.Data != nil }

// Banner returns the non-blocking error to show alongside data, if any.
func (v View[T]) Banner() string {
	if v.Data == nil {
		return ""
	}
	return v.Error
}
