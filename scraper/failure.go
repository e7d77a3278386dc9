package scraper

import (
	"errors"
	"fmt"
)

// FailureKind classifies what went wrong with one listing interaction.
// Retry policy dispatches on the kind, not on provider error strings.
type FailureKind int

const (
	// StaleReference means the view re-rendered and invalidated the
	// listing the engine was about to use. Recovered in place by the
	// iterator; never visible above it.
	StaleReference FailureKind = iota

	// InteractionTimeout means a bounded wait on the view expired.
	// Retried by the extractor, then skips the listing.
	InteractionTimeout

	// MissingRequiredFields means the detail panel rendered without a
	// usable name or link after all attempts. Skips the listing.
	MissingRequiredFields

	// SessionFailure means the browser session itself is unusable.
	// Aborts the keyword; partial results are kept.
	SessionFailure
)

func (k FailureKind) String() string {
	switch k {
	case StaleReference:
		return "stale reference"
	case InteractionTimeout:
		return "interaction timeout"
	case MissingRequiredFields:
		return "missing required fields"
	case SessionFailure:
		return "session failure"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// Failure is the typed outcome of a failed listing interaction.
type Failure struct {
	Kind     FailureKind
	Position int
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("listing %d: %s: %v", f.Position, f.Kind, f.Err)
	}
	return fmt.Sprintf("listing %d: %s", f.Position, f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure wraps err as a Failure of the given kind at a position.
func NewFailure(kind FailureKind, position int, err error) *Failure {
	return &Failure{Kind: kind, Position: position, Err: err}
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// ErrStop tells the iterator to end cleanly: the caller has everything
// it needs. Not an error condition.
var ErrStop = errors.New("stop iteration")

// ErrDegraded reports that too many consecutive positions were abandoned
// and the keyword was cut short. Partial results remain valid.
var ErrDegraded = errors.New("iteration degraded")
