package workspace

import (
	"fmt"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"
)

// State is the regeneration lifecycle of a workspace
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// UserErrorMessage is the only message shown for a failed regeneration
const UserErrorMessage = "Unable to update the resume. Try again."

// Status is the observable regeneration state. Message is set only in StateFailed.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

// Busy reports whether a regeneration is in flight
func (s Status) Busy() bool {
	return s.State == StateSubmitting
}

// ErrStaleRegeneration is returned by a regeneration whose response arrived
// after a newer regeneration had already started. Its response is dropped.
var ErrStaleRegeneration = errors.NewInternalError("STALE_REGENERATION", "regeneration superseded by a newer request", nil)

func errInvalidStyle(style types.Style) error {
	return errors.NewValidationError(errors.ErrCodeInvalidInput,
		fmt.Sprintf("unknown style %q", style), nil)
}
