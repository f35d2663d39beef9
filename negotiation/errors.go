/*
errors.go - Centralized error types for the negotiation lifecycle

PURPOSE:
  All lifecycle error values in one place. Every rejection carries a
  human-readable reason; callers map client errors to 4xx and the rest
  to 5xx.

SEE ALSO:
  - machine.go: Produces transition errors
  - workflow.go: Produces flow-step errors
*/
package negotiation

import (
	"errors"
	"fmt"

	"github.com/warp/dealflow-engine/invoicing"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTerminalState is returned for any transition out of CANCELLED or
	// DECLINED.
	ErrTerminalState = errors.New("terminal state")

	// ErrIllegalTransition is returned for a (current, target) pair the
	// state machine does not permit.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrReasonRequired is returned when a cancel/decline commit lacks a
	// non-empty justification.
	ErrReasonRequired = errors.New("a non-empty reason is required")

	// ErrScheduleNotConfirmed is returned when a closure commit arrives
	// without a confirmed installment schedule.
	ErrScheduleNotConfirmed = errors.New("installment schedule not confirmed")

	// ErrTokenMismatch is returned when a pending-transition token no longer
	// matches the negotiation's current state.
	ErrTokenMismatch = errors.New("pending transition token does not match current state")

	// ErrNotFound is returned by stores for a missing negotiation.
	ErrNotFound = errors.New("negotiation not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// TransitionError carries the rejected pair alongside the reason.
type TransitionError struct {
	From   Status
	To     Status
	Reason string
	cause  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s rejected: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error { return e.cause }

func rejected(from, to Status, cause error, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason, cause: cause}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrTerminalState) ||
		errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrReasonRequired) ||
		errors.Is(err, ErrScheduleNotConfirmed) ||
		errors.Is(err, ErrTokenMismatch) ||
		errors.Is(err, invoicing.ErrDecisionMissing) ||
		errors.Is(err, invoicing.ErrKeepDatesRequired) ||
		errors.Is(err, invoicing.ErrUnknownInvoice)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
