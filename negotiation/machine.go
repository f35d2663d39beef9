/*
machine.go - Negotiation state machine

PURPOSE:
  Validates and classifies status transitions. The machine is pure: it
  inspects a negotiation snapshot and a target state, and returns exactly
  one of three outcomes - apply, requires user input, or rejected. It never
  mutates the negotiation and never performs I/O; calling it twice with
  identical inputs yields identical outcomes.

STATE GRAPH:
  DRAFT -> SENT -> RESENT -> REVISED -> CLOSED
  every non-terminal state -> CANCELLED | DECLINED
  CANCELLED / DECLINED are terminal

PENDING TRANSITIONS:
  When input is required (closure confirmation, cancellation reason), the
  machine hands back a PendingTransition token. The caller carries the
  token across the intervening UI step and feeds it into Commit together
  with the collected input. The token is deterministic - no hidden state -
  and Commit re-checks it against the negotiation's CURRENT status, so a
  stale token from a superseded snapshot is rejected.

SEE ALSO:
  - workflow.go: Orchestrates tokens across multi-step flows
  - invoicing: Reconciliation gating for CLOSED -> CANCELLED/DECLINED
*/
package negotiation

import (
	"fmt"
	"time"

	"github.com/warp/dealflow-engine/billing"
)

// =============================================================================
// OUTCOME
// =============================================================================

type OutcomeKind string

const (
	OutcomeApply         OutcomeKind = "apply"
	OutcomeRequiresInput OutcomeKind = "requires_input"
	OutcomeRejected      OutcomeKind = "rejected"
)

type InputKind string

const (
	// InputConfirmClosure: the installment schedule must be collected and
	// confirmed before the transition commits.
	InputConfirmClosure InputKind = "confirm_closure"

	// InputReasonRequired: a non-empty justification must be supplied.
	InputReasonRequired InputKind = "reason_required"
)

// Outcome is the machine's answer for one (current, target) pair.
type Outcome struct {
	Kind   OutcomeKind
	Input  InputKind // set when Kind == OutcomeRequiresInput
	Reason string    // set when Kind == OutcomeRejected

	// Notices are informational messages the caller must surface.
	Notices []string

	// RequiresReconciliation marks a CLOSED -> CANCELLED/DECLINED request:
	// the invoice reconciliation plan must complete and commit before the
	// status transition commits.
	RequiresReconciliation bool

	// Pending carries the intent across the input-collection step.
	Pending *PendingTransition
}

// =============================================================================
// PENDING TRANSITION TOKEN
// =============================================================================

// PendingTransition is the explicit replacement for "desired status" flags
// held in transient view state. Deterministic for a given negotiation
// snapshot, so the machine stays a pure function.
type PendingTransition struct {
	Token         string
	NegotiationID string
	From          Status
	To            Status
	Input         InputKind
}

func newPending(n *Negotiation, target Status, input InputKind) *PendingTransition {
	return &PendingTransition{
		Token:         fmt.Sprintf("%s:%s>%s", n.ID, n.Status, target),
		NegotiationID: n.ID,
		From:          n.Status,
		To:            target,
		Input:         input,
	}
}

// =============================================================================
// TRANSITION REQUEST
// =============================================================================

// forward is the linear progression of an active proposal.
var forward = map[Status]Status{
	StatusDraft:  StatusSent,
	StatusSent:   StatusResent,
	StatusResent: StatusRevised,
}

// RequestTransition classifies a status change. Pure; the negotiation is
// not modified.
func RequestTransition(n *Negotiation, target Status) Outcome {
	current := n.Status

	if !target.Valid() {
		return Outcome{Kind: OutcomeRejected, Reason: fmt.Sprintf("unknown target state %q", target)}
	}

	if current.Terminal() {
		return Outcome{Kind: OutcomeRejected, Reason: "terminal state"}
	}

	switch target {
	case StatusClosed:
		if current == StatusClosed {
			return Outcome{Kind: OutcomeRejected, Reason: "illegal transition"}
		}
		// Hourly contracts have no eager schedule to confirm: close
		// immediately, billing is driven by approved time entries.
		if n.ContractType == billing.ContractHourly {
			return Outcome{
				Kind:    OutcomeApply,
				Notices: []string{"hourly contract: billing is driven by approved time entries"},
			}
		}
		return Outcome{
			Kind:    OutcomeRequiresInput,
			Input:   InputConfirmClosure,
			Pending: newPending(n, target, InputConfirmClosure),
		}

	case StatusCancelled, StatusDeclined:
		out := Outcome{
			Kind:    OutcomeRequiresInput,
			Input:   InputReasonRequired,
			Pending: newPending(n, target, InputReasonRequired),
		}
		// Before CLOSED no invoices exist, so no reconciliation is needed.
		if current == StatusClosed {
			out.RequiresReconciliation = true
		}
		return out

	default:
		if forward[current] == target {
			return Outcome{Kind: OutcomeApply}
		}
		return Outcome{Kind: OutcomeRejected, Reason: "illegal transition"}
	}
}

// =============================================================================
// APPLY / COMMIT
// =============================================================================

// ApplyTransition performs a transition whose outcome is OutcomeApply.
// Used for the forward progression and hourly closures; any other outcome
// is an error.
func ApplyTransition(n *Negotiation, target Status) error {
	out := RequestTransition(n, target)
	switch out.Kind {
	case OutcomeApply:
		applyStatus(n, target)
		return nil
	case OutcomeRequiresInput:
		return rejected(n.Status, target, ErrIllegalTransition,
			fmt.Sprintf("transition requires user input (%s)", out.Input))
	default:
		cause := ErrIllegalTransition
		if out.Reason == "terminal state" {
			cause = ErrTerminalState
		}
		return rejected(n.Status, target, cause, out.Reason)
	}
}

// CommitInput carries the user input collected for a pending transition.
type CommitInput struct {
	// Reason satisfies InputReasonRequired.
	Reason string

	// ScheduleConfirmed satisfies InputConfirmClosure. The confirmed
	// installments themselves are set on the negotiation by the workflow.
	ScheduleConfirmed bool
}

// CommitPending applies a pending transition after its input was collected.
// The token is re-validated against the negotiation's current state, so a
// token minted from a stale snapshot cannot commit.
func CommitPending(n *Negotiation, pending *PendingTransition, input CommitInput) error {
	if pending == nil {
		return rejected(n.Status, "", ErrIllegalTransition, "no pending transition")
	}
	if pending.NegotiationID != n.ID || pending.From != n.Status ||
		pending.Token != fmt.Sprintf("%s:%s>%s", n.ID, n.Status, pending.To) {
		return rejected(n.Status, pending.To, ErrTokenMismatch,
			"pending transition token does not match current state")
	}

	switch pending.Input {
	case InputReasonRequired:
		if input.Reason == "" {
			return rejected(n.Status, pending.To, ErrReasonRequired, "a non-empty reason is required")
		}
		n.Reason = input.Reason
	case InputConfirmClosure:
		if !input.ScheduleConfirmed {
			return rejected(n.Status, pending.To, ErrScheduleNotConfirmed,
				"installment schedule not confirmed")
		}
	}

	applyStatus(n, pending.To)
	return nil
}

func applyStatus(n *Negotiation, target Status) {
	n.Status = target
	n.UpdatedAt = time.Now().UTC()
	if target == StatusClosed && n.CompletionDate == nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		n.CompletionDate = &today
	}
}
