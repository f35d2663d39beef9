/*
reconcile.go - Invoice reconciliation policy

PURPOSE:
  Classifies the invoices linked to a negotiation before a CLOSED
  negotiation is cancelled or declined. The policy only returns a plan;
  the caller applies it through the store after the operator accepts.

CLASSIFICATION:
  PROVISIONED -> autoCancel        no fiscal document exists yet
  INVOICED    -> requiresDecision  operator picks cancel-or-keep per invoice
  RECEIVED    -> leaveAsIs         settled money is never touched
  anything else -> requiresDecision (conservative default)

ORDERING GUARANTEE:
  PROVISIONED cancellations apply first and independently of the INVOICED
  decisions. With no PROVISIONED and no INVOICED invoices the caller emits
  the settled-invoices notice (if any) and proceeds straight to the status
  update.

SEE ALSO:
  - decision.go: Resolving the requiresDecision set
  - negotiation/workflow.go: The consumer gating the status transition
*/
package invoicing

import "fmt"

// =============================================================================
// PLAN
// =============================================================================

// Plan is the result of classifying a negotiation's invoices against a
// cancellation/decline action. Pure data; nothing has been mutated.
type Plan struct {
	AutoCancel       []Invoice // PROVISIONED - cancelled without asking
	RequiresDecision []Invoice // INVOICED or unknown - operator must decide
	LeaveAsIs        []Invoice // RECEIVED - settled, untouchable
}

// Blocked reports whether the plan prevents the status transition from
// committing until operator decisions are supplied.
func (p Plan) Blocked() bool {
	return len(p.RequiresDecision) > 0
}

// Empty reports whether there is nothing to reconcile at all.
func (p Plan) Empty() bool {
	return len(p.AutoCancel) == 0 && len(p.RequiresDecision) == 0 && len(p.LeaveAsIs) == 0
}

// Notices returns the informational messages the caller must surface.
// Settled invoices never block, but the operator must be told they exist.
func (p Plan) Notices() []string {
	var notices []string
	if n := len(p.LeaveAsIs); n > 0 {
		notices = append(notices, fmt.Sprintf(
			"%d received invoice(s) remain settled and will not be changed", n))
	}
	if n := len(p.AutoCancel); n > 0 {
		notices = append(notices, fmt.Sprintf(
			"%d provisioned invoice(s) will be cancelled automatically", n))
	}
	return notices
}

// AutoCancelIDs returns the IDs of the invoices cancelled without a decision.
func (p Plan) AutoCancelIDs() []string {
	ids := make([]string, 0, len(p.AutoCancel))
	for _, inv := range p.AutoCancel {
		ids = append(ids, inv.ID)
	}
	return ids
}

// =============================================================================
// POLICY
// =============================================================================

// Reconcile classifies invoices by status into a Plan. Evaluated per invoice;
// input order is preserved within each class.
func Reconcile(invoices []Invoice) Plan {
	var plan Plan
	for _, inv := range invoices {
		switch inv.Status {
		case StatusProvisioned:
			plan.AutoCancel = append(plan.AutoCancel, inv)
		case StatusInvoiced:
			plan.RequiresDecision = append(plan.RequiresDecision, inv)
		case StatusReceived:
			plan.LeaveAsIs = append(plan.LeaveAsIs, inv)
		case StatusCancelled:
			// Already void; nothing to plan.
		default:
			// Unknown status: never guess with money, ask the operator.
			plan.RequiresDecision = append(plan.RequiresDecision, inv)
		}
	}
	return plan
}
