/*
decision.go - Operator decisions resolving a blocked reconciliation plan

PURPOSE:
  A plan with INVOICED invoices cannot be applied until the operator picks
  cancel-or-keep for each one. This file validates those decisions and
  flattens plan + decisions into a Resolution: the exact store operations
  the caller must perform, in order, plus the warnings to surface.

CANCEL vs KEEP:
  Cancel: the invoice is voided here, but the external fiscal document must
          be cancelled manually out-of-band - the system only warns.
  Keep:   the invoice survives the negotiation's cancellation; the operator
          must supply adjusted emission and due dates.

SEE ALSO:
  - reconcile.go: Produces the plan being resolved
*/
package invoicing

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDecisionMissing is returned while any INVOICED invoice still lacks
	// a cancel-or-keep decision.
	ErrDecisionMissing = errors.New("reconciliation decision missing")

	// ErrKeepDatesRequired is returned when a keep decision lacks the
	// adjusted emission/due dates.
	ErrKeepDatesRequired = errors.New("keep decision requires adjusted dates")

	// ErrUnknownInvoice is returned for a decision about an invoice that is
	// not in the plan's decision set.
	ErrUnknownInvoice = errors.New("decision references unknown invoice")
)

// =============================================================================
// DECISION
// =============================================================================

type DecisionKind string

const (
	DecisionCancel DecisionKind = "cancel"
	DecisionKeep   DecisionKind = "keep"
)

// Decision is the operator's choice for one INVOICED invoice.
type Decision struct {
	InvoiceID string
	Kind      DecisionKind

	// Keep decisions must carry the adjusted dates.
	EmissionDate time.Time
	DueDate      time.Time
}

// =============================================================================
// RESOLUTION - Store operations derived from plan + decisions
// =============================================================================

// DateUpdate adjusts one kept invoice's emission/due dates.
type DateUpdate struct {
	InvoiceID    string
	EmissionDate time.Time
	DueDate      time.Time
}

// Resolution is the flattened, ordered outcome of a reconciliation:
// cancellations first (provisioned, then decided), then date updates.
// The caller applies it through the invoice store, then commits the
// negotiation's status change.
type Resolution struct {
	CancelIDs   []string
	DateUpdates []DateUpdate
	Warnings    []string
	Notices     []string
}

// Resolve validates the operator's decisions against the plan and produces
// the resolution. Every invoice in RequiresDecision must have exactly one
// decision; extra or unknown decisions are rejected.
func (p Plan) Resolve(decisions []Decision) (*Resolution, error) {
	pending := make(map[string]Invoice, len(p.RequiresDecision))
	for _, inv := range p.RequiresDecision {
		pending[inv.ID] = inv
	}

	res := &Resolution{
		CancelIDs: p.AutoCancelIDs(),
		Notices:   p.Notices(),
	}

	for _, d := range decisions {
		inv, ok := pending[d.InvoiceID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInvoice, d.InvoiceID)
		}
		delete(pending, d.InvoiceID)

		switch d.Kind {
		case DecisionCancel:
			res.CancelIDs = append(res.CancelIDs, d.InvoiceID)
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"invoice %s: cancel the emitted fiscal document manually", inv.Number))
		case DecisionKeep:
			if d.EmissionDate.IsZero() || d.DueDate.IsZero() {
				return nil, fmt.Errorf("%w: invoice %s", ErrKeepDatesRequired, inv.Number)
			}
			res.DateUpdates = append(res.DateUpdates, DateUpdate{
				InvoiceID:    d.InvoiceID,
				EmissionDate: d.EmissionDate,
				DueDate:      d.DueDate,
			})
		default:
			return nil, fmt.Errorf("%w: invoice %s", ErrDecisionMissing, inv.Number)
		}
	}

	if len(pending) > 0 {
		for id := range pending {
			return nil, fmt.Errorf("%w: invoice %s", ErrDecisionMissing, pending[id].Number)
		}
	}

	return res, nil
}
