/*
workflow.go - Multi-step closure and termination flows

PURPOSE:
  UI confirmation dialogs become explicit workflow objects here. Each flow
  holds a pending-transition token plus the data collected so far, is
  resumable and abortable at every step, and mutates nothing until its
  final confirmed step. The negotiation's status only changes inside
  Confirm/Commit.

CLOSURE FLOW:
  Begin    -> classify the transition, propose the installment schedule
  Confirm  -> commit status CLOSED, persist the confirmed schedule,
              provision invoices, return project/maintenance prompts
  (Abort   -> drop the flow; nothing was written)

TERMINATION FLOW (cancel/decline):
  Begin    -> classify, reconcile existing invoices into a plan
  Commit   -> resolve plan with the operator's decisions, apply the
              resolution through the invoice store, THEN commit the status
  The invoice reconciliation is committed before the status transition, so
  a negotiation can never appear CANCELLED while stale PROVISIONED
  invoices remain.

SEE ALSO:
  - machine.go: Outcome classification and token commit
  - invoicing: Plan/Resolution types applied here
*/
package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/dealflow-engine/billing"
	"github.com/warp/dealflow-engine/invoicing"
)

// =============================================================================
// CLOSURE FLOW
// =============================================================================

// ClosureFlow carries a close request from classification to commit.
type ClosureFlow struct {
	ID          string
	Negotiation *Negotiation
	Pending     *PendingTransition

	// Proposed is the schedule derived from the negotiation's terms,
	// shown to the user for confirmation. Empty for hourly contracts.
	Proposed []billing.Installment

	// Notices collected from the machine (e.g. the hourly-billing notice).
	Notices []string

	// hourly contracts skip the confirmation step entirely.
	immediate bool
}

// ClosureResult is returned after the closure commits.
type ClosureResult struct {
	Negotiation *Negotiation
	Invoices    []invoicing.Invoice

	// OfferProject: the caller should offer project creation next.
	OfferProject bool

	// Maintenance is the advisory follow-up proposal prompt, nil when the
	// service type is not eligible.
	Maintenance *MaintenanceSuggestion

	Notices []string
}

// BeginClosure validates the close request and derives the proposed
// schedule. Nothing is persisted; aborting after Begin is free.
func BeginClosure(n *Negotiation) (*ClosureFlow, error) {
	if errs := n.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}

	out := RequestTransition(n, StatusClosed)
	switch out.Kind {
	case OutcomeRejected:
		cause := ErrIllegalTransition
		if out.Reason == "terminal state" {
			cause = ErrTerminalState
		}
		return nil, rejected(n.Status, StatusClosed, cause, out.Reason)

	case OutcomeApply:
		// Hourly: no schedule to confirm.
		return &ClosureFlow{
			ID:          uuid.NewString(),
			Negotiation: n,
			Notices:     out.Notices,
			immediate:   true,
		}, nil

	default:
		return &ClosureFlow{
			ID:          uuid.NewString(),
			Negotiation: n,
			Pending:     out.Pending,
			Proposed:    billing.ComputeInstallments(n.ScheduleInput()),
			Notices:     out.Notices,
		}, nil
	}
}

// Confirm commits the closure. For non-hourly contracts the confirmed
// schedule (edited or as proposed) becomes the negotiation's installments
// and is provisioned as invoices. This is the flow's final step: only here
// does the status change and anything get persisted.
func (f *ClosureFlow) Confirm(
	ctx context.Context,
	negotiations Store,
	invoices invoicing.Store,
	confirmed []billing.Installment,
) (*ClosureResult, error) {
	n := f.Negotiation

	if f.immediate {
		if err := ApplyTransition(n, StatusClosed); err != nil {
			return nil, err
		}
	} else {
		if confirmed == nil {
			confirmed = f.Proposed
		}
		if len(confirmed) == 0 {
			return nil, rejected(n.Status, StatusClosed, ErrScheduleNotConfirmed,
				"installment schedule not confirmed")
		}
		if err := CommitPending(n, f.Pending, CommitInput{ScheduleConfirmed: true}); err != nil {
			return nil, err
		}
		n.Installments = confirmed
	}

	if err := negotiations.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("persist negotiation: %w", err)
	}

	provisioned, err := provisionInvoices(ctx, invoices, n)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	return &ClosureResult{
		Negotiation:  n,
		Invoices:     provisioned,
		OfferProject: true,
		Maintenance:  SuggestMaintenance(n, today),
		Notices:      f.Notices,
	}, nil
}

// provisionInvoices turns the confirmed schedule into PROVISIONED invoices,
// numbered with the installment ordinal suffix.
func provisionInvoices(ctx context.Context, store invoicing.Store, n *Negotiation) ([]invoicing.Invoice, error) {
	if len(n.Installments) == 0 {
		return nil, nil
	}

	base := n.Code
	if base == "" {
		base = n.ID
	}

	batch := make([]invoicing.Invoice, 0, len(n.Installments))
	for _, inst := range n.Installments {
		batch = append(batch, invoicing.Invoice{
			ID:            uuid.NewString(),
			NegotiationID: n.ID,
			Number:        invoicing.NumberFor(base, inst.Number, len(n.Installments)),
			Installment:   inst.Number,
			Value:         inst.Value,
			EmissionDate:  inst.BillingDate,
			DueDate:       inst.DueDate,
			Status:        invoicing.StatusProvisioned,
		})
	}

	if err := store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("provision invoices: %w", err)
	}
	return batch, nil
}

// =============================================================================
// TERMINATION FLOW
// =============================================================================

// TerminationFlow carries a cancel/decline request from classification to
// commit, including the invoice reconciliation plan when the negotiation
// was already CLOSED.
type TerminationFlow struct {
	ID          string
	Negotiation *Negotiation
	Target      Status
	Pending     *PendingTransition

	// Plan is the reconciliation plan for the negotiation's invoices.
	// Empty when the negotiation never closed.
	Plan invoicing.Plan
}

// TerminationResult is returned after the termination commits.
type TerminationResult struct {
	Negotiation *Negotiation
	Cancelled   []string // invoice IDs voided by the resolution
	Warnings    []string // manual out-of-band steps the operator owes
	Notices     []string
}

// BeginTermination validates the cancel/decline request and, for CLOSED
// negotiations, reconciles the linked invoices into a plan. Read-only.
func BeginTermination(
	ctx context.Context,
	invoices invoicing.Store,
	n *Negotiation,
	target Status,
) (*TerminationFlow, error) {
	if target != StatusCancelled && target != StatusDeclined {
		return nil, rejected(n.Status, target, ErrIllegalTransition,
			fmt.Sprintf("%s is not a termination state", target))
	}

	out := RequestTransition(n, target)
	if out.Kind == OutcomeRejected {
		cause := ErrIllegalTransition
		if out.Reason == "terminal state" {
			cause = ErrTerminalState
		}
		return nil, rejected(n.Status, target, cause, out.Reason)
	}

	flow := &TerminationFlow{
		ID:          uuid.NewString(),
		Negotiation: n,
		Target:      target,
		Pending:     out.Pending,
	}

	if out.RequiresReconciliation {
		linked, err := invoices.ListByNegotiation(ctx, n.ID)
		if err != nil {
			return nil, fmt.Errorf("list invoices: %w", err)
		}
		flow.Plan = invoicing.Reconcile(linked)
	}

	return flow, nil
}

// Blocked reports whether the flow still needs cancel-or-keep decisions.
func (f *TerminationFlow) Blocked() bool { return f.Plan.Blocked() }

// Commit resolves the plan with the operator's decisions, applies the
// resolution through the invoice store, and only then commits the status
// change. A blocked plan without complete decisions keeps the transition
// pending - nothing is written.
func (f *TerminationFlow) Commit(
	ctx context.Context,
	negotiations Store,
	invoices invoicing.Store,
	reason string,
	decisions []invoicing.Decision,
) (*TerminationResult, error) {
	n := f.Negotiation

	if reason == "" {
		return nil, rejected(n.Status, f.Target, ErrReasonRequired, "a non-empty reason is required")
	}

	resolution, err := f.Plan.Resolve(decisions)
	if err != nil {
		return nil, err
	}

	// Invoice reconciliation commits first (ordering guarantee): provisioned
	// cancellations are independent of the invoiced decisions and apply
	// regardless.
	if len(resolution.CancelIDs) > 0 {
		if err := invoices.BulkUpdateStatus(ctx, resolution.CancelIDs, invoicing.StatusCancelled); err != nil {
			return nil, fmt.Errorf("cancel invoices: %w", err)
		}
	}
	for _, upd := range resolution.DateUpdates {
		if err := invoices.UpdateDates(ctx, upd.InvoiceID, upd.EmissionDate, upd.DueDate); err != nil {
			return nil, fmt.Errorf("update invoice dates: %w", err)
		}
	}

	if err := CommitPending(n, f.Pending, CommitInput{Reason: reason}); err != nil {
		return nil, err
	}
	if err := negotiations.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("persist negotiation: %w", err)
	}

	return &TerminationResult{
		Negotiation: n,
		Cancelled:   resolution.CancelIDs,
		Warnings:    resolution.Warnings,
		Notices:     resolution.Notices,
	}, nil
}
