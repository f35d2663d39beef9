package invoicing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/dealflow-engine/invoicing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func inv(id string, status invoicing.Status) invoicing.Invoice {
	return invoicing.Invoice{
		ID:            id,
		NegotiationID: "neg-1",
		Number:        "2024-007-" + id,
		Value:         decimal.NewFromInt(1000),
		EmissionDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		Status:        status,
	}
}

func ids(invoices []invoicing.Invoice) []string {
	out := make([]string, 0, len(invoices))
	for _, i := range invoices {
		out = append(out, i.ID)
	}
	return out
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestReconcile_ClassifiesByStatus(t *testing.T) {
	// GIVEN: Two PROVISIONED, one INVOICED, one RECEIVED, one CANCELLED
	// WHEN: Reconciling
	// THEN: Each lands in its class; CANCELLED is ignored

	plan := invoicing.Reconcile([]invoicing.Invoice{
		inv("a", invoicing.StatusProvisioned),
		inv("b", invoicing.StatusInvoiced),
		inv("c", invoicing.StatusReceived),
		inv("d", invoicing.StatusProvisioned),
		inv("e", invoicing.StatusCancelled),
	})

	if got := ids(plan.AutoCancel); len(got) != 2 || got[0] != "a" || got[1] != "d" {
		t.Errorf("autoCancel: expected [a d], got %v", got)
	}
	if got := ids(plan.RequiresDecision); len(got) != 1 || got[0] != "b" {
		t.Errorf("requiresDecision: expected [b], got %v", got)
	}
	if got := ids(plan.LeaveAsIs); len(got) != 1 || got[0] != "c" {
		t.Errorf("leaveAsIs: expected [c], got %v", got)
	}
	if !plan.Blocked() {
		t.Error("plan with an INVOICED invoice must block the transition")
	}
}

func TestReconcile_OnlyReceivedInvoices(t *testing.T) {
	// GIVEN: Only RECEIVED invoices
	// WHEN: Reconciling
	// THEN: Nothing to cancel, nothing to decide, a notice is surfaced

	plan := invoicing.Reconcile([]invoicing.Invoice{
		inv("a", invoicing.StatusReceived),
		inv("b", invoicing.StatusReceived),
	})

	if len(plan.AutoCancel) != 0 || len(plan.RequiresDecision) != 0 {
		t.Errorf("expected empty autoCancel and requiresDecision, got %v / %v",
			ids(plan.AutoCancel), ids(plan.RequiresDecision))
	}
	if plan.Blocked() {
		t.Error("settled invoices must not block")
	}
	if len(plan.Notices()) == 0 {
		t.Error("expected an informational notice for settled invoices")
	}
}

func TestReconcile_UnknownStatusRequiresDecision(t *testing.T) {
	// GIVEN: An invoice with a status the policy cannot classify
	// WHEN: Reconciling
	// THEN: Conservative default - it requires a decision

	plan := invoicing.Reconcile([]invoicing.Invoice{inv("x", invoicing.Status("LIMBO"))})

	if got := ids(plan.RequiresDecision); len(got) != 1 || got[0] != "x" {
		t.Errorf("expected unknown status in requiresDecision, got %v", got)
	}
}

func TestReconcile_EmptyInput(t *testing.T) {
	plan := invoicing.Reconcile(nil)
	if !plan.Empty() || plan.Blocked() {
		t.Errorf("empty input should produce an empty, unblocked plan: %+v", plan)
	}
}

// =============================================================================
// DECISION RESOLUTION
// =============================================================================

func TestResolve_ProvisionedCancelledWithoutDecisions(t *testing.T) {
	// GIVEN: Two PROVISIONED and one RECEIVED invoice
	// WHEN: Resolving with no decisions
	// THEN: Both provisioned IDs cancel, nothing pending, notice present

	plan := invoicing.Reconcile([]invoicing.Invoice{
		inv("p1", invoicing.StatusProvisioned),
		inv("p2", invoicing.StatusProvisioned),
		inv("r1", invoicing.StatusReceived),
	})

	res, err := plan.Resolve(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.CancelIDs) != 2 || res.CancelIDs[0] != "p1" || res.CancelIDs[1] != "p2" {
		t.Errorf("expected cancel [p1 p2], got %v", res.CancelIDs)
	}
	if len(res.DateUpdates) != 0 {
		t.Errorf("expected no date updates, got %v", res.DateUpdates)
	}
	if len(res.Notices) == 0 {
		t.Error("expected settled-invoice notice")
	}
}

func TestResolve_InvoicedBlocksUntilDecided(t *testing.T) {
	// GIVEN: A plan with one INVOICED invoice
	// WHEN: Resolving without a decision for it
	// THEN: ErrDecisionMissing; with a cancel decision it resolves and warns

	plan := invoicing.Reconcile([]invoicing.Invoice{inv("i1", invoicing.StatusInvoiced)})

	if _, err := plan.Resolve(nil); err == nil {
		t.Fatal("expected ErrDecisionMissing without a decision")
	}

	res, err := plan.Resolve([]invoicing.Decision{
		{InvoiceID: "i1", Kind: invoicing.DecisionCancel},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.CancelIDs) != 1 || res.CancelIDs[0] != "i1" {
		t.Errorf("expected cancel [i1], got %v", res.CancelIDs)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected one fiscal-document warning, got %v", res.Warnings)
	}
}

func TestResolve_KeepRequiresAdjustedDates(t *testing.T) {
	plan := invoicing.Reconcile([]invoicing.Invoice{inv("i1", invoicing.StatusInvoiced)})

	// Keep without dates is rejected.
	if _, err := plan.Resolve([]invoicing.Decision{
		{InvoiceID: "i1", Kind: invoicing.DecisionKeep},
	}); err == nil {
		t.Fatal("expected ErrKeepDatesRequired")
	}

	emission := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	res, err := plan.Resolve([]invoicing.Decision{
		{InvoiceID: "i1", Kind: invoicing.DecisionKeep, EmissionDate: emission, DueDate: due},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.CancelIDs) != 0 {
		t.Errorf("kept invoice must not be cancelled: %v", res.CancelIDs)
	}
	if len(res.DateUpdates) != 1 || !res.DateUpdates[0].DueDate.Equal(due) {
		t.Errorf("expected one date update to %v, got %v", due, res.DateUpdates)
	}
}

func TestResolve_RejectsUnknownInvoice(t *testing.T) {
	plan := invoicing.Reconcile([]invoicing.Invoice{inv("i1", invoicing.StatusInvoiced)})

	if _, err := plan.Resolve([]invoicing.Decision{
		{InvoiceID: "ghost", Kind: invoicing.DecisionCancel},
	}); err == nil {
		t.Fatal("expected ErrUnknownInvoice")
	}
}

// =============================================================================
// NUMBERING
// =============================================================================

func TestNumbering_OrdinalSuffix(t *testing.T) {
	if got := invoicing.NumberFor("2024-007", 3, 12); got != "2024-007-03/12" {
		t.Errorf("expected 2024-007-03/12, got %q", got)
	}
	if got := invoicing.NumberFor("2024-007", 1, 1); got != "2024-007" {
		t.Errorf("single installment should omit the suffix, got %q", got)
	}
	if got := invoicing.ParseOrdinal("2024-007-03/12"); got != 3 {
		t.Errorf("expected ordinal 3, got %d", got)
	}
	if got := invoicing.ParseOrdinal("2024-007"); got != 0 {
		t.Errorf("expected 0 for unsuffixed number, got %d", got)
	}
}
