package negotiation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/dealflow-engine/billing"
	"github.com/warp/dealflow-engine/negotiation"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newNegotiation(status negotiation.Status) *negotiation.Negotiation {
	return &negotiation.Negotiation{
		ID:               "neg-1",
		Code:             "2024-007",
		CompanyID:        "co-1",
		ClientID:         "client-1",
		ServiceType:      negotiation.ServiceDevelopment,
		ContractType:     billing.ContractProject,
		BillingForm:      billing.BillingInstallments,
		ProposedValue:    decimal.NewFromInt(12000),
		BillingStartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		DueOffsetDays:    30,
		InstallmentCount: 12,
		Status:           status,
	}
}

func hourlyNegotiation(status negotiation.Status) *negotiation.Negotiation {
	n := newNegotiation(status)
	n.ContractType = billing.ContractHourly
	n.BillingForm = ""
	n.ProposedValue = decimal.Zero
	n.HourlyRate = decimal.NewFromInt(150)
	n.EstimatedHours = decimal.NewFromInt(80)
	return n
}

// =============================================================================
// TRANSITION MATRIX
// =============================================================================

func TestRequestTransition_Matrix(t *testing.T) {
	// Every (current, target) pair yields exactly one of apply /
	// requires_input / rejected, per the lifecycle contract.

	type expectation struct {
		current negotiation.Status
		target  negotiation.Status
		kind    negotiation.OutcomeKind
		input   negotiation.InputKind
	}

	cases := []expectation{
		// Forward progression applies immediately.
		{negotiation.StatusDraft, negotiation.StatusSent, negotiation.OutcomeApply, ""},
		{negotiation.StatusSent, negotiation.StatusResent, negotiation.OutcomeApply, ""},
		{negotiation.StatusResent, negotiation.StatusRevised, negotiation.OutcomeApply, ""},

		// Skipping ahead is illegal.
		{negotiation.StatusDraft, negotiation.StatusResent, negotiation.OutcomeRejected, ""},
		{negotiation.StatusDraft, negotiation.StatusRevised, negotiation.OutcomeRejected, ""},
		{negotiation.StatusSent, negotiation.StatusDraft, negotiation.OutcomeRejected, ""},

		// Closing requires schedule confirmation from any active state.
		{negotiation.StatusDraft, negotiation.StatusClosed, negotiation.OutcomeRequiresInput, negotiation.InputConfirmClosure},
		{negotiation.StatusSent, negotiation.StatusClosed, negotiation.OutcomeRequiresInput, negotiation.InputConfirmClosure},
		{negotiation.StatusResent, negotiation.StatusClosed, negotiation.OutcomeRequiresInput, negotiation.InputConfirmClosure},
		{negotiation.StatusRevised, negotiation.StatusClosed, negotiation.OutcomeRequiresInput, negotiation.InputConfirmClosure},
		{negotiation.StatusClosed, negotiation.StatusClosed, negotiation.OutcomeRejected, ""},

		// Cancel/decline require a reason from every non-terminal state.
		{negotiation.StatusDraft, negotiation.StatusCancelled, negotiation.OutcomeRequiresInput, negotiation.InputReasonRequired},
		{negotiation.StatusSent, negotiation.StatusDeclined, negotiation.OutcomeRequiresInput, negotiation.InputReasonRequired},
		{negotiation.StatusRevised, negotiation.StatusCancelled, negotiation.OutcomeRequiresInput, negotiation.InputReasonRequired},
		{negotiation.StatusClosed, negotiation.StatusCancelled, negotiation.OutcomeRequiresInput, negotiation.InputReasonRequired},
		{negotiation.StatusClosed, negotiation.StatusDeclined, negotiation.OutcomeRequiresInput, negotiation.InputReasonRequired},

		// Terminal states reject everything.
		{negotiation.StatusCancelled, negotiation.StatusDraft, negotiation.OutcomeRejected, ""},
		{negotiation.StatusCancelled, negotiation.StatusDeclined, negotiation.OutcomeRejected, ""},
		{negotiation.StatusDeclined, negotiation.StatusClosed, negotiation.OutcomeRejected, ""},
		{negotiation.StatusDeclined, negotiation.StatusCancelled, negotiation.OutcomeRejected, ""},
	}

	for _, tc := range cases {
		n := newNegotiation(tc.current)
		out := negotiation.RequestTransition(n, tc.target)

		if out.Kind != tc.kind {
			t.Errorf("%s -> %s: expected %s, got %s (%s)", tc.current, tc.target, tc.kind, out.Kind, out.Reason)
			continue
		}
		if tc.kind == negotiation.OutcomeRequiresInput && out.Input != tc.input {
			t.Errorf("%s -> %s: expected input %s, got %s", tc.current, tc.target, tc.input, out.Input)
		}
		if tc.kind == negotiation.OutcomeRejected && out.Reason == "" {
			t.Errorf("%s -> %s: rejection must carry a human-readable reason", tc.current, tc.target)
		}
		if n.Status != tc.current {
			t.Errorf("%s -> %s: RequestTransition must not mutate the negotiation", tc.current, tc.target)
		}
	}
}

func TestRequestTransition_Deterministic(t *testing.T) {
	// GIVEN: Identical inputs
	// WHEN: Requesting the same transition twice
	// THEN: Identical outcomes, token included (no hidden state)

	n := newNegotiation(negotiation.StatusSent)
	first := negotiation.RequestTransition(n, negotiation.StatusClosed)
	second := negotiation.RequestTransition(n, negotiation.StatusClosed)

	if first.Kind != second.Kind || first.Input != second.Input {
		t.Errorf("outcomes differ: %+v vs %+v", first, second)
	}
	if first.Pending == nil || second.Pending == nil || first.Pending.Token != second.Pending.Token {
		t.Errorf("pending tokens differ: %+v vs %+v", first.Pending, second.Pending)
	}
}

func TestRequestTransition_TerminalReasonIsTerminalState(t *testing.T) {
	out := negotiation.RequestTransition(newNegotiation(negotiation.StatusCancelled), negotiation.StatusCancelled)
	if out.Kind != negotiation.OutcomeRejected || out.Reason != "terminal state" {
		t.Errorf("expected rejected(terminal state), got %+v", out)
	}
}

// =============================================================================
// HOURLY CLOSURE
// =============================================================================

func TestRequestTransition_HourlyClosesImmediately(t *testing.T) {
	// GIVEN: An hourly contract in SENT
	// WHEN: Requesting CLOSED
	// THEN: Applies immediately with the time-entry billing notice

	out := negotiation.RequestTransition(hourlyNegotiation(negotiation.StatusSent), negotiation.StatusClosed)
	if out.Kind != negotiation.OutcomeApply {
		t.Fatalf("expected apply for hourly closure, got %s", out.Kind)
	}
	if len(out.Notices) == 0 {
		t.Error("expected the time-entry billing notice")
	}

	n := hourlyNegotiation(negotiation.StatusSent)
	if err := negotiation.ApplyTransition(n, negotiation.StatusClosed); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if n.Status != negotiation.StatusClosed {
		t.Errorf("expected CLOSED, got %s", n.Status)
	}
	if n.CompletionDate == nil {
		t.Error("closing should stamp the completion date")
	}
}

// =============================================================================
// COMMIT / TOKEN SEMANTICS
// =============================================================================

func TestCommitPending_ReasonRequired(t *testing.T) {
	n := newNegotiation(negotiation.StatusSent)
	out := negotiation.RequestTransition(n, negotiation.StatusCancelled)

	if err := negotiation.CommitPending(n, out.Pending, negotiation.CommitInput{}); err == nil {
		t.Fatal("expected ErrReasonRequired for empty reason")
	}
	if n.Status != negotiation.StatusSent {
		t.Errorf("failed commit must not change status, got %s", n.Status)
	}

	if err := negotiation.CommitPending(n, out.Pending, negotiation.CommitInput{Reason: "client went silent"}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if n.Status != negotiation.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", n.Status)
	}
	if n.Reason != "client went silent" {
		t.Errorf("reason not recorded: %q", n.Reason)
	}
}

func TestCommitPending_StaleTokenRejected(t *testing.T) {
	// GIVEN: A token minted while the negotiation was DRAFT
	// WHEN: The negotiation has since moved to SENT
	// THEN: The stale token cannot commit

	n := newNegotiation(negotiation.StatusDraft)
	out := negotiation.RequestTransition(n, negotiation.StatusCancelled)

	if err := negotiation.ApplyTransition(n, negotiation.StatusSent); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	err := negotiation.CommitPending(n, out.Pending, negotiation.CommitInput{Reason: "nope"})
	if err == nil {
		t.Fatal("expected ErrTokenMismatch for stale token")
	}
	if n.Status != negotiation.StatusSent {
		t.Errorf("stale commit must not change status, got %s", n.Status)
	}
}

func TestCommitPending_ClosureNeedsConfirmedSchedule(t *testing.T) {
	n := newNegotiation(negotiation.StatusRevised)
	out := negotiation.RequestTransition(n, negotiation.StatusClosed)

	if err := negotiation.CommitPending(n, out.Pending, negotiation.CommitInput{}); err == nil {
		t.Fatal("expected ErrScheduleNotConfirmed")
	}
	if err := negotiation.CommitPending(n, out.Pending, negotiation.CommitInput{ScheduleConfirmed: true}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if n.Status != negotiation.StatusClosed {
		t.Errorf("expected CLOSED, got %s", n.Status)
	}
}

// =============================================================================
// VALIDATION AND MAINTENANCE SUGGESTION
// =============================================================================

func TestValidate_RequiredFieldsPerContract(t *testing.T) {
	n := newNegotiation(negotiation.StatusDraft)
	n.ProposedValue = decimal.Zero
	errs := n.Validate()
	if len(errs) == 0 {
		t.Fatal("expected a labeled field error for missing proposed value")
	}
	if errs[0].Field != "proposedValue" {
		t.Errorf("expected proposedValue error, got %s", errs[0].Field)
	}

	h := hourlyNegotiation(negotiation.StatusDraft)
	h.HourlyRate = decimal.Zero
	errs = h.Validate()
	if len(errs) == 0 || errs[0].Field != "hourlyRate" {
		t.Errorf("expected hourlyRate error, got %v", errs)
	}
}

func TestSuggestMaintenance(t *testing.T) {
	// GIVEN: A closed development negotiation worth 12000
	// WHEN: Computing the maintenance suggestion
	// THEN: 10% value, start = completion date, due = start + 12 months

	n := newNegotiation(negotiation.StatusClosed)
	completed := time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC)
	n.CompletionDate = &completed

	s := negotiation.SuggestMaintenance(n, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))
	if s == nil {
		t.Fatal("development service type is maintenance-eligible")
	}
	if !s.Value.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected 1200 (10%%), got %v", s.Value)
	}
	if !s.StartDate.Equal(completed) {
		t.Errorf("expected start at completion date, got %v", s.StartDate)
	}
	if !s.DueDate.Equal(completed.AddDate(1, 0, 0)) {
		t.Errorf("expected due 12 months after start, got %v", s.DueDate)
	}

	n.ServiceType = negotiation.ServiceConsulting
	if negotiation.SuggestMaintenance(n, completed) != nil {
		t.Error("consulting is not maintenance-eligible")
	}
}
