package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/dealflow-engine/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// TWELVE-MONTH SCENARIO
// =============================================================================

func TestComputeInstallments_TwelveMonthlyInstallments(t *testing.T) {
	// GIVEN: 12000 total over 12 installments starting 2024-01-01, due +30 days
	// WHEN: Computing the schedule
	// THEN: Installment 1 = 1000.00 billed 2024-01-01 due 2024-01-31,
	//       installment 12 billed 2024-12-01

	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType:  billing.ContractProject,
		BillingForm:   billing.BillingInstallments,
		TotalValue:    money("12000"),
		StartDate:     date(2024, time.January, 1),
		DueOffsetDays: 30,
		Count:         12,
	})

	if len(schedule) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(schedule))
	}

	first := schedule[0]
	if !first.Value.Equal(money("1000")) {
		t.Errorf("installment 1 value: expected 1000.00, got %v", first.Value)
	}
	if !first.BillingDate.Equal(date(2024, time.January, 1)) {
		t.Errorf("installment 1 billing date: expected 2024-01-01, got %v", first.BillingDate)
	}
	if !first.DueDate.Equal(date(2024, time.January, 31)) {
		t.Errorf("installment 1 due date: expected 2024-01-31, got %v", first.DueDate)
	}

	last := schedule[11]
	if last.Number != 12 {
		t.Errorf("last installment number: expected 12, got %d", last.Number)
	}
	if !last.BillingDate.Equal(date(2024, time.December, 1)) {
		t.Errorf("installment 12 billing date: expected 2024-12-01, got %v", last.BillingDate)
	}
}

// =============================================================================
// ONE-SHOT RULE
// =============================================================================

func TestComputeInstallments_OneShotIgnoresCount(t *testing.T) {
	// GIVEN: ONE_SHOT billing with a (stale) count of 6
	// WHEN: Computing the schedule
	// THEN: Exactly one installment for the full value

	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType:  billing.ContractFixedRecurring,
		BillingForm:   billing.BillingOneShot,
		TotalValue:    money("5000"),
		StartDate:     date(2024, time.March, 15),
		DueOffsetDays: 10,
		Count:         6,
	})

	if len(schedule) != 1 {
		t.Fatalf("expected 1 installment, got %d", len(schedule))
	}
	if !schedule[0].Value.Equal(money("5000")) {
		t.Errorf("expected full value 5000, got %v", schedule[0].Value)
	}
	if !schedule[0].DueDate.Equal(date(2024, time.March, 25)) {
		t.Errorf("expected due 2024-03-25, got %v", schedule[0].DueDate)
	}
}

func TestComputeInstallments_ExplicitDueDateOverridesOffset(t *testing.T) {
	// GIVEN: One-shot billing with an explicit due date anchor
	// WHEN: Computing the schedule
	// THEN: The due date is the anchor, not billing date + offset

	due := date(2024, time.May, 20)
	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType:  billing.ContractProject,
		BillingForm:   billing.BillingOneShot,
		TotalValue:    money("800"),
		StartDate:     date(2024, time.May, 1),
		DueOffsetDays: 5,
		DueDateAnchor: &due,
	})

	if !schedule[0].DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, schedule[0].DueDate)
	}
}

func TestComputeInstallments_DueAnchorAdvancesMonthly(t *testing.T) {
	// GIVEN: 3 installments with an explicit due date anchor 2024-02-10
	// WHEN: Computing the schedule
	// THEN: Due dates are anchor, anchor+1m, anchor+2m

	anchor := date(2024, time.February, 10)
	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType:  billing.ContractProject,
		BillingForm:   billing.BillingMonthly,
		TotalValue:    money("300"),
		StartDate:     date(2024, time.January, 1),
		DueDateAnchor: &anchor,
		Count:         3,
	})

	want := []time.Time{
		date(2024, time.February, 10),
		date(2024, time.March, 10),
		date(2024, time.April, 10),
	}
	for i, inst := range schedule {
		if !inst.DueDate.Equal(want[i]) {
			t.Errorf("installment %d due date: expected %v, got %v", i+1, want[i], inst.DueDate)
		}
	}
}

// =============================================================================
// FALLBACK AND HOURLY RULES
// =============================================================================

func TestComputeInstallments_CountOfOneFallsBackToOneShot(t *testing.T) {
	// GIVEN: INSTALLMENTS billing form but count = 1
	// WHEN: Computing the schedule
	// THEN: Single installment with the full value (one-shot rule)

	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType: billing.ContractProject,
		BillingForm:  billing.BillingInstallments,
		TotalValue:   money("2400"),
		StartDate:    date(2024, time.June, 1),
		Count:        1,
	})

	if len(schedule) != 1 {
		t.Fatalf("expected 1 installment, got %d", len(schedule))
	}
	if !schedule[0].Value.Equal(money("2400")) {
		t.Errorf("expected 2400, got %v", schedule[0].Value)
	}
}

func TestComputeInstallments_HourlyProducesNoSchedule(t *testing.T) {
	// GIVEN: An hourly contract
	// WHEN: Computing the schedule
	// THEN: Empty - billing is driven by approved time entries

	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType: billing.ContractHourly,
		BillingForm:  billing.BillingMonthly,
		TotalValue:   money("9999"),
		StartDate:    date(2024, time.January, 1),
		Count:        12,
	})

	if len(schedule) != 0 {
		t.Errorf("expected empty schedule for hourly contract, got %d installments", len(schedule))
	}
}

func TestComputeInstallments_MissingTotalYieldsZeroSchedule(t *testing.T) {
	// GIVEN: No total value supplied
	// WHEN: Computing 3 installments
	// THEN: 3 zero-value installments, not an error

	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType: billing.ContractProject,
		BillingForm:  billing.BillingInstallments,
		StartDate:    date(2024, time.January, 1),
		Count:        3,
	})

	if len(schedule) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(schedule))
	}
	for _, inst := range schedule {
		if !inst.Value.IsZero() {
			t.Errorf("installment %d: expected zero value, got %v", inst.Number, inst.Value)
		}
	}
}

// =============================================================================
// ROUNDING AND SUM PROPERTIES
// =============================================================================

func TestComputeInstallments_SumWithinRoundingTolerance(t *testing.T) {
	// GIVEN: Totals that do not divide evenly
	// WHEN: Computing schedules of various counts
	// THEN: length == count and the sum stays within one cent per installment
	//       of the total (drift is not redistributed by design)

	cases := []struct {
		total string
		count int
	}{
		{"100", 3},
		{"1000", 7},
		{"999.99", 12},
		{"0.05", 4},
		{"50000", 24},
	}

	for _, tc := range cases {
		schedule := billing.ComputeInstallments(billing.ScheduleInput{
			ContractType: billing.ContractProject,
			BillingForm:  billing.BillingInstallments,
			TotalValue:   money(tc.total),
			StartDate:    date(2024, time.January, 1),
			Count:        tc.count,
		})

		if len(schedule) != tc.count {
			t.Errorf("%s/%d: expected %d installments, got %d", tc.total, tc.count, tc.count, len(schedule))
			continue
		}

		sum := billing.ScheduleTotal(schedule)
		tolerance := money("0.01").Mul(decimal.NewFromInt(int64(tc.count)))
		drift := sum.Sub(money(tc.total)).Abs()
		if drift.GreaterThan(tolerance) {
			t.Errorf("%s/%d: drift %v exceeds tolerance %v", tc.total, tc.count, drift, tolerance)
		}
	}
}

func TestComputeInstallments_MonthOverflowIsNotClamped(t *testing.T) {
	// GIVEN: A schedule starting January 31
	// WHEN: Computing the February installment
	// THEN: AddDate normalization applies (Jan 31 + 1 month = Mar 2 in 2024);
	//       the engine deliberately does not clamp to month end

	schedule := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType: billing.ContractProject,
		BillingForm:  billing.BillingInstallments,
		TotalValue:   money("200"),
		StartDate:    date(2024, time.January, 31),
		Count:        2,
	})

	if !schedule[1].BillingDate.Equal(date(2024, time.March, 2)) {
		t.Errorf("expected 2024-03-02 (normalized overflow), got %v", schedule[1].BillingDate)
	}
}
