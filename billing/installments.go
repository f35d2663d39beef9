/*
installments.go - Installment schedule computation

PURPOSE:
  Turns contract terms (type, billing form, total value, start date, due
  offset, count) into an ordered list of installments. This is the single
  source of truth for billing schedules: the UI shows the result for
  confirmation and an external collaborator persists it as invoices.

RULES:
  ONE_SHOT:       one installment for the full value
  INSTALLMENTS /
  MONTHLY:        value split evenly over count installments, billed one
                  month apart; count <= 1 falls back to the one-shot rule
  HOURLY:         no eager schedule - billing is driven by approved time
                  entries, so the result is empty

DUE DATES:
  Either a day offset from each billing date, or an explicit due-date
  anchor that advances one month per installment.

ROUNDING:
  Each installment is total/count rounded to 2 places. The remainder is
  NOT redistributed to the last installment; last-cent drift is accepted.
  This mirrors the observed production behavior and is asserted by tests.

SEE ALSO:
  - money.go: Currency parsing feeding TotalValue
  - codec.go: Serialized form stored on the negotiation record
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRACT VOCABULARY
// =============================================================================

// ContractType determines how a negotiation's total value is computed and
// whether installments are generated eagerly.
type ContractType string

const (
	ContractFixedRecurring ContractType = "FIXED_RECURRING"
	ContractHourly         ContractType = "HOURLY"
	ContractProject        ContractType = "PROJECT"
)

// BillingForm determines how the total value is split over time.
type BillingForm string

const (
	BillingOneShot      BillingForm = "ONE_SHOT"
	BillingInstallments BillingForm = "INSTALLMENTS"
	BillingMonthly      BillingForm = "MONTHLY"
)

// =============================================================================
// INSTALLMENT - One scheduled payment
// =============================================================================

// Installment is one scheduled payment of a negotiation's billing plan.
// Immutable once an invoice has been generated from it; later edits go
// through the invoice, not the installment.
type Installment struct {
	Number      int             // 1-based, out of the total count
	Value       decimal.Decimal // currency amount
	BillingDate time.Time
	DueDate     time.Time
}

// =============================================================================
// SCHEDULE INPUT
// =============================================================================

// ScheduleInput carries everything the calculator needs. All fields are
// snapshots; the calculator performs no I/O and mutates nothing.
type ScheduleInput struct {
	ContractType ContractType
	BillingForm  BillingForm

	// TotalValue is the contract total for FIXED_RECURRING / PROJECT.
	// For HOURLY contracts it is ignored (no eager schedule).
	TotalValue decimal.Decimal

	// StartDate anchors the schedule. Zero value defaults to today.
	StartDate time.Time

	// BillingDate, when set, overrides StartDate as the one-shot billing date.
	BillingDate *time.Time

	// DueOffsetDays is added to each billing date to produce the due date,
	// unless DueDateAnchor is set.
	DueOffsetDays int

	// DueDateAnchor, when set, is the due date of installment 1; installment
	// i is due at anchor + (i-1) months. Takes precedence over DueOffsetDays.
	DueDateAnchor *time.Time

	// Count is the requested number of installments. Missing or <= 1 while
	// the billing form requests multiple installments falls back to one-shot.
	Count int
}

// TotalValue resolves a negotiation's contract total: the proposed value for
// fixed/project contracts, hourly rate times estimated hours for hourly ones.
func TotalValue(ct ContractType, proposedValue, hourlyRate, estimatedHours decimal.Decimal) decimal.Decimal {
	if ct == ContractHourly {
		return hourlyRate.Mul(estimatedHours)
	}
	return proposedValue
}

// =============================================================================
// CALCULATOR
// =============================================================================

// ComputeInstallments produces the ordered billing schedule for the given
// terms. Pure function: missing start date defaults to today, missing total
// yields a zero-value schedule. HOURLY contracts return an empty schedule
// and the caller must suppress the installment-confirmation step.
func ComputeInstallments(in ScheduleInput) []Installment {
	if in.ContractType == ContractHourly {
		return nil
	}

	start := in.StartDate
	if start.IsZero() {
		now := time.Now()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	multiple := (in.BillingForm == BillingInstallments || in.BillingForm == BillingMonthly) && in.Count > 1
	if !multiple {
		return []Installment{oneShot(in, start)}
	}

	// Even split, rounded per installment. Drift is intentionally not
	// redistributed to the last installment.
	per := in.TotalValue.Div(decimal.NewFromInt(int64(in.Count))).Round(2)

	installments := make([]Installment, 0, in.Count)
	for i := 1; i <= in.Count; i++ {
		billingDate := start.AddDate(0, i-1, 0)

		var dueDate time.Time
		if in.DueDateAnchor != nil {
			dueDate = in.DueDateAnchor.AddDate(0, i-1, 0)
		} else {
			dueDate = billingDate.AddDate(0, 0, in.DueOffsetDays)
		}

		installments = append(installments, Installment{
			Number:      i,
			Value:       per,
			BillingDate: billingDate,
			DueDate:     dueDate,
		})
	}
	return installments
}

func oneShot(in ScheduleInput, start time.Time) Installment {
	billingDate := start
	if in.BillingDate != nil {
		billingDate = *in.BillingDate
	}

	dueDate := billingDate.AddDate(0, 0, in.DueOffsetDays)
	if in.DueDateAnchor != nil {
		dueDate = *in.DueDateAnchor
	}

	return Installment{
		Number:      1,
		Value:       in.TotalValue,
		BillingDate: billingDate,
		DueDate:     dueDate,
	}
}

// ScheduleTotal sums the values of a schedule. Used by callers to display
// the confirmed total and by tests to assert the rounding tolerance.
func ScheduleTotal(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(inst.Value)
	}
	return total
}
