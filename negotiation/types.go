/*
Package negotiation implements the commercial proposal lifecycle.

PURPOSE:
  A negotiation is a commercial proposal that moves through a fixed set of
  states (DRAFT -> SENT -> RESENT -> REVISED -> CLOSED, with CANCELLED and
  DECLINED reachable from every non-terminal state). This package owns the
  state machine governing those transitions, the pending-transition tokens
  that carry decisions across UI steps, and the closure/termination
  workflows orchestrating installment confirmation and invoice
  reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Negotiation: the proposal entity with contract and billing terms
  - Status: the lifecycle enum; CANCELLED/DECLINED are terminal
  - ServiceType: drives the maintenance-proposal suggestion on closure
  - Validation: labeled field errors for the active contract/billing combo

DESIGN PRINCIPLES:
  1. Explicit identity: every entry point takes an AuthContext-scoped
     snapshot; nothing is read from ambient state
  2. No hidden state: the machine is pure, tokens carry pending intent
  3. Never hard-deleted: cancellation and decline are states, not deletion

SEE ALSO:
  - machine.go: Transition legality and outcomes
  - workflow.go: Multi-step closure/termination flows
  - billing: Installment schedule derivation
*/
package negotiation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/dealflow-engine/billing"
)

// =============================================================================
// STATUS - Lifecycle states
// =============================================================================

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusResent    Status = "RESENT"
	StatusRevised   Status = "REVISED"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
	StatusDeclined  Status = "DECLINED"
)

// Terminal reports whether no transition may ever leave this state.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusDeclined
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusResent, StatusRevised,
		StatusClosed, StatusCancelled, StatusDeclined:
		return true
	}
	return false
}

// =============================================================================
// SERVICE TYPE
// =============================================================================

type ServiceType string

const (
	ServiceDevelopment  ServiceType = "DEVELOPMENT"
	ServiceAutomation   ServiceType = "AUTOMATION"
	ServiceDataAnalysis ServiceType = "DATA_ANALYSIS"
	ServiceConsulting   ServiceType = "CONSULTING"
	ServiceMaintenance  ServiceType = "MAINTENANCE"
)

// MaintenanceEligible reports whether closing a negotiation of this service
// type should prompt for a follow-up maintenance proposal.
func (s ServiceType) MaintenanceEligible() bool {
	switch s {
	case ServiceDevelopment, ServiceAutomation, ServiceDataAnalysis:
		return true
	}
	return false
}

// =============================================================================
// NEGOTIATION
// =============================================================================

// Negotiation is a commercial proposal. Mutated only through state-machine
// transitions; never hard-deleted.
type Negotiation struct {
	ID        string
	Code      string // human reference, base for invoice numbering
	CompanyID string
	ClientID  string

	ServiceType  ServiceType
	ContractType billing.ContractType
	BillingForm  billing.BillingForm

	// Exactly one of ProposedValue / HourlyRate x EstimatedHours determines
	// the total, depending on ContractType.
	ProposedValue  decimal.Decimal
	HourlyRate     decimal.Decimal
	EstimatedHours decimal.Decimal

	BillingStartDate time.Time
	DueOffsetDays    int
	DueDate          *time.Time // explicit due-date anchor, overrides the offset
	InstallmentCount int

	// Installments is the confirmed billing schedule. Persisted as one
	// serialized column and re-expanded on read (billing codec).
	Installments []billing.Installment

	// LinkedMaintenanceID points at the follow-up maintenance proposal
	// created from this one, when any.
	LinkedMaintenanceID string

	Status         Status
	Reason         string // justification recorded on cancel/decline
	CompletionDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalValue resolves the negotiation's contract total per its contract type.
func (n *Negotiation) TotalValue() decimal.Decimal {
	return billing.TotalValue(n.ContractType, n.ProposedValue, n.HourlyRate, n.EstimatedHours)
}

// ScheduleInput builds the installment-calculator input from the
// negotiation's billing terms.
func (n *Negotiation) ScheduleInput() billing.ScheduleInput {
	return billing.ScheduleInput{
		ContractType:  n.ContractType,
		BillingForm:   n.BillingForm,
		TotalValue:    n.TotalValue(),
		StartDate:     n.BillingStartDate,
		DueOffsetDays: n.DueOffsetDays,
		DueDateAnchor: n.DueDate,
		Count:         n.InstallmentCount,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// FieldError is a labeled validation failure on one field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Reason }

// Validate checks the fields required by the active contract/billing
// combination. Currency parsing and date fallbacks are NOT validated here;
// those resolve to defaults instead of failing.
func (n *Negotiation) Validate() []FieldError {
	var errs []FieldError

	if n.ClientID == "" {
		errs = append(errs, FieldError{"clientId", "required"})
	}

	switch n.ContractType {
	case billing.ContractHourly:
		if !n.HourlyRate.IsPositive() {
			errs = append(errs, FieldError{"hourlyRate", "required for hourly contracts"})
		}
	case billing.ContractFixedRecurring, billing.ContractProject:
		if !n.ProposedValue.IsPositive() {
			errs = append(errs, FieldError{"proposedValue", "required for fixed/project contracts"})
		}
	default:
		errs = append(errs, FieldError{"contractType", "unknown contract type"})
	}

	if n.ContractType != billing.ContractHourly {
		switch n.BillingForm {
		case billing.BillingOneShot, billing.BillingInstallments, billing.BillingMonthly:
		default:
			errs = append(errs, FieldError{"billingForm", "unknown billing form"})
		}
		if (n.BillingForm == billing.BillingInstallments || n.BillingForm == billing.BillingMonthly) &&
			n.InstallmentCount < 1 {
			errs = append(errs, FieldError{"installmentCount", "required for installment billing"})
		}
	}

	return errs
}

// =============================================================================
// STORE INTERFACE - implemented by store/sqlite and store/memory
// =============================================================================

type Store interface {
	Get(ctx context.Context, id string) (*Negotiation, error)
	List(ctx context.Context, companyID string) ([]Negotiation, error)
	Put(ctx context.Context, n *Negotiation) error
}
