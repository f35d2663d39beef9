package negotiation

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/dealflow-engine/billing"
)

// =============================================================================
// MAINTENANCE PROPOSAL SUGGESTION
// =============================================================================

var maintenanceRate = decimal.NewFromFloat(0.10)

// MaintenanceSuggestion is the advisory prompt offered after closing a
// negotiation of an eligible service type. Advisory only - nothing is
// created unless the user accepts.
type MaintenanceSuggestion struct {
	Value     decimal.Decimal // 10% of the closed proposal's value
	StartDate time.Time       // completion date, or today
	DueDate   time.Time       // start + 12 months
}

// SuggestMaintenance computes the follow-up maintenance proposal for a
// closed negotiation. Returns nil when the service type is not eligible.
func SuggestMaintenance(n *Negotiation, today time.Time) *MaintenanceSuggestion {
	if !n.ServiceType.MaintenanceEligible() {
		return nil
	}

	start := today
	if n.CompletionDate != nil {
		start = *n.CompletionDate
	}

	return &MaintenanceSuggestion{
		Value:     n.ProposedValue.Mul(maintenanceRate).Round(2),
		StartDate: start,
		DueDate:   start.AddDate(1, 0, 0),
	}
}

// NewMaintenanceNegotiation materializes an accepted suggestion as a DRAFT
// maintenance proposal linked back to the source negotiation.
func NewMaintenanceNegotiation(source *Negotiation, s *MaintenanceSuggestion, id, code string) *Negotiation {
	now := time.Now().UTC()
	return &Negotiation{
		ID:               id,
		Code:             code,
		CompanyID:        source.CompanyID,
		ClientID:         source.ClientID,
		ServiceType:      ServiceMaintenance,
		ContractType:     billing.ContractFixedRecurring,
		BillingForm:      billing.BillingMonthly,
		ProposedValue:    s.Value,
		BillingStartDate: s.StartDate,
		DueDate:          &s.DueDate,
		InstallmentCount: 12,
		Status:           StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
