/*
Package invoicing classifies issued receivables and plans their reconciliation.

PURPOSE:
  When a closed negotiation is cancelled or declined, invoices already issued
  for it must be dealt with before the status change commits. This package
  owns the invoice model as seen by the core and the policy that classifies
  each invoice into an action: auto-cancel, ask the operator, or leave alone.

KEY CONCEPTS IN THIS FILE (types.go):
  - Invoice: One issued receivable tied to a negotiation and, by numbering
    convention, to one installment
  - Status: PROVISIONED -> INVOICED -> RECEIVED, plus CANCELLED
  - Ordinal suffix: invoice number "2024-007-03/12" marks installment 3 of 12

DESIGN PRINCIPLES:
  1. Read-only core: this package never mutates invoices - it returns plans
     and resolutions that the caller applies through its store
  2. Conservative defaults: an unclassifiable status always requires a human

SEE ALSO:
  - reconcile.go: Status classification into a Plan
  - decision.go: Operator decisions resolving a blocked plan
*/
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvoiceNotFound is returned by stores for a missing invoice.
var ErrInvoiceNotFound = errors.New("invoice not found")

// =============================================================================
// INVOICE STATUS
// =============================================================================

type Status string

const (
	// StatusProvisioned: scheduled internally, no fiscal document exists yet.
	StatusProvisioned Status = "PROVISIONED"

	// StatusInvoiced: a fiscal document has been emitted externally.
	StatusInvoiced Status = "INVOICED"

	// StatusReceived: payment settled. Never touched by reconciliation.
	StatusReceived Status = "RECEIVED"

	// StatusCancelled: voided internally.
	StatusCancelled Status = "CANCELLED"
)

// =============================================================================
// INVOICE
// =============================================================================

// Invoice is one issued receivable. The core reads invoices to plan
// reconciliation; creation and status changes happen in the store layer
// after a plan is accepted.
type Invoice struct {
	ID            string
	NegotiationID string
	Number        string // human-readable, carries the ordinal suffix
	Installment   int    // 1-based installment ordinal, 0 if unlinked
	Value         decimal.Decimal
	EmissionDate  time.Time
	DueDate       time.Time
	Status        Status
}

// Overdue reports whether an emitted invoice is past due and unpaid.
func (inv Invoice) Overdue(asOf time.Time) bool {
	return inv.Status == StatusInvoiced && inv.DueDate.Before(asOf)
}

// =============================================================================
// NUMBERING CONVENTION
// =============================================================================

// NumberFor builds the human-readable invoice number for one installment of
// a negotiation: "<base>-NN/MM". A single-installment schedule omits the
// suffix.
func NumberFor(base string, installment, count int) string {
	if count <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%02d/%02d", base, installment, count)
}

// ParseOrdinal extracts the installment ordinal from an invoice number.
// Returns 0 when the number carries no suffix.
func ParseOrdinal(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 {
		return 0
	}
	suffix := number[idx+1:]
	parts := strings.SplitN(suffix, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// =============================================================================
// STORE INTERFACE - implemented by store/sqlite and store/memory
// =============================================================================

// Store is the external collaborator surface the core requires for invoices.
type Store interface {
	ListByNegotiation(ctx context.Context, negotiationID string) ([]Invoice, error)
	ListByStatus(ctx context.Context, status Status) ([]Invoice, error)
	CreateBatch(ctx context.Context, invoices []Invoice) error
	BulkUpdateStatus(ctx context.Context, ids []string, status Status) error
	UpdateDates(ctx context.Context, id string, emissionDate, dueDate time.Time) error
}

// =============================================================================
// OVERDUE SWEEP AUDIT
// =============================================================================

// SweepRun records one pass of the overdue-invoice sweep. The sweep only
// reports - invoice statuses are never mutated by it.
type SweepRun struct {
	ID           string
	At           time.Time
	OverdueCount int
	InvoiceIDs   []string
}

// RunStore persists sweep runs for audit and UI display.
type RunStore interface {
	RecordSweepRun(ctx context.Context, run SweepRun) error
	ListSweepRuns(ctx context.Context, limit int) ([]SweepRun, error)
}

// ListOverdue filters emitted, unpaid invoices past their due date.
func ListOverdue(invoices []Invoice, asOf time.Time) []Invoice {
	var overdue []Invoice
	for _, inv := range invoices {
		if inv.Overdue(asOf) {
			overdue = append(overdue, inv)
		}
	}
	return overdue
}
