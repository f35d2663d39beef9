/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND HOURS:
  Monetary fields travel as locale strings ("12.000,00") and are parsed
  through billing.ParseCurrency; estimated hours use the duration grammar
  ("1h30min"). Responses format the same way, so clients round-trip what
  they sent.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - billing/money.go: Currency and duration grammars
*/
package api

import (
	"time"

	"github.com/warp/dealflow-engine/billing"
	"github.com/warp/dealflow-engine/invoicing"
	"github.com/warp/dealflow-engine/negotiation"
	"github.com/warp/dealflow-engine/planning"
)

const dateLayout = "2006-01-02"

// =============================================================================
// NEGOTIATIONS
// =============================================================================

// NegotiationDTO represents a negotiation in API responses.
type NegotiationDTO struct {
	ID                  string           `json:"id"`
	Code                string           `json:"code"`
	ClientID            string           `json:"client_id"`
	ServiceType         string           `json:"service_type"`
	ContractType        string           `json:"contract_type"`
	BillingForm         string           `json:"billing_form,omitempty"`
	ProposedValue       string           `json:"proposed_value"`
	HourlyRate          string           `json:"hourly_rate,omitempty"`
	EstimatedHours      string           `json:"estimated_hours,omitempty"`
	TotalValue          string           `json:"total_value"`
	BillingStartDate    string           `json:"billing_start_date,omitempty"`
	DueOffsetDays       int              `json:"due_offset_days,omitempty"`
	DueDate             string           `json:"due_date,omitempty"`
	InstallmentCount    int              `json:"installment_count,omitempty"`
	Installments        []InstallmentDTO `json:"installments,omitempty"`
	LinkedMaintenanceID string           `json:"linked_maintenance_id,omitempty"`
	Status              string           `json:"status"`
	Reason              string           `json:"reason,omitempty"`
	CompletionDate      string           `json:"completion_date,omitempty"`
	CreatedAt           string           `json:"created_at,omitempty"`
	UpdatedAt           string           `json:"updated_at,omitempty"`
}

// CreateNegotiationRequest is the request to create a negotiation.
type CreateNegotiationRequest struct {
	Code             string `json:"code"`
	ClientID         string `json:"client_id"`
	ServiceType      string `json:"service_type"`
	ContractType     string `json:"contract_type"`
	BillingForm      string `json:"billing_form,omitempty"`
	ProposedValue    string `json:"proposed_value,omitempty"`
	HourlyRate       string `json:"hourly_rate,omitempty"`
	EstimatedHours   string `json:"estimated_hours,omitempty"`
	BillingStartDate string `json:"billing_start_date,omitempty"`
	DueOffsetDays    int    `json:"due_offset_days,omitempty"`
	DueDate          string `json:"due_date,omitempty"`
	InstallmentCount int    `json:"installment_count,omitempty"`
}

// TransitionRequest asks for a lifecycle state change.
type TransitionRequest struct {
	Target string `json:"target"`
}

// OutcomeDTO reports how a requested transition was classified.
type OutcomeDTO struct {
	Kind          string          `json:"kind"`
	RequiredInput string          `json:"required_input,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Notices       []string        `json:"notices,omitempty"`
	Token         string          `json:"token,omitempty"`
	Negotiation   *NegotiationDTO `json:"negotiation,omitempty"`
}

// =============================================================================
// INSTALLMENTS AND CLOSURE
// =============================================================================

// InstallmentDTO represents one schedule entry.
type InstallmentDTO struct {
	Number      int    `json:"number"`
	Value       string `json:"value"`
	BillingDate string `json:"billing_date"`
	DueDate     string `json:"due_date"`
}

// ClosureFlowDTO is returned when a closure begins; the client shows the
// proposed schedule for confirmation.
type ClosureFlowDTO struct {
	FlowID    string           `json:"flow_id"`
	Immediate bool             `json:"immediate"`
	Proposed  []InstallmentDTO `json:"proposed,omitempty"`
	Total     string           `json:"total,omitempty"`
	Notices   []string         `json:"notices,omitempty"`
}

// ConfirmClosureRequest commits a pending closure, optionally with an
// edited schedule.
type ConfirmClosureRequest struct {
	FlowID       string           `json:"flow_id"`
	Installments []InstallmentDTO `json:"installments,omitempty"`
}

// ClosureResultDTO is returned after the closure commits.
type ClosureResultDTO struct {
	Negotiation  NegotiationDTO  `json:"negotiation"`
	Invoices     []InvoiceDTO    `json:"invoices,omitempty"`
	OfferProject bool            `json:"offer_project"`
	Maintenance  *MaintenanceDTO `json:"maintenance,omitempty"`
	Notices      []string        `json:"notices,omitempty"`
}

// MaintenanceDTO is the advisory follow-up proposal prompt.
type MaintenanceDTO struct {
	Value     string `json:"value"`
	StartDate string `json:"start_date"`
	DueDate   string `json:"due_date"`
}

// AcceptMaintenanceRequest materializes the suggestion as a draft proposal.
type AcceptMaintenanceRequest struct {
	Code string `json:"code,omitempty"`
}

// =============================================================================
// TERMINATION
// =============================================================================

// TerminationFlowDTO is returned when a cancel/decline begins.
type TerminationFlowDTO struct {
	FlowID  string   `json:"flow_id"`
	Target  string   `json:"target"`
	Blocked bool     `json:"blocked"`
	Plan    *PlanDTO `json:"plan,omitempty"`
	Notices []string `json:"notices,omitempty"`
}

// PlanDTO is the invoice reconciliation plan shown to the operator.
type PlanDTO struct {
	AutoCancel       []InvoiceDTO `json:"auto_cancel,omitempty"`
	RequiresDecision []InvoiceDTO `json:"requires_decision,omitempty"`
	LeaveAsIs        []InvoiceDTO `json:"leave_as_is,omitempty"`
}

// ConfirmTerminationRequest commits a pending termination.
type ConfirmTerminationRequest struct {
	FlowID    string        `json:"flow_id"`
	Reason    string        `json:"reason"`
	Decisions []DecisionDTO `json:"decisions,omitempty"`
}

// DecisionDTO is one cancel-or-keep operator decision.
type DecisionDTO struct {
	InvoiceID    string `json:"invoice_id"`
	Kind         string `json:"kind"` // "cancel" or "keep"
	EmissionDate string `json:"emission_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
}

// TerminationResultDTO is returned after the termination commits.
type TerminationResultDTO struct {
	Negotiation NegotiationDTO `json:"negotiation"`
	Cancelled   []string       `json:"cancelled,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
	Notices     []string       `json:"notices,omitempty"`
}

// =============================================================================
// INVOICES
// =============================================================================

// InvoiceDTO represents an invoice in API responses.
type InvoiceDTO struct {
	ID            string `json:"id"`
	NegotiationID string `json:"negotiation_id"`
	Number        string `json:"number"`
	Installment   int    `json:"installment,omitempty"`
	Value         string `json:"value"`
	EmissionDate  string `json:"emission_date"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	Overdue       bool   `json:"overdue,omitempty"`
}

// SweepRunDTO represents one overdue-sweep audit record.
type SweepRunDTO struct {
	ID           string   `json:"id"`
	At           string   `json:"at"`
	OverdueCount int      `json:"overdue_count"`
	InvoiceIDs   []string `json:"invoice_ids,omitempty"`
}

// =============================================================================
// TEMPLATES AND PROJECTS
// =============================================================================

// TemplateDTO represents a project template.
type TemplateDTO struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Tasks []TemplateTaskDTO `json:"tasks"`
}

// TemplateTaskDTO is one task definition inside a template.
type TemplateTaskDTO struct {
	ID                        string `json:"id"`
	Order                     int    `json:"order"`
	Name                      string `json:"name"`
	DurationDays              int    `json:"duration_days,omitempty"`
	EstimatedHours            string `json:"estimated_hours,omitempty"`
	OffsetDaysFromStart       *int   `json:"offset_days_from_start,omitempty"`
	PredecessorID             string `json:"predecessor_id,omitempty"`
	OffsetDaysFromPredecessor int    `json:"offset_days_from_predecessor,omitempty"`
}

// PreviewProjectRequest asks for a dated task list without persisting.
type PreviewProjectRequest struct {
	TemplateID string `json:"template_id"`
	StartDate  string `json:"start_date"`
}

// ScheduledTaskDTO is one concrete, dated task.
type ScheduledTaskDTO struct {
	TemplateTaskID string `json:"template_task_id,omitempty"`
	Order          int    `json:"order"`
	Name           string `json:"name"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	EstimatedHours string `json:"estimated_hours,omitempty"`
	AssigneeID     string `json:"assignee_id,omitempty"`
}

// CreateProjectRequest persists a project with its (possibly edited) tasks.
type CreateProjectRequest struct {
	NegotiationID string             `json:"negotiation_id"`
	TemplateID    string             `json:"template_id"`
	Name          string             `json:"name"`
	StartDate     string             `json:"start_date"`
	Tasks         []ScheduledTaskDTO `json:"tasks,omitempty"`
}

// ProjectDTO represents a created project.
type ProjectDTO struct {
	ID            string             `json:"id"`
	NegotiationID string             `json:"negotiation_id"`
	Name          string             `json:"name"`
	StartDate     string             `json:"start_date"`
	Tasks         []ScheduledTaskDTO `json:"tasks"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func optDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toNegotiationDTO(n *negotiation.Negotiation) NegotiationDTO {
	dto := NegotiationDTO{
		ID:                  n.ID,
		Code:                n.Code,
		ClientID:            n.ClientID,
		ServiceType:         string(n.ServiceType),
		ContractType:        string(n.ContractType),
		BillingForm:         string(n.BillingForm),
		ProposedValue:       billing.FormatCurrency(n.ProposedValue),
		TotalValue:          billing.FormatCurrency(n.TotalValue()),
		DueOffsetDays:       n.DueOffsetDays,
		DueDate:             optDate(n.DueDate),
		InstallmentCount:    n.InstallmentCount,
		Installments:        toInstallmentDTOs(n.Installments),
		LinkedMaintenanceID: n.LinkedMaintenanceID,
		Status:              string(n.Status),
		Reason:              n.Reason,
		CompletionDate:      optDate(n.CompletionDate),
		CreatedAt:           n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           n.UpdatedAt.Format(time.RFC3339),
	}
	if !n.HourlyRate.IsZero() {
		dto.HourlyRate = billing.FormatCurrency(n.HourlyRate)
	}
	if !n.EstimatedHours.IsZero() {
		dto.EstimatedHours = billing.FormatHours(n.EstimatedHours)
	}
	if !n.BillingStartDate.IsZero() {
		dto.BillingStartDate = n.BillingStartDate.Format(dateLayout)
	}
	return dto
}

func toInstallmentDTOs(installments []billing.Installment) []InstallmentDTO {
	if len(installments) == 0 {
		return nil
	}
	dtos := make([]InstallmentDTO, len(installments))
	for i, inst := range installments {
		dtos[i] = InstallmentDTO{
			Number:      inst.Number,
			Value:       billing.FormatCurrency(inst.Value),
			BillingDate: inst.BillingDate.Format(dateLayout),
			DueDate:     inst.DueDate.Format(dateLayout),
		}
	}
	return dtos
}

func fromInstallmentDTOs(dtos []InstallmentDTO) ([]billing.Installment, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	installments := make([]billing.Installment, len(dtos))
	for i, dto := range dtos {
		billingDate, err := time.Parse(dateLayout, dto.BillingDate)
		if err != nil {
			return nil, err
		}
		dueDate, err := time.Parse(dateLayout, dto.DueDate)
		if err != nil {
			return nil, err
		}
		installments[i] = billing.Installment{
			Number:      dto.Number,
			Value:       billing.ParseCurrency(dto.Value),
			BillingDate: billingDate,
			DueDate:     dueDate,
		}
	}
	return installments, nil
}

func toInvoiceDTO(inv invoicing.Invoice, asOf time.Time) InvoiceDTO {
	return InvoiceDTO{
		ID:            inv.ID,
		NegotiationID: inv.NegotiationID,
		Number:        inv.Number,
		Installment:   inv.Installment,
		Value:         billing.FormatCurrency(inv.Value),
		EmissionDate:  inv.EmissionDate.Format(dateLayout),
		DueDate:       inv.DueDate.Format(dateLayout),
		Status:        string(inv.Status),
		Overdue:       inv.Overdue(asOf),
	}
}

func toInvoiceDTOs(invoices []invoicing.Invoice, asOf time.Time) []InvoiceDTO {
	if len(invoices) == 0 {
		return nil
	}
	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv, asOf)
	}
	return dtos
}

func toPlanDTO(plan invoicing.Plan, asOf time.Time) *PlanDTO {
	if plan.Empty() {
		return nil
	}
	return &PlanDTO{
		AutoCancel:       toInvoiceDTOs(plan.AutoCancel, asOf),
		RequiresDecision: toInvoiceDTOs(plan.RequiresDecision, asOf),
		LeaveAsIs:        toInvoiceDTOs(plan.LeaveAsIs, asOf),
	}
}

func toTemplateDTO(tpl *planning.Template) TemplateDTO {
	dto := TemplateDTO{ID: tpl.ID, Name: tpl.Name}
	for _, task := range tpl.Tasks {
		taskDTO := TemplateTaskDTO{
			ID:                        task.ID,
			Order:                     task.Order,
			Name:                      task.Name,
			DurationDays:              task.DurationDays,
			OffsetDaysFromStart:       task.OffsetDaysFromStart,
			PredecessorID:             task.PredecessorID,
			OffsetDaysFromPredecessor: task.OffsetDaysFromPredecessor,
		}
		if !task.EstimatedHours.IsZero() {
			taskDTO.EstimatedHours = billing.FormatHours(task.EstimatedHours)
		}
		dto.Tasks = append(dto.Tasks, taskDTO)
	}
	return dto
}

func toScheduledTaskDTOs(tasks []planning.ScheduledTask) []ScheduledTaskDTO {
	dtos := make([]ScheduledTaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ScheduledTaskDTO{
			TemplateTaskID: task.TemplateTaskID,
			Order:          task.Order,
			Name:           task.Name,
			StartDate:      task.StartDate.Format(dateLayout),
			EndDate:        task.EndDate.Format(dateLayout),
			AssigneeID:     task.AssigneeID,
		}
		if !task.EstimatedHours.IsZero() {
			dtos[i].EstimatedHours = billing.FormatHours(task.EstimatedHours)
		}
	}
	return dtos
}

func fromScheduledTaskDTOs(dtos []ScheduledTaskDTO) ([]planning.ScheduledTask, error) {
	tasks := make([]planning.ScheduledTask, len(dtos))
	for i, dto := range dtos {
		start, err := time.Parse(dateLayout, dto.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := time.Parse(dateLayout, dto.EndDate)
		if err != nil {
			return nil, err
		}
		task := planning.ScheduledTask{
			TemplateTaskID: dto.TemplateTaskID,
			Order:          dto.Order,
			Name:           dto.Name,
			StartDate:      start,
			AssigneeID:     dto.AssigneeID,
		}
		// End-before-start edits auto-correct rather than fail.
		task.SetEndDate(end)
		if dto.EstimatedHours != "" {
			hours, err := billing.ParseHours(dto.EstimatedHours)
			if err != nil {
				return nil, err
			}
			task.EstimatedHours = hours
		}
		tasks[i] = task
	}
	return tasks, nil
}
