/*
handlers.go - HTTP API handlers for the negotiation lifecycle engine

PURPOSE:
  Exposes the negotiation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Negotiations:
    GET    /api/negotiations                     List (company scoped)
    POST   /api/negotiations                     Create draft
    GET    /api/negotiations/{id}                Get details
    POST   /api/negotiations/{id}/transitions    Request a state change
    GET    /api/negotiations/{id}/invoices       Linked invoices

  Closure (two-step):
    POST   /api/negotiations/{id}/close          Begin; returns proposed schedule
    POST   /api/negotiations/{id}/close/confirm  Commit with confirmed schedule

  Termination (two-step):
    POST   /api/negotiations/{id}/terminate          Begin; returns invoice plan
    POST   /api/negotiations/{id}/terminate/confirm  Commit with reason + decisions

  Follow-up:
    POST   /api/negotiations/{id}/maintenance    Accept the maintenance prompt

  Templates / projects:
    GET    /api/templates                        List templates
    POST   /api/templates                        Register template from JSON
    GET    /api/templates/{id}                   Get template
    POST   /api/projects/preview                 Dated task list, not persisted
    POST   /api/projects                         Create project with tasks
    GET    /api/projects/{id}/tasks              Instantiated tasks

  Invoices / admin:
    GET    /api/invoices/overdue                 Emitted, unpaid, past due
    GET    /api/admin/sweeps                     Sweep audit trail
    POST   /api/admin/sweeps/run                 Trigger a sweep now

ARCHITECTURE:
  Handler holds the Backend (all store interfaces behind one value) plus
  the in-flight closure/termination flows. Flows live in memory: they are
  cheap to rebuild and abandoning one writes nothing.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input
  - 404: Resource not found or other company's resource
  - 409: Rejected transitions, blocked commits
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Identity extraction
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/dealflow-engine/billing"
	"github.com/warp/dealflow-engine/factory"
	"github.com/warp/dealflow-engine/invoicing"
	"github.com/warp/dealflow-engine/negotiation"
	"github.com/warp/dealflow-engine/planning"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Backend bundles every store interface the handlers need. Satisfied by
// store/sqlite and store/memory.
type Backend interface {
	negotiation.Store
	invoicing.Store
	invoicing.RunStore
	planning.TemplateStore
	planning.ProjectStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store Backend

	// In-flight confirmation flows, keyed by flow ID. Abandoned flows are
	// harmless; nothing was written when they were begun.
	mu           sync.Mutex
	closures     map[string]*negotiation.ClosureFlow
	terminations map[string]*negotiation.TerminationFlow
}

// NewHandler creates a new handler with the given backend.
func NewHandler(store Backend) *Handler {
	return &Handler{
		Store:        store,
		closures:     make(map[string]*negotiation.ClosureFlow),
		terminations: make(map[string]*negotiation.TerminationFlow),
	}
}

// =============================================================================
// NEGOTIATION HANDLERS
// =============================================================================

// ListNegotiations returns the company's negotiations.
func (h *Handler) ListNegotiations(w http.ResponseWriter, r *http.Request) {
	identity := Identity(r.Context())

	negotiations, err := h.Store.List(r.Context(), identity.CompanyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list negotiations", err)
		return
	}

	dtos := make([]NegotiationDTO, len(negotiations))
	for i := range negotiations {
		dtos[i] = toNegotiationDTO(&negotiations[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetNegotiation returns a single negotiation.
func (h *Handler) GetNegotiation(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownedNegotiation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toNegotiationDTO(n))
}

// CreateNegotiation creates a new DRAFT negotiation.
func (h *Handler) CreateNegotiation(w http.ResponseWriter, r *http.Request) {
	var req CreateNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	identity := Identity(r.Context())
	now := time.Now().UTC()

	n := &negotiation.Negotiation{
		ID:               uuid.NewString(),
		Code:             req.Code,
		CompanyID:        identity.CompanyID,
		ClientID:         req.ClientID,
		ServiceType:      negotiation.ServiceType(req.ServiceType),
		ContractType:     billing.ContractType(req.ContractType),
		BillingForm:      billing.BillingForm(req.BillingForm),
		ProposedValue:    billing.ParseCurrency(req.ProposedValue),
		HourlyRate:       billing.ParseCurrency(req.HourlyRate),
		DueOffsetDays:    req.DueOffsetDays,
		InstallmentCount: req.InstallmentCount,
		Status:           negotiation.StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if req.EstimatedHours != "" {
		hours, err := billing.ParseHours(req.EstimatedHours)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid estimated_hours", err)
			return
		}
		n.EstimatedHours = hours
	}
	if req.BillingStartDate != "" {
		start, err := time.Parse(dateLayout, req.BillingStartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid billing_start_date (use YYYY-MM-DD)", err)
			return
		}
		n.BillingStartDate = start
	}
	if req.DueDate != "" {
		due, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date (use YYYY-MM-DD)", err)
			return
		}
		n.DueDate = &due
	}

	if errs := n.Validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", errs[0])
		return
	}

	if err := h.Store.Put(r.Context(), n); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create negotiation", err)
		return
	}

	writeJSON(w, http.StatusCreated, toNegotiationDTO(n))
}

// RequestTransition classifies and, when possible, applies a state change.
// Transitions needing input report which confirmation endpoint to use.
func (h *Handler) RequestTransition(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownedNegotiation(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	target := negotiation.Status(req.Target)
	out := negotiation.RequestTransition(n, target)

	dto := OutcomeDTO{
		Kind:    string(out.Kind),
		Reason:  out.Reason,
		Notices: out.Notices,
	}

	switch out.Kind {
	case negotiation.OutcomeRejected:
		writeJSON(w, http.StatusConflict, dto)

	case negotiation.OutcomeRequiresInput:
		dto.RequiredInput = string(out.Input)
		dto.Token = out.Pending.Token
		writeJSON(w, http.StatusOK, dto)

	default:
		if err := negotiation.ApplyTransition(n, target); err != nil {
			writeDomainError(w, "Transition failed", err)
			return
		}
		if err := h.Store.Put(r.Context(), n); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist negotiation", err)
			return
		}
		result := toNegotiationDTO(n)
		dto.Negotiation = &result
		writeJSON(w, http.StatusOK, dto)
	}
}

// ListNegotiationInvoices returns the invoices linked to a negotiation.
func (h *Handler) ListNegotiationInvoices(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownedNegotiation(w, r)
	if !ok {
		return
	}

	invoices, err := h.Store.ListByNegotiation(r.Context(), n.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTOs(invoices, time.Now().UTC()))
}

// =============================================================================
// CLOSURE HANDLERS
// =============================================================================

// BeginClosure starts the close flow and returns the proposed schedule.
func (h *Handler) BeginClosure(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownedNegotiation(w, r)
	if !ok {
		return
	}

	flow, err := negotiation.BeginClosure(n)
	if err != nil {
		writeDomainError(w, "Cannot close negotiation", err)
		return
	}

	h.mu.Lock()
	h.closures[flow.ID] = flow
	h.mu.Unlock()

	dto := ClosureFlowDTO{
		FlowID:    flow.ID,
		Immediate: flow.Pending == nil,
		Proposed:  toInstallmentDTOs(flow.Proposed),
		Notices:   flow.Notices,
	}
	if len(flow.Proposed) > 0 {
		dto.Total = billing.FormatCurrency(billing.ScheduleTotal(flow.Proposed))
	}
	writeJSON(w, http.StatusOK, dto)
}

// ConfirmClosure commits a pending close flow.
func (h *Handler) ConfirmClosure(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownedNegotiation(w, r); !ok {
		return
	}

	var req ConfirmClosureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	flow, ok := h.closures[req.FlowID]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown or expired closure flow", nil)
		return
	}

	confirmed, err := fromInstallmentDTOs(req.Installments)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid installment dates (use YYYY-MM-DD)", err)
		return
	}

	result, err := flow.Confirm(r.Context(), h.Store, h.Store, confirmed)
	if err != nil {
		writeDomainError(w, "Closure failed", err)
		return
	}

	h.mu.Lock()
	delete(h.closures, req.FlowID)
	h.mu.Unlock()

	dto := ClosureResultDTO{
		Negotiation:  toNegotiationDTO(result.Negotiation),
		Invoices:     toInvoiceDTOs(result.Invoices, time.Now().UTC()),
		OfferProject: result.OfferProject,
		Notices:      result.Notices,
	}
	if result.Maintenance != nil {
		dto.Maintenance = &MaintenanceDTO{
			Value:     billing.FormatCurrency(result.Maintenance.Value),
			StartDate: result.Maintenance.StartDate.Format(dateLayout),
			DueDate:   result.Maintenance.DueDate.Format(dateLayout),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// TERMINATION HANDLERS
// =============================================================================

// BeginTermination starts a cancel/decline flow and returns the invoice
// reconciliation plan.
func (h *Handler) BeginTermination(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownedNegotiation(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	flow, err := negotiation.BeginTermination(r.Context(), h.Store, n, negotiation.Status(req.Target))
	if err != nil {
		writeDomainError(w, "Cannot terminate negotiation", err)
		return
	}

	h.mu.Lock()
	h.terminations[flow.ID] = flow
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, TerminationFlowDTO{
		FlowID:  flow.ID,
		Target:  string(flow.Target),
		Blocked: flow.Blocked(),
		Plan:    toPlanDTO(flow.Plan, time.Now().UTC()),
		Notices: flow.Plan.Notices(),
	})
}

// ConfirmTermination commits a pending termination flow.
func (h *Handler) ConfirmTermination(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownedNegotiation(w, r); !ok {
		return
	}

	var req ConfirmTerminationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	flow, ok := h.terminations[req.FlowID]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown or expired termination flow", nil)
		return
	}

	decisions, err := fromDecisionDTOs(req.Decisions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid decision dates (use YYYY-MM-DD)", err)
		return
	}

	result, err := flow.Commit(r.Context(), h.Store, h.Store, req.Reason, decisions)
	if err != nil {
		writeDomainError(w, "Termination failed", err)
		return
	}

	h.mu.Lock()
	delete(h.terminations, req.FlowID)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, TerminationResultDTO{
		Negotiation: toNegotiationDTO(result.Negotiation),
		Cancelled:   result.Cancelled,
		Warnings:    result.Warnings,
		Notices:     result.Notices,
	})
}

func fromDecisionDTOs(dtos []DecisionDTO) ([]invoicing.Decision, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	decisions := make([]invoicing.Decision, len(dtos))
	for i, dto := range dtos {
		decision := invoicing.Decision{
			InvoiceID: dto.InvoiceID,
			Kind:      invoicing.DecisionKind(dto.Kind),
		}
		if dto.EmissionDate != "" {
			emission, err := time.Parse(dateLayout, dto.EmissionDate)
			if err != nil {
				return nil, err
			}
			decision.EmissionDate = emission
		}
		if dto.DueDate != "" {
			due, err := time.Parse(dateLayout, dto.DueDate)
			if err != nil {
				return nil, err
			}
			decision.DueDate = due
		}
		decisions[i] = decision
	}
	return decisions, nil
}

// =============================================================================
// MAINTENANCE HANDLER
// =============================================================================

// AcceptMaintenance materializes the follow-up maintenance prompt as a new
// DRAFT proposal linked to the closed negotiation.
func (h *Handler) AcceptMaintenance(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownedNegotiation(w, r)
	if !ok {
		return
	}

	var req AcceptMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	suggestion := negotiation.SuggestMaintenance(n, time.Now().UTC().Truncate(24*time.Hour))
	if suggestion == nil {
		writeError(w, http.StatusConflict, "Service type is not eligible for maintenance", nil)
		return
	}

	code := req.Code
	if code == "" && n.Code != "" {
		code = n.Code + "-M"
	}

	maintenance := negotiation.NewMaintenanceNegotiation(n, suggestion, uuid.NewString(), code)
	if err := h.Store.Put(r.Context(), maintenance); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create maintenance proposal", err)
		return
	}

	n.LinkedMaintenanceID = maintenance.ID
	if err := h.Store.Put(r.Context(), n); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to link maintenance proposal", err)
		return
	}

	writeJSON(w, http.StatusCreated, toNegotiationDTO(maintenance))
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// ListTemplates returns all registered project templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Store.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates", err)
		return
	}

	dtos := make([]TemplateDTO, len(templates))
	for i := range templates {
		dtos[i] = toTemplateDTO(&templates[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTemplate returns a single template.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get template", err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(tpl))
}

// CreateTemplate registers a template from its JSON definition.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var doc factory.TemplateJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tpl, err := factory.FromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid template definition", err)
		return
	}

	if err := h.Store.PutTemplate(r.Context(), tpl); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save template", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(tpl))
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// PreviewProject instantiates a template without persisting anything. The
// client may edit the returned dates freely before creating the project.
func (h *Handler) PreviewProject(w http.ResponseWriter, r *http.Request) {
	var req PreviewProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}

	tpl, err := h.Store.GetTemplate(r.Context(), req.TemplateID)
	if err != nil {
		writeDomainError(w, "Failed to get template", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduledTaskDTOs(planning.Instantiate(tpl, start)))
}

// CreateProject persists a project and its tasks. When the request carries
// edited tasks those are stored as-is; otherwise the template is
// instantiated fresh from the start date.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}

	var tasks []planning.ScheduledTask
	if len(req.Tasks) > 0 {
		tasks, err = fromScheduledTaskDTOs(req.Tasks)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid task dates (use YYYY-MM-DD)", err)
			return
		}
	} else {
		tpl, err := h.Store.GetTemplate(r.Context(), req.TemplateID)
		if err != nil {
			writeDomainError(w, "Failed to get template", err)
			return
		}
		tasks = planning.Instantiate(tpl, start)
	}

	identity := Identity(r.Context())
	project := &planning.Project{
		ID:            uuid.NewString(),
		CompanyID:     identity.CompanyID,
		NegotiationID: req.NegotiationID,
		Name:          req.Name,
		StartDate:     start,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.Store.CreateProject(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}
	if err := h.Store.CreateTasks(r.Context(), project.ID, tasks); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create tasks", err)
		return
	}

	writeJSON(w, http.StatusCreated, ProjectDTO{
		ID:            project.ID,
		NegotiationID: project.NegotiationID,
		Name:          project.Name,
		StartDate:     project.StartDate.Format(dateLayout),
		Tasks:         toScheduledTaskDTOs(tasks),
	})
}

// GetProjectTasks returns the persisted tasks for a project.
func (h *Handler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.ListTasks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduledTaskDTOs(tasks))
}

// =============================================================================
// INVOICE / ADMIN HANDLERS
// =============================================================================

// ListOverdueInvoices returns emitted, unpaid invoices past their due date.
func (h *Handler) ListOverdueInvoices(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	emitted, err := h.Store.ListByStatus(r.Context(), invoicing.StatusInvoiced)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTOs(invoicing.ListOverdue(emitted, now), now))
}

// ListSweepRuns returns the overdue-sweep audit trail, newest first.
func (h *Handler) ListSweepRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListSweepRuns(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sweep runs", err)
		return
	}

	dtos := make([]SweepRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = SweepRunDTO{
			ID:           run.ID,
			At:           run.At.Format(time.RFC3339),
			OverdueCount: run.OverdueCount,
			InvoiceIDs:   run.InvoiceIDs,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TriggerSweep runs an overdue sweep immediately.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	run, err := RunSweep(r.Context(), h.Store, h.Store, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sweep failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SweepRunDTO{
		ID:           run.ID,
		At:           run.At.Format(time.RFC3339),
		OverdueCount: run.OverdueCount,
		InvoiceIDs:   run.InvoiceIDs,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// ownedNegotiation loads the negotiation from the URL and verifies it
// belongs to the authenticated company. Writes the error response itself.
func (h *Handler) ownedNegotiation(w http.ResponseWriter, r *http.Request) (*negotiation.Negotiation, bool) {
	id := chi.URLParam(r, "id")
	identity := Identity(r.Context())

	n, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get negotiation", err)
		return nil, false
	}
	// Other tenants' records are indistinguishable from missing ones.
	if n.CompanyID != identity.CompanyID {
		writeError(w, http.StatusNotFound, "Negotiation not found", nil)
		return nil, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var fieldErr negotiation.FieldError
	switch {
	case negotiation.IsNotFound(err),
		errors.Is(err, planning.ErrTemplateNotFound),
		errors.Is(err, invoicing.ErrInvoiceNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, message, err)
	case negotiation.IsClientError(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
