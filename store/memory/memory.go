// Package memory provides in-memory store implementations (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/dealflow-engine/invoicing"
	"github.com/warp/dealflow-engine/negotiation"
	"github.com/warp/dealflow-engine/planning"
)

// =============================================================================
// MEMORY STORE - Implements every store interface over maps
// =============================================================================

type Store struct {
	mu           sync.RWMutex
	negotiations map[string]negotiation.Negotiation
	invoices     map[string]invoicing.Invoice
	templates    map[string]planning.Template
	projects     map[string]planning.Project
	tasks        map[string][]planning.ScheduledTask
	sweepRuns    []invoicing.SweepRun
}

func New() *Store {
	return &Store{
		negotiations: make(map[string]negotiation.Negotiation),
		invoices:     make(map[string]invoicing.Invoice),
		templates:    make(map[string]planning.Template),
		projects:     make(map[string]planning.Project),
		tasks:        make(map[string][]planning.ScheduledTask),
	}
}

// Compile-time interface checks
var (
	_ negotiation.Store      = (*Store)(nil)
	_ invoicing.Store        = (*Store)(nil)
	_ invoicing.RunStore     = (*Store)(nil)
	_ planning.TemplateStore = (*Store)(nil)
	_ planning.ProjectStore  = (*Store)(nil)
)

// =============================================================================
// NEGOTIATIONS
// =============================================================================

func (s *Store) Get(_ context.Context, id string) (*negotiation.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.negotiations[id]
	if !ok {
		return nil, negotiation.ErrNotFound
	}
	copied := n
	return &copied, nil
}

func (s *Store) List(_ context.Context, companyID string) ([]negotiation.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []negotiation.Negotiation
	for _, n := range s.negotiations {
		if companyID == "" || n.CompanyID == companyID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Put(_ context.Context, n *negotiation.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.negotiations[n.ID] = *n
	return nil
}

// =============================================================================
// INVOICES
// =============================================================================

func (s *Store) ListByNegotiation(_ context.Context, negotiationID string) ([]invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []invoicing.Invoice
	for _, inv := range s.invoices {
		if inv.NegotiationID == negotiationID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) ListByStatus(_ context.Context, status invoicing.Status) ([]invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []invoicing.Invoice
	for _, inv := range s.invoices {
		if inv.Status == status {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) CreateBatch(_ context.Context, invoices []invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range invoices {
		s.invoices[inv.ID] = inv
	}
	return nil
}

func (s *Store) BulkUpdateStatus(_ context.Context, ids []string, status invoicing.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		inv, ok := s.invoices[id]
		if !ok {
			continue
		}
		inv.Status = status
		s.invoices[id] = inv
	}
	return nil
}

func (s *Store) UpdateDates(_ context.Context, id string, emissionDate, dueDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return invoicing.ErrInvoiceNotFound
	}
	inv.EmissionDate = emissionDate
	inv.DueDate = dueDate
	s.invoices[id] = inv
	return nil
}

// =============================================================================
// SWEEP RUNS
// =============================================================================

func (s *Store) RecordSweepRun(_ context.Context, run invoicing.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepRuns = append(s.sweepRuns, run)
	return nil
}

func (s *Store) ListSweepRuns(_ context.Context, limit int) ([]invoicing.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]invoicing.SweepRun, len(s.sweepRuns))
	copy(runs, s.sweepRuns)
	sort.Slice(runs, func(i, j int) bool { return runs[i].At.After(runs[j].At) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (s *Store) GetTemplate(_ context.Context, id string) (*planning.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, planning.ErrTemplateNotFound
	}
	copied := tpl
	return &copied, nil
}

func (s *Store) ListTemplates(_ context.Context) ([]planning.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []planning.Template
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) PutTemplate(_ context.Context, tpl *planning.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.ID] = *tpl
	return nil
}

// =============================================================================
// PROJECTS AND TASKS
// =============================================================================

func (s *Store) CreateProject(_ context.Context, p *planning.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = *p
	return nil
}

func (s *Store) CreateTasks(_ context.Context, projectID string, tasks []planning.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[projectID] = append(s.tasks[projectID], tasks...)
	return nil
}

func (s *Store) ListTasks(_ context.Context, projectID string) ([]planning.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]planning.ScheduledTask, len(s.tasks[projectID]))
	copy(tasks, s.tasks[projectID])
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
	return tasks, nil
}
