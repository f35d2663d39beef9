/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (negotiation.Store, invoicing.Store,
  invoicing.RunStore, planning.TemplateStore, planning.ProjectStore) using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  negotiations: Proposal records; the installment schedule lives in ONE
                serialized column (see the billing codec) and is re-expanded
                defensively on every read
  invoices:     Issued receivables, linked to a negotiation and an
                installment ordinal
  templates:    Project templates, stored as their JSON definition
  projects:     Projects created from closed negotiations
  tasks:        Instantiated, user-editable task rows
  sweep_runs:   Overdue-invoice sweep audit trail

SERIALIZED INSTALLMENTS:
  The installments column predates this service and has carried three
  encodings over time. Decoding goes through billing.DecodeSchedule, which
  accepts all of them; writing always produces the current versioned form.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/dealflow.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/memory: In-memory implementation for testing
  - billing/codec.go: Installment column codec
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/dealflow-engine/billing"
	"github.com/warp/dealflow-engine/factory"
	"github.com/warp/dealflow-engine/invoicing"
	"github.com/warp/dealflow-engine/negotiation"
	"github.com/warp/dealflow-engine/planning"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ negotiation.Store      = (*Store)(nil)
	_ invoicing.Store        = (*Store)(nil)
	_ invoicing.RunStore     = (*Store)(nil)
	_ planning.TemplateStore = (*Store)(nil)
	_ planning.ProjectStore  = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS negotiations (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		company_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		service_type TEXT NOT NULL,
		contract_type TEXT NOT NULL,
		billing_form TEXT,
		proposed_value TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		estimated_hours TEXT NOT NULL,
		billing_start_date TEXT,
		due_offset_days INTEGER NOT NULL DEFAULT 0,
		due_date TEXT,
		installment_count INTEGER NOT NULL DEFAULT 0,
		installments TEXT,
		linked_maintenance_id TEXT,
		status TEXT NOT NULL,
		reason TEXT,
		completion_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_negotiations_company ON negotiations(company_id);
	CREATE INDEX IF NOT EXISTS idx_negotiations_status ON negotiations(company_id, status);

	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		negotiation_id TEXT NOT NULL,
		number TEXT NOT NULL,
		installment INTEGER NOT NULL DEFAULT 0,
		value TEXT NOT NULL,
		emission_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_invoices_negotiation ON invoices(negotiation_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status, due_date);

	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		definition TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		negotiation_id TEXT NOT NULL,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_negotiation ON projects(negotiation_id);

	CREATE TABLE IF NOT EXISTS tasks (
		project_id TEXT NOT NULL,
		template_task_id TEXT,
		task_order INTEGER NOT NULL,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		estimated_hours TEXT NOT NULL,
		assignee_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id, task_order);

	CREATE TABLE IF NOT EXISTS sweep_runs (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		overdue_count INTEGER NOT NULL,
		invoice_ids TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DATE / DECIMAL COLUMN HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

func dateCol(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDateCol(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func optDateCol(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func parseOptDateCol(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// =============================================================================
// NEGOTIATIONS
// =============================================================================

func (s *Store) Put(ctx context.Context, n *negotiation.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := billing.EncodeSchedule(n.Installments)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO negotiations (
			id, code, company_id, client_id, service_type, contract_type,
			billing_form, proposed_value, hourly_rate, estimated_hours,
			billing_start_date, due_offset_days, due_date, installment_count,
			installments, linked_maintenance_id, status, reason,
			completion_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			client_id = excluded.client_id,
			service_type = excluded.service_type,
			contract_type = excluded.contract_type,
			billing_form = excluded.billing_form,
			proposed_value = excluded.proposed_value,
			hourly_rate = excluded.hourly_rate,
			estimated_hours = excluded.estimated_hours,
			billing_start_date = excluded.billing_start_date,
			due_offset_days = excluded.due_offset_days,
			due_date = excluded.due_date,
			installment_count = excluded.installment_count,
			installments = excluded.installments,
			linked_maintenance_id = excluded.linked_maintenance_id,
			status = excluded.status,
			reason = excluded.reason,
			completion_date = excluded.completion_date,
			updated_at = excluded.updated_at
	`,
		n.ID, n.Code, n.CompanyID, n.ClientID, string(n.ServiceType), string(n.ContractType),
		string(n.BillingForm), n.ProposedValue.String(), n.HourlyRate.String(), n.EstimatedHours.String(),
		dateCol(n.BillingStartDate), n.DueOffsetDays, optDateCol(n.DueDate), n.InstallmentCount,
		encoded, n.LinkedMaintenanceID, string(n.Status), n.Reason,
		optDateCol(n.CompletionDate), n.CreatedAt.UTC().Format(time.RFC3339), n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("persist negotiation %s: %w", n.ID, err)
	}
	return nil
}

const negotiationCols = `
	id, code, company_id, client_id, service_type, contract_type,
	billing_form, proposed_value, hourly_rate, estimated_hours,
	billing_start_date, due_offset_days, due_date, installment_count,
	installments, linked_maintenance_id, status, reason,
	completion_date, created_at, updated_at`

func (s *Store) Get(ctx context.Context, id string) (*negotiation.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+negotiationCols+` FROM negotiations WHERE id = ?`, id)
	n, err := scanNegotiation(row)
	if err == sql.ErrNoRows {
		return nil, negotiation.ErrNotFound
	}
	return n, err
}

func (s *Store) List(ctx context.Context, companyID string) ([]negotiation.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+negotiationCols+` FROM negotiations WHERE company_id = ? ORDER BY created_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []negotiation.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNegotiation(row rowScanner) (*negotiation.Negotiation, error) {
	var (
		n                                              negotiation.Negotiation
		serviceType, contractType, billingForm, status string
		proposed, rate, hours                          string
		billingStart                                   string
		dueDate, completion                            sql.NullString
		installments, reason, linkedID                 sql.NullString
		createdAt, updatedAt                           string
	)

	err := row.Scan(
		&n.ID, &n.Code, &n.CompanyID, &n.ClientID, &serviceType, &contractType,
		&billingForm, &proposed, &rate, &hours,
		&billingStart, &n.DueOffsetDays, &dueDate, &n.InstallmentCount,
		&installments, &linkedID, &status, &reason,
		&completion, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.ServiceType = negotiation.ServiceType(serviceType)
	n.ContractType = billing.ContractType(contractType)
	n.BillingForm = billing.BillingForm(billingForm)
	n.Status = negotiation.Status(status)
	n.ProposedValue = billing.MustDecimal(proposed)
	n.HourlyRate = billing.MustDecimal(rate)
	n.EstimatedHours = billing.MustDecimal(hours)
	n.BillingStartDate = parseDateCol(billingStart)
	n.DueDate = parseOptDateCol(dueDate)
	n.CompletionDate = parseOptDateCol(completion)
	n.Reason = reason.String
	n.LinkedMaintenanceID = linkedID.String

	if created, err := time.Parse(time.RFC3339, createdAt); err == nil {
		n.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		n.UpdatedAt = updated
	}

	// The column has carried several encodings; decode defensively before
	// treating it as structured data.
	if installments.Valid {
		schedule, err := billing.DecodeSchedule(installments.String)
		if err != nil {
			return nil, fmt.Errorf("negotiation %s: %w", n.ID, err)
		}
		n.Installments = schedule
	}

	return &n, nil
}

// =============================================================================
// INVOICES
// =============================================================================

func (s *Store) CreateBatch(ctx context.Context, invoices []invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO invoices (id, negotiation_id, number, installment, value, emission_date, due_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, inv := range invoices {
		if _, err := stmt.ExecContext(ctx,
			inv.ID, inv.NegotiationID, inv.Number, inv.Installment,
			inv.Value.String(), dateCol(inv.EmissionDate), dateCol(inv.DueDate), string(inv.Status),
		); err != nil {
			return fmt.Errorf("insert invoice %s: %w", inv.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) ListByNegotiation(ctx context.Context, negotiationID string) ([]invoicing.Invoice, error) {
	return s.listInvoices(ctx,
		`SELECT id, negotiation_id, number, installment, value, emission_date, due_date, status
		 FROM invoices WHERE negotiation_id = ? ORDER BY installment, number`, negotiationID)
}

func (s *Store) ListByStatus(ctx context.Context, status invoicing.Status) ([]invoicing.Invoice, error) {
	return s.listInvoices(ctx,
		`SELECT id, negotiation_id, number, installment, value, emission_date, due_date, status
		 FROM invoices WHERE status = ? ORDER BY due_date`, string(status))
}

func (s *Store) listInvoices(ctx context.Context, query string, arg interface{}) ([]invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invoicing.Invoice
	for rows.Next() {
		var (
			inv                      invoicing.Invoice
			value, emission, due, st string
		)
		if err := rows.Scan(&inv.ID, &inv.NegotiationID, &inv.Number, &inv.Installment,
			&value, &emission, &due, &st); err != nil {
			return nil, err
		}
		inv.Value = billing.MustDecimal(value)
		inv.EmissionDate = parseDateCol(emission)
		inv.DueDate = parseDateCol(due)
		inv.Status = invoicing.Status(st)
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *Store) BulkUpdateStatus(ctx context.Context, ids []string, status invoicing.Status) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, string(status))
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE id IN (`+placeholders+`)`, args...)
	return err
}

func (s *Store) UpdateDates(ctx context.Context, id string, emissionDate, dueDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET emission_date = ?, due_date = ? WHERE id = ?`,
		dateCol(emissionDate), dateCol(dueDate), id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return invoicing.ErrInvoiceNotFound
	}
	return nil
}

// =============================================================================
// SWEEP RUNS
// =============================================================================

func (s *Store) RecordSweepRun(ctx context.Context, run invoicing.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sweep_runs (id, at, overdue_count, invoice_ids) VALUES (?, ?, ?, ?)`,
		run.ID, run.At.UTC().Format(time.RFC3339), run.OverdueCount, strings.Join(run.InvoiceIDs, ","))
	return err
}

func (s *Store) ListSweepRuns(ctx context.Context, limit int) ([]invoicing.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, overdue_count, invoice_ids FROM sweep_runs ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invoicing.SweepRun
	for rows.Next() {
		var (
			run      invoicing.SweepRun
			at, idsC string
		)
		if err := rows.Scan(&run.ID, &at, &run.OverdueCount, &idsC); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339, at); err == nil {
			run.At = parsed
		}
		if idsC != "" {
			run.InvoiceIDs = strings.Split(idsC, ",")
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (s *Store) PutTemplate(ctx context.Context, tpl *planning.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	definition, err := factory.ToJSON(tpl)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, definition) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, definition = excluded.definition`,
		tpl.ID, tpl.Name, definition)
	return err
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*planning.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var definition string
	err := s.db.QueryRowContext(ctx,
		`SELECT definition FROM templates WHERE id = ?`, id).Scan(&definition)
	if err == sql.ErrNoRows {
		return nil, planning.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return factory.ParseTemplate(definition)
}

func (s *Store) ListTemplates(ctx context.Context) ([]planning.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT definition FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []planning.Template
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return nil, err
		}
		tpl, err := factory.ParseTemplate(definition)
		if err != nil {
			return nil, err
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

// =============================================================================
// PROJECTS AND TASKS
// =============================================================================

func (s *Store) CreateProject(ctx context.Context, p *planning.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, company_id, negotiation_id, name, start_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.NegotiationID, p.Name,
		dateCol(p.StartDate), p.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) CreateTasks(ctx context.Context, projectID string, tasks []planning.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (project_id, template_task_id, task_order, name, start_date, end_date, estimated_hours, assignee_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, task := range tasks {
		if _, err := stmt.ExecContext(ctx,
			projectID, task.TemplateTaskID, task.Order, task.Name,
			dateCol(task.StartDate), dateCol(task.EndDate),
			task.EstimatedHours.String(), task.AssigneeID,
		); err != nil {
			return fmt.Errorf("insert task %q: %w", task.Name, err)
		}
	}

	return tx.Commit()
}

func (s *Store) ListTasks(ctx context.Context, projectID string) ([]planning.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT template_task_id, task_order, name, start_date, end_date, estimated_hours, assignee_id
		FROM tasks WHERE project_id = ? ORDER BY task_order`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []planning.ScheduledTask
	for rows.Next() {
		var (
			task                 planning.ScheduledTask
			start, end, hours    string
			templateID, assignee sql.NullString
		)
		if err := rows.Scan(&templateID, &task.Order, &task.Name, &start, &end, &hours, &assignee); err != nil {
			return nil, err
		}
		task.TemplateTaskID = templateID.String
		task.AssigneeID = assignee.String
		task.StartDate = parseDateCol(start)
		task.EndDate = parseDateCol(end)
		task.EstimatedHours = billing.MustDecimal(hours)
		out = append(out, task)
	}
	return out, rows.Err()
}
