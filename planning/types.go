/*
Package planning instantiates project task lists from reusable templates.

PURPOSE:
  A project template is an ordered list of task definitions, each with a
  scheduling rule: a fixed offset from project start, or a predecessor
  reference plus an offset from that predecessor's end. This package
  resolves those rules into concrete start/end dates when a project is
  created from a template.

KEY CONCEPTS IN THIS FILE (types.go):
  - TemplateTask: One reusable task definition with its scheduling rule
  - ScheduledTask: The concrete, dated result of instantiation
  - Preview semantics: scheduled dates are editable before persisting;
    only the initial computation applies the dependency rules

SEE ALSO:
  - scheduler.go: The single-pass date resolution algorithm
  - factory/template.go: JSON template definitions
*/
package planning

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTemplateNotFound is returned by stores for a missing template.
var ErrTemplateNotFound = errors.New("template not found")

// =============================================================================
// TEMPLATE
// =============================================================================

// Template is a reusable, read-only task list. The scheduler never mutates
// templates.
type Template struct {
	ID    string
	Name  string
	Tasks []TemplateTask
}

// TemplateTask is one task definition inside a template.
//
// Exactly one scheduling rule is populated: OffsetDaysFromStart (absolute)
// or PredecessorID (+ OffsetDaysFromPredecessor, relative). With neither
// set, the task starts when the previous task in list order ends.
type TemplateTask struct {
	ID             string
	Order          int
	Name           string
	DurationDays   int // minimum 1; 0 means unspecified
	EstimatedHours decimal.Decimal

	OffsetDaysFromStart       *int
	PredecessorID             string
	OffsetDaysFromPredecessor int
}

// =============================================================================
// SCHEDULED TASK
// =============================================================================

// ScheduledTask is a concrete, project-bound task produced by instantiation.
// Editable by the user before persisting; edits do not cascade to dependents.
type ScheduledTask struct {
	TemplateTaskID string
	Order          int
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	EstimatedHours decimal.Decimal
	AssigneeID     string // placeholder, filled in by the user
}

// SetEndDate applies a preview edit to the task's end date. An end date that
// would precede the start date is auto-corrected to equal it, never rejected.
func (t *ScheduledTask) SetEndDate(end time.Time) {
	if end.Before(t.StartDate) {
		end = t.StartDate
	}
	t.EndDate = end
}

// =============================================================================
// PROJECT
// =============================================================================

// Project groups the tasks instantiated for a closed negotiation.
type Project struct {
	ID            string
	CompanyID     string
	NegotiationID string
	Name          string
	StartDate     time.Time
	CreatedAt     time.Time
}

// =============================================================================
// STORE INTERFACES - implemented by store/sqlite and store/memory
// =============================================================================

// TemplateStore provides read access to templates and registration of new ones.
type TemplateStore interface {
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	PutTemplate(ctx context.Context, tpl *Template) error
}

// ProjectStore persists projects and their instantiated tasks.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *Project) error
	CreateTasks(ctx context.Context, projectID string, tasks []ScheduledTask) error
	ListTasks(ctx context.Context, projectID string) ([]ScheduledTask, error)
}
