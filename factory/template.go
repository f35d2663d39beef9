/*
Package factory provides JSON to Go project-template conversion.

PURPOSE:
  Converts JSON template definitions into planning.Template values. This
  enables template configuration without code changes - operations staff
  can define task lists in JSON, and the factory builds the proper Go
  structs with defaults applied and rules validated.

JSON SCHEMA:
  {
    "id": "web-project",
    "name": "Website project",
    "tasks": [
      {
        "name": "Discovery",
        "duration_days": 3,
        "estimated_hours": "16h",
        "offset_days_from_start": 0
      },
      {
        "name": "Build",
        "duration_days": 10,
        "predecessor": "Discovery",
        "offset_days_from_predecessor": 0
      }
    ]
  }

KEY FEATURES:
  - Validates that at most one scheduling rule is set per task
  - Predecessor references are by task name within the same template
  - Estimated hours use the billing duration grammar ("16h", "1h30min")
  - Order is assigned from list position when omitted

USAGE:
  tpl, err := factory.ParseTemplate(jsonString)
  tasks := planning.Instantiate(tpl, projectStart)

SEE ALSO:
  - planning: Template/TemplateTask definitions and the scheduler
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/dealflow-engine/billing"
	"github.com/warp/dealflow-engine/planning"
)

// =============================================================================
// JSON TYPES
// =============================================================================

// TemplateJSON is the serialized template definition.
type TemplateJSON struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Tasks []TaskJSON `json:"tasks"`
}

// TaskJSON is one task definition inside a template document.
type TaskJSON struct {
	Name           string `json:"name"`
	Order          int    `json:"order,omitempty"`
	DurationDays   int    `json:"duration_days,omitempty"`
	EstimatedHours string `json:"estimated_hours,omitempty"`

	OffsetDaysFromStart       *int   `json:"offset_days_from_start,omitempty"`
	Predecessor               string `json:"predecessor,omitempty"`
	OffsetDaysFromPredecessor int    `json:"offset_days_from_predecessor,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseTemplate converts a JSON template definition into a planning.Template.
func ParseTemplate(raw string) (*planning.Template, error) {
	var doc TemplateJSON
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return FromJSON(doc)
}

// FromJSON builds a planning.Template from an already-decoded definition.
func FromJSON(doc TemplateJSON) (*planning.Template, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if len(doc.Tasks) == 0 {
		return nil, fmt.Errorf("template %q has no tasks", doc.Name)
	}

	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	tpl := &planning.Template{ID: id, Name: doc.Name}
	nameToID := make(map[string]string, len(doc.Tasks))

	for i, task := range doc.Tasks {
		if task.Name == "" {
			return nil, fmt.Errorf("template %q: task %d has no name", doc.Name, i+1)
		}
		if task.OffsetDaysFromStart != nil && task.Predecessor != "" {
			return nil, fmt.Errorf("template %q: task %q declares both scheduling rules", doc.Name, task.Name)
		}
		if _, dup := nameToID[task.Name]; dup {
			return nil, fmt.Errorf("template %q: duplicate task name %q", doc.Name, task.Name)
		}

		order := task.Order
		if order == 0 {
			order = i + 1
		}

		hours := billing.MustDecimal("0")
		if task.EstimatedHours != "" {
			parsed, err := billing.ParseHours(task.EstimatedHours)
			if err != nil {
				return nil, fmt.Errorf("template %q: task %q: %w", doc.Name, task.Name, err)
			}
			hours = parsed
		}

		taskID := fmt.Sprintf("%s/%d", id, order)
		nameToID[task.Name] = taskID

		tt := planning.TemplateTask{
			ID:                        taskID,
			Order:                     order,
			Name:                      task.Name,
			DurationDays:              task.DurationDays,
			EstimatedHours:            hours,
			OffsetDaysFromStart:       task.OffsetDaysFromStart,
			OffsetDaysFromPredecessor: task.OffsetDaysFromPredecessor,
		}

		if task.Predecessor != "" {
			predID, ok := nameToID[task.Predecessor]
			if !ok {
				// Backward-only references resolve; anything else falls to
				// the scheduler's continuity rule, so reject it loudly here.
				return nil, fmt.Errorf("template %q: task %q references unknown or later task %q",
					doc.Name, task.Name, task.Predecessor)
			}
			tt.PredecessorID = predID
		}

		tpl.Tasks = append(tpl.Tasks, tt)
	}

	return tpl, nil
}

// ToJSON renders a planning.Template back into its serialized definition.
// Used by the store layer; predecessor references are re-expressed by name.
func ToJSON(tpl *planning.Template) (string, error) {
	doc := TemplateJSON{ID: tpl.ID, Name: tpl.Name}
	idToName := make(map[string]string, len(tpl.Tasks))
	for _, task := range tpl.Tasks {
		idToName[task.ID] = task.Name
	}

	for _, task := range tpl.Tasks {
		tj := TaskJSON{
			Name:                      task.Name,
			Order:                     task.Order,
			DurationDays:              task.DurationDays,
			OffsetDaysFromStart:       task.OffsetDaysFromStart,
			OffsetDaysFromPredecessor: task.OffsetDaysFromPredecessor,
		}
		if !task.EstimatedHours.IsZero() {
			tj.EstimatedHours = billing.FormatHours(task.EstimatedHours)
		}
		if task.PredecessorID != "" {
			tj.Predecessor = idToName[task.PredecessorID]
		}
		doc.Tasks = append(doc.Tasks, tj)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("serialize template: %w", err)
	}
	return string(raw), nil
}

// =============================================================================
// STOCK TEMPLATES
// =============================================================================

// WebsiteProjectJSON is a stock definition for a standard website build.
func WebsiteProjectJSON() string {
	return `{
		"id": "web-project",
		"name": "Website project",
		"tasks": [
			{"name": "Discovery", "duration_days": 3, "estimated_hours": "16h", "offset_days_from_start": 0},
			{"name": "Design", "duration_days": 5, "estimated_hours": "24h", "predecessor": "Discovery"},
			{"name": "Build", "duration_days": 10, "estimated_hours": "60h", "predecessor": "Design"},
			{"name": "QA", "duration_days": 3, "estimated_hours": "12h", "predecessor": "Build"},
			{"name": "Launch", "duration_days": 1, "estimated_hours": "4h", "predecessor": "QA"}
		]
	}`
}

// AutomationProjectJSON is a stock definition for a process automation.
func AutomationProjectJSON() string {
	return `{
		"id": "automation-project",
		"name": "Automation project",
		"tasks": [
			{"name": "Process mapping", "duration_days": 4, "estimated_hours": "20h", "offset_days_from_start": 0},
			{"name": "Integration setup", "duration_days": 5, "estimated_hours": "30h", "predecessor": "Process mapping", "offset_days_from_predecessor": 2},
			{"name": "Bot development", "duration_days": 8, "estimated_hours": "48h", "predecessor": "Integration setup"},
			{"name": "Parallel validation", "duration_days": 5, "estimated_hours": "10h", "offset_days_from_start": 15},
			{"name": "Rollout", "duration_days": 2, "estimated_hours": "8h"}
		]
	}`
}
