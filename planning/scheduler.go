/*
scheduler.go - Dependency-aware template instantiation

PURPOSE:
  Resolves a template's scheduling rules into concrete task dates in a
  single forward pass. Templates are authored acyclically by construction,
  so no cycle detection is performed: a predecessor reference only resolves
  if the predecessor appeared EARLIER in list order; anything else falls
  through to the previous-task continuity rule.

RESOLUTION ORDER (per task):
  1. OffsetDaysFromStart set        -> projectStart + offset
  2. PredecessorID already resolved -> predecessor.end + predecessor offset
  3. A previous task exists         -> previousTask.end
  4. First task, no rule            -> projectStart

  endDate = startDate + durationDays (minimum 1 if unspecified)

The result is a PREVIEW: the caller lets the user edit dates and assignees
before tasks are persisted, and edits never cascade to dependents.

SEE ALSO:
  - types.go: TemplateTask / ScheduledTask
*/
package planning

import "time"

// Schedule computes concrete start/end dates for every task in template
// order. Pure function; the template is never mutated.
func Schedule(tasks []TemplateTask, projectStart time.Time) []ScheduledTask {
	scheduled := make([]ScheduledTask, 0, len(tasks))
	resolved := make(map[string]ScheduledTask, len(tasks))

	for i, task := range tasks {
		var start time.Time

		switch {
		case task.OffsetDaysFromStart != nil:
			start = projectStart.AddDate(0, 0, *task.OffsetDaysFromStart)

		case task.PredecessorID != "":
			if pred, ok := resolved[task.PredecessorID]; ok {
				start = pred.EndDate.AddDate(0, 0, task.OffsetDaysFromPredecessor)
			} else if i > 0 {
				// Forward or dangling reference: continuity rule.
				start = scheduled[i-1].EndDate
			} else {
				start = projectStart
			}

		case i > 0:
			start = scheduled[i-1].EndDate

		default:
			start = projectStart
		}

		duration := task.DurationDays
		if duration < 1 {
			duration = 1
		}

		st := ScheduledTask{
			TemplateTaskID: task.ID,
			Order:          task.Order,
			Name:           task.Name,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, duration),
			EstimatedHours: task.EstimatedHours,
		}

		scheduled = append(scheduled, st)
		if task.ID != "" {
			resolved[task.ID] = st
		}
	}

	return scheduled
}

// Instantiate resolves a whole template against a project start date.
func Instantiate(tpl *Template, projectStart time.Time) []ScheduledTask {
	return Schedule(tpl.Tasks, projectStart)
}
