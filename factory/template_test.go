package factory_test

import (
	"testing"
	"time"

	"github.com/warp/dealflow-engine/factory"
	"github.com/warp/dealflow-engine/planning"
)

func TestParseTemplate_StockWebsiteProject(t *testing.T) {
	// GIVEN: The stock website template
	// WHEN: Parsing and instantiating from 2024-04-01
	// THEN: Tasks chain Discovery -> Design -> Build -> QA -> Launch

	tpl, err := factory.ParseTemplate(factory.WebsiteProjectJSON())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(tpl.Tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tpl.Tasks))
	}

	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	scheduled := planning.Instantiate(tpl, start)

	if !scheduled[0].StartDate.Equal(start) {
		t.Errorf("Discovery should start at project start, got %v", scheduled[0].StartDate)
	}
	for i := 1; i < len(scheduled); i++ {
		if !scheduled[i].StartDate.Equal(scheduled[i-1].EndDate) {
			t.Errorf("task %q should start when %q ends: %v vs %v",
				scheduled[i].Name, scheduled[i-1].Name, scheduled[i].StartDate, scheduled[i-1].EndDate)
		}
	}
	if scheduled[1].EstimatedHours.IsZero() {
		t.Error("estimated hours should parse from the duration grammar")
	}
}

func TestParseTemplate_Validation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no name", `{"tasks":[{"name":"a"}]}`},
		{"no tasks", `{"name":"empty"}`},
		{"unnamed task", `{"name":"x","tasks":[{"duration_days":1}]}`},
		{"both rules", `{"name":"x","tasks":[{"name":"a","offset_days_from_start":1,"predecessor":"b"}]}`},
		{"unknown predecessor", `{"name":"x","tasks":[{"name":"a","predecessor":"ghost"}]}`},
		{"forward predecessor", `{"name":"x","tasks":[{"name":"a","predecessor":"b"},{"name":"b"}]}`},
		{"duplicate names", `{"name":"x","tasks":[{"name":"a"},{"name":"a"}]}`},
		{"bad hours", `{"name":"x","tasks":[{"name":"a","estimated_hours":"soon"}]}`},
		{"not json", `nope`},
	}

	for _, tc := range cases {
		if _, err := factory.ParseTemplate(tc.raw); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestTemplateJSON_RoundTrip(t *testing.T) {
	original, err := factory.ParseTemplate(factory.AutomationProjectJSON())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	raw, err := factory.ToJSON(original)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	reparsed, err := factory.ParseTemplate(raw)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	if len(reparsed.Tasks) != len(original.Tasks) {
		t.Fatalf("task count changed: %d vs %d", len(reparsed.Tasks), len(original.Tasks))
	}
	for i := range original.Tasks {
		o, r := original.Tasks[i], reparsed.Tasks[i]
		if o.Name != r.Name || o.DurationDays != r.DurationDays ||
			o.PredecessorID != r.PredecessorID ||
			o.OffsetDaysFromPredecessor != r.OffsetDaysFromPredecessor ||
			!o.EstimatedHours.Equal(r.EstimatedHours) {
			t.Errorf("task %d changed through round trip: %+v vs %+v", i, o, r)
		}
	}
}
