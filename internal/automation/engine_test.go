package automation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"opsboard/internal/core"
)

var evalDay = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func TestEvaluateTaskBilling(t *testing.T) {
	tests := []struct {
		name    string
		prev    core.Record
		payload core.Record
		want    core.Record
	}{
		{
			name:    "done with billable hours",
			prev:    core.Record{"id": "t-1", "title": "Logo", "status": "in_progress", "actualHours": 0.0},
			payload: core.Record{"status": "done", "billable": "included", "actualHours": 6.0},
			want: core.Record{
				"amount":      2100.0,
				"hours":       6.0,
				"chargeType":  "hourly",
				"status":      "pending",
				"taskId":      "t-1",
				"description": "Logo",
				"date":        "2025-03-14",
			},
		},
		{
			name:    "billable yes with hours as string and client",
			prev:    core.Record{"id": "t-2", "title": "Site", "status": "todo", "clientId": "c-9", "clientName": "Acme"},
			payload: core.Record{"status": "done", "billable": "Yes", "actualHours": "2.5"},
			want: core.Record{
				"amount":      875.0,
				"hours":       2.5,
				"chargeType":  "hourly",
				"status":      "pending",
				"taskId":      "t-2",
				"description": "Site",
				"date":        "2025-03-14",
				"clientId":    "c-9",
				"clientName":  "Acme",
			},
		},
		{
			name:    "guard fields already stored on the task",
			prev:    core.Record{"id": "t-3", "title": "Ads", "status": "review", "billable": "included", "actualHours": 1.0},
			payload: core.Record{"status": "done"},
			want: core.Record{
				"amount":      350.0,
				"hours":       1.0,
				"chargeType":  "hourly",
				"status":      "pending",
				"taskId":      "t-3",
				"description": "Ads",
				"date":        "2025-03-14",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired := Evaluate(Rules(), core.EntityTasks, tt.prev, tt.payload, evalDay)
			if len(fired) != 1 {
				t.Fatalf("expected one firing, got %d", len(fired))
			}
			if fired[0].Rule.Target != core.EntityBilling {
				t.Errorf("target = %s", fired[0].Rule.Target)
			}
			if diff := cmp.Diff(tt.want, fired[0].Fields); diff != "" {
				t.Errorf("billing fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateNoFiring(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		prev    core.Record
		payload core.Record
	}{
		{"not billable", core.EntityTasks, core.Record{"status": "todo"}, core.Record{"status": "done", "billable": "no"}},
		{"zero hours", core.EntityTasks, core.Record{"status": "todo"}, core.Record{"status": "done", "billable": "included", "actualHours": 0}},
		{"missing hours", core.EntityTasks, core.Record{"status": "todo"}, core.Record{"status": "done", "billable": "yes"}},
		{"unparseable hours", core.EntityTasks, core.Record{"status": "todo"}, core.Record{"status": "done", "billable": "yes", "actualHours": "many"}},
		{"already done", core.EntityTasks, core.Record{"status": "done"}, core.Record{"status": "done", "billable": "yes", "actualHours": 3}},
		{"status not in payload", core.EntityTasks, core.Record{"status": "done", "billable": "yes", "actualHours": 3}, core.Record{"title": "renamed"}},
		{"other status", core.EntityTasks, core.Record{"status": "todo"}, core.Record{"status": "in_progress", "billable": "yes", "actualHours": 3}},
		{"lead already won", core.EntityLeads, core.Record{"status": "won"}, core.Record{"status": "won", "leadName": "Acme"}},
		{"lead lost", core.EntityLeads, core.Record{"status": "new"}, core.Record{"status": "lost"}},
		{"entity without rules", core.EntityEmployees, nil, core.Record{"status": "done"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if fired := Evaluate(Rules(), tt.entity, tt.prev, tt.payload, evalDay); len(fired) != 0 {
				t.Fatalf("expected no firing, got %+v", fired)
			}
		})
	}
}

func TestEvaluateLeadClient(t *testing.T) {
	prev := core.Record{"id": "l-1", "status": "negotiation", "email": "a@acme.test", "notes": "VIP"}
	payload := core.Record{"status": "won", "leadName": "Acme", "estimatedValue": 5000}

	fired := Evaluate(Rules(), core.EntityLeads, prev, payload, evalDay)
	if len(fired) != 1 {
		t.Fatalf("expected one firing, got %d", len(fired))
	}
	want := core.Record{
		"clientName":      "Acme",
		"businessType":    "hourly",
		"status":          "active",
		"monthlyRetainer": 5000.0,
		"startDate":       "2025-03-14",
		"email":           "a@acme.test",
		"notes":           "VIP",
	}
	if diff := cmp.Diff(want, fired[0].Fields); diff != "" {
		t.Errorf("client fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateLeadWithoutEstimate(t *testing.T) {
	fired := Evaluate(Rules(), core.EntityLeads, nil, core.Record{"status": "won", "leadName": "Beta"}, evalDay)
	if len(fired) != 1 {
		t.Fatalf("expected one firing, got %d", len(fired))
	}
	if got := fired[0].Fields["monthlyRetainer"]; got != 0.0 {
		t.Fatalf("monthlyRetainer = %v, want 0", got)
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0].Trigger = "mutated"
	if Rules()[0].Trigger == "mutated" {
		t.Fatal("Rules exposed the package catalogue")
	}
}
