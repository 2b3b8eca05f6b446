// Package automation holds the fixed catalogue of status-triggered rules and
// the service that applies them after a primary record update.
package automation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"opsboard/internal/core"
)

// HourlyRate is the rate billed for completed task hours. It is not looked up
// per client even though clients carry an hourlyRate field.
const HourlyRate = 350

// Rule reacts to one field reaching a trigger value on a source entity by
// creating a record in the target entity.
type Rule struct {
	Name    string
	Source  string
	Field   string
	Trigger string
	Target  string
	// Guard is evaluated on the updated record; nil means always.
	Guard func(core.Record) bool
	// Map builds the target fields from the updated source record.
	Map func(src core.Record, now time.Time) core.Record

	Description    string
	SuccessMessage string
	FailureMessage string
}

// RuleInfo is the read-only view of a rule exposed to API clients.
type RuleInfo struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Field       string `json:"field"`
	Trigger     string `json:"trigger"`
	Target      string `json:"target"`
	Description string `json:"description"`
}

func (r Rule) Info() RuleInfo {
	return RuleInfo{
		Name:        r.Name,
		Source:      r.Source,
		Field:       r.Field,
		Trigger:     r.Trigger,
		Target:      r.Target,
		Description: r.Description,
	}
}

const (
	RuleTaskBilling = "task_done_billing"
	RuleLeadClient  = "lead_won_client"
)

var defaultRules = []Rule{
	{
		Name:           RuleTaskBilling,
		Source:         core.EntityTasks,
		Field:          "status",
		Trigger:        "done",
		Target:         core.EntityBilling,
		Guard:          billableWithHours,
		Map:            taskToBilling,
		Description:    "A completed billable task with logged hours creates a pending hourly charge",
		SuccessMessage: "נוצר חיוב אוטומטי עבור המשימה",
		FailureMessage: "המשימה עודכנה אך יצירת החיוב נכשלה",
	},
	{
		Name:           RuleLeadClient,
		Source:         core.EntityLeads,
		Field:          "status",
		Trigger:        "won",
		Target:         core.EntityClients,
		Map:            leadToClient,
		Description:    "A won lead becomes an active CRM client",
		SuccessMessage: "הליד הומר ללקוח חדש",
		FailureMessage: "הליד עודכן אך יצירת הלקוח נכשלה",
	},
}

// Rules returns the compiled-in rule catalogue.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

var billableValues = map[string]bool{"included": true, "yes": true}

func billableWithHours(r core.Record) bool {
	if !billableValues[strings.ToLower(strings.TrimSpace(r.String("billable")))] {
		return false
	}
	hours, ok := r.Number("actualHours")
	return ok && hours > 0
}

func taskToBilling(task core.Record, now time.Time) core.Record {
	hours, _ := task.Number("actualHours")
	amount := decimal.NewFromFloat(hours).Mul(decimal.NewFromInt(HourlyRate))

	out := core.Record{
		"amount":      amount.InexactFloat64(),
		"hours":       hours,
		"chargeType":  "hourly",
		"status":      "pending",
		"taskId":      task.ID(),
		"description": task.String("title"),
		"date":        core.DayString(now),
	}
	copyPresent(out, task, "clientId", "clientName")
	return out
}

func leadToClient(lead core.Record, now time.Time) core.Record {
	retainer := 0.0
	if v, ok := lead.Number("estimatedValue"); ok {
		retainer = v
	}

	out := core.Record{
		"clientName":      lead.String("leadName"),
		"businessType":    "hourly",
		"status":          "active",
		"monthlyRetainer": retainer,
		"startDate":       core.DayString(now),
	}
	copyPresent(out, lead, "contactPerson", "email", "phone", "notes")
	return out
}

func copyPresent(dst, src core.Record, fields ...string) {
	for _, f := range fields {
		if v, ok := src[f]; ok && v != nil {
			dst[f] = v
		}
	}
}
