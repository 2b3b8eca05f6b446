package finance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"opsboard/internal/core"
)

// All is the sentinel that disables a filter.
const All = "all"

// Filters are the auxiliary dashboard filters. Empty values behave like All.
type Filters struct {
	Status  string `json:"status"`
	Urgency string `json:"urgency"`
	Type    string `json:"type"`
}

// Document types accepted by the type filter.
var DocumentTypes = []string{"invoice", "receipt", "credit"}

var ErrUnknownType = errors.New("unknown document type")

// Validate rejects a type filter that names no known document type.
func (f Filters) Validate() error {
	t := strings.TrimSpace(f.Type)
	if t == "" || t == All {
		return nil
	}
	for _, dt := range DocumentTypes {
		if strings.EqualFold(t, dt) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
}

// Stats are derived from the filtered arrays only.
type Stats struct {
	TotalToCollect  decimal.Decimal `json:"totalToCollect"`
	TotalOverdue    decimal.Decimal `json:"totalOverdue"`
	ActiveRetainers int             `json:"activeRetainers"`
	TotalMRR        decimal.Decimal `json:"totalMRR"`
	TotalMRRPlanned decimal.Decimal `json:"totalMRRPlanned"`
}

// Result is the dashboard view of a dataset.
type Result struct {
	FilteredInvoices []core.Record `json:"filteredInvoices"`
	FilteredDebtors  []core.Record `json:"filteredDebtors"`
	Stats            Stats         `json:"stats"`
}

// Aggregate filters invoices and debtors and computes the dashboard stats.
// It never mutates the dataset and returns identical results for identical inputs.
//
// Invoices pass date, type and status predicates; debtors pass date and
// urgency predicates. Rows whose date cannot be parsed are always kept.
// Debtors without an urgency tag from the export are classified with the
// dashboard policy, and every returned debtor carries its effective urgency.
func Aggregate(ds Dataset, window Window, f Filters) Result {
	policy := urgencyPolicies[PolicyDashboard]

	invoices := []core.Record{}
	for _, inv := range ds.Invoices {
		if !inWindow(window, inv.String("date")) {
			continue
		}
		if !matchesType(inv, f.Type) {
			continue
		}
		if !matchesValue(inv.String("status"), f.Status) {
			continue
		}
		invoices = append(invoices, inv.Clone())
	}

	debtors := []core.Record{}
	for _, d := range ds.Debtors {
		if !inWindow(window, debtorDate(d)) {
			continue
		}
		urgency := effectiveUrgency(d, policy)
		if !matchesValue(string(urgency), f.Urgency) {
			continue
		}
		row := d.Clone()
		row["urgency"] = string(urgency)
		debtors = append(debtors, row)
	}

	return Result{
		FilteredInvoices: invoices,
		FilteredDebtors:  debtors,
		Stats:            computeStats(invoices, debtors, ds.Retainers, ds.Clients),
	}
}

func computeStats(invoices, debtors, retainers, clients []core.Record) Stats {
	active := 0
	for _, r := range retainers {
		if strings.EqualFold(r.String("status"), "active") {
			active++
		}
	}
	return Stats{
		TotalToCollect: core.SumField(invoices, "balance", func(r core.Record) bool {
			return strings.EqualFold(r.String("status"), "open")
		}),
		TotalOverdue:    core.SumField(debtors, "balance", nil),
		ActiveRetainers: active,
		TotalMRR:        core.SumField(retainers, "amount", nil),
		TotalMRRPlanned: core.SumField(clients, "monthly_income_planned", nil),
	}
}

func inWindow(w Window, raw string) bool {
	if w.Unbounded {
		return true
	}
	t, ok := core.ParseExportDate(raw, w.location())
	if !ok {
		return true
	}
	return w.Contains(t)
}

func debtorDate(r core.Record) string {
	if d := r.String("due_date"); d != "" {
		return d
	}
	return r.String("date")
}

func effectiveUrgency(r core.Record, policy UrgencyPolicy) Urgency {
	if u, ok := ParseUrgency(r.String("urgency")); ok {
		return u
	}
	days, _ := core.ParseLeadingNumber(r["days_overdue"])
	return policy.Classify(days)
}

func matchesValue(value, filter string) bool {
	if filter == "" || filter == All {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), filter)
}

func matchesType(r core.Record, filter string) bool {
	if filter == "" || filter == All {
		return true
	}
	t := r.String("type")
	if t == "" {
		t = r.String("doc_type")
	}
	return strings.EqualFold(strings.TrimSpace(t), filter)
}
