// Package finance merges bookkeeping exports into dashboard figures: date
// ranges, invoice and debtor filters, urgency tiers and summary statistics.
package finance

import (
	"context"

	"opsboard/internal/core"
)

// Dataset is the merge of the four bookkeeping exports.
type Dataset struct {
	Clients   []core.Record `json:"clients"`
	Invoices  []core.Record `json:"invoices"`
	Retainers []core.Record `json:"retainers"`
	Debtors   []core.Record `json:"debtors_report"`
}

// Export names shared by every source.
const (
	ExportClients   = "clients"
	ExportInvoices  = "invoices"
	ExportRetainers = "retainers"
	ExportDebtors   = "debtors_report"
)

// Exports lists the export names in a stable order.
var Exports = []string{ExportClients, ExportInvoices, ExportRetainers, ExportDebtors}

// Set stores rows under an export name. Unknown names are ignored.
func (d *Dataset) Set(name string, rows []core.Record) {
	if rows == nil {
		rows = []core.Record{}
	}
	switch name {
	case ExportClients:
		d.Clients = rows
	case ExportInvoices:
		d.Invoices = rows
	case ExportRetainers:
		d.Retainers = rows
	case ExportDebtors:
		d.Debtors = rows
	}
}

// Normalize replaces nil arrays with empty ones.
func (d Dataset) Normalize() Dataset {
	d.Set(ExportClients, d.Clients)
	d.Set(ExportInvoices, d.Invoices)
	d.Set(ExportRetainers, d.Retainers)
	d.Set(ExportDebtors, d.Debtors)
	return d
}

// Source fetches a dataset from an upstream bookkeeping export.
type Source interface {
	Fetch(ctx context.Context) (Dataset, error)
}
