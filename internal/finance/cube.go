package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"opsboard/internal/core"
)

// CubeSummary is the small statistic card shown above a board.
type CubeSummary struct {
	OverdueDebtors  int             `json:"overdueDebtors"`
	OverdueTotal    decimal.Decimal `json:"overdueTotal"`
	CriticalDebtors int             `json:"criticalDebtors"`
	OpenInvoices    int             `json:"openInvoices"`
	ActiveRetainers int             `json:"activeRetainers"`
}

// Cube summarises the whole dataset. Debtor urgency is always recomputed with
// the cube policy; export tags are ignored here.
func Cube(ds Dataset) CubeSummary {
	policy := urgencyPolicies[PolicyCube]
	var s CubeSummary
	s.OverdueTotal = decimal.Zero

	for _, d := range ds.Debtors {
		days, _ := core.ParseLeadingNumber(d["days_overdue"])
		if days <= 0 {
			continue
		}
		s.OverdueDebtors++
		s.OverdueTotal = s.OverdueTotal.Add(core.Amount(d["balance"]))
		if policy.Classify(days) == UrgencyCritical {
			s.CriticalDebtors++
		}
	}
	for _, inv := range ds.Invoices {
		if strings.EqualFold(inv.String("status"), "open") {
			s.OpenInvoices++
		}
	}
	for _, r := range ds.Retainers {
		if strings.EqualFold(r.String("status"), "active") {
			s.ActiveRetainers++
		}
	}
	return s
}
