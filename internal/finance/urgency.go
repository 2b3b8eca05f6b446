package finance

import (
	"fmt"
	"strings"
)

// Urgency is a coarse severity tier for an overdue debt.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// UrgencyPolicy classifies a debt by how many days it is overdue.
type UrgencyPolicy interface {
	Classify(daysOverdue float64) Urgency
}

// CubePolicy is the single-threshold policy used by the board summary cube.
type CubePolicy struct {
	Threshold float64
}

func (p CubePolicy) Classify(days float64) Urgency {
	if days > p.Threshold {
		return UrgencyCritical
	}
	return UrgencyLow
}

// DashboardPolicy is the tiered policy used by the accounting dashboard.
type DashboardPolicy struct {
	Critical float64
	High     float64
	Medium   float64
}

func (p DashboardPolicy) Classify(days float64) Urgency {
	switch {
	case days > p.Critical:
		return UrgencyCritical
	case days > p.High:
		return UrgencyHigh
	case days > p.Medium:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Policy names. Cube and dashboard thresholds are independent of each other.
const (
	PolicyCube      = "cube"
	PolicyDashboard = "dashboard"
)

var urgencyPolicies = map[string]UrgencyPolicy{
	PolicyCube:      CubePolicy{Threshold: 30},
	PolicyDashboard: DashboardPolicy{Critical: 180, High: 100, Medium: 30},
}

// GetUrgencyPolicy returns the named policy.
func GetUrgencyPolicy(name string) (UrgencyPolicy, error) {
	p, ok := urgencyPolicies[name]
	if !ok {
		return nil, fmt.Errorf("unknown urgency policy: %s", name)
	}
	return p, nil
}

// ParseUrgency normalises an export tag; unknown tags return false.
func ParseUrgency(s string) (Urgency, bool) {
	switch u := Urgency(strings.ToLower(strings.TrimSpace(s))); u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return u, true
	}
	return "", false
}
