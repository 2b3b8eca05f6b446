package automation

import (
	"time"

	"opsboard/internal/core"
)

// Firing is a rule whose predicate held for one update, with the fields to create.
type Firing struct {
	Rule   Rule
	Fields core.Record
}

// Evaluate returns the rules triggered by applying payload on top of prev.
//
// A rule fires only when the payload itself sets the watched field and the
// value moves onto the trigger: prev != trigger && next == trigger. Re-saving
// a record that is already done or won creates nothing. Guards and mappings
// see the merged record so fields not resent in the payload still count.
func Evaluate(rules []Rule, entity string, prev, payload core.Record, now time.Time) []Firing {
	var fired []Firing
	for _, rule := range rules {
		if rule.Source != entity {
			continue
		}
		if _, ok := payload[rule.Field]; !ok {
			continue
		}
		if !transitioned(rule, prev, payload) {
			continue
		}
		merged := prev.Merge(payload)
		if rule.Guard != nil && !rule.Guard(merged) {
			continue
		}
		fired = append(fired, Firing{Rule: rule, Fields: rule.Map(merged, now)})
	}
	return fired
}

func transitioned(rule Rule, prev, payload core.Record) bool {
	next := core.ToString(payload[rule.Field])
	before := core.ToString(prev[rule.Field])
	return next == rule.Trigger && before != rule.Trigger
}
