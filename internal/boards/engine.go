package boards

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"opsboard/internal/core"
)

// Locale used for case folding and string ordering on every board.
var Locale = language.Hebrew

// Apply filters records and then sorts the survivors. It never modifies the
// input slice; a nil input yields an empty, non-nil result.
func Apply(records []core.Record, sortSpec *SortSpec, filters []FilterSpec) []core.Record {
	rows := Filter(records, filters)
	if sortSpec != nil {
		Sort(rows, *sortSpec)
	}
	return rows
}

// Filter returns the records that satisfy every spec (logical AND). An empty
// filter set returns a copy of the input in its original order.
func Filter(records []core.Record, filters []FilterSpec) []core.Record {
	out := make([]core.Record, 0, len(records))
	if len(filters) == 0 {
		return append(out, records...)
	}
	lower := cases.Lower(Locale)
	for _, r := range records {
		if matchesAll(lower, r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(lower cases.Caser, r core.Record, filters []FilterSpec) bool {
	for _, f := range filters {
		if !matches(lower, r, f) {
			return false
		}
	}
	return true
}

func matches(lower cases.Caser, r core.Record, f FilterSpec) bool {
	if f.Operator.Numeric() {
		got, ok := core.ParseLeadingNumber(r[f.Column])
		if !ok {
			return false
		}
		want, ok := core.ParseLeadingNumber(f.Value)
		if !ok {
			return false
		}
		if f.Operator == GreaterThan {
			return got > want
		}
		return got < want
	}

	got := lower.String(core.ToString(r[f.Column]))
	want := lower.String(f.Value)
	switch f.Operator {
	case Equals:
		return got == want
	case Contains:
		return strings.Contains(got, want)
	case StartsWith:
		return strings.HasPrefix(got, want)
	case EndsWith:
		return strings.HasSuffix(got, want)
	default:
		return false
	}
}

// Sort orders records in place by spec.Column. Null values go last in both
// directions; two numeric values compare numerically; everything else
// compares with the board locale's collation. Ties keep their input order.
func Sort(records []core.Record, spec SortSpec) {
	col := collate.New(Locale)
	sort.SliceStable(records, func(i, j int) bool {
		return less(col, records[i][spec.Column], records[j][spec.Column], spec.Direction)
	})
}

func less(col *collate.Collator, a, b any, dir Direction) bool {
	aNull, bNull := core.IsNull(a), core.IsNull(b)
	switch {
	case aNull && bNull:
		return false
	case aNull:
		return false
	case bNull:
		return true
	}

	cmp := compare(col, a, b)
	if dir == Desc {
		return cmp > 0
	}
	return cmp < 0
}

func compare(col *collate.Collator, a, b any) int {
	an, aok := core.ParseNumber(a)
	bn, bok := core.ParseNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return col.CompareString(core.ToString(a), core.ToString(b))
}
