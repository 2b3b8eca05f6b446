package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount converts a record value into an exact decimal. Numeric strings may
// carry thousands separators and a shekel sign ("₪1,250.50"). Anything that
// does not parse is zero so that one bad cell never poisons a total.
func Amount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case int32:
		return decimal.NewFromInt(int64(x))
	case decimal.Decimal:
		return x
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "₪")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// SumField adds up Amount(field) over records accepted by keep. A nil keep
// accepts every record.
func SumField(records []Record, field string, keep func(Record) bool) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if keep != nil && !keep(r) {
			continue
		}
		total = total.Add(Amount(r[field]))
	}
	return total
}
