package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{1250.5, "1250.5"},
		{int64(300), "300"},
		{"₪1,250.50", "1250.5"},
		{" 99.99 ", "99.99"},
		{"abc", "0"},
		{"", "0"},
		{nil, "0"},
		{true, "0"},
	}
	for _, tc := range cases {
		want := decimal.RequireFromString(tc.want)
		if got := Amount(tc.in); !got.Equal(want) {
			t.Fatalf("Amount(%v) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestSumFieldIsExact(t *testing.T) {
	records := []Record{
		{"balance": 0.1, "status": "open"},
		{"balance": 0.2, "status": "open"},
		{"balance": "1,000", "status": "paid"},
	}

	open := SumField(records, "balance", func(r Record) bool { return r.String("status") == "open" })
	if !open.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("open sum = %s, want 0.3", open)
	}

	all := SumField(records, "balance", nil)
	if !all.Equal(decimal.RequireFromString("1000.3")) {
		t.Fatalf("total sum = %s, want 1000.3", all)
	}
}
