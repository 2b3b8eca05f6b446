// Package boards implements the sort/filter engine shared by every board.
//
// A Board holds at most one active SortSpec and an ordered set of
// FilterSpecs. Both are persisted through a ViewStore keyed by board name, so
// a board reopens with the view the user left it in.
package boards

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the sort order of a SortSpec.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Operator is the comparison a FilterSpec applies.
type Operator string

const (
	Equals      Operator = "equals"
	Contains    Operator = "contains"
	StartsWith  Operator = "startsWith"
	EndsWith    Operator = "endsWith"
	GreaterThan Operator = "greaterThan"
	LessThan    Operator = "lessThan"
)

// Operators lists every supported filter operator.
var Operators = []Operator{Equals, Contains, StartsWith, EndsWith, GreaterThan, LessThan}

var (
	ErrEmptyColumn      = errors.New("empty column")
	ErrInvalidDirection = errors.New("invalid sort direction")
	ErrInvalidOperator  = errors.New("invalid filter operator")
)

type (
	// SortSpec orders a board by one column.
	SortSpec struct {
		Column    string    `json:"column"`
		Direction Direction `json:"direction"`
	}

	// FilterSpec keeps rows whose column satisfies Operator against Value.
	FilterSpec struct {
		Column   string   `json:"column"`
		Operator Operator `json:"operator"`
		Value    string   `json:"value"`
	}
)

func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

func (o Operator) Valid() bool {
	for _, op := range Operators {
		if op == o {
			return true
		}
	}
	return false
}

// Numeric reports whether the operator compares parsed numbers.
func (o Operator) Numeric() bool {
	return o == GreaterThan || o == LessThan
}

func (s SortSpec) Validate() error {
	if strings.TrimSpace(s.Column) == "" {
		return ErrEmptyColumn
	}
	if !s.Direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, s.Direction)
	}
	return nil
}

func (f FilterSpec) Validate() error {
	if strings.TrimSpace(f.Column) == "" {
		return ErrEmptyColumn
	}
	if !f.Operator.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperator, f.Operator)
	}
	return nil
}

// ValidateFilters checks every spec and reports the first offending index.
func ValidateFilters(specs []FilterSpec) error {
	for i, f := range specs {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
	}
	return nil
}
