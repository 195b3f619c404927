// Package matcher holds the predicate schema and the matching engine: pure
// logic, no I/O. A predicate is a set of independent clauses AND-ed
// together; a clause with no bounds or values configured always passes.
package matcher

import (
	"strings"
	"time"
)

// RangeClause bounds a numeric listing attribute. Nil bounds mean "no
// constraint on that side". A constrained clause evaluated against a listing
// that lacks the attribute fails closed.
type RangeClause struct {
	Min *int64 `json:"min"`
	Max *int64 `json:"max"`
}

// Constrained reports whether either bound is set.
func (c RangeClause) Constrained() bool {
	return c.Min != nil || c.Max != nil
}

// Pass evaluates the clause against an optional listing value.
func (c RangeClause) Pass(value *int64) bool {
	if !c.Constrained() {
		return true
	}
	if value == nil {
		return false
	}
	if c.Min != nil && *value < *c.Min {
		return false
	}
	if c.Max != nil && *value > *c.Max {
		return false
	}
	return true
}

// TimeClause bounds a timestamp attribute (job application deadlines).
// Same semantics as RangeClause.
type TimeClause struct {
	After  *time.Time `json:"after"`
	Before *time.Time `json:"before"`
}

func (c TimeClause) Constrained() bool {
	return c.After != nil || c.Before != nil
}

func (c TimeClause) Pass(value *time.Time) bool {
	if !c.Constrained() {
		return true
	}
	if value == nil {
		return false
	}
	if c.After != nil && value.Before(*c.After) {
		return false
	}
	if c.Before != nil && value.After(*c.Before) {
		return false
	}
	return true
}

// StringSet is a set-membership clause over a string attribute. An empty set
// is no constraint. Comparison is case-insensitive so stored country codes
// like "NO" and "no" do not stop matching each other.
type StringSet []string

func (s StringSet) Pass(value string) bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range s {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// IDSet is a set-membership clause over a numeric foreign key (city, brand).
// A non-empty set against a listing without the attribute fails closed.
type IDSet []int64

func (s IDSet) Pass(value *int64) bool {
	if len(s) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	for _, v := range s {
		if v == *value {
			return true
		}
	}
	return false
}
