package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func TestRangeClause_Pass(t *testing.T) {
	tests := []struct {
		name   string
		clause RangeClause
		value  *int64
		want   bool
	}{
		{
			name:   "unconstrained clause passes any value",
			clause: RangeClause{},
			value:  i64(1999),
			want:   true,
		},
		{
			name:   "unconstrained clause passes missing value",
			clause: RangeClause{},
			value:  nil,
			want:   true,
		},
		{
			name:   "value inside both bounds",
			clause: RangeClause{Min: i64(2015), Max: i64(2020)},
			value:  i64(2018),
			want:   true,
		},
		{
			name:   "value below min",
			clause: RangeClause{Min: i64(2015), Max: i64(2020)},
			value:  i64(2012),
			want:   false,
		},
		{
			name:   "value above max",
			clause: RangeClause{Min: i64(2015), Max: i64(2020)},
			value:  i64(2021),
			want:   false,
		},
		{
			name:   "bounds are inclusive",
			clause: RangeClause{Min: i64(2015), Max: i64(2020)},
			value:  i64(2015),
			want:   true,
		},
		{
			name:   "min only",
			clause: RangeClause{Min: i64(100000)},
			value:  i64(250000),
			want:   true,
		},
		{
			name:   "max only",
			clause: RangeClause{Max: i64(100000)},
			value:  i64(250000),
			want:   false,
		},
		{
			name:   "constrained clause fails closed on missing value",
			clause: RangeClause{Min: i64(1)},
			value:  nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.clause.Pass(tt.value))
		})
	}
}

func TestStringSet_Pass(t *testing.T) {
	tests := []struct {
		name  string
		set   StringSet
		value string
		want  bool
	}{
		{
			name:  "empty set passes anything",
			set:   StringSet{},
			value: "Diesel",
			want:  true,
		},
		{
			name:  "nil set passes anything",
			set:   nil,
			value: "Diesel",
			want:  true,
		},
		{
			name:  "member matches",
			set:   StringSet{"Electric"},
			value: "Electric",
			want:  true,
		},
		{
			name:  "non-member rejected",
			set:   StringSet{"Electric"},
			value: "Diesel",
			want:  false,
		},
		{
			name:  "comparison is case-insensitive",
			set:   StringSet{"no", "SE"},
			value: "NO",
			want:  true,
		},
		{
			name:  "constrained set fails closed on empty value",
			set:   StringSet{"Electric"},
			value: "",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Pass(tt.value))
		})
	}
}

func TestIDSet_Pass(t *testing.T) {
	tests := []struct {
		name  string
		set   IDSet
		value *int64
		want  bool
	}{
		{name: "empty set passes anything", set: nil, value: i64(7), want: true},
		{name: "empty set passes missing value", set: nil, value: nil, want: true},
		{name: "member matches", set: IDSet{3, 7}, value: i64(7), want: true},
		{name: "non-member rejected", set: IDSet{3, 7}, value: i64(9), want: false},
		{name: "constrained set fails closed on missing value", set: IDSet{3}, value: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Pass(tt.value))
		})
	}
}

func TestTimeClause_Pass(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := base.AddDate(0, -1, 0)
	later := base.AddDate(0, 1, 0)

	tests := []struct {
		name   string
		clause TimeClause
		value  *time.Time
		want   bool
	}{
		{name: "unconstrained passes missing value", clause: TimeClause{}, value: nil, want: true},
		{name: "inside window", clause: TimeClause{After: &earlier, Before: &later}, value: &base, want: true},
		{name: "before window", clause: TimeClause{After: &base}, value: &earlier, want: false},
		{name: "after window", clause: TimeClause{Before: &base}, value: &later, want: false},
		{name: "constrained fails closed on missing value", clause: TimeClause{Before: &base}, value: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.clause.Pass(tt.value))
		})
	}
}
