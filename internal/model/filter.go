package model

import (
	"time"
)

// DateRange bounds Record.Date inclusively at day granularity. A zero
// endpoint leaves that side open.
type DateRange struct {
	Start time.Time `json:"start,omitzero" yaml:"start,omitempty"`
	End   time.Time `json:"end,omitzero" yaml:"end,omitempty"`
}

// IsZero reports whether neither endpoint is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls within the range. A missing date never
// matches a bounded range.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	day := truncateDay(t)
	if !r.Start.IsZero() && day.Before(truncateDay(r.Start)) {
		return false
	}
	if !r.End.IsZero() && day.After(truncateDay(r.End)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterSpec is the set of predicates a dashboard interaction applies.
// Nil or empty fields are absent predicates. Kinds combine with AND;
// values inside a multi-valued field combine with OR.
type FilterSpec struct {
	Plates          []string   `json:"plates,omitempty" yaml:"plates,omitempty"`
	Cities          []string   `json:"cities,omitempty" yaml:"cities,omitempty"`
	Year            *int       `json:"year,omitempty" yaml:"year,omitempty"`
	Month           *int       `json:"month,omitempty" yaml:"month,omitempty"`
	DateRange       *DateRange `json:"date_range,omitempty" yaml:"date_range,omitempty"`
	PredictionFlags []string   `json:"prediction_flags,omitempty" yaml:"prediction_flags,omitempty"`
}

// IsEmpty reports whether the spec carries no predicate.
func (s FilterSpec) IsEmpty() bool {
	return len(s.Plates) == 0 &&
		len(s.Cities) == 0 &&
		s.Year == nil &&
		s.Month == nil &&
		(s.DateRange == nil || s.DateRange.IsZero()) &&
		len(s.PredictionFlags) == 0
}

// Int returns a pointer to v, for optional FilterSpec fields.
func Int(v int) *int {
	return &v
}

// Statistic is an aggregate function over a numeric column.
type Statistic string

const (
	StatMean   Statistic = "mean"
	StatMedian Statistic = "median"
	StatMin    Statistic = "min"
	StatMax    Statistic = "max"
	StatSum    Statistic = "sum"
)

// Valid reports whether s is a known statistic.
func (s Statistic) Valid() bool {
	switch s {
	case StatMean, StatMedian, StatMin, StatMax, StatSum:
		return true
	}
	return false
}

// AggregateResult holds one statistic per requested column. A nil value
// means the column had no valid entries in the matched rows.
type AggregateResult struct {
	Statistic Statistic           `json:"statistic"`
	Count     int                 `json:"count"`
	Values    map[Column]*float64 `json:"values"`
}

// Value returns the statistic for col and whether it is defined.
func (a AggregateResult) Value(col Column) (float64, bool) {
	v, ok := a.Values[col]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}
