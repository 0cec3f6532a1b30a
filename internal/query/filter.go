// Package query filters the quake dataset and computes column aggregates
// over the matching rows.
package query

import (
	"strings"

	"github.com/sells-group/quakeboard/internal/model"
)

// Validate checks spec for malformed predicates.
func Validate(spec model.FilterSpec) error {
	if spec.Year != nil && (*spec.Year < 1 || *spec.Year > 9999) {
		return configErr("year", "out of range: %d", *spec.Year)
	}
	if spec.Month != nil && (*spec.Month < 1 || *spec.Month > 12) {
		return configErr("month", "out of range: %d", *spec.Month)
	}
	if r := spec.DateRange; r != nil && !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return configErr("date_range", "start %s is after end %s",
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	return nil
}

// Filter returns the records of ds that satisfy every predicate in spec,
// in dataset order. An empty spec returns the whole dataset. An empty
// result is not an error.
func Filter(ds *model.Dataset, spec model.FilterSpec) ([]model.Record, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	if spec.IsEmpty() {
		return ds.Records(), nil
	}

	m := newMatcher(spec)
	n := ds.Len()
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		r := ds.At(i)
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Matches reports whether r satisfies spec. spec must already be valid.
func Matches(r model.Record, spec model.FilterSpec) bool {
	return newMatcher(spec).match(r)
}

// matcher holds the prebuilt lookup sets for one spec.
type matcher struct {
	plates  map[string]bool
	cities  map[string]bool
	flags   map[string]bool
	year    *int
	month   *int
	between *model.DateRange
}

func newMatcher(spec model.FilterSpec) matcher {
	m := matcher{
		plates: toLowerSet(spec.Plates),
		cities: toLowerSet(spec.Cities),
		flags:  toLowerSet(spec.PredictionFlags),
		year:   spec.Year,
		month:  spec.Month,
	}
	if spec.DateRange != nil && !spec.DateRange.IsZero() {
		m.between = spec.DateRange
	}
	return m
}

func (m matcher) match(r model.Record) bool {
	if m.plates != nil && !m.plates[fold(r.NamePlate)] {
		return false
	}
	if m.cities != nil && !m.cities[fold(r.City)] {
		return false
	}
	if m.flags != nil && !m.flags[fold(r.IsPrediction)] {
		return false
	}
	if m.year != nil && r.Year != *m.year {
		return false
	}
	if m.month != nil && r.Month != *m.month {
		return false
	}
	if m.between != nil && !m.between.Contains(r.Date) {
		return false
	}
	return true
}

// toLowerSet returns nil for an empty input so the predicate is skipped.
func toLowerSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[fold(item)] = true
	}
	return set
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
