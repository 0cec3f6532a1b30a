package query

import (
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/model"
)

// Options lists the distinct values the dashboard filter controls offer.
type Options struct {
	Plates          []string  `json:"plates"`
	Cities          []string  `json:"cities"`
	Years           []int     `json:"years"`
	Months          []int     `json:"months"`
	PredictionFlags []string  `json:"prediction_flags"`
	MinDate         time.Time `json:"min_date,omitzero"`
	MaxDate         time.Time `json:"max_date,omitzero"`
}

// Summary is a filtered subset with the mean and median rows pinned
// beneath it in the grid view.
type Summary struct {
	Records []model.Record        `json:"records"`
	Mean    model.AggregateResult `json:"mean"`
	Median  model.AggregateResult `json:"median"`
}

// Engine answers filter and aggregate queries over one immutable dataset.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	ds      *model.Dataset
	options Options
}

// NewEngine builds an Engine and precomputes the filter options.
func NewEngine(ds *model.Dataset) *Engine {
	e := &Engine{ds: ds, options: buildOptions(ds)}
	zap.L().Info("query: engine ready",
		zap.Int("records", ds.Len()),
		zap.Int("plates", len(e.options.Plates)),
		zap.Int("cities", len(e.options.Cities)),
	)
	return e
}

// Dataset returns the underlying dataset.
func (e *Engine) Dataset() *model.Dataset {
	return e.ds
}

// Options returns a copy of the distinct filter values.
func (e *Engine) Options() Options {
	o := e.options
	o.Plates = slices.Clone(o.Plates)
	o.Cities = slices.Clone(o.Cities)
	o.Years = slices.Clone(o.Years)
	o.Months = slices.Clone(o.Months)
	o.PredictionFlags = slices.Clone(o.PredictionFlags)
	return o
}

// Filter applies spec to the dataset.
func (e *Engine) Filter(spec model.FilterSpec) ([]model.Record, error) {
	return Filter(e.ds, spec)
}

// Aggregate filters by spec and computes stat over columns.
func (e *Engine) Aggregate(spec model.FilterSpec, columns []model.Column, stat model.Statistic) (model.AggregateResult, error) {
	records, err := e.Filter(spec)
	if err != nil {
		return model.AggregateResult{}, err
	}
	return Aggregate(records, columns, stat)
}

// Summary filters by spec and computes mean and median over columns.
// Nil columns default to model.SummaryColumns.
func (e *Engine) Summary(spec model.FilterSpec, columns []model.Column) (*Summary, error) {
	if columns == nil {
		columns = model.SummaryColumns
	}
	records, err := e.Filter(spec)
	if err != nil {
		return nil, err
	}
	mean, err := Aggregate(records, columns, model.StatMean)
	if err != nil {
		return nil, err
	}
	med, err := Aggregate(records, columns, model.StatMedian)
	if err != nil {
		return nil, err
	}
	return &Summary{Records: records, Mean: mean, Median: med}, nil
}

func buildOptions(ds *model.Dataset) Options {
	plates := map[string]bool{}
	cities := map[string]bool{}
	flags := map[string]bool{}
	years := map[int]bool{}
	months := map[int]bool{}
	var o Options

	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if r.NamePlate != "" {
			plates[r.NamePlate] = true
		}
		if r.City != "" {
			cities[r.City] = true
		}
		if r.IsPrediction != "" {
			flags[r.IsPrediction] = true
		}
		years[r.Year] = true
		if r.Month > 0 {
			months[r.Month] = true
		}
		if r.Date.IsZero() {
			continue
		}
		if o.MinDate.IsZero() || r.Date.Before(o.MinDate) {
			o.MinDate = r.Date
		}
		if o.MaxDate.IsZero() || r.Date.After(o.MaxDate) {
			o.MaxDate = r.Date
		}
	}

	o.Plates = sortedKeys(plates)
	o.Cities = sortedKeys(cities)
	o.PredictionFlags = sortedKeys(flags)
	o.Years = sortedInts(years)
	o.Months = sortedInts(months)
	return o
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

func sortedInts(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
