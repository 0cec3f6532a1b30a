package query

import (
	"slices"

	"github.com/sells-group/quakeboard/internal/model"
)

// ParseColumns resolves column names for an aggregate. Unknown and
// non-numeric names are configuration errors.
func ParseColumns(names []string) ([]model.Column, error) {
	cols := make([]model.Column, 0, len(names))
	for _, name := range names {
		c, ok := model.ParseColumn(name)
		if !ok {
			return nil, configErr("columns", "unknown column %q", name)
		}
		if !c.IsNumeric() {
			return nil, configErr("columns", "column %q is not numeric", name)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Aggregate computes stat for each column over the non-missing values in
// records. A column with no valid values yields a nil entry.
func Aggregate(records []model.Record, columns []model.Column, stat model.Statistic) (model.AggregateResult, error) {
	if !stat.Valid() {
		return model.AggregateResult{}, configErr("statistic", "unknown statistic %q", stat)
	}
	if len(columns) == 0 {
		return model.AggregateResult{}, configErr("columns", "no columns requested")
	}
	for _, c := range columns {
		if !c.IsNumeric() {
			return model.AggregateResult{}, configErr("columns", "column %q is not numeric", c)
		}
	}

	res := model.AggregateResult{
		Statistic: stat,
		Count:     len(records),
		Values:    make(map[model.Column]*float64, len(columns)),
	}
	for _, c := range columns {
		res.Values[c] = compute(columnValues(records, c), stat)
	}
	return res, nil
}

// columnValues collects the present values of col.
func columnValues(records []model.Record, col model.Column) []float64 {
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.Numeric(col); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func compute(vals []float64, stat model.Statistic) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var v float64
	switch stat {
	case model.StatMean:
		v = sum(vals) / float64(len(vals))
	case model.StatMedian:
		v = median(vals)
	case model.StatMin:
		v = slices.Min(vals)
	case model.StatMax:
		v = slices.Max(vals)
	case model.StatSum:
		v = sum(vals)
	}
	return &v
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

// median sorts vals in place. Even counts average the two middle values.
func median(vals []float64) float64 {
	slices.Sort(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
