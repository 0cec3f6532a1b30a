// Package grid builds the tabular dashboard view: formatted rows with
// pinned rows above and summary statistics below.
package grid

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
)

// RowKind tells the client how to render a row.
type RowKind string

const (
	RowData   RowKind = "data"
	RowPinned RowKind = "pinned"
	RowMean   RowKind = "mean"
	RowMedian RowKind = "median"
)

// ColumnDef is a grid column header.
type ColumnDef struct {
	Key    model.Column `json:"key"`
	Header string       `json:"header"`
}

// Row is one grid row keyed by column.
type Row struct {
	Kind  RowKind               `json:"kind"`
	Cells map[model.Column]Cell `json:"cells"`
}

// View is the complete grid for one FilterSpec.
type View struct {
	Locale       string      `json:"locale"`
	Columns      []ColumnDef `json:"columns"`
	Count        int         `json:"count"`
	Rows         []Row       `json:"rows"`
	PinnedTop    []Row       `json:"pinned_top"`
	PinnedBottom []Row       `json:"pinned_bottom"`
}

// statLabels label the pinned-bottom rows.
var statLabels = map[model.Statistic]string{
	model.StatMean:   "Mean",
	model.StatMedian: "Median",
}

// Builder renders grid views.
type Builder struct {
	format    *Formatter
	pinnedTop int
}

// NewBuilder creates a Builder for locale. pinnedTop is the number of
// rows pinned above the grid when no city is selected.
func NewBuilder(locale string, pinnedTop int) (*Builder, error) {
	f, err := NewFormatter(locale)
	if err != nil {
		return nil, err
	}
	return &Builder{format: f, pinnedTop: max(pinnedTop, 0)}, nil
}

// Build filters through e and formats the result.
func (b *Builder) Build(e *query.Engine, spec model.FilterSpec) (*View, error) {
	sum, err := e.Summary(spec, model.SummaryColumns)
	if err != nil {
		return nil, err
	}

	v := &View{
		Locale:  b.format.Locale(),
		Columns: columnDefs(),
		Count:   len(sum.Records),
		Rows:    make([]Row, 0, len(sum.Records)),
	}
	for _, r := range sum.Records {
		v.Rows = append(v.Rows, b.recordRow(RowData, r))
	}
	for _, r := range pinnedRecords(sum.Records, spec.Cities, b.pinnedTop) {
		v.PinnedTop = append(v.PinnedTop, b.recordRow(RowPinned, r))
	}
	v.PinnedBottom = []Row{
		b.statRow(RowMean, sum.Mean),
		b.statRow(RowMedian, sum.Median),
	}

	zap.L().Debug("grid: built view",
		zap.Int("rows", v.Count),
		zap.Int("pinned_top", len(v.PinnedTop)),
	)
	return v, nil
}

func columnDefs() []ColumnDef {
	defs := make([]ColumnDef, len(model.AllColumns))
	for i, c := range model.AllColumns {
		defs[i] = ColumnDef{Key: c, Header: c.Header()}
	}
	return defs
}

func (b *Builder) recordRow(kind RowKind, r model.Record) Row {
	cells := make(map[model.Column]Cell, len(model.AllColumns))
	for _, c := range model.AllColumns {
		cells[c] = b.format.Record(r, c)
	}
	return Row{Kind: kind, Cells: cells}
}

func (b *Builder) statRow(kind RowKind, res model.AggregateResult) Row {
	cells := make(map[model.Column]Cell, len(model.AllColumns))
	for _, c := range model.AllColumns {
		cells[c] = Cell{}
	}
	cells[model.ColumnCity] = Cell{Text: statLabels[res.Statistic]}
	for col, v := range res.Values {
		cells[col] = b.format.Float(v, col)
	}
	return Row{Kind: kind, Cells: cells}
}

// pinnedRecords picks the rows pinned above the grid. With cities
// selected it is every matched record of those cities, grouped in
// selection order; otherwise the n records with the most quakes.
func pinnedRecords(records []model.Record, cities []string, n int) []model.Record {
	if len(cities) > 0 {
		return selectedCities(records, cities)
	}
	if n == 0 {
		return nil
	}

	ranked := make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.CountQuakes.Valid {
			ranked = append(ranked, r)
		}
	}
	slices.SortStableFunc(ranked, func(a, b model.Record) int {
		switch {
		case a.CountQuakes.Float64 > b.CountQuakes.Float64:
			return -1
		case a.CountQuakes.Float64 < b.CountQuakes.Float64:
			return 1
		}
		return 0
	})
	return ranked[:min(n, len(ranked))]
}

// selectedCities returns the records of each city in cities, keeping
// dataset order within a city. Repeated selections are ignored.
func selectedCities(records []model.Record, cities []string) []model.Record {
	byCity := make(map[string][]model.Record, len(cities))
	for _, r := range records {
		key := normalize(r.City)
		byCity[key] = append(byCity[key], r)
	}

	var out []model.Record
	seen := make(map[string]bool, len(cities))
	for _, c := range cities {
		key := normalize(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, byCity[key]...)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
