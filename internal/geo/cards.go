package geo

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
)

// Cards are the headline numbers shown above the map.
type Cards struct {
	Records         int      `json:"records"`
	TotalQuakes     *float64 `json:"total_quakes"`
	MeanMagnitude   *float64 `json:"mean_magnitude"`
	MedianMagnitude *float64 `json:"median_magnitude"`
}

// NewCards computes the cards for records already filtered by the engine.
func NewCards(records []model.Record) (Cards, error) {
	c := Cards{Records: len(records)}

	sum, err := query.Aggregate(records, []model.Column{model.ColumnCountQuakes}, model.StatSum)
	if err != nil {
		return c, err
	}
	mean, err := query.Aggregate(records, []model.Column{model.ColumnMagnitudeMean}, model.StatMean)
	if err != nil {
		return c, err
	}
	med, err := query.Aggregate(records, []model.Column{model.ColumnMagnitudeMean}, model.StatMedian)
	if err != nil {
		return c, err
	}

	c.TotalQuakes = sum.Values[model.ColumnCountQuakes]
	c.MeanMagnitude = mean.Values[model.ColumnMagnitudeMean]
	c.MedianMagnitude = med.Values[model.ColumnMagnitudeMean]
	return c, nil
}

// View is the full map payload for one FilterSpec.
type View struct {
	Markers  *geojson.FeatureCollection `json:"markers"`
	Viewport Viewport                   `json:"viewport"`
	Cards    Cards                      `json:"cards"`
	Skipped  int                        `json:"skipped"`
}

// Build filters through e and assembles the map view.
func Build(e *query.Engine, spec model.FilterSpec) (*View, error) {
	records, err := e.Filter(spec)
	if err != nil {
		return nil, err
	}
	cards, err := NewCards(records)
	if err != nil {
		return nil, err
	}
	fc, skipped := Markers(records)
	return &View{
		Markers:  fc,
		Viewport: NewViewport(Bounds(records)),
		Cards:    cards,
		Skipped:  skipped,
	}, nil
}
