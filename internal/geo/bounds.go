package geo

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/quakeboard/internal/model"
)

// ChileBounds is the South American frame the dashboard map opens on. It
// is the viewport when no record has a usable location.
func ChileBounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(-90.0, -55.0, -25.0, 15.0)
}

// Bounds returns the bounding box of every valid record location.
func Bounds(records []model.Record) *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, r := range records {
		if ValidCoord(r.Longitude, r.Latitude) {
			b.Extend(Point(r))
		}
	}
	if b.IsEmpty() {
		return ChileBounds()
	}
	return b
}

// Viewport is the JSON form of a bounding box plus its center.
type Viewport struct {
	MinLon    float64 `json:"min_lon"`
	MinLat    float64 `json:"min_lat"`
	MaxLon    float64 `json:"max_lon"`
	MaxLat    float64 `json:"max_lat"`
	CenterLon float64 `json:"center_lon"`
	CenterLat float64 `json:"center_lat"`
}

// NewViewport converts b into a Viewport.
func NewViewport(b *geom.Bounds) Viewport {
	return Viewport{
		MinLon:    b.Min(0),
		MinLat:    b.Min(1),
		MaxLon:    b.Max(0),
		MaxLat:    b.Max(1),
		CenterLon: (b.Min(0) + b.Max(0)) / 2,
		CenterLat: (b.Min(1) + b.Max(1)) / 2,
	}
}
