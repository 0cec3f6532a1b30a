// Package geo builds the map view: GeoJSON markers, the initial viewport,
// and the summary cards shown above the map.
package geo

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/model"
)

// SRID is WGS 84, the reference system of the dataset coordinates.
const SRID = 4326

// Marker radius range in pixels.
const (
	MinMarkerSize = 6.0
	MaxMarkerSize = 30.0
)

// PredictionColors is the qualitative palette markers are coloured from,
// one colour per distinct IsPrediction value in order of appearance.
var PredictionColors = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3"}

// missingLabel stands in for an absent number in marker labels.
const missingLabel = "—"

// ValidCoord reports whether lon/lat is a finite WGS 84 position.
func ValidCoord(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// Point returns the record location as a go-geom point.
func Point(r model.Record) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{r.Longitude, r.Latitude}).SetSRID(SRID)
}

// EncodeEWKB encodes the record location as little-endian EWKB. Records
// with invalid coordinates return nil, nil.
func EncodeEWKB(r model.Record) ([]byte, error) {
	if !ValidCoord(r.Longitude, r.Latitude) {
		return nil, nil
	}
	data, err := ewkb.Marshal(Point(r), ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB")
	}
	return data, nil
}

// Markers converts records into a GeoJSON FeatureCollection with one point
// feature per record. Records with invalid coordinates are skipped; the
// number skipped is returned alongside the collection.
func Markers(records []model.Record) (*geojson.FeatureCollection, int) {
	lo, hi := magnitudeRange(records)
	colors := predictionColors(records)

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}
	skipped := 0
	for i, r := range records {
		if !ValidCoord(r.Longitude, r.Latitude) {
			skipped++
			continue
		}
		props := properties(r)
		props["size"] = markerSize(r.MagnitudeMean, lo, hi)
		props["color"] = colors[predictionKey(r.IsPrediction)]
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(i),
			Geometry:   Point(r),
			Properties: props,
		})
	}

	if skipped > 0 {
		zap.L().Warn("geo: skipped records with invalid coordinates", zap.Int("skipped", skipped))
	}
	if len(fc.Features) > 0 {
		fc.BBox = Bounds(records)
	}
	return fc, skipped
}

func properties(r model.Record) map[string]any {
	props := map[string]any{
		"city":          r.City,
		"name_plate":    r.NamePlate,
		"year":          r.Year,
		"month":         r.Month,
		"is_prediction": r.IsPrediction,
		"count_quakes":  r.CountQuakes.Ptr(),
		"magnitude":     r.MagnitudeMean.Ptr(),
		"label":         Label(r),
	}
	if !r.Date.IsZero() {
		props["date"] = r.Date.Format(time.DateOnly)
	}
	return props
}

// Label is the hover text of a marker.
func Label(r model.Record) string {
	date := missingLabel
	if !r.Date.IsZero() {
		date = r.Date.Format(time.DateOnly)
	}
	return "Ciudad: " + r.City +
		", Fecha: " + date +
		", Number of Quakes: " + labelNumber(r.CountQuakes) +
		", Magnitude of Quakes: " + labelNumber(r.MagnitudeMean)
}

func labelNumber(n model.NullFloat) string {
	if !n.Valid {
		return missingLabel
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func predictionKey(flag string) string {
	return strings.ToLower(strings.TrimSpace(flag))
}

// predictionColors assigns PredictionColors to the distinct prediction
// flags of records, cycling when there are more flags than colours.
func predictionColors(records []model.Record) map[string]string {
	colors := make(map[string]string)
	for _, r := range records {
		key := predictionKey(r.IsPrediction)
		if _, ok := colors[key]; !ok {
			colors[key] = PredictionColors[len(colors)%len(PredictionColors)]
		}
	}
	return colors
}

// magnitudeRange returns the smallest and largest MagnitudeMean present.
func magnitudeRange(records []model.Record) (lo, hi float64) {
	first := true
	for _, r := range records {
		if !r.MagnitudeMean.Valid {
			continue
		}
		v := r.MagnitudeMean.Float64
		if first {
			lo, hi, first = v, v, false
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// markerSize scales magnitude linearly into [MinMarkerSize, MaxMarkerSize].
// Missing magnitudes get the minimum; a flat range gets the midpoint.
func markerSize(magnitude model.NullFloat, lo, hi float64) float64 {
	if !magnitude.Valid {
		return MinMarkerSize
	}
	if hi <= lo {
		return (MinMarkerSize + MaxMarkerSize) / 2
	}
	return MinMarkerSize + (magnitude.Float64-lo)/(hi-lo)*(MaxMarkerSize-MinMarkerSize)
}
