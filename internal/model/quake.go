package model

import (
	"encoding/json"
	"time"
)

// PredictionFlag values seen in the source data.
const (
	PredictionObserved  = "No"
	PredictionPredicted = "Yes"
)

// Record is one row of the earthquake dataset: monthly quake activity
// observed (or predicted) around a city.
type Record struct {
	City          string    `json:"city"`
	NamePlate     string    `json:"name_plate"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	Date          time.Time `json:"date"`
	Longitude     float64   `json:"longitude"`
	Latitude      float64   `json:"latitude"`
	CountQuakes   NullFloat `json:"count_quakes"`
	MagnitudeMean NullFloat `json:"magnitude_mean"`
	IsPrediction  string    `json:"is_prediction"`
}

// Numeric returns the value of a numeric column. ok is false when the
// value is missing or the column is not numeric.
func (r Record) Numeric(col Column) (float64, bool) {
	switch col {
	case ColumnYear:
		return float64(r.Year), true
	case ColumnMonth:
		return float64(r.Month), true
	case ColumnLongitude:
		return r.Longitude, true
	case ColumnLatitude:
		return r.Latitude, true
	case ColumnCountQuakes:
		return r.CountQuakes.Float64, r.CountQuakes.Valid
	case ColumnMagnitudeMean:
		return r.MagnitudeMean.Float64, r.MagnitudeMean.Valid
	default:
		return 0, false
	}
}

// Text returns the string value of a categorical column.
func (r Record) Text(col Column) (string, bool) {
	switch col {
	case ColumnCity:
		return r.City, true
	case ColumnNamePlate:
		return r.NamePlate, true
	case ColumnIsPrediction:
		return r.IsPrediction, true
	case ColumnDate:
		if r.Date.IsZero() {
			return "", false
		}
		return r.Date.Format(time.DateOnly), true
	default:
		return "", false
	}
}

// NullFloat is a numeric cell that may be missing. It is a value type so
// copies of a Record never share storage with the dataset.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some returns a present value.
func Some(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Ptr returns nil for a missing value.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// MarshalJSON renders a missing value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Float returns a pointer to v, for aggregate values.
func Float(v float64) *float64 {
	return &v
}

// Dataset is the immutable, ordered set of records loaded at startup.
type Dataset struct {
	records  []Record
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewDataset takes ownership of a copy of records.
func NewDataset(source string, records []Record) *Dataset {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Dataset{
		records:  cp,
		Source:   source,
		LoadedAt: time.Now().UTC(),
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record by value.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	cp := make([]Record, len(d.records))
	copy(cp, d.records)
	return cp
}
