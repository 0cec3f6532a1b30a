package model

import (
	"strings"
)

// Column names one field of the fixed Record schema.
type Column string

const (
	ColumnCity          Column = "city"
	ColumnNamePlate     Column = "name_plate"
	ColumnYear          Column = "year"
	ColumnMonth         Column = "month"
	ColumnDate          Column = "date"
	ColumnLongitude     Column = "longitude"
	ColumnLatitude      Column = "latitude"
	ColumnCountQuakes   Column = "count_quakes"
	ColumnMagnitudeMean Column = "magnitude_mean"
	ColumnIsPrediction  Column = "is_prediction"
)

// AllColumns lists the schema in CSV order.
var AllColumns = []Column{
	ColumnCity,
	ColumnNamePlate,
	ColumnYear,
	ColumnMonth,
	ColumnDate,
	ColumnLongitude,
	ColumnLatitude,
	ColumnCountQuakes,
	ColumnMagnitudeMean,
	ColumnIsPrediction,
}

// NumericColumns are the columns aggregates can be computed over.
var NumericColumns = []Column{
	ColumnYear,
	ColumnMonth,
	ColumnLongitude,
	ColumnLatitude,
	ColumnCountQuakes,
	ColumnMagnitudeMean,
}

// SummaryColumns are the columns shown in pinned rows and cards.
var SummaryColumns = []Column{ColumnCountQuakes, ColumnMagnitudeMean}

// csvHeaders maps each column to its header in the source CSV.
var csvHeaders = map[Column]string{
	ColumnCity:          "City",
	ColumnNamePlate:     "Name_Plate",
	ColumnYear:          "Year",
	ColumnMonth:         "Month",
	ColumnDate:          "Date",
	ColumnLongitude:     "Longitude",
	ColumnLatitude:      "Latitude",
	ColumnCountQuakes:   "Count_Quakes",
	ColumnMagnitudeMean: "Magnitude_Mean",
	ColumnIsPrediction:  "Is_Prediction",
}

// Header returns the CSV header spelling of the column.
func (c Column) Header() string {
	if h, ok := csvHeaders[c]; ok {
		return h
	}
	return string(c)
}

// IsNumeric reports whether aggregates are defined over c.
func (c Column) IsNumeric() bool {
	for _, n := range NumericColumns {
		if n == c {
			return true
		}
	}
	return false
}

// ParseColumn resolves a canonical name ("count_quakes") or CSV header
// ("Count_Quakes", "CountQuakes") to a Column, case-insensitively.
func ParseColumn(name string) (Column, bool) {
	key := normalizeName(name)
	if key == "" {
		return "", false
	}
	for _, c := range AllColumns {
		if normalizeName(string(c)) == key || normalizeName(c.Header()) == key {
			return c, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
