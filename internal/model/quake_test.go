package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Column
		ok   bool
	}{
		{"count_quakes", ColumnCountQuakes, true},
		{"Count_Quakes", ColumnCountQuakes, true},
		{"CountQuakes", ColumnCountQuakes, true},
		{" Magnitude_Mean ", ColumnMagnitudeMean, true},
		{"Name_Plate", ColumnNamePlate, true},
		{"is_prediction", ColumnIsPrediction, true},
		{"depth", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseColumn(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnIsNumeric(t *testing.T) {
	t.Parallel()

	for _, c := range NumericColumns {
		assert.True(t, c.IsNumeric(), c)
	}
	assert.False(t, ColumnCity.IsNumeric())
	assert.False(t, ColumnDate.IsNumeric())
	assert.False(t, ColumnIsPrediction.IsNumeric())
}

func TestColumnHeader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Count_Quakes", ColumnCountQuakes.Header())
	assert.Equal(t, "City", ColumnCity.Header())
	assert.Equal(t, "other", Column("other").Header())
}

func TestRecordNumeric(t *testing.T) {
	t.Parallel()

	r := Record{Year: 2023, Month: 4, Longitude: -70.6, Latitude: -33.4, CountQuakes: Some(5)}

	v, ok := r.Numeric(ColumnCountQuakes)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-9)

	_, ok = r.Numeric(ColumnMagnitudeMean)
	assert.False(t, ok, "nil magnitude is missing")

	v, ok = r.Numeric(ColumnYear)
	assert.True(t, ok)
	assert.InDelta(t, 2023.0, v, 1e-9)

	_, ok = r.Numeric(ColumnCity)
	assert.False(t, ok)
}

func TestRecordText(t *testing.T) {
	t.Parallel()

	r := Record{City: "Santiago", NamePlate: "Nazca", IsPrediction: "No"}
	s, ok := r.Text(ColumnCity)
	assert.True(t, ok)
	assert.Equal(t, "Santiago", s)

	_, ok = r.Text(ColumnDate)
	assert.False(t, ok, "zero date has no text")

	r.Date = time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	s, ok = r.Text(ColumnDate)
	assert.True(t, ok)
	assert.Equal(t, "2023-05-01", s)
}

func TestNullFloatJSON(t *testing.T) {
	t.Parallel()

	r := Record{City: "Arica", CountQuakes: Some(12)}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count_quakes":12`)
	assert.Contains(t, string(data), `"magnitude_mean":null`)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Some(12), back.CountQuakes)
	assert.False(t, back.MagnitudeMean.Valid)

	assert.Nil(t, NullFloat{}.Ptr())
	require.NotNil(t, Some(3).Ptr())
	assert.InDelta(t, 3.0, *Some(3).Ptr(), 1e-9)
}

func TestDatasetIsImmutable(t *testing.T) {
	t.Parallel()

	src := []Record{{City: "Arica"}, {City: "Iquique"}}
	ds := NewDataset("test.csv", src)
	src[0].City = "changed"
	assert.Equal(t, "Arica", ds.At(0).City)

	out := ds.Records()
	out[1].City = "changed"
	assert.Equal(t, "Iquique", ds.At(1).City)
	assert.Equal(t, 2, ds.Len())

	var nilDS *Dataset
	assert.Equal(t, 0, nilDS.Len())
	assert.Nil(t, nilDS.Records())
}

func TestDateRangeContains(t *testing.T) {
	t.Parallel()

	day := func(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

	r := DateRange{Start: day(2023, 1, 1), End: day(2023, 1, 31)}
	assert.True(t, r.Contains(day(2023, 1, 1)))
	assert.True(t, r.Contains(day(2023, 1, 31).Add(23*time.Hour)), "end is inclusive for the whole day")
	assert.False(t, r.Contains(day(2022, 12, 31)))
	assert.False(t, r.Contains(day(2023, 2, 1)))
	assert.False(t, r.Contains(time.Time{}))

	open := DateRange{Start: day(2023, 6, 1)}
	assert.True(t, open.Contains(day(2030, 1, 1)))
	assert.False(t, open.Contains(day(2023, 5, 31)))

	assert.True(t, DateRange{}.Contains(time.Time{}))
}

func TestFilterSpecIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, FilterSpec{}.IsEmpty())
	assert.True(t, FilterSpec{Plates: []string{}, DateRange: &DateRange{}}.IsEmpty())
	assert.False(t, FilterSpec{Year: Int(2023)}.IsEmpty())
	assert.False(t, FilterSpec{PredictionFlags: []string{"Yes"}}.IsEmpty())
}

func TestStatisticValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Statistic{StatMean, StatMedian, StatMin, StatMax, StatSum} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Statistic("mode").Valid())
}

func TestAggregateResultJSON(t *testing.T) {
	t.Parallel()

	res := AggregateResult{
		Statistic: StatMean,
		Count:     2,
		Values: map[Column]*float64{
			ColumnCountQuakes:   Float(6),
			ColumnMagnitudeMean: nil,
		},
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"statistic":"mean","count":2,"values":{"count_quakes":6,"magnitude_mean":null}}`, string(data))

	_, ok := res.Value(ColumnMagnitudeMean)
	assert.False(t, ok)
	v, ok := res.Value(ColumnCountQuakes)
	assert.True(t, ok)
	assert.InDelta(t, 6.0, v, 1e-9)
}
