package api

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
)

// ParseFilterSpec decodes dashboard query parameters:
//
//	plate, city, prediction  repeatable or comma-separated
//	year, month              integers
//	from, to                 dates (2006-01-02), inclusive
func ParseFilterSpec(q url.Values) (model.FilterSpec, error) {
	spec := model.FilterSpec{
		Plates:          multi(q, "plate"),
		Cities:          multi(q, "city"),
		PredictionFlags: multi(q, "prediction"),
	}

	var err error
	if spec.Year, err = optionalInt(q, "year"); err != nil {
		return spec, err
	}
	if spec.Month, err = optionalInt(q, "month"); err != nil {
		return spec, err
	}

	from, err := optionalDate(q, "from")
	if err != nil {
		return spec, err
	}
	to, err := optionalDate(q, "to")
	if err != nil {
		return spec, err
	}
	if !from.IsZero() || !to.IsZero() {
		spec.DateRange = &model.DateRange{Start: from, End: to}
	}
	return spec, nil
}

// ParseColumns reads the comma-separated columns parameter. Absent means
// model.SummaryColumns.
func ParseColumns(q url.Values) ([]model.Column, error) {
	names := multi(q, "columns")
	if len(names) == 0 {
		return slices.Clone(model.SummaryColumns), nil
	}
	return query.ParseColumns(names)
}

// ParseStatistic reads the stat parameter. Absent means mean.
func ParseStatistic(q url.Values) (model.Statistic, error) {
	raw := strings.ToLower(strings.TrimSpace(q.Get("stat")))
	if raw == "" {
		return model.StatMean, nil
	}
	stat := model.Statistic(raw)
	if !stat.Valid() {
		return "", &query.ConfigurationError{Field: "stat", Reason: "unknown statistic " + strconv.Quote(raw)}
	}
	return stat, nil
}

// multi collects every value of key, splitting on commas and dropping
// blanks. It returns nil when nothing remains.
func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &query.ConfigurationError{Field: key, Reason: "not an integer: " + strconv.Quote(raw)}
	}
	return &n, nil
}

func optionalDate(q url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, &query.ConfigurationError{Field: key, Reason: "expected YYYY-MM-DD, got " + strconv.Quote(raw)}
	}
	return t, nil
}
