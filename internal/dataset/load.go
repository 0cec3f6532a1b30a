package dataset

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/quakeboard/internal/model"
)

// requiredColumns must appear in the header row.
var requiredColumns = []model.Column{
	model.ColumnCity,
	model.ColumnNamePlate,
	model.ColumnYear,
	model.ColumnMonth,
	model.ColumnDate,
	model.ColumnLongitude,
	model.ColumnLatitude,
}

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// missingTokens mark an absent numeric cell.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// Options tunes how a dataset file is read.
type Options struct {
	// Encoding is a WHATWG charset label for CSV input, e.g. "windows-1252".
	// Empty means UTF-8.
	Encoding string
	// Delimiter separates CSV fields. Zero means ','.
	Delimiter rune
	// Comment starts a CSV line that is skipped. Zero means none.
	Comment rune
	// Sheet selects the XLSX worksheet by name and overrides SheetIndex.
	Sheet string
	// SheetIndex selects the XLSX worksheet by position, 0-based.
	SheetIndex int
}

func (o Options) csv() CSVOptions {
	return CSVOptions{Delimiter: o.Delimiter, Comment: o.Comment, LazyQuotes: true}
}

// Load reads the dataset at path with default Options.
func Load(ctx context.Context, path string) (*model.Dataset, error) {
	return LoadFile(ctx, path, Options{})
}

// LoadFile reads the dataset at path. The format is chosen by extension:
// .xlsx is read with tealeg/xlsx, anything else is parsed as CSV.
func LoadFile(ctx context.Context, path string, opts Options) (*model.Dataset, error) {
	start := time.Now()

	var (
		rows []row
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path, XLSXOptions{SheetIndex: opts.SheetIndex, SheetName: opts.Sheet})
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		var r io.Reader
		r, err = decodeReader(f, opts.Encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		rows, err = collect(streamCSV(ctx, r, opts.csv()))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	records, err := parseRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}

	zap.L().Info("dataset: loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return model.NewDataset(path, records), nil
}

// decodeReader transcodes r from the named charset to UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	if encoding == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "unsupported encoding %q", encoding)
	}
	return enc.NewDecoder().Reader(r), nil
}

// LoadCSV parses CSV from r. source is recorded on the dataset.
func LoadCSV(ctx context.Context, r io.Reader, source string) (*model.Dataset, error) {
	rows, err := collect(streamCSV(ctx, r, CSVOptions{LazyQuotes: true}))
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", source)
	}
	records, err := parseRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", source)
	}
	return model.NewDataset(source, records), nil
}

// header maps each known column to its cell index.
type header map[model.Column]int

func parseHeader(cells []string) (header, error) {
	h := make(header, len(cells))
	for i, name := range cells {
		// Strip a UTF-8 BOM left by spreadsheet exports.
		name = strings.TrimPrefix(name, "\ufeff")
		col, ok := model.ParseColumn(name)
		if !ok {
			continue
		}
		if _, dup := h[col]; dup {
			return nil, eris.Errorf("duplicate column %q", name)
		}
		h[col] = i
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c.Header())
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) cell(cells []string, col model.Column) string {
	i, ok := h[col]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func parseRows(rows []row) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, eris.New("empty file: no header row")
	}
	h, err := parseHeader(rows[0].Cells)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if isBlank(r.Cells) {
			continue
		}
		rec, err := parseRecord(h, r.Cells)
		if err != nil {
			return nil, eris.Wrapf(err, "line %d", r.Line)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(h header, cells []string) (model.Record, error) {
	rec := model.Record{
		City:         h.cell(cells, model.ColumnCity),
		NamePlate:    h.cell(cells, model.ColumnNamePlate),
		IsPrediction: h.cell(cells, model.ColumnIsPrediction),
	}
	if rec.City == "" {
		return rec, eris.New("City is empty")
	}

	var err error
	if rec.Year, err = parseInt(h.cell(cells, model.ColumnYear)); err != nil {
		return rec, eris.Wrap(err, "Year")
	}
	if rec.Month, err = parseInt(h.cell(cells, model.ColumnMonth)); err != nil {
		return rec, eris.Wrap(err, "Month")
	}
	if rec.Month < 1 || rec.Month > 12 {
		return rec, eris.Errorf("Month out of range: %d", rec.Month)
	}
	if rec.Longitude, err = parseCoord(h.cell(cells, model.ColumnLongitude)); err != nil {
		return rec, eris.Wrap(err, "Longitude")
	}
	if rec.Latitude, err = parseCoord(h.cell(cells, model.ColumnLatitude)); err != nil {
		return rec, eris.Wrap(err, "Latitude")
	}
	if rec.CountQuakes, err = parseOptional(h.cell(cells, model.ColumnCountQuakes)); err != nil {
		return rec, eris.Wrap(err, "Count_Quakes")
	}
	if rec.MagnitudeMean, err = parseOptional(h.cell(cells, model.ColumnMagnitudeMean)); err != nil {
		return rec, eris.Wrap(err, "Magnitude_Mean")
	}

	raw := h.cell(cells, model.ColumnDate)
	if raw == "" {
		// Monthly aggregates without an explicit date sit on the first of the month.
		rec.Date = time.Date(rec.Year, time.Month(rec.Month), 1, 0, 0, 0, 0, time.UTC)
	} else if rec.Date, err = parseDate(raw); err != nil {
		return rec, eris.Wrap(err, "Date")
	}
	return rec, nil
}

// parseInt accepts integral floats ("2023.0") as written by dataframe exports.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, eris.New("value is empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, eris.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return 0, eris.New("value is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return f, nil
}

func parseOptional(s string) (model.NullFloat, error) {
	if missingTokens[strings.ToLower(s)] {
		return model.NullFloat{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.NullFloat{}, eris.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) {
		return model.NullFloat{}, nil
	}
	return model.Some(f), nil
}

// parseDate keeps the calendar day as written. Time of day and offset are
// dropped so a local timestamp never moves to a neighbouring day.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognized date %q", s)
}
