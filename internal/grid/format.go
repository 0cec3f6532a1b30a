package grid

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/quakeboard/internal/model"
)

// Missing is shown in place of an absent value.
const Missing = "—"

// decimals is the display precision of each fractional column.
var decimals = map[model.Column]int{
	model.ColumnLongitude:     4,
	model.ColumnLatitude:      4,
	model.ColumnCountQuakes:   1,
	model.ColumnMagnitudeMean: 2,
}

// Cell is one formatted grid value. Value carries the raw number for
// numeric columns so exports and client-side sorting do not reparse Text.
type Cell struct {
	Text  string   `json:"text"`
	Value *float64 `json:"value,omitempty"`
}

// Formatter renders values for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter parses a BCP 47 locale such as "es-CL".
func NewFormatter(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, eris.Wrapf(err, "grid: parse locale %q", locale)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Locale returns the canonical locale string.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Number formats v with the given number of decimals using the locale's
// separators.
func (f *Formatter) Number(v float64, places int) string {
	return f.printer.Sprintf("%."+strconv.Itoa(places)+"f", v)
}

// Float formats an optional value, or Missing.
func (f *Formatter) Float(v *float64, col model.Column) Cell {
	if v == nil {
		return Cell{Text: Missing}
	}
	return Cell{Text: f.Number(*v, decimals[col]), Value: model.Float(*v)}
}

// Record formats one column of r.
func (f *Formatter) Record(r model.Record, col model.Column) Cell {
	switch col {
	case model.ColumnYear, model.ColumnMonth:
		// Years are never digit-grouped.
		n, _ := r.Numeric(col)
		return Cell{Text: strconv.Itoa(int(n)), Value: model.Float(n)}
	case model.ColumnDate:
		if r.Date.IsZero() {
			return Cell{Text: Missing}
		}
		return Cell{Text: r.Date.Format(time.DateOnly)}
	}

	if col.IsNumeric() {
		v, ok := r.Numeric(col)
		if !ok {
			return Cell{Text: Missing}
		}
		return f.Float(&v, col)
	}

	s, ok := r.Text(col)
	if !ok || s == "" {
		return Cell{Text: Missing}
	}
	return Cell{Text: s}
}
