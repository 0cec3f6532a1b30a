// Package dataset loads the earthquake table from CSV or XLSX into an
// immutable model.Dataset.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// row is one parsed line. Line is the 1-based line number in the file.
type row struct {
	Line  int
	Cells []string
}

// streamCSV reads r and sends trimmed rows (header included) to a channel.
// Errors are sent on the error channel. Both channels are closed when
// processing completes.
func streamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan row, <-chan error) {
	rowCh := make(chan row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // short rows leave trailing cells empty

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
			line, _ := reader.FieldPos(0)

			select {
			case rowCh <- row{Line: line, Cells: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// collect drains both channels, returning every row or the first error.
func collect(rowCh <-chan row, errCh <-chan error) ([]row, error) {
	var rows []row
	for r := range rowCh {
		rows = append(rows, r)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}
