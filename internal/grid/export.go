package grid

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// SheetName is the worksheet written by Export.
const SheetName = "quakes"

// Export writes v to w as an XLSX workbook: a header row, then pinned-top
// rows, data rows, and the summary rows. Numeric cells are written as
// numbers; missing values are left blank.
func Export(v *View, w io.Writer) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "grid: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range v.Columns {
		cell := header.AddCell()
		cell.SetString(c.Header)
		cell.GetStyle().Font.Bold = true
	}

	for _, group := range [][]Row{v.PinnedTop, v.Rows, v.PinnedBottom} {
		for _, r := range group {
			writeRow(sheet.AddRow(), v.Columns, r)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "grid: write xlsx")
	}
	return nil
}

func writeRow(xr *xlsx.Row, cols []ColumnDef, r Row) {
	for _, c := range cols {
		cell := xr.AddCell()
		v := r.Cells[c.Key]
		switch {
		case v.Value != nil:
			cell.SetFloat(*v.Value)
		case v.Text == Missing:
			cell.SetString("")
		default:
			cell.SetString(v.Text)
		}
	}
}
