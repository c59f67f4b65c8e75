package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
)

const sheetName = "Line Items"

// WriteXLSX writes a workbook with one sheet of rows. Amounts are stored as
// fixed-2 text so no precision is lost to spreadsheet floats.
func WriteXLSX(w io.Writer, rows []invoice.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, h := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("addressing header %s: %w", h, err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("writing header %s: %w", h, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return fmt.Errorf("addressing header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for n, r := range rows {
		if err := writeXLSXRow(f, n+2, r); err != nil {
			return fmt.Errorf("writing row %d: %w", n+1, err)
		}
	}

	for _, col := range columnWidths {
		if err := f.SetColWidth(sheetName, col.from, col.to, col.width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col.from, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 28}, // source file
	{"B", "B", 26}, // vendor
	{"C", "E", 16},
	{"F", "F", 48}, // description
	{"G", "H", 16},
	{"I", "I", 40}, // issues
}

func writeXLSXRow(f *excelize.File, line int, r invoice.Row) error {
	for i, v := range record(r) {
		cell, err := excelize.CoordinatesToCellName(i+1, line)
		if err != nil {
			return err
		}
		if Columns[i] == "check_needed" {
			err = f.SetCellBool(sheetName, cell, r.CheckNeeded)
		} else {
			err = f.SetCellStr(sheetName, cell, v)
		}
		if err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
	}
	return nil
}
