package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
)

// WriteCSV writes a header line and one record per row
func WriteCSV(w io.Writer, rows []invoice.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
