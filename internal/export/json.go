package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
)

type jsonRow struct {
	SourceFile          string  `json:"source_file"`
	VendorName          string  `json:"vendor_name"`
	InvoiceNumber       string  `json:"invoice_number"`
	InvoiceDate         string  `json:"invoice_date"`
	TotalAmount         *string `json:"total_amount"`
	LineItemDescription string  `json:"line_item_description"`
	LineItemAmount      string  `json:"line_item_amount"`
	CheckNeeded         bool    `json:"check_needed"`
	ParsingIssues       string  `json:"parsing_issues"`
}

// WriteJSON writes rows as an array. Amounts are fixed-2 strings and an
// absent total is null.
func WriteJSON(w io.Writer, rows []invoice.Row) error {
	out := make([]jsonRow, 0, len(rows))
	for _, r := range rows {
		jr := jsonRow{
			SourceFile:          r.SourceFile,
			VendorName:          r.VendorName,
			InvoiceNumber:       r.InvoiceNumber,
			InvoiceDate:         r.InvoiceDate,
			LineItemDescription: r.LineItemDescription,
			LineItemAmount:      r.AmountString(),
			CheckNeeded:         r.CheckNeeded,
			ParsingIssues:       r.ParsingIssues,
		}
		if r.TotalAmount.Valid {
			total := r.TotalString()
			jr.TotalAmount = &total
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
