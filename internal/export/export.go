package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
)

// Columns is the header of every tabular export
var Columns = []string{
	"source_file",
	"vendor_name",
	"invoice_number",
	"invoice_date",
	"total_amount",
	"line_item_description",
	"line_item_amount",
	"check_needed",
	"parsing_issues",
}

// Format is an output encoding
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
)

// ParseFormat accepts a format name, ignoring case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, XLSX, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case JSON:
		return "application/json"
	}
	return "text/csv"
}

// Extension returns the file extension with its dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Write encodes rows in the given format
func Write(w io.Writer, f Format, rows []invoice.Row) error {
	switch f {
	case XLSX:
		return WriteXLSX(w, rows)
	case JSON:
		return WriteJSON(w, rows)
	}
	return WriteCSV(w, rows)
}

func record(r invoice.Row) []string {
	check := "FALSE"
	if r.CheckNeeded {
		check = "TRUE"
	}
	return []string{
		r.SourceFile,
		r.VendorName,
		r.InvoiceNumber,
		r.InvoiceDate,
		r.TotalString(),
		r.LineItemDescription,
		r.AmountString(),
		check,
		r.ParsingIssues,
	}
}
