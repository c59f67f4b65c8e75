package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/KAAhwal/invoice-parser-app/internal/amount"
)

// Row is one exported line item with its denormalized header
type Row struct {
	SourceFile          string              `json:"source_file"`
	VendorName          string              `json:"vendor_name"`
	InvoiceNumber       string              `json:"invoice_number"`
	InvoiceDate         string              `json:"invoice_date"`
	TotalAmount         decimal.NullDecimal `json:"total_amount"`
	LineItemDescription string              `json:"line_item_description"`
	LineItemAmount      decimal.Decimal     `json:"line_item_amount"`
	CheckNeeded         bool                `json:"check_needed"`
	ParsingIssues       string              `json:"parsing_issues"`
}

// TotalString formats the total with two decimals, or empty when absent
func (r Row) TotalString() string {
	if !r.TotalAmount.Valid {
		return ""
	}
	return amount.Format(r.TotalAmount.Decimal)
}

// AmountString formats the line amount with two decimals
func (r Row) AmountString() string {
	return amount.Format(r.LineItemAmount)
}

// BuildRows emits one row per item. Every row shares the header fields
// and the issue annotation.
func BuildRows(source, vendorName string, h HeaderFields, rec Reconciliation, items []LineItem, issues IssueSet) []Row {
	if len(items) == 0 {
		return nil
	}
	joined := issues.String()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			SourceFile:          source,
			VendorName:          vendorName,
			InvoiceNumber:       h.InvoiceNumber,
			InvoiceDate:         h.InvoiceDate,
			TotalAmount:         rec.Total,
			LineItemDescription: it.Description,
			LineItemAmount:      it.Amount,
			CheckNeeded:         !issues.Empty(),
			ParsingIssues:       joined,
		})
	}
	return rows
}
