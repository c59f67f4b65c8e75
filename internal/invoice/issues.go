package invoice

import (
	"strings"
)

// Issue codes attached to rows of a document or page
const (
	IssueInvoiceNumberMissing = "invoice_number_missing"
	IssueInvoiceDateMissing   = "invoice_date_missing"
	IssueNoLineItems          = "no_line_items"
	IssueTotalMissing         = "total_missing"
	IssueTotalMismatch        = "total_mismatch"
	issueAmountUnparseable    = "amount_unparseable:"
)

var canonicalOrder = []string{
	IssueInvoiceNumberMissing,
	IssueInvoiceDateMissing,
	IssueNoLineItems,
	IssueTotalMissing,
	IssueTotalMismatch,
}

// AmountUnparseable builds the item-level code for a token that failed to normalize
func AmountUnparseable(text string) string {
	return issueAmountUnparseable + text
}

// IssueSet is an ordered, de-duplicated collection of issue codes.
// The zero value is empty and ready to use.
type IssueSet struct {
	fixed map[string]bool
	items []string
	seen  map[string]bool
}

// Add records a code. Fixed codes keep their canonical position, item-level
// codes keep their order of appearance after them.
func (s *IssueSet) Add(code string) {
	if code == "" {
		return
	}
	if isFixed(code) {
		if s.fixed == nil {
			s.fixed = make(map[string]bool)
		}
		s.fixed[code] = true
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[code] {
		return
	}
	s.seen[code] = true
	s.items = append(s.items, code)
}

// Merge adds every code of other
func (s *IssueSet) Merge(other IssueSet) {
	for _, c := range other.Codes() {
		s.Add(c)
	}
}

// Has reports whether code was recorded
func (s IssueSet) Has(code string) bool {
	return s.fixed[code] || s.seen[code]
}

// Codes returns the codes in canonical order
func (s IssueSet) Codes() []string {
	out := make([]string, 0, len(s.fixed)+len(s.items))
	for _, c := range canonicalOrder {
		if s.fixed[c] {
			out = append(out, c)
		}
	}
	return append(out, s.items...)
}

// Empty reports whether no code was recorded
func (s IssueSet) Empty() bool {
	return len(s.fixed) == 0 && len(s.items) == 0
}

// String joins the codes with semicolons
func (s IssueSet) String() string {
	return strings.Join(s.Codes(), ";")
}

func isFixed(code string) bool {
	for _, c := range canonicalOrder {
		if c == code {
			return true
		}
	}
	return false
}
