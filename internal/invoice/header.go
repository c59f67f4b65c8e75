package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KAAhwal/invoice-parser-app/internal/amount"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

// Provenance records which pass produced a header value
type Provenance int

const (
	FromNone Provenance = iota
	FromPrimary
	FromFallback
	FromLabel
	FromInferred
	FromSentinel
)

func (p Provenance) String() string {
	switch p {
	case FromPrimary:
		return "primary"
	case FromFallback:
		return "fallback"
	case FromLabel:
		return "label"
	case FromInferred:
		return "inferred"
	case FromSentinel:
		return "sentinel"
	}
	return "none"
}

// HeaderFields are the per-document (or per-page) header values
type HeaderFields struct {
	InvoiceNumber string
	InvoiceDate   string
	Total         decimal.NullDecimal

	NumberFrom Provenance
	DateFrom   Provenance
	TotalFrom  Provenance
}

// labelValueRx reads the amount that follows a total label
var labelValueRx = regexp.MustCompile(`(\(?-?\$?[\d,]+\.\d{1,2}\)?-?)\s*$`)

// ExtractHeader resolves invoice number, date and stated total. region holds
// lines recognized from the profile's header region and may be empty.
func ExtractHeader(lines, region []string, p *vendor.Profile) (HeaderFields, IssueSet) {
	var (
		h      HeaderFields
		issues IssueSet
	)

	window := headerWindow(lines, region, p.HeaderWindow)
	full := strings.Join(lines, "\n")

	h.InvoiceNumber, h.NumberFrom = resolveField(p.InvoiceNumber, window, full, nil)
	h.InvoiceDate, h.DateFrom = resolveField(p.InvoiceDate, window, full, p.DateShape)
	h.Total, h.TotalFrom = resolveTotal(p.Total, lines)

	if h.InvoiceNumber == "" {
		issues.Add(IssueInvoiceNumberMissing)
	}
	if h.InvoiceDate == "" {
		issues.Add(IssueInvoiceDateMissing)
	}
	return h, issues
}

func headerWindow(lines, region []string, size int) []string {
	if len(region) > 0 {
		return region
	}
	if size > 0 && size < len(lines) {
		return lines[:size]
	}
	return lines
}

func resolveField(rule vendor.FieldRule, window []string, full string, shape *regexp.Regexp) (string, Provenance) {
	if rule.Primary != nil {
		for _, line := range window {
			if v := narrow(firstGroup(rule.Primary, line), shape); v != "" {
				return v, FromPrimary
			}
		}
	}
	if rule.Fallback != nil {
		if v := narrow(firstGroup(rule.Fallback, full), shape); v != "" {
			return v, FromFallback
		}
	}
	return "", FromNone
}

func resolveTotal(rule vendor.TotalRule, lines []string) (decimal.NullDecimal, Provenance) {
	order := lines
	if rule.SearchLast {
		order = make([]string, len(lines))
		for i, l := range lines {
			order[len(lines)-1-i] = l
		}
	}

	for _, pass := range []struct {
		rx   *regexp.Regexp
		from Provenance
	}{
		{rule.Primary, FromPrimary},
		{rule.Fallback, FromFallback},
	} {
		if pass.rx == nil {
			continue
		}
		for _, line := range order {
			if d, ok := normalizeCapture(firstGroup(pass.rx, line)); ok {
				return decimal.NewNullDecimal(d), pass.from
			}
		}
	}

	if rule.Label != nil {
		for i, line := range order {
			loc := rule.Label.FindStringIndex(line)
			if loc == nil {
				continue
			}
			if !rule.NextLineOnly {
				if d, ok := normalizeCapture(firstGroup(labelValueRx, line[loc[1]:])); ok {
					return decimal.NewNullDecimal(d), FromLabel
				}
			}
			if next := nextLine(lines, i, rule.SearchLast); next != "" {
				if d, ok := normalizeCapture(firstGroup(labelValueRx, next)); ok {
					return decimal.NewNullDecimal(d), FromLabel
				}
			}
		}
	}
	return decimal.NullDecimal{}, FromNone
}

// nextLine returns the line following the i-th line in search order
func nextLine(lines []string, i int, reversed bool) string {
	idx := i
	if reversed {
		idx = len(lines) - 1 - i
	}
	if idx+1 < len(lines) {
		return lines[idx+1]
	}
	return ""
}

func firstGroup(rx *regexp.Regexp, s string) string {
	m := rx.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func narrow(v string, shape *regexp.Regexp) string {
	if v == "" || shape == nil {
		return v
	}
	return firstGroup(shape, v)
}

func normalizeCapture(token string) (decimal.Decimal, bool) {
	if token == "" {
		return decimal.Decimal{}, false
	}
	d, err := amount.Normalize(token)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
