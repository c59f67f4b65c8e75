package invoice

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KAAhwal/invoice-parser-app/internal/amount"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

// LineItem is one priced line of an invoice table
type LineItem struct {
	Description string
	Amount      decimal.Decimal
	// Issue is set when the amount was replaced by a zero placeholder
	Issue string
}

// ExtractItems walks every table section of the profile and returns the
// priced lines in source order.
func ExtractItems(lines []string, p *vendor.Profile) ([]LineItem, IssueSet) {
	var (
		items  []LineItem
		issues IssueSet
	)

	for _, section := range p.Sections {
		start, end, ok := sectionBounds(lines, section)
		if !ok {
			continue
		}
		for _, line := range lines[start+1 : end] {
			if p.Excluded(line) {
				continue
			}
			item, ok := parseLine(line, section.SkipTokens, p)
			if !ok {
				continue
			}
			if item.Issue != "" {
				issues.Add(item.Issue)
			}
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		issues.Add(IssueNoLineItems)
	}
	return items, issues
}

// sectionBounds returns the exclusive bounds of a table. A nil start places
// the table before the first line.
func sectionBounds(lines []string, s vendor.Section) (start, end int, ok bool) {
	start = -1
	if s.Start != nil {
		start = indexOf(lines, 0, func(l string) bool { return s.Start.MatchString(l) })
		if start < 0 {
			return 0, 0, false
		}
	}

	end = len(lines)
	if s.Break != nil {
		from := start
		if from < 0 {
			from = 0
		}
		if i := indexOf(lines, from, func(l string) bool { return s.Break.MatchString(l) }); i >= 0 {
			end = i
		}
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func indexOf(lines []string, from int, match func(string) bool) int {
	for i := from; i < len(lines); i++ {
		if match(lines[i]) {
			return i
		}
	}
	return -1
}

func parseLine(line string, skip int, p *vendor.Profile) (LineItem, bool) {
	loc := p.Amount.FindStringSubmatchIndex(line)
	if loc == nil || loc[2] < 0 {
		return LineItem{}, false
	}
	token := line[loc[2]:loc[3]]
	item := LineItem{Description: describe(line[:loc[2]], skip)}

	d, err := amount.Normalize(token)
	if err != nil {
		if p.Unparseable == vendor.DropLine {
			slog.Debug("dropping line with unparseable amount", "vendor", p.ID, "token", token)
			return LineItem{}, false
		}
		item.Amount = decimal.Zero
		item.Issue = AmountUnparseable(token)
		return item, true
	}
	item.Amount = d
	return item, true
}

func describe(prefix string, skip int) string {
	desc := strings.TrimSpace(strings.TrimRight(prefix, " \t:,-"))
	if skip <= 0 {
		return desc
	}
	fields := strings.Fields(desc)
	if len(fields) <= skip {
		return ""
	}
	return strings.Join(fields[skip:], " ")
}
