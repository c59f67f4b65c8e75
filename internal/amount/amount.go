package amount

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparseable is matched by every *ParseError.
var ErrUnparseable = errors.New("unparseable amount")

var literalRx = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseError reports a token whose residual text is not a decimal literal.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse amount %q", e.Text)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrUnparseable
}

// Normalize parses a monetary token into a signed decimal.
// Negative conventions are checked in order: (1,234.56), 1,234.56-, -1,234.56.
func Normalize(token string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(token)
	negative := false

	switch {
	case len(raw) > 2 && strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")"):
		raw = raw[1 : len(raw)-1]
		negative = true
	case len(raw) > 1 && strings.HasSuffix(raw, "-"):
		raw = raw[:len(raw)-1]
		negative = true
	case len(raw) > 1 && strings.HasPrefix(raw, "-"):
		raw = raw[1:]
		negative = true
	}

	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if !literalRx.MatchString(raw) {
		return decimal.Zero, &ParseError{Text: token}
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ParseError{Text: token}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Format renders an amount with two fixed decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
