package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

// Reconciliation is the resolved total of a document or page
type Reconciliation struct {
	Total     decimal.NullDecimal
	TotalFrom Provenance
	Sum       decimal.Decimal
	Issues    IssueSet
}

// Reconcile settles the total according to the profile's total source and
// checks it against the item sum.
func Reconcile(h HeaderFields, items []LineItem, p *vendor.Profile) Reconciliation {
	r := Reconciliation{Sum: Sum(items)}

	switch p.TotalSource {
	case vendor.TotalDeclared:
		r.Total, r.TotalFrom = h.Total, h.TotalFrom
	case vendor.TotalInferred:
		r.Total, r.TotalFrom = InferTotal(items, r.Sum)
	case vendor.TotalDeclaredWithFallback:
		r.Total, r.TotalFrom = h.Total, h.TotalFrom
		if !r.Total.Valid {
			r.Total, r.TotalFrom = InferTotal(items, r.Sum)
		}
	}

	if !r.Total.Valid {
		r.Issues.Add(IssueTotalMissing)
		if !p.ZeroMissingTotal {
			return r
		}
		r.Total, r.TotalFrom = decimal.NewNullDecimal(decimal.Zero), FromSentinel
	}

	if r.Sum.Sub(r.Total.Decimal).Abs().GreaterThan(p.Tolerance) {
		r.Issues.Add(IssueTotalMismatch)
	}
	return r
}

// Sum adds the item amounts
func Sum(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// InferTotal picks the item that restates the total: the largest magnitude
// among items at least as large as the sum. The first item wins ties.
func InferTotal(items []LineItem, sum decimal.Decimal) (decimal.NullDecimal, Provenance) {
	floor := sum.Abs()
	var (
		best  decimal.Decimal
		found bool
	)
	for _, it := range items {
		mag := it.Amount.Abs()
		if mag.LessThan(floor) {
			continue
		}
		if !found || mag.GreaterThan(best.Abs()) {
			best, found = it.Amount, true
		}
	}
	if !found {
		return decimal.NullDecimal{}, FromNone
	}
	return decimal.NewNullDecimal(best), FromInferred
}
