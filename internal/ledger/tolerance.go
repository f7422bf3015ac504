package ledger

// tolerance.go defines the single numeric rule used by every balance
// comparison in the import: carry-over between sheets, per-row balance
// columns, and period-end markers all share the same tolerance.
//
// The boundary is exclusive on purpose: a difference exactly equal to the
// tolerance is a mismatch. Accounting review must see an exact boundary
// difference flagged rather than silently accepted.

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum absolute difference, in ledger currency,
// under which two balances are considered equal.
var BalanceTolerance = decimal.NewFromInt(1)

// WithinTolerance reports whether found is close enough to expected.
// The comparison is exclusive: a difference of exactly BalanceTolerance
// counts as a mismatch.
func WithinTolerance(expected, found decimal.Decimal) bool {
	return Diff(expected, found).LessThan(BalanceTolerance)
}

// Diff returns the absolute difference between expected and found.
func Diff(expected, found decimal.Decimal) decimal.Decimal {
	return expected.Sub(found).Abs()
}

// mismatchMessage renders a balance mismatch so the audit trail is
// self-explanatory: what was compared, both values, the absolute
// difference, and the tolerance with its exact comparison operator.
func mismatchMessage(context string, expected, found decimal.Decimal) string {
	return fmt.Sprintf("%s: expected balance %s, found %s (difference %s >= tolerance %s)",
		context,
		expected.StringFixed(2),
		found.StringFixed(2),
		Diff(expected, found).StringFixed(2),
		BalanceTolerance.StringFixed(2))
}
