package ledger

// reconcile.go tracks the running account balance across the whole import
// and checks it against everything the source workbook claims.
//
// There is a single running balance, seeded from the account's opening
// balance and chained across sheets in ascending period order; processing
// sheets in isolation would silently break carry-over checks. Three
// checkpoints exist: the carry-over marker at the top of a sheet, the
// per-row balance column, and the period-end marker. A mismatch at any of
// them is a warning for human review, never a hard failure; historical
// ledgers legitimately contain small discrepancies that predate this
// system.

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// reconciler carries the sequential balance state of one import run.
type reconciler struct {
	balance decimal.Decimal
}

func newReconciler(openingBalance decimal.Decimal) *reconciler {
	return &reconciler{balance: openingBalance}
}

// Balance returns the current running balance.
func (r *reconciler) Balance() decimal.Decimal {
	return r.balance
}

// CheckCarryOver compares a sheet's prior-period marker against the running
// balance before any of the sheet's movements are applied. Returns a
// warning message, or "" on match.
func (r *reconciler) CheckCarryOver(sheet SheetRef, marker *PeriodMarker) string {
	if marker == nil {
		return ""
	}
	if WithinTolerance(marker.Value, r.balance) {
		return ""
	}
	return mismatchMessage(
		fmt.Sprintf("sheet %q (%s) carry-over", sheet.Name, sheet.Period),
		marker.Value, r.balance)
}

// Apply updates the running balance with one movement and, when the source
// row carried an explicit balance, compares the post-update balance against
// it. Returns the mismatch warning ("" on match) and whether the movement
// must be flagged.
func (r *reconciler) Apply(sheet SheetRef, candidate rowCandidate) (warning string, mismatch bool) {
	if candidate.Direction == Income {
		r.balance = r.balance.Add(candidate.Amount)
	} else {
		r.balance = r.balance.Sub(candidate.Amount)
	}

	if candidate.Balance == nil {
		return "", false
	}
	if WithinTolerance(*candidate.Balance, r.balance) {
		return "", false
	}
	return mismatchMessage(
		fmt.Sprintf("sheet %q row %d", sheet.Name, candidate.Row),
		*candidate.Balance, r.balance), true
}

// CheckPeriodEnd compares the sheet's period-end marker against the running
// balance after all of the sheet's movements. Returns a warning message, or
// "" on match.
func (r *reconciler) CheckPeriodEnd(sheet SheetRef, marker *PeriodMarker) string {
	if marker == nil {
		return ""
	}
	if WithinTolerance(marker.Value, r.balance) {
		return ""
	}
	return mismatchMessage(
		fmt.Sprintf("sheet %q (%s) period end", sheet.Name, sheet.Period),
		marker.Value, r.balance)
}
