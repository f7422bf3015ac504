// Package ledger implements the treasury workbook import pipeline.
//
// A historical treasury ledger arrives as a multi-sheet spreadsheet, one
// sheet per accounting month. The pipeline classifies sheets into periods,
// parses loosely structured rows into financial movements, classifies each
// movement against the income-source and expense-category catalogs,
// reconciles the running account balance across sheets, and persists the
// batch idempotently (content-fingerprint deduplication, locked-period
// rejection, single transaction per import).
//
// The pipeline is a pure function of (workbook, account, catalogs, lock
// query) except for the final persistence step. Sheets are processed
// strictly sequentially in period order because the running balance chains
// across sheets; callers must not run concurrent imports against the same
// account (see ImportGuard).
//
// This package has no HTTP dependencies and can be driven by any frontend.
package ledger
