package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction indicates whether a movement adds to or subtracts from the
// account balance. A row must carry exactly one positive amount; rows with
// both or neither are discarded by the parser.
type Direction int

const (
	Income Direction = iota + 1
	Expense
)

// String returns the canonical name used in fingerprints and logs.
func (d Direction) String() string {
	switch d {
	case Income:
		return "INGRESO"
	case Expense:
		return "EGRESO"
	default:
		return "UNKNOWN"
	}
}

// Movement is one classified, fingerprinted financial movement produced by
// the import. Movements are created once and never mutated or deleted by
// this package; corrections happen through separate management operations.
type Movement struct {
	ID     uuid.UUID
	Number string // {period}-{row}, e.g. "2025-10-15"

	AccountID uuid.UUID
	Date      time.Time
	Direction Direction
	Amount    decimal.Decimal

	Description string

	// Exactly one of the two is set, matching Direction.
	SourceCode   string
	CategoryCode string

	IncomeSourceID    uuid.UUID
	ExpenseCategoryID uuid.UUID

	// Provenance.
	SourceName  string
	SheetName   string
	RowNumber   int
	ImportedAt  time.Time
	Fingerprint string

	// Populated only when the source row carried an explicit balance cell.
	BalanceMismatch bool
	ExpectedBalance *decimal.Decimal
	FoundBalance    *decimal.Decimal
}

// Period returns the accounting period the movement belongs to.
func (m Movement) Period() Period {
	return PeriodOf(m.Date)
}

// Account is the treasury account an import runs against. The import only
// reads it: the opening balance seeds the reconciliation and the id is
// stamped on every movement.
type Account struct {
	ID             uuid.UUID
	Code           string
	Name           string
	OpeningBalance decimal.Decimal
}

// Catalogs holds the read-only classification lookups resolved once at the
// start of an import, keyed by classifier code.
type Catalogs struct {
	IncomeSources     map[string]uuid.UUID
	ExpenseCategories map[string]uuid.UUID
}

// MarkerKind distinguishes the two balance markers a sheet can carry.
type MarkerKind int

const (
	// PriorPeriodBalance is the balance carried over from the previous
	// period, usually the first meaningful row of a sheet.
	PriorPeriodBalance MarkerKind = iota + 1
	// PeriodEndBalance is the closing balance the sheet reports for its
	// own period.
	PeriodEndBalance
)

// PeriodMarker is a transient carry-over or closing balance read from a
// sheet. It is consumed by the reconciler and never persisted.
type PeriodMarker struct {
	Kind  MarkerKind
	Value decimal.Decimal
	Sheet string
	Row   int
}

// SheetSummary is the per-sheet audit record in the import summary.
type SheetSummary struct {
	Period                     string           `json:"period"`
	MovementCount              int              `json:"movementCount"`
	StartingBalance            decimal.Decimal  `json:"startingBalance"`
	PriorPeriodBalanceDetected *decimal.Decimal `json:"priorPeriodBalanceDetected"`
	PeriodEndBalanceDetected   *decimal.Decimal `json:"periodEndBalanceDetected"`
	CalculatedEndingBalance    decimal.Decimal  `json:"calculatedEndingBalance"`
}

// ImportSummary is the result contract returned to callers. It is always
// produced, including on fatal failures, so the caller can render what
// happened; only persistence errors additionally propagate as errors.
type ImportSummary struct {
	Success                bool                     `json:"success"`
	TotalRowsProcessed     int                      `json:"totalRowsProcessed"`
	MovementsImported      int                      `json:"movementsImported"`
	MovementsSkipped       int                      `json:"movementsSkipped"`
	BalanceMismatches      int                      `json:"balanceMismatches"`
	FinalCalculatedBalance decimal.Decimal          `json:"finalCalculatedBalance"`
	PerSheet               map[string]*SheetSummary `json:"perSheet"`
	Warnings               []string                 `json:"warnings"`
	Errors                 []string                 `json:"errors"`
	Message                string                   `json:"message"`
	DryRun                 bool                     `json:"dryRun"`
}

func (s *ImportSummary) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s *ImportSummary) errorf(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// MovementStore persists movements and answers fingerprint lookups.
// InsertMovements must commit the whole batch in a single transaction: a
// failure mid-batch leaves the store unchanged.
type MovementStore interface {
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error)
	InsertMovements(ctx context.Context, movements []Movement) (int, error)
}

// PeriodLocks answers whether an accounting period is administratively
// closed for writes.
type PeriodLocks interface {
	IsPeriodLocked(ctx context.Context, p Period) (bool, error)
}

// AccountDirectory resolves treasury accounts by code.
type AccountDirectory interface {
	GetAccount(ctx context.Context, code string) (Account, error)
}

// CatalogDirectory resolves the classification catalogs.
type CatalogDirectory interface {
	IncomeSources(ctx context.Context) (map[string]uuid.UUID, error)
	ExpenseCategories(ctx context.Context) (map[string]uuid.UUID, error)
}
