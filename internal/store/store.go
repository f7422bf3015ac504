// Package store provides the PostgreSQL implementation of the ledger
// collaborator interfaces: account and catalog lookups, period locks, and
// the transactional movement store used for idempotent imports.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/efigueroa/tesoreria/internal/ledger"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements ledger.Repository on top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetAccount resolves a treasury account by code.
func (s *Store) GetAccount(ctx context.Context, code string) (ledger.Account, error) {
	var (
		account ledger.Account
		balance string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, name, opening_balance::text
		   FROM accounts
		  WHERE code = $1`,
		code,
	).Scan(&account.ID, &account.Code, &account.Name, &balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.Account{}, fmt.Errorf("account %q not found", code)
		}
		return ledger.Account{}, fmt.Errorf("get account: %w", err)
	}

	account.OpeningBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("account %q: opening balance %q: %w", code, balance, err)
	}
	return account, nil
}

// IncomeSources returns the income-source catalog keyed by classifier code.
func (s *Store) IncomeSources(ctx context.Context) (map[string]uuid.UUID, error) {
	return s.catalog(ctx, "income_sources")
}

// ExpenseCategories returns the expense-category catalog keyed by
// classifier code.
func (s *Store) ExpenseCategories(ctx context.Context) (map[string]uuid.UUID, error) {
	return s.catalog(ctx, "expense_categories")
}

func (s *Store) catalog(ctx context.Context, table string) (map[string]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT code, id FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	result := make(map[string]uuid.UUID)
	for rows.Next() {
		var (
			code string
			id   uuid.UUID
		)
		if err := rows.Scan(&code, &id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		result[code] = id
	}
	return result, rows.Err()
}

// IsPeriodLocked reports whether the accounting period is closed.
func (s *Store) IsPeriodLocked(ctx context.Context, p ledger.Period) (bool, error) {
	var locked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM period_locks WHERE year = $1 AND month = $2)`,
		p.Year, int(p.Month),
	).Scan(&locked)
	if err != nil {
		return false, fmt.Errorf("period lock check: %w", err)
	}
	return locked, nil
}

// LockPeriod closes an accounting period for writes. Idempotent.
func (s *Store) LockPeriod(ctx context.Context, p ledger.Period, lockedBy string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO period_locks (year, month, locked_by)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (year, month) DO NOTHING`,
		p.Year, int(p.Month), lockedBy,
	)
	if err != nil {
		return fmt.Errorf("lock period %s: %w", p, err)
	}
	return nil
}

// UnlockPeriod reopens an accounting period. Idempotent.
func (s *Store) UnlockPeriod(ctx context.Context, p ledger.Period) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM period_locks WHERE year = $1 AND month = $2`,
		p.Year, int(p.Month),
	)
	if err != nil {
		return fmt.Errorf("unlock period %s: %w", p, err)
	}
	return nil
}

// ExistingFingerprints returns which of the given fingerprints already have
// a persisted movement.
func (s *Store) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(fingerprints))
	if len(fingerprints) == 0 {
		return existing, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT fingerprint FROM movements WHERE fingerprint = ANY($1)`,
		fingerprints,
	)
	if err != nil {
		return nil, fmt.Errorf("fingerprint lookup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		existing[fp] = struct{}{}
	}
	return existing, rows.Err()
}

// InsertMovements commits the batch in a single transaction. On any
// failure the whole batch rolls back and the store is unchanged.
func (s *Store) InsertMovements(ctx context.Context, movements []ledger.Movement) (int, error) {
	if len(movements) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range movements {
		if err := insertMovement(ctx, tx, m); err != nil {
			return 0, fmt.Errorf("insert movement %s: %w", m.Number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(movements), nil
}

func insertMovement(ctx context.Context, db DBTX, m ledger.Movement) error {
	_, err := db.Exec(ctx,
		`INSERT INTO movements (
			id, number, account_id, movement_date, direction, amount, description,
			source_code, category_code, income_source_id, expense_category_id,
			source_name, sheet_name, row_number, imported_at, fingerprint,
			balance_mismatch, expected_balance, found_balance
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		m.ID, m.Number, m.AccountID, m.Date, m.Direction.String(),
		m.Amount.StringFixed(2), m.Description,
		nullText(m.SourceCode), nullText(m.CategoryCode),
		nullUUID(m.IncomeSourceID), nullUUID(m.ExpenseCategoryID),
		m.SourceName, m.SheetName, m.RowNumber, m.ImportedAt, m.Fingerprint,
		m.BalanceMismatch, nullDecimal(m.ExpectedBalance), nullDecimal(m.FoundBalance),
	)
	return err
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func nullUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

func nullDecimal(d *decimal.Decimal) pgtype.Text {
	if d == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: d.StringFixed(2), Valid: true}
}
