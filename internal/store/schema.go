package store

import (
	"context"
	"fmt"
)

// schema holds the DDL for the import store. Idempotent so startup can run
// it unconditionally. The unique index on fingerprint is the database-side
// backstop for the import's idempotency invariant: at most one physical
// record may ever exist per content fingerprint.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id              UUID PRIMARY KEY,
	code            TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	opening_balance NUMERIC(18,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS income_sources (
	id   UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expense_categories (
	id   UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS period_locks (
	year      INT  NOT NULL,
	month     INT  NOT NULL CHECK (month BETWEEN 1 AND 12),
	locked_by TEXT NOT NULL DEFAULT '',
	locked_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (year, month)
);

CREATE TABLE IF NOT EXISTS movements (
	id                  UUID PRIMARY KEY,
	number              TEXT NOT NULL,
	account_id          UUID NOT NULL REFERENCES accounts(id),
	movement_date       DATE NOT NULL,
	direction           TEXT NOT NULL CHECK (direction IN ('INGRESO', 'EGRESO')),
	amount              NUMERIC(18,2) NOT NULL CHECK (amount > 0),
	description         TEXT NOT NULL,
	source_code         TEXT,
	category_code       TEXT,
	income_source_id    UUID REFERENCES income_sources(id),
	expense_category_id UUID REFERENCES expense_categories(id),
	source_name         TEXT NOT NULL,
	sheet_name          TEXT NOT NULL,
	row_number          INT NOT NULL,
	imported_at         TIMESTAMPTZ NOT NULL,
	fingerprint         TEXT NOT NULL,
	balance_mismatch    BOOLEAN NOT NULL DEFAULT false,
	expected_balance    NUMERIC(18,2),
	found_balance       NUMERIC(18,2)
);

CREATE UNIQUE INDEX IF NOT EXISTS movements_fingerprint_idx ON movements (fingerprint);
CREATE INDEX IF NOT EXISTS movements_account_date_idx ON movements (account_id, movement_date);
`

// EnsureSchema creates the import store tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
