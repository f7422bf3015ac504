package ledger

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Repository bundles the collaborator interfaces an import needs. The pgx
// implementation lives in internal/store; tests use in-memory fakes.
type Repository interface {
	AccountDirectory
	CatalogDirectory
	PeriodLocks
	MovementStore
}

// Service is the entry point the HTTP layer talks to. It resolves the
// account and catalogs, serializes runs per account through the guard and
// delegates to the Importer.
type Service struct {
	repo  Repository
	guard *ImportGuard

	// now is overridable in tests.
	now func() time.Time
}

// NewService creates a Service backed by repo, allowing at most
// maxConcurrentImports parallel runs.
func NewService(repo Repository, maxConcurrentImports int) *Service {
	return &Service{
		repo:  repo,
		guard: NewImportGuard(maxConcurrentImports),
		now:   time.Now,
	}
}

// RunImport executes one import of the workbook stream against the account
// identified by accountCode. The summary is non-nil whenever the pipeline
// ran, even on fatal structural failures; the error is non-nil for
// precondition failures (unknown account, busy account) and persistence
// failures.
func (s *Service) RunImport(ctx context.Context, accountCode, sourceName string, workbook io.Reader, dryRun bool) (*ImportSummary, error) {
	if err := s.guard.Acquire(accountCode); err != nil {
		return nil, err
	}
	defer s.guard.Release(accountCode)

	account, err := s.repo.GetAccount(ctx, accountCode)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", accountCode, err)
	}

	incomeSources, err := s.repo.IncomeSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("income source catalog: %w", err)
	}
	expenseCategories, err := s.repo.ExpenseCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("expense category catalog: %w", err)
	}

	importer := &Importer{Store: s.repo, Locks: s.repo, Now: s.now}
	return importer.Run(ctx, workbook, ImportRequest{
		SourceName: sourceName,
		Account:    account,
		Catalogs: Catalogs{
			IncomeSources:     incomeSources,
			ExpenseCategories: expenseCategories,
		},
		DryRun: dryRun,
	})
}

// IsPeriodLocked reports whether the accounting period is closed for
// writes. Exposed read-only to the surrounding modules.
func (s *Service) IsPeriodLocked(ctx context.Context, year int, month time.Month) (bool, error) {
	return s.repo.IsPeriodLocked(ctx, Period{Year: year, Month: month})
}

// ActiveImports returns how many imports are currently running.
func (s *Service) ActiveImports() int {
	return s.guard.ActiveCount()
}
