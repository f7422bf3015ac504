package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportPhase indicates the current stage of an import run.
type ImportPhase string

const (
	PhaseInit             ImportPhase = "init"
	PhaseSheetsClassified ImportPhase = "sheets_classified"
	PhaseParsing          ImportPhase = "parsing"
	PhaseReconciling      ImportPhase = "reconciling"
	PhasePersisting       ImportPhase = "persisting"
	PhaseSummarized       ImportPhase = "summarized"
)

// ImportRequest carries everything one import invocation needs. Catalogs
// and account are resolved by the caller up front so the pipeline itself
// stays a function of its inputs.
type ImportRequest struct {
	SourceName string
	Account    Account
	Catalogs   Catalogs
	DryRun     bool
}

// Importer sequences the import pipeline: sheet classification, per-sheet
// row parsing, classification, fingerprinting, balance reconciliation and
// idempotent persistence.
type Importer struct {
	Store MovementStore
	Locks PeriodLocks

	// Now stamps ImportedAt on movements; overridable in tests.
	Now func() time.Time
}

// Run executes one import against the workbook byte stream. The summary is
// always non-nil, including on fatal structural failures; the returned
// error is non-nil only for persistence failures, which also leave the
// store unchanged for the affected batch.
func (imp *Importer) Run(ctx context.Context, workbook io.Reader, req ImportRequest) (*ImportSummary, error) {
	now := imp.Now
	if now == nil {
		now = time.Now
	}

	summary := &ImportSummary{
		PerSheet:               make(map[string]*SheetSummary),
		DryRun:                 req.DryRun,
		FinalCalculatedBalance: req.Account.OpeningBalance,
	}
	logger := slog.Default().With("source", req.SourceName, "account", req.Account.Code, "dry_run", req.DryRun)
	logger.Info("import started", "phase", PhaseInit)

	f, err := excelize.OpenReader(workbook)
	if err != nil {
		summary.errorf("open workbook %q: %v", req.SourceName, err)
		summary.Message = "import aborted: workbook could not be opened"
		return summary, nil
	}
	defer f.Close()

	sheets, err := ClassifySheets(f.GetSheetList())
	if err != nil {
		summary.errorf("sheet classification: %v", err)
		summary.Message = "import aborted: " + err.Error()
		logger.Warn("import aborted", "phase", PhaseSummarized, "error", err)
		return summary, nil
	}
	logger.Debug("sheets classified", "phase", PhaseSheetsClassified, "sheets", len(sheets))

	rec := newReconciler(req.Account.OpeningBalance)
	missingCodes := make(map[string]bool)
	var batch []Movement

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet.Name)
		if err != nil {
			summary.errorf("sheet %q: read rows: %v", sheet.Name, err)
			continue
		}

		parsed := parseSheet(sheet.Name, rows)
		summary.Warnings = append(summary.Warnings, parsed.Warnings...)
		summary.TotalRowsProcessed += parsed.RowsProcessed
		logger.Debug("sheet parsed",
			"phase", PhaseParsing,
			"sheet", sheet.Name,
			"rows", parsed.RowsProcessed,
			"candidates", len(parsed.Candidates),
		)

		sheetSummary := &SheetSummary{
			Period:          sheet.Period.String(),
			StartingBalance: rec.Balance(),
		}
		summary.PerSheet[sheet.Name] = sheetSummary

		if parsed.PriorBalance != nil {
			v := parsed.PriorBalance.Value
			sheetSummary.PriorPeriodBalanceDetected = &v
		}
		if warn := rec.CheckCarryOver(sheet, parsed.PriorBalance); warn != "" {
			summary.warnf("%s", warn)
		}

		for _, candidate := range parsed.Candidates {
			movement := imp.buildMovement(req, sheet, candidate, now())

			warn, mismatch := rec.Apply(sheet, candidate)
			if candidate.Balance != nil {
				expected := *candidate.Balance
				found := rec.Balance()
				movement.ExpectedBalance = &expected
				movement.FoundBalance = &found
			}
			if mismatch {
				movement.BalanceMismatch = true
				summary.BalanceMismatches++
				summary.warnf("%s", warn)
			}

			if movement.Direction == Income && movement.IncomeSourceID == uuid.Nil && !missingCodes[movement.SourceCode] {
				missingCodes[movement.SourceCode] = true
				summary.warnf("income source code %q is not in the catalog", movement.SourceCode)
			}
			if movement.Direction == Expense && movement.ExpenseCategoryID == uuid.Nil && !missingCodes[movement.CategoryCode] {
				missingCodes[movement.CategoryCode] = true
				summary.warnf("expense category code %q is not in the catalog", movement.CategoryCode)
			}

			sheetSummary.MovementCount++
			batch = append(batch, movement)
		}

		if parsed.PeriodEnd != nil {
			v := parsed.PeriodEnd.Value
			sheetSummary.PeriodEndBalanceDetected = &v
		}
		if warn := rec.CheckPeriodEnd(sheet, parsed.PeriodEnd); warn != "" {
			summary.warnf("%s", warn)
		}

		sheetSummary.CalculatedEndingBalance = rec.Balance()
		logger.Debug("sheet reconciled",
			"phase", PhaseReconciling,
			"sheet", sheet.Name,
			"period", sheet.Period.String(),
			"movements", sheetSummary.MovementCount,
			"ending_balance", sheetSummary.CalculatedEndingBalance.StringFixed(2),
		)
	}

	summary.FinalCalculatedBalance = rec.Balance()

	logger.Debug("persisting batch", "phase", PhasePersisting, "movements", len(batch))
	outcome, err := persistBatch(ctx, imp.Store, imp.Locks, batch, req.DryRun)
	summary.Errors = append(summary.Errors, outcome.PeriodErrors...)
	if err != nil {
		summary.errorf("persistence: %v", err)
		summary.Message = "import failed: " + err.Error()
		return summary, err
	}

	summary.MovementsImported = outcome.Inserted
	summary.MovementsSkipped = outcome.Duplicates
	summary.Success = len(summary.Errors) == 0
	summary.Message = summaryMessage(summary)

	logger.Info("import finished",
		"phase", PhaseSummarized,
		"success", summary.Success,
		"imported", summary.MovementsImported,
		"skipped", summary.MovementsSkipped,
		"mismatches", summary.BalanceMismatches,
	)
	return summary, nil
}

// buildMovement assembles a classified, fingerprinted movement from a
// parsed candidate row.
func (imp *Importer) buildMovement(req ImportRequest, sheet SheetRef, candidate rowCandidate, importedAt time.Time) Movement {
	sourceCode, categoryCode := Classify(candidate.Description, candidate.Direction)

	m := Movement{
		ID:           uuid.New(),
		Number:       fmt.Sprintf("%s-%d", sheet.Period, candidate.Row),
		AccountID:    req.Account.ID,
		Date:         candidate.Date.Time,
		Direction:    candidate.Direction,
		Amount:       candidate.Amount,
		Description:  candidate.Description,
		SourceCode:   sourceCode,
		CategoryCode: categoryCode,
		SourceName:   req.SourceName,
		SheetName:    sheet.Name,
		RowNumber:    candidate.Row,
		ImportedAt:   importedAt,
		Fingerprint: Fingerprint(candidate.Date.Time, candidate.Description, candidate.Direction,
			candidate.Amount, candidate.Balance, sheet.Name),
	}

	if candidate.Direction == Income {
		m.IncomeSourceID = req.Catalogs.IncomeSources[sourceCode]
	} else {
		m.ExpenseCategoryID = req.Catalogs.ExpenseCategories[categoryCode]
	}
	return m
}

func summaryMessage(s *ImportSummary) string {
	mode := "imported"
	if s.DryRun {
		mode = "dry-run: would import"
	}
	msg := fmt.Sprintf("%s %d movement(s), %d duplicate(s) skipped, final balance %s",
		mode, s.MovementsImported, s.MovementsSkipped, s.FinalCalculatedBalance.StringFixed(2))
	if s.BalanceMismatches > 0 {
		msg += fmt.Sprintf(", %d balance mismatch(es) flagged", s.BalanceMismatches)
	}
	if len(s.Errors) > 0 {
		msg += fmt.Sprintf(", %d error(s)", len(s.Errors))
	}
	return msg
}
