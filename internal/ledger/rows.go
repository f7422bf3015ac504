package ledger

// rows.go walks the rows of one classified sheet and splits them into
// movement candidates, balance markers and ignorable rows.
//
// Sheets are hand-maintained: the header may sit below a title block, total
// rows are interleaved with data, and balance markers appear as ordinary
// rows whose description carries a known phrase. The parser is tolerant at
// the row level; only a missing header makes the whole sheet contribute
// nothing (with a warning).

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxHeaderSearchRows is how many rows are scanned for the header row.
var MaxHeaderSearchRows = 20

// Column labels recognized in the header row, per column role.
var (
	dateLabels        = []string{"FECHA"}
	descriptionLabels = []string{"DESCRIPCION", "DESCRIPCIÓN", "DETALLE", "CONCEPTO"}
	incomeLabels      = []string{"INGRESOS", "INGRESO", "ENTRADAS"}
	expenseLabels     = []string{"EGRESOS", "EGRESO", "SALIDAS"}
	balanceLabels     = []string{"SALDO"}
)

// Marker phrases, matched against the normalized description.
// priorBalancePhrase opens a sheet with the previous period's balance;
// periodEndAtPhrase must be checked before periodEndPhrase because the
// dated form is a superset of the plain one.
const (
	priorBalancePhrase = "SALDO ANTERIOR"
	periodEndAtPhrase  = "SALDO ACTUAL AL"
	periodEndPhrase    = "SALDO ACTUAL"
)

// totalPhrases mark summary rows that are neither movements nor markers.
var totalPhrases = []string{
	"TOTAL INGRESOS",
	"TOTAL EGRESOS",
	"TOTAL CONSIGNACIONES",
	"TOTAL MOVIMIENTOS",
	"TOTALES",
	"TOTAL",
}

// columnIndex locates the role columns inside a header row. A value of -1
// means the column is absent.
type columnIndex struct {
	date        int
	description int
	income      int
	expense     int
	balance     int // optional
}

// rowCandidate is a movement candidate emitted by the parser, before
// classification and fingerprinting.
type rowCandidate struct {
	Row         int // 1-based row number in the sheet
	Date        DateCell
	Description string
	Direction   Direction
	Amount      decimal.Decimal
	Balance     *decimal.Decimal // from the SALDO column, when present and parseable
}

// sheetRows is the parse result for one sheet.
type sheetRows struct {
	Candidates    []rowCandidate
	PriorBalance  *PeriodMarker
	PeriodEnd     *PeriodMarker
	RowsProcessed int
	Warnings      []string
}

// parseSheet extracts movement candidates and balance markers from the raw
// rows of one sheet. rows is what excelize returns for the sheet: one
// string slice per row, trailing empty cells omitted.
func parseSheet(sheetName string, rows [][]string) sheetRows {
	var out sheetRows

	headerRow, cols, ok := findHeader(rows)
	if !ok {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("sheet %q: no header row found in the first %d rows, sheet skipped", sheetName, MaxHeaderSearchRows))
		return out
	}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		out.RowsProcessed++

		description := NormalizeDescription(cellAt(row, cols.description))
		if description == "" {
			continue
		}

		switch {
		case strings.HasPrefix(description, priorBalancePhrase):
			out.PriorBalance = markerFromRow(PriorPeriodBalance, sheetName, rowNum, row, cols)
			if out.PriorBalance == nil {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("sheet %q row %d: balance marker %q has no parseable amount, marker ignored", sheetName, rowNum, description))
			}
			continue
		case strings.HasPrefix(description, periodEndAtPhrase), strings.HasPrefix(description, periodEndPhrase):
			out.PeriodEnd = markerFromRow(PeriodEndBalance, sheetName, rowNum, row, cols)
			if out.PeriodEnd == nil {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("sheet %q row %d: balance marker %q has no parseable amount, marker ignored", sheetName, rowNum, description))
			}
			continue
		case isTotalRow(description):
			continue
		}

		candidate, warn := buildCandidate(sheetName, rowNum, row, cols, description)
		if warn != "" {
			out.Warnings = append(out.Warnings, warn)
		}
		if candidate != nil {
			out.Candidates = append(out.Candidates, *candidate)
		}
	}

	return out
}

// findHeader scans the first MaxHeaderSearchRows rows for a row containing
// all required column labels and returns its index plus the column map.
func findHeader(rows [][]string) (int, columnIndex, bool) {
	limit := MaxHeaderSearchRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		cols := columnIndex{date: -1, description: -1, income: -1, expense: -1, balance: -1}
		for pos, cell := range rows[i] {
			label := strings.ToUpper(CleanCell(cell))
			switch {
			case cols.date < 0 && matchesLabel(label, dateLabels):
				cols.date = pos
			case cols.description < 0 && matchesLabel(label, descriptionLabels):
				cols.description = pos
			case cols.income < 0 && matchesLabel(label, incomeLabels):
				cols.income = pos
			case cols.expense < 0 && matchesLabel(label, expenseLabels):
				cols.expense = pos
			case cols.balance < 0 && matchesLabel(label, balanceLabels):
				cols.balance = pos
			}
		}
		if cols.date >= 0 && cols.description >= 0 && cols.income >= 0 && cols.expense >= 0 {
			return i, cols, true
		}
	}

	return 0, columnIndex{}, false
}

func matchesLabel(cell string, labels []string) bool {
	for _, label := range labels {
		if cell == label {
			return true
		}
	}
	return false
}

// markerFromRow builds a balance marker from a marker row. The value comes
// from the balance column when present, falling back to the income column
// (older sheets write carry-over balances there).
func markerFromRow(kind MarkerKind, sheetName string, rowNum int, row []string, cols columnIndex) *PeriodMarker {
	value := ParseAmountCell(cellAt(row, cols.balance))
	if !value.Valid {
		value = ParseAmountCell(cellAt(row, cols.income))
	}
	if !value.Valid {
		return nil
	}
	return &PeriodMarker{Kind: kind, Value: value.Value, Sheet: sheetName, Row: rowNum}
}

// buildCandidate turns an ordinary data row into a movement candidate.
// Rows with an unparseable date, or without exactly one positive amount,
// are dropped; only the bad date produces a warning since a blank amount
// pair usually marks decorative rows.
func buildCandidate(sheetName string, rowNum int, row []string, cols columnIndex, description string) (*rowCandidate, string) {
	income := ParseAmountCell(cellAt(row, cols.income))
	expense := ParseAmountCell(cellAt(row, cols.expense))

	incomePositive := income.Valid && income.Value.IsPositive()
	expensePositive := expense.Valid && expense.Value.IsPositive()

	if incomePositive == expensePositive {
		if incomePositive {
			return nil, fmt.Sprintf("sheet %q row %d: both income and expense amounts are positive, row skipped", sheetName, rowNum)
		}
		return nil, ""
	}

	date := ParseDateCell(cellAt(row, cols.date))
	if !date.Valid {
		return nil, fmt.Sprintf("sheet %q row %d: unparseable date %q, row skipped", sheetName, rowNum, cellAt(row, cols.date))
	}

	candidate := &rowCandidate{
		Row:         rowNum,
		Date:        date,
		Description: description,
	}
	if incomePositive {
		candidate.Direction = Income
		candidate.Amount = income.Value
	} else {
		candidate.Direction = Expense
		candidate.Amount = expense.Value
	}

	if balance := ParseAmountCell(cellAt(row, cols.balance)); balance.Valid {
		v := balance.Value
		candidate.Balance = &v
	}

	return candidate, ""
}

func isTotalRow(description string) bool {
	for _, phrase := range totalPhrases {
		if strings.HasPrefix(description, phrase) {
			return true
		}
	}
	return false
}

// cellAt reads a cell by index, tolerating the short rows excelize
// produces when trailing cells are empty.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return CleanCell(row[idx])
}
