package ledger

// sheet.go maps workbook sheet names to accounting periods.
//
// Ledger sheets follow the treasury naming convention
// "CORTE [qualifier] <month> [day] <year>", e.g. "CORTE OCTUBRE 31-25" or
// "CORTE CAJA NOVIEMBRE 2025", with spaces, hyphens or dots as separators.
// Aggregate sheets (RESUMEN, CONSOLIDADO, TOTALES) carry no movements and
// are skipped; any other sheet that fails to classify aborts the import so
// ledger data is never silently dropped.

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// sheetMarker is the literal word that opens every ledger sheet name.
const sheetMarker = "CORTE"

// ErrNoLedgerSheets is returned when a workbook contains no sheet matching
// the ledger naming convention.
var ErrNoLedgerSheets = errors.New("workbook contains no recognizable ledger sheets")

var spanishMonths = map[string]time.Month{
	"ENERO":      time.January,
	"FEBRERO":    time.February,
	"MARZO":      time.March,
	"ABRIL":      time.April,
	"MAYO":       time.May,
	"JUNIO":      time.June,
	"JULIO":      time.July,
	"AGOSTO":     time.August,
	"SEPTIEMBRE": time.September,
	"SETIEMBRE":  time.September,
	"OCTUBRE":    time.October,
	"NOVIEMBRE":  time.November,
	"DICIEMBRE":  time.December,
}

// summarySheetWords mark aggregate sheets that are allowed to be skipped.
var summarySheetWords = []string{"RESUMEN", "CONSOLIDADO", "TOTALES"}

var sheetSeparators = regexp.MustCompile(`[\s.\-_]+`)

// SheetRef is a classified ledger sheet.
type SheetRef struct {
	Name   string
	Period Period
}

// ClassifySheets scans workbook sheet names and returns the ledger sheets
// sorted ascending by period. Summary sheets are excluded without error;
// any other non-matching sheet is a fatal condition.
func ClassifySheets(names []string) ([]SheetRef, error) {
	var refs []SheetRef
	for _, name := range names {
		period, ok := classifySheetName(name)
		if ok {
			refs = append(refs, SheetRef{Name: name, Period: period})
			continue
		}
		if isSummarySheet(name) {
			continue
		}
		return nil, fmt.Errorf("sheet %q does not match the ledger period naming convention", name)
	}

	if len(refs) == 0 {
		return nil, ErrNoLedgerSheets
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Period.Before(refs[j].Period)
	})
	return refs, nil
}

// classifySheetName extracts the (year, month) period from a single sheet
// name. Expected token order: marker, optional qualifier word, month name,
// optional numeric noise (day of month), two-or-four-digit year.
func classifySheetName(name string) (Period, bool) {
	tokens := sheetSeparators.Split(strings.ToUpper(strings.TrimSpace(name)), -1)
	if len(tokens) < 3 || tokens[0] != sheetMarker {
		return Period{}, false
	}

	i := 1
	month, isMonth := spanishMonths[tokens[i]]
	if !isMonth {
		// Allow a single qualifier word between the marker and the month.
		if isNumericToken(tokens[i]) || i+1 >= len(tokens) {
			return Period{}, false
		}
		i++
		month, isMonth = spanishMonths[tokens[i]]
		if !isMonth {
			return Period{}, false
		}
	}

	// Everything after the month must be numeric; the last token is the
	// year, anything before it is day-of-month noise.
	rest := tokens[i+1:]
	if len(rest) == 0 {
		return Period{}, false
	}
	for _, tok := range rest {
		if !isNumericToken(tok) {
			return Period{}, false
		}
	}

	yearTok := rest[len(rest)-1]
	if len(yearTok) != 2 && len(yearTok) != 4 {
		return Period{}, false
	}
	year, err := strconv.Atoi(yearTok)
	if err != nil {
		return Period{}, false
	}
	if len(yearTok) == 2 {
		year += 2000
	}

	return Period{Year: year, Month: month}, true
}

func isSummarySheet(name string) bool {
	upper := strings.ToUpper(name)
	for _, word := range summarySheetWords {
		if strings.Contains(upper, word) {
			return true
		}
	}
	return false
}

func isNumericToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
