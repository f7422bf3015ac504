package ledger

// cell.go provides typed parsing for spreadsheet cells.
//
// Cells in the source workbooks are loosely typed: a date column may hold a
// native date, an Excel serial number, or locale-formatted text; an amount
// column may carry currency symbols and either Spanish (1.234.567,89) or
// English (1,234,567.89) separator conventions. Every parse returns a
// tagged result with Valid=false for empty or unparseable input instead of
// probing types at call sites.

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Date layouts split by year width so 2-digit years get century expansion.
// The ledger locale writes day first.
var (
	fourDigitYearLayouts = []string{
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
		"2006-01-02", "2006/01/02",
		"2 Jan 2006",
	}
	twoDigitYearLayouts = []string{
		"2/1/06", "02/01/06", "2-1-06", "2.1.06",
	}
)

// DateCell is the result of parsing a date cell.
type DateCell struct {
	Time  time.Time
	Valid bool
}

// AmountCell is the result of parsing a monetary cell.
type AmountCell struct {
	Value decimal.Decimal
	Valid bool
}

// ParseDateCell parses a date cell value. It accepts locale-formatted text
// (day first), ISO dates, and Excel serial numbers (how excelize surfaces
// native date cells when the sheet has no display format).
func ParseDateCell(s string) DateCell {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateCell{}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateCell{Time: t, Valid: true}
		}
	}

	// Two-digit years expand into the current century.
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateCell{Time: t, Valid: true}
		}
	}

	// Excel serial date.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return DateCell{Time: t, Valid: true}
		}
	}

	return DateCell{}
}

// ParseAmountCell parses a monetary cell value into a decimal. It strips
// currency symbols and whitespace and resolves thousands/decimal separator
// conventions: when both '.' and ',' appear the rightmost one is the
// decimal separator; a lone ',' followed by one or two digits is a decimal
// separator; a lone '.' in a group-of-three position is a thousands
// separator.
func ParseAmountCell(s string) AmountCell {
	s = strings.TrimSpace(s)
	if s == "" {
		return AmountCell{}
	}

	// Accounting negative: (123,45)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u00a0", "") // non-breaking space
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	if s == "" {
		return AmountCell{}
	}

	s = normalizeSeparators(s)

	value, err := decimal.NewFromString(s)
	if err != nil {
		return AmountCell{}
	}
	if negative {
		value = value.Neg()
	}
	return AmountCell{Value: value, Valid: true}
}

// normalizeSeparators rewrites a cleaned numeric string into canonical
// dot-decimal form.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Rightmost separator is the decimal one.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}

	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}

	case lastDot >= 0:
		// "1.234" and "1.234.567" are grouped thousands in the ledger
		// locale; "12.5" or "1234.56" are decimals.
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return s
}

// CleanCell trims whitespace and surrounding quotes from a raw cell value.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// NormalizeDescription canonicalizes a movement description for
// classification and fingerprinting: runs of whitespace collapse to one
// space and the result is uppercased. Cosmetic differences in the source
// spreadsheet must not defeat deduplication.
func NormalizeDescription(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
