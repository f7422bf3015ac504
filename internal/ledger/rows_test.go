package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

var testHeader = []string{"FECHA", "DETALLE", "INGRESOS", "EGRESOS", "SALDO"}

func TestParseSheet_HeaderBelowTitleBlock(t *testing.T) {
	rows := [][]string{
		{"ASOCIACION DE VECINOS"},
		{"LIBRO DE TESORERIA"},
		{},
		testHeader,
		{"05/10/2025", "APORTES OCTUBRE", "1000", "", "1000"},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", got.Warnings)
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got.Candidates))
	}
	c := got.Candidates[0]
	if c.Row != 5 {
		t.Errorf("Row = %d, want 5", c.Row)
	}
	if c.Direction != Income {
		t.Errorf("Direction = %v, want Income", c.Direction)
	}
	if !c.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Amount = %s, want 1000", c.Amount)
	}
	if c.Balance == nil || !c.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Balance = %v, want 1000", c.Balance)
	}
}

func TestParseSheet_MissingHeaderSkipsSheet(t *testing.T) {
	rows := [][]string{
		{"solo texto"},
		{"sin", "columnas", "reconocibles"},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(got.Candidates))
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "no header row") {
		t.Errorf("want a missing-header warning, got %v", got.Warnings)
	}
}

func TestParseSheet_Markers(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"", "SALDO ANTERIOR", "", "", "5000"},
		{"05/10/2025", "APORTES", "1000", "", "6000"},
		{"", "SALDO ACTUAL AL 31/10/2025", "", "", "6000"},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if got.PriorBalance == nil {
		t.Fatal("prior-balance marker not detected")
	}
	if !got.PriorBalance.Value.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("prior balance = %s, want 5000", got.PriorBalance.Value)
	}
	if got.PeriodEnd == nil {
		t.Fatal("period-end marker not detected")
	}
	if !got.PeriodEnd.Value.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("period end = %s, want 6000", got.PeriodEnd.Value)
	}
	if len(got.Candidates) != 1 {
		t.Errorf("marker rows must not become movements, got %d candidates", len(got.Candidates))
	}
}

func TestParseSheet_MarkerValueFallsBackToIncomeColumn(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"", "SALDO ANTERIOR", "5000", "", ""},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if got.PriorBalance == nil {
		t.Fatal("prior-balance marker not detected")
	}
	if !got.PriorBalance.Value.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("prior balance = %s, want 5000", got.PriorBalance.Value)
	}
}

func TestParseSheet_MarkerWithoutAmountWarns(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"", "SALDO ANTERIOR", "", "", "PENDIENTE"},
		{"", "SALDO ACTUAL AL 31/10/2025", "", "", ""},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if got.PriorBalance != nil || got.PeriodEnd != nil {
		t.Error("unparseable marker rows must not produce markers")
	}
	if len(got.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(got.Warnings), got.Warnings)
	}
	for _, w := range got.Warnings {
		if !strings.Contains(w, "marker") {
			t.Errorf("warning should name the discarded marker: %s", w)
		}
	}
}

func TestParseSheet_TotalRowsSkippedSilently(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"05/10/2025", "APORTES", "1000", "", ""},
		{"", "TOTAL INGRESOS", "1000", "", ""},
		{"", "TOTAL EGRESOS", "", "0", ""},
		{"", "TOTALES", "1000", "0", ""},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Candidates) != 1 {
		t.Errorf("got %d candidates, want 1", len(got.Candidates))
	}
	if len(got.Warnings) != 0 {
		t.Errorf("total rows should not warn: %v", got.Warnings)
	}
}

func TestParseSheet_BothAmountsPositiveWarnsAndSkips(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"05/10/2025", "FILA AMBIGUA", "1000", "200", ""},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Candidates) != 0 {
		t.Errorf("ambiguous row must be skipped, got %d candidates", len(got.Candidates))
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "both income and expense") {
		t.Errorf("want ambiguity warning, got %v", got.Warnings)
	}
}

func TestParseSheet_NeitherAmountSkipsSilently(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"05/10/2025", "NOTA AL MARGEN", "", "", ""},
		{"05/10/2025", "MONTOS EN CERO", "0", "0", ""},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(got.Candidates))
	}
	if len(got.Warnings) != 0 {
		t.Errorf("decorative rows should not warn: %v", got.Warnings)
	}
}

func TestParseSheet_BadDateWarnsAndSkips(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"pendiente", "CUOTA DE MANEJO", "", "15000", ""},
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(got.Candidates))
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "unparseable date") {
		t.Errorf("want bad-date warning, got %v", got.Warnings)
	}
}

func TestParseSheet_ShortRowsTolerated(t *testing.T) {
	rows := [][]string{
		testHeader,
		{"05/10/2025", "APORTES", "1000"}, // trailing cells trimmed
	}

	got := parseSheet("CORTE OCTUBRE 25", rows)
	if len(got.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got.Candidates))
	}
	if got.Candidates[0].Balance != nil {
		t.Error("missing balance cell must leave Balance nil")
	}
}

func TestFindHeader_RequiresAllMandatoryColumns(t *testing.T) {
	rows := [][]string{
		{"FECHA", "DETALLE", "INGRESOS"}, // no expense column
		{"FECHA", "CONCEPTO", "ENTRADAS", "SALIDAS"},
	}

	idx, cols, ok := findHeader(rows)
	if !ok {
		t.Fatal("second row has all mandatory columns")
	}
	if idx != 1 {
		t.Errorf("header index = %d, want 1", idx)
	}
	if cols.balance != -1 {
		t.Errorf("balance column = %d, want -1 (absent)", cols.balance)
	}
}
