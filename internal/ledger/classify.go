package ledger

// classify.go assigns every movement an income-source or expense-category
// code from its free-text description.
//
// Rules are an ordered table per direction, evaluated top to bottom with
// first match winning. Ordering matters: several keywords can hit the same
// description and the more specific rule must sit above the generic one
// ("CONSIGNACION APORTES OCTUBRE" is a contribution, not a generic bank
// deposit). Priority lives in the table, not in scattered conditionals, so
// it stays auditable.

import "strings"

// Fallback codes guarantee every movement is classified.
const (
	FallbackIncomeCode  = "OTROS_INGRESOS"
	FallbackExpenseCode = "OTROS_EGRESOS"
)

// classificationRule maps a description keyword to a catalog code.
type classificationRule struct {
	Keyword string
	Code    string
}

var incomeRules = []classificationRule{
	{"APORTE", "APORTES"},
	{"MENSUALIDAD", "CUOTAS"},
	{"CUOTA", "CUOTAS"},
	{"RENDIMIENTO", "RENDIMIENTOS"},
	{"INTERES", "RENDIMIENTOS"},
	{"DONACION", "DONACIONES"},
	{"RIFA", "ACTIVIDADES"},
	{"BAZAR", "ACTIVIDADES"},
	{"VENTA", "VENTAS"},
	{"CONSIGNACION", "CONSIGNACIONES"},
	{"REINTEGRO", "REINTEGROS"},
}

var expenseRules = []classificationRule{
	{"CUOTA DE MANEJO", "GASTOS_BANCARIOS"},
	{"COMISION", "GASTOS_BANCARIOS"},
	{"GMF", "GASTOS_BANCARIOS"},
	{"4X1000", "GASTOS_BANCARIOS"},
	{"GRAVAMEN", "GASTOS_BANCARIOS"},
	{"PAPELERIA", "PAPELERIA"},
	{"FOTOCOPIA", "PAPELERIA"},
	{"TRANSPORTE", "TRANSPORTE"},
	{"TAXI", "TRANSPORTE"},
	{"REFRIGERIO", "ALIMENTACION"},
	{"ALMUERZO", "ALIMENTACION"},
	{"MERCADO", "ALIMENTACION"},
	{"AUXILIO", "AUXILIOS"},
	{"FUNERARI", "AUXILIOS"},
	{"MANTENIMIENTO", "MANTENIMIENTO"},
	{"ARREGLO", "MANTENIMIENTO"},
	{"DECORACION", "EVENTOS"},
	{"CELEBRACION", "EVENTOS"},
	{"FIESTA", "EVENTOS"},
}

// Classify maps a movement description to exactly one catalog code for the
// given direction. The description is normalized before matching; when no
// rule matches, the direction's fallback code is returned, so the result
// is never empty.
func Classify(description string, direction Direction) (sourceCode, categoryCode string) {
	normalized := NormalizeDescription(description)

	if direction == Income {
		return matchRules(normalized, incomeRules, FallbackIncomeCode), ""
	}
	return "", matchRules(normalized, expenseRules, FallbackExpenseCode)
}

func matchRules(description string, rules []classificationRule, fallback string) string {
	for _, rule := range rules {
		if strings.Contains(description, rule.Keyword) {
			return rule.Code
		}
	}
	return fallback
}
