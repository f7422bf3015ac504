package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fingerprint computes the deterministic content hash that makes re-imports
// idempotent. It is a SHA-256 over a pipe-delimited concatenation of the
// normalized movement fields; the description is canonicalized (collapsed
// whitespace, uppercase) so cosmetic spreadsheet edits do not defeat
// deduplication. Computed once per candidate row, never recomputed after
// persistence.
func Fingerprint(date time.Time, description string, direction Direction, amount decimal.Decimal, balance *decimal.Decimal, sheetName string) string {
	balanceField := ""
	if balance != nil {
		balanceField = balance.StringFixed(2)
	}

	payload := strings.Join([]string{
		date.Format("2006-01-02"),
		NormalizeDescription(description),
		direction.String(),
		amount.StringFixed(2),
		balanceField,
		sheetName,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
