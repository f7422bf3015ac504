package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		found    string
		want     bool
	}{
		{"exact match", "100000.00", "100000.00", true},
		{"one cent difference", "100000.00", "100000.01", true},
		{"just under tolerance", "100000.00", "100000.99", true},
		{"exactly at tolerance is a mismatch", "100000.00", "100001.00", false},
		{"above tolerance", "100000.00", "100001.01", false},
		{"difference is symmetric", "100001.00", "100000.00", false},
		{"negative balances", "-50.00", "-50.50", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := decimal.RequireFromString(tt.expected)
			found := decimal.RequireFromString(tt.found)
			if got := WithinTolerance(expected, found); got != tt.want {
				t.Errorf("WithinTolerance(%s, %s) = %v, want %v", tt.expected, tt.found, got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	expected := decimal.RequireFromString("100.00")
	found := decimal.RequireFromString("102.50")

	if got := Diff(expected, found); !got.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Diff = %s, want 2.50", got)
	}
	if got := Diff(found, expected); !got.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Diff should be absolute, got %s", got)
	}
}

func TestMismatchMessage_SelfExplanatory(t *testing.T) {
	expected := decimal.RequireFromString("1000.00")
	found := decimal.RequireFromString("998.50")

	msg := mismatchMessage("sheet X carry-over", expected, found)

	for _, part := range []string{"sheet X carry-over", "1000.00", "998.50", "1.50", ">= tolerance 1.00"} {
		if !strings.Contains(msg, part) {
			t.Errorf("mismatch message missing %q: %s", part, msg)
		}
	}
}
