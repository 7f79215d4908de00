package domain

import (
	"testing"
	"time"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in     string
		want   TransactionType
		wantOK bool
	}{
		{"Income", TransactionTypeIncome, true},
		{"income", TransactionTypeIncome, true},
		{" EXPENSE ", TransactionTypeExpense, true},
		{"Transfer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseTransactionType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseTransactionType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTransaction_ScopeAndDate(t *testing.T) {
	team := "team-1"
	txn := &Transaction{Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)}

	if !txn.IsPersonal() {
		t.Error("expected transaction without team to be personal")
	}
	if txn.DateString() != "2024-02-29" {
		t.Errorf("unexpected date string %q", txn.DateString())
	}

	txn.TeamID = &team
	if txn.IsPersonal() {
		t.Error("expected team transaction not to be personal")
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]string{
		"Food":          "Food",
		"food":          "Food",
		"  cash out ":   "Cash Out",
		"SUBSCRIPTIONS": "Subscriptions",
		"Crypto":        CategoryUncategorized,
		"":              CategoryUncategorized,
	}

	for in, want := range tests {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
