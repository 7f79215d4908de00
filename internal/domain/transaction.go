package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// TransactionType tags a transaction as money in or money out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

// ParseTransactionType matches s case-insensitively against the known types.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TransactionTypeIncome, true
	case "expense":
		return TransactionTypeExpense, true
	default:
		return "", false
	}
}

// Transaction is a single financial record owned by a user and optionally
// attributed to a team. A nil TeamID means the transaction is personal.
type Transaction struct {
	ID          string
	UserID      string
	TeamID      *string
	Description string
	Amount      decimal.Decimal
	Category    string
	Type        TransactionType
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPersonal reports whether the transaction belongs to the personal scope.
func (t *Transaction) IsPersonal() bool {
	return t.TeamID == nil
}

// DateString returns the transaction date as YYYY-MM-DD.
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}
