package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	// TransactionIncome records revenue.
	TransactionIncome TransactionType = "income"
	// TransactionExpense records a cost; it always carries an expense category.
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Label returns the display label used in tables and exports.
func (t TransactionType) Label() string {
	switch t {
	case TransactionIncome:
		return "Income"
	case TransactionExpense:
		return "Expense"
	default:
		return string(t)
	}
}

// Transaction is a single income or expense entry in the books.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Amount      decimal.Decimal
	ID          string
	Type        TransactionType
	Category    string // expense category name, empty for income
	Description string
	Notes       string
	CreatedBy   string
}

// AmountValue implements aggregate.Amounter.
func (t Transaction) AmountValue() decimal.Decimal {
	return t.Amount
}

// HasCategory reports whether the transaction references an expense category.
func (t Transaction) HasCategory() bool {
	return t.Category != ""
}
