package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shareholder owns a percentage of the net profit.
type Shareholder struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SharePercentage decimal.Decimal
	ID              string
	Name            string
	Email           string
	IsActive        bool
}

// PercentageTotals summarizes how much of the 100% has been allocated.
type PercentageTotals struct {
	Total     decimal.Decimal
	Remaining decimal.Decimal
}
