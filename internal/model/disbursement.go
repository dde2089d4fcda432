package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeletedShareholderName is shown for disbursements whose shareholder no longer resolves.
const DeletedShareholderName = "deleted shareholder"

// Disbursement is a profit payout to a shareholder.
type Disbursement struct {
	Date          time.Time
	CreatedAt     time.Time
	Amount        decimal.Decimal
	ID            string
	ShareholderID string
	Period        string // free-form label such as "2025-Q1"
	Notes         string
	CreatedBy     string
}

// AmountValue implements aggregate.Amounter.
func (d Disbursement) AmountValue() decimal.Decimal {
	return d.Amount
}

// DisbursementView is a disbursement joined with its shareholder's display name.
type DisbursementView struct {
	ShareholderName string
	Disbursement
}
