// Package storage provides the SQLite record store for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sharebook/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRecord    = errors.New("invalid record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction checks the columns the schema requires. Business rules live in
// the validation package; this only guards against malformed rows.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: transaction missing ID", ErrInvalidRecord)
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidRecord, txn.Type)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: transaction missing date", ErrInvalidRecord)
	}
	if txn.CreatedBy == "" {
		return fmt.Errorf("%w: transaction missing creator", ErrInvalidRecord)
	}
	return nil
}

func validateCategory(cat *model.ExpenseCategory) error {
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if cat.ID == "" || strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("%w: category missing ID or name", ErrInvalidRecord)
	}
	return nil
}

func validateShareholder(sh *model.Shareholder) error {
	if sh == nil {
		return fmt.Errorf("%w: shareholder", ErrNilParameter)
	}
	if sh.ID == "" || strings.TrimSpace(sh.Name) == "" {
		return fmt.Errorf("%w: shareholder missing ID or name", ErrInvalidRecord)
	}
	return nil
}

func validateDisbursement(disb *model.Disbursement) error {
	if disb == nil {
		return fmt.Errorf("%w: disbursement", ErrNilParameter)
	}
	if disb.ID == "" || disb.ShareholderID == "" {
		return fmt.Errorf("%w: disbursement missing ID or shareholder", ErrInvalidRecord)
	}
	if disb.Date.IsZero() {
		return fmt.Errorf("%w: disbursement missing date", ErrInvalidRecord)
	}
	return nil
}
