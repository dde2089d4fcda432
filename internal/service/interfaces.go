// Package service defines the contracts between the ledger and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/sharebook/internal/model"
)

// NoLimit disables the row limit of a filter.
const NoLimit = 0

// TransactionFilter narrows a transaction query. Results are ordered by date, newest first.
type TransactionFilter struct {
	Type     *model.TransactionType
	From     *time.Time
	To       *time.Time
	Category string
	Limit    int
}

// DisbursementFilter narrows a disbursement query. Results are ordered by date, newest first.
type DisbursementFilter struct {
	From          *time.Time
	To            *time.Time
	ShareholderID string
	Period        string
}

// Storage is the durable record store. Getters wrap common.ErrNotFound for unknown ids.
type Storage interface {
	// Transaction records
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Expense categories
	CreateCategory(ctx context.Context, cat *model.ExpenseCategory) error
	GetCategory(ctx context.Context, id string) (*model.ExpenseCategory, error)
	UpdateCategory(ctx context.Context, cat *model.ExpenseCategory) error
	ListCategories(ctx context.Context, includeInactive bool) ([]model.ExpenseCategory, error)

	// Shareholders
	CreateShareholder(ctx context.Context, sh *model.Shareholder) error
	GetShareholder(ctx context.Context, id string) (*model.Shareholder, error)
	UpdateShareholder(ctx context.Context, sh *model.Shareholder) error
	ListShareholders(ctx context.Context, includeInactive bool) ([]model.Shareholder, error)

	// Disbursements
	CreateDisbursement(ctx context.Context, disb *model.Disbursement) error
	GetDisbursement(ctx context.Context, id string) (*model.Disbursement, error)
	DeleteDisbursement(ctx context.Context, id string) error
	ListDisbursements(ctx context.Context, filter DisbursementFilter) ([]model.Disbursement, error)

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a unit of work over the store. All writes made through it commit or roll
// back together.
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}

// Authenticator resolves the acting user. ok is false when nobody is signed in.
type Authenticator interface {
	CurrentUserID(ctx context.Context) (userID string, ok bool)
}
