package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/validation"
	"github.com/shopspring/decimal"
)

// ListLimit caps ListTransactions before the description search is applied.
const ListLimit = 100

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	Date        time.Time
	Amount      decimal.Decimal
	Type        model.TransactionType
	Category    string
	Description string
	Notes       string
}

// TransactionPatch names the fields to change. Nil fields are left alone.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
	Category    *string
	Notes       *string
}

// TransactionQuery narrows a transaction listing.
type TransactionQuery struct {
	Type     *model.TransactionType
	From     *time.Time
	To       *time.Time
	Category string
	Search   string // case-insensitive substring of the description
}

func (q TransactionQuery) filter(limit int) service.TransactionFilter {
	return service.TransactionFilter{
		Type:     q.Type,
		From:     q.From,
		To:       q.To,
		Category: q.Category,
		Limit:    limit,
	}
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return common.NotFoundf(kind, id)
	}
	return nil
}

func requireDate(date time.Time) error {
	if date.IsZero() {
		return common.NewValidationError("date is required")
	}
	return nil
}

func activeCategoryNames(ctx context.Context, st service.Storage) ([]string, error) {
	categories, err := st.ListCategories(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}
	return names, nil
}

// newTransaction validates in and builds the record to insert.
func (s *Service) newTransaction(in TransactionInput, userID string, categoryNames []string) (*model.Transaction, error) {
	description := strings.TrimSpace(in.Description)
	if err := validation.Transaction(in.Type, in.Amount, description, in.Category, categoryNames); err != nil {
		return nil, err
	}
	if err := requireDate(in.Date); err != nil {
		return nil, err
	}

	now := s.timestamp()
	txn := &model.Transaction{
		ID:          s.newID(),
		Type:        in.Type,
		Amount:      in.Amount,
		Description: description,
		Date:        in.Date,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Type == model.TransactionExpense {
		txn.Category = in.Category
	}
	return txn, nil
}

// CreateTransaction records an income or expense.
func (s *Service) CreateTransaction(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var created *model.Transaction
	err = s.inTx(ctx, func(tx service.Tx) error {
		var names []string
		if in.Type == model.TransactionExpense {
			var loadErr error
			if names, loadErr = activeCategoryNames(ctx, tx); loadErr != nil {
				return loadErr
			}
		}

		txn, err := s.newTransaction(in, userID, names)
		if err != nil {
			return err
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recorded transaction", "id", created.ID, "type", created.Type, "amount", created.Amount.String())
	return created, nil
}

// GetTransaction returns one transaction.
func (s *Service) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireID("transaction", id); err != nil {
		return nil, err
	}
	return s.store.GetTransaction(ctx, id)
}

// UpdateTransaction applies patch as a whole or not at all. The type of a
// transaction never changes.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (*model.Transaction, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireID("transaction", id); err != nil {
		return nil, err
	}

	var updated *model.Transaction
	err := s.inTx(ctx, func(tx service.Tx) error {
		txn, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		changed := false
		if patch.Amount != nil {
			if err := validation.Amount(*patch.Amount); err != nil {
				return err
			}
			txn.Amount = *patch.Amount
			changed = true
		}
		if patch.Description != nil {
			description := strings.TrimSpace(*patch.Description)
			if err := validation.Required(description, "description"); err != nil {
				return err
			}
			txn.Description = description
			changed = true
		}
		if patch.Date != nil {
			if err := requireDate(*patch.Date); err != nil {
				return err
			}
			txn.Date = *patch.Date
			changed = true
		}
		if patch.Category != nil {
			switch txn.Type {
			case model.TransactionExpense:
				names, err := activeCategoryNames(ctx, tx)
				if err != nil {
					return err
				}
				if err := validation.ExpenseCategory(*patch.Category, names); err != nil {
					return err
				}
			case model.TransactionIncome:
				if *patch.Category != "" {
					return common.NewValidationError("income transactions cannot have a category")
				}
			}
			txn.Category = *patch.Category
			changed = true
		}
		if patch.Notes != nil {
			txn.Notes = strings.TrimSpace(*patch.Notes)
			changed = true
		}

		updated = txn
		if !changed {
			return nil
		}
		txn.UpdatedAt = s.timestamp()
		return tx.UpdateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction removes a transaction permanently.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if err := requireID("transaction", id); err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	slog.Info("deleted transaction", "id", id)
	return nil
}

// ListTransactions returns up to ListLimit matching transactions, newest first.
// The search text is applied after the limit.
func (s *Service) ListTransactions(ctx context.Context, q TransactionQuery) ([]model.Transaction, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}

	txns, err := s.store.ListTransactions(ctx, q.filter(ListLimit))
	if err != nil {
		return nil, err
	}
	return searchDescriptions(txns, q.Search), nil
}

// ListTransactionsForExport returns every matching transaction, newest first.
func (s *Service) ListTransactionsForExport(ctx context.Context, q TransactionQuery) ([]model.Transaction, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}

	txns, err := s.store.ListTransactions(ctx, q.filter(service.NoLimit))
	if err != nil {
		return nil, err
	}
	return searchDescriptions(txns, q.Search), nil
}

func searchDescriptions(txns []model.Transaction, search string) []model.Transaction {
	if search == "" {
		return txns
	}
	needle := strings.ToLower(search)
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if strings.Contains(strings.ToLower(txn.Description), needle) {
			out = append(out, txn)
		}
	}
	return out
}

// ImportFailure is an entry the import rejected.
type ImportFailure struct {
	Err         error
	Description string
	Index       int
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Created []*model.Transaction
	Failed  []ImportFailure
}

// ImportTransactions creates every valid entry in one store transaction. Entries
// that fail validation are reported in the result; any other error aborts the batch.
func (s *Service) ImportTransactions(ctx context.Context, inputs []TransactionInput, progress func(done int)) (*ImportResult, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.inTx(ctx, func(tx service.Tx) error {
		names, loadErr := activeCategoryNames(ctx, tx)
		if loadErr != nil {
			return loadErr
		}

		for i, in := range inputs {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			txn, valErr := s.newTransaction(in, userID, names)
			if valErr != nil {
				result.Failed = append(result.Failed, ImportFailure{
					Index:       i,
					Description: in.Description,
					Err:         valErr,
				})
			} else {
				if createErr := tx.CreateTransaction(ctx, txn); createErr != nil {
					return createErr
				}
				result.Created = append(result.Created, txn)
			}

			if progress != nil {
				progress(i + 1)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("imported transactions", "created", len(result.Created), "failed", len(result.Failed))
	return result, nil
}
