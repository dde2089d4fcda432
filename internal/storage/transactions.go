package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
)

const transactionColumns = `id, type, amount, category, description, date, notes, created_by, created_at, updated_at`

// CreateTransaction inserts a new transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.q.ExecContext(ctx, query,
		txn.ID,
		string(txn.Type),
		txn.Amount,
		nullString(txn.Category),
		txn.Description,
		toMillis(txn.Date),
		nullString(txn.Notes),
		txn.CreatedBy,
		toMillis(txn.CreatedAt),
		toMillis(txn.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	slog.Debug("inserted transaction", "id", txn.ID, "type", txn.Type)
	return nil
}

// GetTransaction returns the transaction with the given id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// UpdateTransaction overwrites every mutable column of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET amount = ?, category = ?, description = ?, date = ?, notes = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.q.ExecContext(ctx, query,
		txn.Amount,
		nullString(txn.Category),
		txn.Description,
		toMillis(txn.Date),
		nullString(txn.Notes),
		toMillis(txn.UpdatedAt),
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(result, "transaction", txn.ID)
}

// DeleteTransaction removes a transaction permanently.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(result, "transaction", id)
}

// ListTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, *filter.From, *filter.To)
	}

	var (
		where []string
		args  []any
	)
	if filter.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.From != nil {
		where = append(where, "date >= ?")
		args = append(args, toMillis(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "date <= ?")
		args = append(args, toMillis(*filter.To))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(txns))
	return txns, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn                        model.Transaction
		txnType                    string
		category, notes            sql.NullString
		date, createdAt, updatedAt int64
	)
	err := row.Scan(
		&txn.ID,
		&txnType,
		&txn.Amount,
		&category,
		&txn.Description,
		&date,
		&notes,
		&txn.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = model.TransactionType(txnType)
	txn.Category = category.String
	txn.Notes = notes.String
	txn.Date = fromMillis(date)
	txn.CreatedAt = fromMillis(createdAt)
	txn.UpdatedAt = fromMillis(updatedAt)
	return &txn, nil
}

// expectOneRow turns "no rows affected" into a not-found error.
func expectOneRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return common.NotFoundf(kind, id)
	}
	return nil
}
