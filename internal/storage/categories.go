package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
)

// CreateCategory inserts a new expense category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, cat *model.ExpenseCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	query := `
		INSERT INTO expense_categories (id, name, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`

	if _, err := s.q.ExecContext(ctx, query,
		cat.ID, cat.Name, nullString(cat.Description), cat.IsActive, toMillis(cat.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("created new category", "name", cat.Name, "id", cat.ID)
	return nil
}

// GetCategory returns a category by id, active or not.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.ExpenseCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, description, is_active, created_at
		FROM expense_categories
		WHERE id = ?`

	cat, err := scanCategory(s.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// UpdateCategory saves the name, description and active flag of a category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, cat *model.ExpenseCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	query := `
		UPDATE expense_categories
		SET name = ?, description = ?, is_active = ?
		WHERE id = ?`

	result, err := s.q.ExecContext(ctx, query, cat.Name, nullString(cat.Description), cat.IsActive, cat.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return expectOneRow(result, "category", cat.ID)
}

// ListCategories returns categories sorted by name. Inactive ones are included on request.
func (s *SQLiteStorage) ListCategories(ctx context.Context, includeInactive bool) ([]model.ExpenseCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, description, is_active, created_at
		FROM expense_categories`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.ExpenseCategory
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "include_inactive", includeInactive)
	return categories, nil
}

func scanCategory(row rowScanner) (*model.ExpenseCategory, error) {
	var (
		cat         model.ExpenseCategory
		description sql.NullString
		createdAt   int64
	)
	if err := row.Scan(&cat.ID, &cat.Name, &description, &cat.IsActive, &createdAt); err != nil {
		return nil, err
	}
	cat.Description = description.String
	cat.CreatedAt = fromMillis(createdAt)
	return &cat, nil
}
