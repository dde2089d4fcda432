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

const shareholderColumns = `id, name, email, share_percentage, is_active, created_at, updated_at`

// CreateShareholder inserts a new shareholder.
func (s *SQLiteStorage) CreateShareholder(ctx context.Context, sh *model.Shareholder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateShareholder(sh); err != nil {
		return err
	}

	query := `INSERT INTO shareholders (` + shareholderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.q.ExecContext(ctx, query,
		sh.ID,
		sh.Name,
		sh.Email,
		sh.SharePercentage,
		sh.IsActive,
		toMillis(sh.CreatedAt),
		toMillis(sh.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to create shareholder: %w", err)
	}

	slog.Info("created shareholder", "id", sh.ID, "share_percentage", sh.SharePercentage.String())
	return nil
}

// GetShareholder returns a shareholder by id, active or not.
func (s *SQLiteStorage) GetShareholder(ctx context.Context, id string) (*model.Shareholder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+shareholderColumns+` FROM shareholders WHERE id = ?`, id)
	sh, err := scanShareholder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("shareholder", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shareholder: %w", err)
	}
	return sh, nil
}

// UpdateShareholder saves every mutable column of a shareholder.
func (s *SQLiteStorage) UpdateShareholder(ctx context.Context, sh *model.Shareholder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateShareholder(sh); err != nil {
		return err
	}

	query := `
		UPDATE shareholders
		SET name = ?, email = ?, share_percentage = ?, is_active = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.q.ExecContext(ctx, query,
		sh.Name, sh.Email, sh.SharePercentage, sh.IsActive, toMillis(sh.UpdatedAt), sh.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shareholder: %w", err)
	}
	return expectOneRow(result, "shareholder", sh.ID)
}

// ListShareholders returns shareholders sorted by name.
func (s *SQLiteStorage) ListShareholders(ctx context.Context, includeInactive bool) ([]model.Shareholder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + shareholderColumns + ` FROM shareholders`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shareholders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var shareholders []model.Shareholder
	for rows.Next() {
		sh, scanErr := scanShareholder(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan shareholder: %w", scanErr)
		}
		shareholders = append(shareholders, *sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shareholders: %w", err)
	}
	return shareholders, nil
}

func scanShareholder(row rowScanner) (*model.Shareholder, error) {
	var (
		sh                   model.Shareholder
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&sh.ID, &sh.Name, &sh.Email, &sh.SharePercentage, &sh.IsActive, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	sh.CreatedAt = fromMillis(createdAt)
	sh.UpdatedAt = fromMillis(updatedAt)
	return &sh, nil
}
