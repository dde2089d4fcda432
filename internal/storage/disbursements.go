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

const disbursementColumns = `id, shareholder_id, amount, date, period, notes, created_by, created_at`

// CreateDisbursement inserts a payout record.
func (s *SQLiteStorage) CreateDisbursement(ctx context.Context, disb *model.Disbursement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDisbursement(disb); err != nil {
		return err
	}

	query := `INSERT INTO disbursements (` + disbursementColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.q.ExecContext(ctx, query,
		disb.ID,
		disb.ShareholderID,
		disb.Amount,
		toMillis(disb.Date),
		disb.Period,
		nullString(disb.Notes),
		disb.CreatedBy,
		toMillis(disb.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to create disbursement: %w", err)
	}

	slog.Debug("inserted disbursement", "id", disb.ID, "shareholder_id", disb.ShareholderID)
	return nil
}

// GetDisbursement returns a disbursement by id.
func (s *SQLiteStorage) GetDisbursement(ctx context.Context, id string) (*model.Disbursement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+disbursementColumns+` FROM disbursements WHERE id = ?`, id)
	disb, err := scanDisbursement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("disbursement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query disbursement: %w", err)
	}
	return disb, nil
}

// DeleteDisbursement removes a disbursement permanently.
func (s *SQLiteStorage) DeleteDisbursement(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM disbursements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete disbursement: %w", err)
	}
	return expectOneRow(result, "disbursement", id)
}

// ListDisbursements returns disbursements matching filter, newest first.
func (s *SQLiteStorage) ListDisbursements(ctx context.Context, filter service.DisbursementFilter) ([]model.Disbursement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.ShareholderID != "" {
		where = append(where, "shareholder_id = ?")
		args = append(args, filter.ShareholderID)
	}
	if filter.From != nil {
		where = append(where, "date >= ?")
		args = append(args, toMillis(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "date <= ?")
		args = append(args, toMillis(*filter.To))
	}
	if filter.Period != "" {
		where = append(where, "period = ?")
		args = append(args, filter.Period)
	}

	query := `SELECT ` + disbursementColumns + ` FROM disbursements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query disbursements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var disbursements []model.Disbursement
	for rows.Next() {
		disb, scanErr := scanDisbursement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan disbursement: %w", scanErr)
		}
		disbursements = append(disbursements, *disb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating disbursements: %w", err)
	}
	return disbursements, nil
}

func scanDisbursement(row rowScanner) (*model.Disbursement, error) {
	var (
		disb            model.Disbursement
		notes           sql.NullString
		date, createdAt int64
	)
	if err := row.Scan(
		&disb.ID, &disb.ShareholderID, &disb.Amount, &date, &disb.Period, &notes, &disb.CreatedBy, &createdAt,
	); err != nil {
		return nil, err
	}
	disb.Notes = notes.String
	disb.Date = fromMillis(date)
	disb.CreatedAt = fromMillis(createdAt)
	return &disb, nil
}
