package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/validation"
	"github.com/shopspring/decimal"
)

// DisbursementInput holds the fields of a new payout.
type DisbursementInput struct {
	Date          time.Time
	Amount        decimal.Decimal
	ShareholderID string
	Period        string
	Notes         string
}

// CreateDisbursement records a payout to an active shareholder. The amount is
// not checked against the shareholder's computed share.
func (s *Service) CreateDisbursement(ctx context.Context, in DisbursementInput) (*model.Disbursement, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var created *model.Disbursement
	err = s.inTx(ctx, func(tx service.Tx) error {
		var shareholder *model.Shareholder
		if strings.TrimSpace(in.ShareholderID) != "" {
			sh, getErr := tx.GetShareholder(ctx, in.ShareholderID)
			if getErr != nil && !errors.Is(getErr, common.ErrNotFound) {
				return getErr
			}
			shareholder = sh
		}

		if err := validation.Disbursement(in.Amount, shareholder); err != nil {
			return err
		}
		period := strings.TrimSpace(in.Period)
		if err := validation.Required(period, "period"); err != nil {
			return err
		}
		if err := requireDate(in.Date); err != nil {
			return err
		}

		disb := &model.Disbursement{
			ID:            s.newID(),
			ShareholderID: in.ShareholderID,
			Amount:        in.Amount,
			Date:          in.Date,
			Period:        period,
			Notes:         strings.TrimSpace(in.Notes),
			CreatedBy:     userID,
			CreatedAt:     s.timestamp(),
		}
		if err := tx.CreateDisbursement(ctx, disb); err != nil {
			return err
		}
		created = disb
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recorded disbursement", "id", created.ID, "shareholder_id", created.ShareholderID, "amount", created.Amount.String())
	return created, nil
}

// DeleteDisbursement removes a payout permanently.
func (s *Service) DeleteDisbursement(ctx context.Context, id string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if err := requireID("disbursement", id); err != nil {
		return err
	}

	if err := s.store.DeleteDisbursement(ctx, id); err != nil {
		return err
	}
	slog.Info("deleted disbursement", "id", id)
	return nil
}

// ListDisbursements returns matching payouts, newest first, with the name of
// each shareholder resolved.
func (s *Service) ListDisbursements(ctx context.Context, filter service.DisbursementFilter) ([]model.DisbursementView, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}

	disbursements, err := s.store.ListDisbursements(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	views := make([]model.DisbursementView, 0, len(disbursements))
	for _, disb := range disbursements {
		name, ok := names[disb.ShareholderID]
		if !ok {
			sh, getErr := s.store.GetShareholder(ctx, disb.ShareholderID)
			switch {
			case getErr == nil:
				name = sh.Name
			case errors.Is(getErr, common.ErrNotFound):
				name = model.DeletedShareholderName
			default:
				return nil, getErr
			}
			names[disb.ShareholderID] = name
		}
		views = append(views, model.DisbursementView{
			Disbursement:    disb,
			ShareholderName: name,
		})
	}
	return views, nil
}
