package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/sharebook/internal/aggregate"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/validation"
	"github.com/shopspring/decimal"
)

// ShareholderInput holds the fields of a new shareholder.
type ShareholderInput struct {
	SharePercentage decimal.Decimal
	Name            string
	Email           string
}

// ShareholderPatch names the fields to change. Nil fields are left alone.
type ShareholderPatch struct {
	SharePercentage *decimal.Decimal
	Name            *string
	Email           *string
}

// CreateShareholder adds an active shareholder. The active percentages,
// including the new one, must not exceed 100.
func (s *Service) CreateShareholder(ctx context.Context, in ShareholderInput) (*model.Shareholder, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if err := validation.Required(name, "shareholder name"); err != nil {
		return nil, err
	}
	if err := validation.Email(email); err != nil {
		return nil, err
	}

	s.shareholderMu.Lock()
	defer s.shareholderMu.Unlock()

	var created *model.Shareholder
	err := s.inTx(ctx, func(tx service.Tx) error {
		active, err := tx.ListShareholders(ctx, false)
		if err != nil {
			return err
		}
		if err := validation.ShareholderPercentage(in.SharePercentage, active, ""); err != nil {
			return err
		}

		now := s.timestamp()
		sh := &model.Shareholder{
			ID:              s.newID(),
			Name:            name,
			Email:           email,
			SharePercentage: in.SharePercentage,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateShareholder(ctx, sh); err != nil {
			return err
		}
		created = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateShareholder applies patch as a whole or not at all. A new percentage is
// checked against the other active shareholders.
func (s *Service) UpdateShareholder(ctx context.Context, id string, patch ShareholderPatch) (*model.Shareholder, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireID("shareholder", id); err != nil {
		return nil, err
	}

	s.shareholderMu.Lock()
	defer s.shareholderMu.Unlock()

	var updated *model.Shareholder
	err := s.inTx(ctx, func(tx service.Tx) error {
		sh, err := tx.GetShareholder(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if err := validation.Required(name, "shareholder name"); err != nil {
				return err
			}
			sh.Name = name
		}
		if patch.Email != nil {
			email := strings.TrimSpace(*patch.Email)
			if err := validation.Email(email); err != nil {
				return err
			}
			sh.Email = email
		}
		if patch.SharePercentage != nil {
			active, err := tx.ListShareholders(ctx, false)
			if err != nil {
				return err
			}
			if err := validation.ShareholderPercentage(*patch.SharePercentage, active, id); err != nil {
				return err
			}
			sh.SharePercentage = *patch.SharePercentage
		}

		sh.UpdatedAt = s.timestamp()
		if err := tx.UpdateShareholder(ctx, sh); err != nil {
			return err
		}
		updated = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeactivateShareholder soft-deletes a shareholder, releasing their percentage.
// Past disbursements keep pointing at the record.
func (s *Service) DeactivateShareholder(ctx context.Context, id string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if err := requireID("shareholder", id); err != nil {
		return err
	}

	s.shareholderMu.Lock()
	defer s.shareholderMu.Unlock()

	return s.inTx(ctx, func(tx service.Tx) error {
		sh, err := tx.GetShareholder(ctx, id)
		if err != nil {
			return err
		}
		sh.IsActive = false
		sh.UpdatedAt = s.timestamp()
		if err := tx.UpdateShareholder(ctx, sh); err != nil {
			return err
		}
		slog.Info("deactivated shareholder", "id", id)
		return nil
	})
}

// GetShareholder returns a shareholder, active or not.
func (s *Service) GetShareholder(ctx context.Context, id string) (*model.Shareholder, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireID("shareholder", id); err != nil {
		return nil, err
	}
	return s.store.GetShareholder(ctx, id)
}

// ListShareholders returns the active shareholders by name.
func (s *Service) ListShareholders(ctx context.Context) ([]model.Shareholder, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	return s.store.ListShareholders(ctx, false)
}

// ListAllShareholders returns every shareholder, inactive ones included.
func (s *Service) ListAllShareholders(ctx context.Context) ([]model.Shareholder, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	return s.store.ListShareholders(ctx, true)
}

// TotalPercentage reports how much of the 100% the active shareholders hold.
func (s *Service) TotalPercentage(ctx context.Context) (model.PercentageTotals, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return model.PercentageTotals{}, err
	}

	active, err := s.store.ListShareholders(ctx, false)
	if err != nil {
		return model.PercentageTotals{}, err
	}

	total := validation.AllocatedPercentage(active, "")
	return model.PercentageTotals{
		Total:     aggregate.Round(total),
		Remaining: aggregate.Round(decimal.NewFromInt(100).Sub(total)),
	}, nil
}
