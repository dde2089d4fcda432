package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/validation"
)

// DefaultCategories are inserted by SeedDefaultCategories.
var DefaultCategories = []struct {
	Name        string
	Description string
}{
	{"Rent", "Rent and property costs"},
	{"Utilities", "Electricity, water and internet"},
	{"Salaries", "Staff salaries and wages"},
	{"Marketing", "Marketing and advertising"},
	{"Supplies", "Supplies and consumables"},
	{"Operations", "General operating costs"},
	{"Miscellaneous", "Other expenses"},
}

// CategoryPatch names the fields to change. Nil fields are left alone.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// CreateCategory adds an expense category. Names are unique among active
// categories, ignoring case.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (*model.ExpenseCategory, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}

	s.categoryMu.Lock()
	defer s.categoryMu.Unlock()

	var created *model.ExpenseCategory
	err := s.inTx(ctx, func(tx service.Tx) error {
		existing, err := tx.ListCategories(ctx, false)
		if err != nil {
			return err
		}
		if err := validation.CategoryName(name, existing, ""); err != nil {
			return err
		}

		cat := &model.ExpenseCategory{
			ID:          s.newID(),
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(description),
			IsActive:    true,
			CreatedAt:   s.timestamp(),
		}
		if err := tx.CreateCategory(ctx, cat); err != nil {
			return err
		}
		created = cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCategory renames a category or changes its description. Existing
// transactions keep the name they were recorded with.
func (s *Service) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*model.ExpenseCategory, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireID("category", id); err != nil {
		return nil, err
	}

	s.categoryMu.Lock()
	defer s.categoryMu.Unlock()

	var updated *model.ExpenseCategory
	err := s.inTx(ctx, func(tx service.Tx) error {
		cat, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		changed := false
		if patch.Name != nil {
			existing, err := tx.ListCategories(ctx, false)
			if err != nil {
				return err
			}
			if err := validation.CategoryName(*patch.Name, existing, id); err != nil {
				return err
			}
			cat.Name = strings.TrimSpace(*patch.Name)
			changed = true
		}
		if patch.Description != nil {
			cat.Description = strings.TrimSpace(*patch.Description)
			changed = true
		}

		updated = cat
		if !changed {
			return nil
		}
		return tx.UpdateCategory(ctx, cat)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeactivateCategory hides a category from new entries. Its name becomes free.
func (s *Service) DeactivateCategory(ctx context.Context, id string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if err := requireID("category", id); err != nil {
		return err
	}

	s.categoryMu.Lock()
	defer s.categoryMu.Unlock()

	return s.inTx(ctx, func(tx service.Tx) error {
		cat, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		cat.IsActive = false
		if err := tx.UpdateCategory(ctx, cat); err != nil {
			return err
		}
		slog.Info("deactivated category", "id", id, "name", cat.Name)
		return nil
	})
}

// ListCategories returns the active categories by name.
func (s *Service) ListCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, false)
}

// ListAllCategories returns every category, inactive ones included.
func (s *Service) ListAllCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, true)
}

// SeedDefaultCategories inserts the default categories whose names are not
// already taken, in any case, and returns how many were added.
func (s *Service) SeedDefaultCategories(ctx context.Context) (int, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return 0, err
	}

	s.categoryMu.Lock()
	defer s.categoryMu.Unlock()

	inserted := 0
	err := s.inTx(ctx, func(tx service.Tx) error {
		existing, err := tx.ListCategories(ctx, true)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, cat := range existing {
			taken[strings.ToLower(cat.Name)] = true
		}

		for _, def := range DefaultCategories {
			if taken[strings.ToLower(def.Name)] {
				continue
			}
			cat := &model.ExpenseCategory{
				ID:          s.newID(),
				Name:        def.Name,
				Description: def.Description,
				IsActive:    true,
				CreatedAt:   s.timestamp(),
			}
			if err := tx.CreateCategory(ctx, cat); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("seeded default categories", "inserted", inserted)
	return inserted, nil
}
