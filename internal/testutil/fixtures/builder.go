package fixtures

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/shopspring/decimal"
)

// Seeded is what a Builder wrote to the store.
type Seeded struct {
	Categories   []model.ExpenseCategory
	Shareholders []model.Shareholder
}

// Category returns the seeded category with the given name or fails the test.
func (s *Seeded) Category(t *testing.T, name string) model.ExpenseCategory {
	t.Helper()
	for _, cat := range s.Categories {
		if cat.Name == name {
			return cat
		}
	}
	t.Fatalf("category %q not found in test data", name)
	return model.ExpenseCategory{}
}

// Shareholder returns the seeded shareholder with the given name or fails the test.
func (s *Seeded) Shareholder(t *testing.T, name string) model.Shareholder {
	t.Helper()
	for _, sh := range s.Shareholders {
		if sh.Name == name {
			return sh
		}
	}
	t.Fatalf("shareholder %q not found in test data", name)
	return model.Shareholder{}
}

type categorySeed struct {
	name   string
	active bool
}

type shareholderSeed struct {
	name       string
	percentage string
	active     bool
}

// Builder collects the rows a test database starts with. Rows are written in the
// order they were added, with ids derived from their names.
type Builder struct {
	t            *testing.T
	categories   []categorySeed
	shareholders []shareholderSeed
}

// NewBuilder creates an empty builder for the given test.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithCategory adds an active category.
func (b *Builder) WithCategory(name string) *Builder {
	b.categories = append(b.categories, categorySeed{name: name, active: true})
	return b
}

// WithCategories adds several active categories.
func (b *Builder) WithCategories(names ...string) *Builder {
	for _, name := range names {
		b.WithCategory(name)
	}
	return b
}

// WithInactiveCategory adds a deactivated category.
func (b *Builder) WithInactiveCategory(name string) *Builder {
	b.categories = append(b.categories, categorySeed{name: name})
	return b
}

// WithBasicCategories adds the minimal set of categories commonly used in tests.
func (b *Builder) WithBasicCategories() *Builder {
	return b.WithCategories(CategoryRent, CategoryUtilities, CategorySalaries)
}

// WithFixture adds the categories of a predefined fixture.
func (b *Builder) WithFixture(f Fixture) *Builder {
	return b.WithCategories(f.Categories...)
}

// WithShareholder adds an active shareholder holding percentage.
func (b *Builder) WithShareholder(name, percentage string) *Builder {
	b.shareholders = append(b.shareholders, shareholderSeed{name: name, percentage: percentage, active: true})
	return b
}

// WithInactiveShareholder adds a deactivated shareholder.
func (b *Builder) WithInactiveShareholder(name, percentage string) *Builder {
	b.shareholders = append(b.shareholders, shareholderSeed{name: name, percentage: percentage})
	return b
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// CategoryID is the id Build gives the category called name.
func CategoryID(name string) string {
	return "cat-" + slug(name)
}

// ShareholderID is the id Build gives the shareholder called name.
func ShareholderID(name string) string {
	return "sh-" + slug(name)
}

// Build writes the collected rows straight to storage, bypassing business rules.
func (b *Builder) Build(ctx context.Context, storage service.Storage) (*Seeded, error) {
	b.t.Helper()

	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	seeded := &Seeded{}

	for _, seed := range b.categories {
		cat := model.ExpenseCategory{
			ID:          CategoryID(seed.name),
			Name:        seed.name,
			Description: "Test description for " + seed.name,
			IsActive:    seed.active,
			CreatedAt:   created,
		}
		if !seed.active {
			cat.ID += "-inactive"
		}
		if err := storage.CreateCategory(ctx, &cat); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", seed.name, err)
		}
		seeded.Categories = append(seeded.Categories, cat)
	}

	for _, seed := range b.shareholders {
		percentage, err := decimal.NewFromString(seed.percentage)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage %q for %s: %w", seed.percentage, seed.name, err)
		}
		sh := model.Shareholder{
			ID:              ShareholderID(seed.name),
			Name:            seed.name,
			Email:           slug(seed.name) + "@example.com",
			SharePercentage: percentage,
			IsActive:        seed.active,
			CreatedAt:       created,
			UpdatedAt:       created,
		}
		if err := storage.CreateShareholder(ctx, &sh); err != nil {
			return nil, fmt.Errorf("failed to create shareholder %q: %w", seed.name, err)
		}
		seeded.Shareholders = append(seeded.Shareholders, sh)
	}

	return seeded, nil
}
