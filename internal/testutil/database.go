// Package testutil provides test database helpers for the ledger.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/storage"
	"github.com/Veraticus/sharebook/internal/testutil/fixtures"
)

// SeedFunc writes initial rows to a fresh store. (*fixtures.Builder).Build is one.
type SeedFunc func(ctx context.Context, storage service.Storage) (*fixtures.Seeded, error)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Seeded  *fixtures.Seeded
	t       *testing.T
}

// SetupTestDB creates a migrated database in the test's temp dir and applies seed.
// It automatically handles cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, fixtures.NewBuilder(t).
//		WithBasicCategories().
//		Build)
func SetupTestDB(t *testing.T, seed SeedFunc) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seeded := &fixtures.Seeded{}
	if seed != nil {
		if seeded, err = seed(ctx, store); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Seeded:  seeded,
		t:       t,
	}
}

// MustCategoryID returns the id of the seeded category with the given name.
func (db *TestDB) MustCategoryID(name string) string {
	db.t.Helper()
	return db.Seeded.Category(db.t, name).ID
}

// MustShareholderID returns the id of the seeded shareholder with the given name.
func (db *TestDB) MustShareholderID(name string) string {
	db.t.Helper()
	return db.Seeded.Shareholder(db.t, name).ID
}

// WithTransaction executes fn within a database transaction that is always
// rolled back afterwards.
func (db *TestDB) WithTransaction(fn func(tx service.Tx) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
