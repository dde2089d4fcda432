package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func ts(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 10, 0, 0, 0, time.UTC)
}

func newTestTransaction(id string, txnType model.TransactionType, amount string, category string, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		Type:        txnType,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: "entry " + id,
		Date:        date,
		CreatedBy:   "user-1",
		CreatedAt:   date,
		UpdatedAt:   date,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx), "second run is a no-op")

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_transactions_type_date'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_TransactionRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	txn := newTestTransaction("t1", model.TransactionExpense, "1250.55", "Rent", ts(time.March, 3))
	txn.Notes = "paid in cash"
	require.NoError(t, store.CreateTransaction(ctx, txn))

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionExpense, got.Type)
	assert.True(t, txn.Amount.Equal(got.Amount), "amount %s", got.Amount)
	assert.Equal(t, "Rent", got.Category)
	assert.Equal(t, "paid in cash", got.Notes)
	assert.True(t, txn.Date.Equal(got.Date))

	got.Amount = decimal.RequireFromString("99.90")
	got.Notes = ""
	got.UpdatedAt = ts(time.March, 4)
	require.NoError(t, store.UpdateTransaction(ctx, got))

	updated, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "99.9", updated.Amount.String())
	assert.Empty(t, updated.Notes)
	assert.True(t, ts(time.March, 4).Equal(updated.UpdatedAt))

	require.NoError(t, store.DeleteTransaction(ctx, "t1"))
	_, err = store.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_TransactionNotFound(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.DeleteTransaction(ctx, "missing"), common.ErrNotFound)
	err := store.UpdateTransaction(ctx, newTestTransaction("missing", model.TransactionIncome, "1", "", ts(time.May, 1)))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ListTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, txn := range []*model.Transaction{
		newTestTransaction("jan-in", model.TransactionIncome, "1000", "", ts(time.January, 5)),
		newTestTransaction("feb-rent", model.TransactionExpense, "300", "Rent", ts(time.February, 1)),
		newTestTransaction("feb-pay", model.TransactionExpense, "500", "Salaries", ts(time.February, 25)),
		newTestTransaction("mar-in", model.TransactionIncome, "700", "", ts(time.March, 9)),
	} {
		require.NoError(t, store.CreateTransaction(ctx, txn))
	}

	expense := model.TransactionExpense
	from, to := ts(time.February, 1), ts(time.February, 28)

	tests := []struct {
		name    string
		filter  service.TransactionFilter
		wantIDs []string
	}{
		{name: "all newest first", wantIDs: []string{"mar-in", "feb-pay", "feb-rent", "jan-in"}},
		{name: "by type", filter: service.TransactionFilter{Type: &expense}, wantIDs: []string{"feb-pay", "feb-rent"}},
		{name: "inclusive range", filter: service.TransactionFilter{From: &from, To: &to}, wantIDs: []string{"feb-pay", "feb-rent"}},
		{name: "by category", filter: service.TransactionFilter{Category: "Rent"}, wantIDs: []string{"feb-rent"}},
		{name: "limit", filter: service.TransactionFilter{Limit: 2}, wantIDs: []string{"mar-in", "feb-pay"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := store.ListTransactions(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(txns))
			for _, txn := range txns {
				ids = append(ids, txn.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, err := store.ListTransactions(ctx, service.TransactionFilter{From: &to, To: &from})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSQLiteStorage_Categories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, cat := range []*model.ExpenseCategory{
		{ID: "c1", Name: "salaries", IsActive: true, CreatedAt: ts(time.January, 1)},
		{ID: "c2", Name: "Rent", Description: "Office", IsActive: true, CreatedAt: ts(time.January, 1)},
		{ID: "c3", Name: "Travel", IsActive: false, CreatedAt: ts(time.January, 1)},
	} {
		require.NoError(t, store.CreateCategory(ctx, cat))
	}

	active, err := store.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Rent", active[0].Name, "sorted by name without case")
	assert.Equal(t, "Office", active[0].Description)
	assert.Equal(t, "salaries", active[1].Name)

	all, err := store.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cat, err := store.GetCategory(ctx, "c2")
	require.NoError(t, err)
	cat.IsActive = false
	cat.Description = ""
	require.NoError(t, store.UpdateCategory(ctx, cat))

	got, err := store.GetCategory(ctx, "c2")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Empty(t, got.Description)

	_, err = store.GetCategory(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_Shareholders(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	sh := &model.Shareholder{
		ID:              "s1",
		Name:            "Noor",
		Email:           "noor@example.com",
		SharePercentage: decimal.RequireFromString("33.33"),
		IsActive:        true,
		CreatedAt:       ts(time.January, 1),
		UpdatedAt:       ts(time.January, 1),
	}
	require.NoError(t, store.CreateShareholder(ctx, sh))
	require.NoError(t, store.CreateShareholder(ctx, &model.Shareholder{
		ID: "s2", Name: "Ali", Email: "ali@example.com", SharePercentage: decimal.NewFromInt(10),
		IsActive: false, CreatedAt: ts(time.January, 1), UpdatedAt: ts(time.January, 1),
	}))

	got, err := store.GetShareholder(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "33.33", got.SharePercentage.String())
	assert.True(t, got.IsActive)

	got.SharePercentage = decimal.NewFromInt(40)
	got.UpdatedAt = ts(time.February, 1)
	require.NoError(t, store.UpdateShareholder(ctx, got))

	active, err := store.ListShareholders(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "40", active[0].SharePercentage.String())

	all, err := store.ListShareholders(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ali", all[0].Name)

	_, err = store.GetShareholder(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_Disbursements(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, disb := range []*model.Disbursement{
		{ID: "d1", ShareholderID: "s1", Amount: decimal.NewFromInt(100), Date: ts(time.January, 31), Period: "2025-01", CreatedBy: "u", CreatedAt: ts(time.January, 31)},
		{ID: "d2", ShareholderID: "s2", Amount: decimal.NewFromInt(200), Date: ts(time.February, 28), Period: "2025-02", Notes: "bank", CreatedBy: "u", CreatedAt: ts(time.February, 28)},
		{ID: "d3", ShareholderID: "s1", Amount: decimal.NewFromInt(300), Date: ts(time.March, 31), Period: "2025-03", CreatedBy: "u", CreatedAt: ts(time.March, 31)},
	} {
		require.NoError(t, store.CreateDisbursement(ctx, disb))
	}

	all, err := store.ListDisbursements(ctx, service.DisbursementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "d3", all[0].ID, "newest first")

	byHolder, err := store.ListDisbursements(ctx, service.DisbursementFilter{ShareholderID: "s1"})
	require.NoError(t, err)
	assert.Len(t, byHolder, 2)

	from, to := ts(time.February, 1), ts(time.March, 31)
	inRange, err := store.ListDisbursements(ctx, service.DisbursementFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	byPeriod, err := store.ListDisbursements(ctx, service.DisbursementFilter{Period: "2025-02"})
	require.NoError(t, err)
	require.Len(t, byPeriod, 1)
	assert.Equal(t, "bank", byPeriod[0].Notes)

	require.NoError(t, store.DeleteDisbursement(ctx, "d2"))
	_, err = store.GetDisbursement(ctx, "d2")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteDisbursement(ctx, "d2"), common.ErrNotFound)
}

func TestSQLiteStorage_BeginTx(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("rollback discards writes", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.CreateCategory(ctx, &model.ExpenseCategory{ID: "rb", Name: "Temp", IsActive: true, CreatedAt: time.Now()}))
		require.NoError(t, tx.Rollback())

		_, err = store.GetCategory(ctx, "rb")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("commit keeps writes", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.CreateCategory(ctx, &model.ExpenseCategory{ID: "ok", Name: "Kept", IsActive: true, CreatedAt: time.Now()}))

		cats, err := tx.ListCategories(ctx, false)
		require.NoError(t, err)
		assert.Len(t, cats, 1, "reads inside the transaction see its writes")
		require.NoError(t, tx.Commit())

		_, err = store.GetCategory(ctx, "ok")
		assert.NoError(t, err)
	})

	t.Run("no nesting or migrations", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.BeginTx(ctx)
		assert.Error(t, err)
		assert.Error(t, tx.Migrate(ctx))
	})
}
