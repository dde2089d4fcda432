package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSnapshotManager(t *testing.T) (*SQLiteStorage, *SnapshotManager) {
	t.Helper()
	store := createTestStorage(t)

	sm, err := store.NewSnapshotManager()
	require.NoError(t, err)
	return store, sm
}

func TestNewSnapshotManager_RequiresFile(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.NewSnapshotManager()
	assert.Error(t, err)
}

func TestSnapshotManager_Create(t *testing.T) {
	store, sm := createSnapshotManager(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTransaction(ctx, newTestTransaction("t1", model.TransactionIncome, "10", "", ts(time.January, 1))))
	require.NoError(t, store.CreateCategory(ctx, &model.ExpenseCategory{ID: "c1", Name: "Rent", IsActive: true, CreatedAt: time.Now()}))

	info, err := sm.Create(ctx, "before-close", "Before closing Q1")
	require.NoError(t, err)
	assert.Equal(t, "before-close", info.ID)
	assert.Equal(t, 1, info.Transactions)
	assert.Equal(t, 1, info.Categories)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)
	assert.False(t, info.IsAuto)

	assert.FileExists(t, filepath.Join(sm.snapshotsDir, "before-close.db"))
	assert.FileExists(t, filepath.Join(sm.snapshotsDir, "before-close.meta.json"))

	_, err = sm.Create(ctx, "before-close", "again")
	assert.ErrorIs(t, err, ErrSnapshotExists)

	_, err = sm.Create(ctx, "../escape", "")
	assert.ErrorIs(t, err, ErrInvalidSnapshotID)
}

func TestSnapshotManager_ListAndDelete(t *testing.T) {
	_, sm := createSnapshotManager(t)
	ctx := context.Background()

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second"} {
		at := base.Add(time.Duration(i) * time.Hour)
		sm.now = func() time.Time { return at }
		_, err := sm.Create(ctx, id, "")
		require.NoError(t, err)
	}

	list, err := sm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID, "newest first")

	info, err := sm.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", info.ID)

	require.NoError(t, sm.Delete(ctx, "first"))
	_, err = sm.Get(ctx, "first")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, sm.Delete(ctx, "first"), ErrSnapshotNotFound)
}

func TestSnapshotManager_Restore(t *testing.T) {
	store, sm := createSnapshotManager(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTransaction(ctx, newTestTransaction("keep", model.TransactionIncome, "10", "", ts(time.January, 1))))
	_, err := sm.Create(ctx, "good", "")
	require.NoError(t, err)

	require.NoError(t, store.CreateTransaction(ctx, newTestTransaction("later", model.TransactionIncome, "20", "", ts(time.January, 2))))
	require.NoError(t, sm.Restore(ctx, "good"))

	reopened, err := NewSQLiteStorage(store.Path())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	_, err = reopened.GetTransaction(ctx, "keep")
	assert.NoError(t, err)
	_, err = reopened.GetTransaction(ctx, "later")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSnapshotManager_RestoreCorrupted(t *testing.T) {
	_, sm := createSnapshotManager(t)
	ctx := context.Background()

	_, err := sm.Create(ctx, "broken", "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(sm.snapshotsDir, "broken.db"), []byte("not a database"), 0600))

	assert.Error(t, sm.Restore(ctx, "broken"))
	assert.ErrorIs(t, sm.Restore(ctx, "absent"), ErrSnapshotNotFound)
}

func TestSnapshotManager_AutoSnapshotPrunes(t *testing.T) {
	_, sm := createSnapshotManager(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxAutoSnapshots+2; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		sm.now = func() time.Time { return at }
		info, err := sm.AutoSnapshot(ctx, "import")
		require.NoError(t, err)
		assert.True(t, info.IsAuto)
	}
	_, err := sm.Create(ctx, "manual", "")
	require.NoError(t, err)

	list, err := sm.List(ctx)
	require.NoError(t, err)

	autoCount := 0
	for _, snap := range list {
		if snap.IsAuto {
			autoCount++
		}
	}
	assert.Equal(t, maxAutoSnapshots, autoCount)
	assert.Len(t, list, maxAutoSnapshots+1, "manual snapshots are never pruned")
}
