package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/testutil/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateShareholder_ExceedsRemaining(t *testing.T) {
	svc, _, _ := newTestService(t, fixtures.NewBuilder(t).WithShareholder("A", "60").Build)
	ctx := context.Background()

	_, err := svc.CreateShareholder(ctx, ShareholderInput{Name: "B", Email: "b@example.com", SharePercentage: dec("50")})
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Contains(t, err.Error(), "remaining 40%")

	all, err := svc.ListAllShareholders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "store is unchanged")

	sh, err := svc.CreateShareholder(ctx, ShareholderInput{Name: " B ", Email: " b@example.com ", SharePercentage: dec("40")})
	require.NoError(t, err)
	assert.Equal(t, "B", sh.Name)
	assert.Equal(t, "b@example.com", sh.Email)
	assert.True(t, sh.IsActive)

	totals, err := svc.TotalPercentage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", totals.Total.String())
	assert.Equal(t, "0", totals.Remaining.String())
}

func TestCreateShareholder_Validation(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   ShareholderInput
	}{
		{name: "blank name", in: ShareholderInput{Name: "  ", Email: "a@b.co", SharePercentage: dec("10")}},
		{name: "bad email", in: ShareholderInput{Name: "A", Email: "a@b", SharePercentage: dec("10")}},
		{name: "zero percentage", in: ShareholderInput{Name: "A", Email: "a@b.co", SharePercentage: dec("0")}},
		{name: "over 100", in: ShareholderInput{Name: "A", Email: "a@b.co", SharePercentage: dec("100.01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShareholder(ctx, tt.in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestUpdateShareholder_ExcludesSelf(t *testing.T) {
	svc, db, clock := newTestService(t, fixtures.NewBuilder(t).
		WithShareholder("A", "60").
		WithShareholder("B", "30").
		Build)
	ctx := context.Background()
	idA := db.MustShareholderID("A")

	updated, err := svc.UpdateShareholder(ctx, idA, ShareholderPatch{SharePercentage: decPtr("70")})
	require.NoError(t, err)
	assert.Equal(t, "70", updated.SharePercentage.String())
	assert.Equal(t, clock.Now(), updated.UpdatedAt)

	_, err = svc.UpdateShareholder(ctx, idA, ShareholderPatch{SharePercentage: decPtr("70.5")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remaining 70%")
}

func TestUpdateShareholder_Atomic(t *testing.T) {
	svc, db, _ := newTestService(t, fixtures.NewBuilder(t).WithShareholder("A", "60").Build)
	ctx := context.Background()
	id := db.MustShareholderID("A")

	_, err := svc.UpdateShareholder(ctx, id, ShareholderPatch{
		Name:  strPtr("Renamed"),
		Email: strPtr("not-an-email"),
	})
	require.ErrorIs(t, err, common.ErrValidation)

	sh, err := svc.GetShareholder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", sh.Name, "no field is applied when one fails")
}

func TestShareholder_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.UpdateShareholder(ctx, "missing", ShareholderPatch{Name: strPtr("X")})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.DeactivateShareholder(ctx, "missing"), common.ErrNotFound)
	_, err = svc.GetShareholder(ctx, "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeactivateShareholder_FreesPercentage(t *testing.T) {
	svc, db, _ := newTestService(t, fixtures.NewBuilder(t).WithShareholder("A", "80").Build)
	ctx := context.Background()

	require.NoError(t, svc.DeactivateShareholder(ctx, db.MustShareholderID("A")))

	_, err := svc.CreateShareholder(ctx, ShareholderInput{Name: "B", Email: "b@example.com", SharePercentage: dec("100")})
	require.NoError(t, err)

	active, err := svc.ListShareholders(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Name)

	all, err := svc.ListAllShareholders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateShareholder_ConcurrentCreatesStayWithin100(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateShareholder(ctx, ShareholderInput{
				Name:            "Partner",
				Email:           "partner@example.com",
				SharePercentage: dec("20"),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, common.ErrValidation)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	totals, err := svc.TotalPercentage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", totals.Total.String())
}
