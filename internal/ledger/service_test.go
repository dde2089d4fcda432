package ledger

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/sharebook/internal/auth"
	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

// testClock is a settable clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func newTestService(t *testing.T, seed testutil.SeedFunc) (*Service, *testutil.TestDB, *testClock) {
	t.Helper()
	db := testutil.SetupTestDB(t, seed)
	clock := &testClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}

	svc := New(db.Storage, auth.Static{UserID: testUser},
		WithClock(clock.Now),
		WithIDGenerator(sequentialIDs()),
		WithLocation(time.UTC),
	)
	return svc, db, clock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 9, 0, 0, 0, time.UTC)
}

func year2025() model.DateRange {
	return model.YearRange(date(time.January, 1))
}

// untouchableStore panics on any call; the embedded interface is nil.
type untouchableStore struct {
	service.Storage
}

func TestService_UnauthenticatedBeforeStore(t *testing.T) {
	ctx := context.Background()
	r := year2025()

	for _, authenticator := range []service.Authenticator{nil, auth.Anonymous{}, auth.Static{}} {
		svc := New(untouchableStore{}, authenticator)

		calls := map[string]func() error{
			"CreateTransaction": func() error {
				_, err := svc.CreateTransaction(ctx, TransactionInput{Type: model.TransactionIncome, Amount: dec("1"), Description: "x", Date: date(1, 1)})
				return err
			},
			"GetTransaction":    func() error { _, err := svc.GetTransaction(ctx, "t1"); return err },
			"UpdateTransaction": func() error { _, err := svc.UpdateTransaction(ctx, "t1", TransactionPatch{}); return err },
			"DeleteTransaction": func() error { return svc.DeleteTransaction(ctx, "t1") },
			"ListTransactions":  func() error { _, err := svc.ListTransactions(ctx, TransactionQuery{}); return err },
			"ListForExport":     func() error { _, err := svc.ListTransactionsForExport(ctx, TransactionQuery{}); return err },
			"ImportTransactions": func() error {
				_, err := svc.ImportTransactions(ctx, nil, nil)
				return err
			},
			"CreateCategory":        func() error { _, err := svc.CreateCategory(ctx, "Rent", ""); return err },
			"UpdateCategory":        func() error { _, err := svc.UpdateCategory(ctx, "c1", CategoryPatch{}); return err },
			"DeactivateCategory":    func() error { return svc.DeactivateCategory(ctx, "c1") },
			"ListCategories":        func() error { _, err := svc.ListCategories(ctx); return err },
			"ListAllCategories":     func() error { _, err := svc.ListAllCategories(ctx); return err },
			"SeedDefaultCategories": func() error { _, err := svc.SeedDefaultCategories(ctx); return err },
			"CreateShareholder": func() error {
				_, err := svc.CreateShareholder(ctx, ShareholderInput{Name: "A", Email: "a@b.co", SharePercentage: dec("10")})
				return err
			},
			"UpdateShareholder":     func() error { _, err := svc.UpdateShareholder(ctx, "s1", ShareholderPatch{}); return err },
			"DeactivateShareholder": func() error { return svc.DeactivateShareholder(ctx, "s1") },
			"GetShareholder":        func() error { _, err := svc.GetShareholder(ctx, "s1"); return err },
			"ListShareholders":      func() error { _, err := svc.ListShareholders(ctx); return err },
			"ListAllShareholders":   func() error { _, err := svc.ListAllShareholders(ctx); return err },
			"TotalPercentage":       func() error { _, err := svc.TotalPercentage(ctx); return err },
			"CreateDisbursement": func() error {
				_, err := svc.CreateDisbursement(ctx, DisbursementInput{ShareholderID: "s1", Amount: dec("1"), Period: "Q1", Date: date(1, 1)})
				return err
			},
			"DeleteDisbursement":   func() error { return svc.DeleteDisbursement(ctx, "d1") },
			"ListDisbursements":    func() error { _, err := svc.ListDisbursements(ctx, service.DisbursementFilter{}); return err },
			"Metrics":              func() error { _, err := svc.Metrics(ctx, r); return err },
			"ProfitSummary":        func() error { _, err := svc.ProfitSummary(ctx, r); return err },
			"MonthlyTrend":         func() error { _, err := svc.MonthlyTrend(ctx, r); return err },
			"ExpenseBreakdown":     func() error { _, err := svc.ExpenseBreakdown(ctx, r); return err },
			"TopExpenseCategories": func() error { _, err := svc.TopExpenseCategories(ctx, r, 5); return err },
			"ShareholderShares":    func() error { _, err := svc.ShareholderShares(ctx, r); return err },
		}

		for name, call := range calls {
			t.Run(fmt.Sprintf("%T/%s", authenticator, name), func(t *testing.T) {
				var err error
				require.NotPanics(t, func() { err = call() }, "store must not be touched")
				assert.ErrorIs(t, err, common.ErrUnauthenticated)
			})
		}
	}
}

func TestService_ContextIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	svc := New(db.Storage, auth.Chain{auth.FromContext{}})

	_, err := svc.ListCategories(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	ctx := auth.WithUserID(context.Background(), "nadia")
	_, err = svc.ListCategories(ctx)
	assert.NoError(t, err)
}
