package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/testutil/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReportLedger(t *testing.T) (*Service, string) {
	t.Helper()
	svc, db, _ := newTestService(t, fixtures.NewBuilder(t).
		WithBasicCategories().
		WithShareholder("Zaid", "75").
		WithShareholder("Huda", "25").
		Build)
	ctx := context.Background()

	inputs := []TransactionInput{
		incomeInput("12000", "January sales", date(time.January, 10)),
		expenseInput("1500", fixtures.CategoryRent, "January rent", date(time.January, 1)),
		expenseInput("500", fixtures.CategoryUtilities, "Power", date(time.January, 20)),
		expenseInput("1500", fixtures.CategoryRent, "March rent", date(time.March, 1)),
		incomeInput("1500", "March sales", date(time.March, 15)),
		incomeInput("999", "Last year", time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)),
	}
	for _, in := range inputs {
		_, err := svc.CreateTransaction(ctx, in)
		require.NoError(t, err)
	}

	_, err := svc.CreateDisbursement(ctx, DisbursementInput{
		ShareholderID: db.MustShareholderID("Huda"),
		Amount:        dec("1000"),
		Date:          date(time.April, 1),
		Period:        "2025-Q1",
	})
	require.NoError(t, err)
	_, err = svc.CreateDisbursement(ctx, DisbursementInput{
		ShareholderID: db.MustShareholderID("Zaid"),
		Amount:        dec("50"),
		Date:          time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC),
		Period:        "2024-Q4",
	})
	require.NoError(t, err)

	return svc, db.MustShareholderID("Huda")
}

func TestMetrics(t *testing.T) {
	svc, _ := seedReportLedger(t)

	metrics, err := svc.Metrics(context.Background(), year2025())
	require.NoError(t, err)
	assert.Equal(t, "13500", metrics.TotalIncome.String())
	assert.Equal(t, "3500", metrics.TotalExpenses.String())
	assert.Equal(t, "10000", metrics.NetProfit.String())
	assert.Equal(t, "9000", metrics.AvailableProfit.String(), "only payouts inside the range count")
	assert.Equal(t, "74.07", metrics.ProfitMargin.String())

	summary, err := svc.ProfitSummary(context.Background(), year2025())
	require.NoError(t, err)
	assert.Equal(t, "1000", summary.TotalDisbursements.String())
	assert.Equal(t, "9000", summary.AvailableProfit.String())
}

func TestShareholderShares(t *testing.T) {
	svc, hudaID := seedReportLedger(t)

	shares, err := svc.ShareholderShares(context.Background(), year2025())
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, "Huda", shares[0].ShareholderName, "ordered by name")
	assert.Equal(t, hudaID, shares[0].ShareholderID)
	assert.Equal(t, "2500", shares[0].ShareAmount.String())
	assert.Equal(t, "1000", shares[0].Disbursed.String())
	assert.Equal(t, "1500", shares[0].Remaining.String())

	assert.Equal(t, "Zaid", shares[1].ShareholderName)
	assert.Equal(t, "7500", shares[1].ShareAmount.String())
	assert.True(t, shares[1].Disbursed.IsZero(), "last year's payout is outside the range")
}

func TestMonthlyTrend_FillsGaps(t *testing.T) {
	svc, _ := seedReportLedger(t)

	trend, err := svc.MonthlyTrend(context.Background(), year2025())
	require.NoError(t, err)
	require.Len(t, trend, 3)

	assert.Equal(t, "2025-01", trend[0].MonthKey)
	assert.Equal(t, "January 2025", trend[0].Month)
	assert.Equal(t, "10000", trend[0].Profit.String())

	assert.Equal(t, "2025-02", trend[1].MonthKey)
	assert.True(t, trend[1].Income.IsZero())
	assert.True(t, trend[1].Expenses.IsZero())

	assert.Equal(t, "2025-03", trend[2].MonthKey)
	assert.Equal(t, "0", trend[2].Profit.String())
}

func TestExpenseBreakdown(t *testing.T) {
	svc, _ := seedReportLedger(t)
	ctx := context.Background()

	first, err := svc.ExpenseBreakdown(ctx, year2025())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, fixtures.CategoryRent, first[0].Category)
	assert.Equal(t, "3000", first[0].Total.String())
	assert.Equal(t, "85.7", first[0].Percentage.String())
	assert.Equal(t, "14.3", first[1].Percentage.String())

	second, err := svc.ExpenseBreakdown(ctx, year2025())
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical inputs give identical output")

	top, err := svc.TopExpenseCategories(ctx, year2025(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, fixtures.CategoryRent, top[0].Category)
}

func TestReports_InvalidRange(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	backwards := model.DateRange{From: date(time.June, 1), To: date(time.May, 1)}
	_, err := svc.Metrics(context.Background(), backwards)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestReports_EmptyLedger(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	metrics, err := svc.Metrics(ctx, year2025())
	require.NoError(t, err)
	assert.True(t, metrics.ProfitMargin.IsZero())

	trend, err := svc.MonthlyTrend(ctx, year2025())
	require.NoError(t, err)
	assert.Empty(t, trend)

	shares, err := svc.ShareholderShares(ctx, year2025())
	require.NoError(t, err)
	assert.Empty(t, shares)
}
