// Package report composes aggregate totals into the dashboard report shapes.
// Inputs are snapshots already narrowed to the requested date range.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/sharebook/internal/aggregate"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/shopspring/decimal"
)

// splitByType returns the income and expense totals of txns, unrounded.
func splitByType(txns []model.Transaction) (income, expenses decimal.Decimal) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, txn := range txns {
		switch txn.Type {
		case model.TransactionIncome:
			income = income.Add(txn.Amount)
		case model.TransactionExpense:
			expenses = expenses.Add(txn.Amount)
		}
	}
	return income, expenses
}

// BuildMetrics summarizes income, expenses, profit and what is left after payouts.
func BuildMetrics(txns []model.Transaction, disbursements []model.Disbursement) model.Metrics {
	income, expenses := splitByType(txns)
	net := income.Sub(expenses)
	paid := aggregate.SumAmount(disbursements)

	return model.Metrics{
		TotalIncome:     aggregate.Round(income),
		TotalExpenses:   aggregate.Round(expenses),
		NetProfit:       aggregate.Round(net),
		AvailableProfit: aggregate.Round(net.Sub(paid)),
		ProfitMargin:    aggregate.ProfitMargin(income, expenses),
	}
}

// BuildProfitSummary is BuildMetrics with the disbursed total instead of the margin.
func BuildProfitSummary(txns []model.Transaction, disbursements []model.Disbursement) model.ProfitSummary {
	income, expenses := splitByType(txns)
	net := income.Sub(expenses)
	paid := aggregate.SumAmount(disbursements)

	return model.ProfitSummary{
		TotalIncome:        aggregate.Round(income),
		TotalExpenses:      aggregate.Round(expenses),
		NetProfit:          aggregate.Round(net),
		TotalDisbursements: aggregate.Round(paid),
		AvailableProfit:    aggregate.Round(net.Sub(paid)),
	}
}

// BuildMonthlyTrend returns one point per month, oldest first, with empty months
// between the first and last recorded month filled with zeros.
func BuildMonthlyTrend(txns []model.Transaction, loc *time.Location) []model.MonthlyTrendPoint {
	months := aggregate.GroupByMonth(txns, loc)
	points := make([]model.MonthlyTrendPoint, 0, len(months))
	for _, m := range months {
		points = append(points, model.MonthlyTrendPoint{
			Month:    aggregate.MonthLabel(m.MonthKey),
			MonthKey: m.MonthKey,
			Income:   aggregate.Round(m.Income),
			Expenses: aggregate.Round(m.Expenses),
			Profit:   aggregate.Round(m.Income.Sub(m.Expenses)),
		})
	}
	return points
}

func toBreakdown(groups []aggregate.CategoryTotal) []model.CategoryBreakdown {
	out := make([]model.CategoryBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.CategoryBreakdown{
			Category:   g.Category,
			Total:      g.Total,
			Percentage: g.Percentage,
		})
	}
	return out
}

// BuildExpenseBreakdown lists every expense category seen, largest total first.
func BuildExpenseBreakdown(txns []model.Transaction) []model.CategoryBreakdown {
	return toBreakdown(aggregate.SortByTotal(aggregate.GroupByCategory(txns)))
}

// BuildTopExpenseCategories is the expense breakdown truncated to limit entries.
func BuildTopExpenseCategories(txns []model.Transaction, limit int) []model.CategoryBreakdown {
	return toBreakdown(aggregate.TopN(aggregate.GroupByCategory(txns), limit))
}

// BuildShareholderShares computes each active shareholder's cut of the net profit and
// how much of it has been paid out. Shareholders are ordered by name.
func BuildShareholderShares(txns []model.Transaction, shareholders []model.Shareholder, disbursements []model.Disbursement) []model.ShareholderShare {
	income, expenses := splitByType(txns)
	net := income.Sub(expenses)

	paid := make(map[string]decimal.Decimal)
	for _, disb := range disbursements {
		sum, ok := paid[disb.ShareholderID]
		if !ok {
			sum = decimal.Zero
		}
		paid[disb.ShareholderID] = sum.Add(disb.Amount)
	}

	active := make([]model.Shareholder, 0, len(shareholders))
	for _, sh := range shareholders {
		if sh.IsActive {
			active = append(active, sh)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		a, b := strings.ToLower(active[i].Name), strings.ToLower(active[j].Name)
		if a != b {
			return a < b
		}
		return active[i].ID < active[j].ID
	})

	shares := make([]model.ShareholderShare, 0, len(active))
	for _, sh := range active {
		amount := aggregate.ShareAmount(net, sh.SharePercentage)
		disbursed, ok := paid[sh.ID]
		if !ok {
			disbursed = decimal.Zero
		}

		shares = append(shares, model.ShareholderShare{
			ShareholderID:   sh.ID,
			ShareholderName: sh.Name,
			SharePercentage: sh.SharePercentage,
			ShareAmount:     amount,
			Disbursed:       aggregate.Round(disbursed),
			Remaining:       aggregate.Round(amount.Sub(disbursed)),
		})
	}
	return shares
}

// FilterTransactions keeps the transactions dated inside r.
func FilterTransactions(txns []model.Transaction, r model.DateRange) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if r.Contains(txn.Date) {
			out = append(out, txn)
		}
	}
	return out
}

// FilterDisbursements keeps the disbursements dated inside r.
func FilterDisbursements(disbursements []model.Disbursement, r model.DateRange) []model.Disbursement {
	out := make([]model.Disbursement, 0, len(disbursements))
	for _, disb := range disbursements {
		if r.Contains(disb.Date) {
			out = append(out, disb)
		}
	}
	return out
}
