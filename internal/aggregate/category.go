package aggregate

import (
	"sort"

	"github.com/Veraticus/sharebook/internal/model"
	"github.com/shopspring/decimal"
)

// Uncategorized is the bucket for expenses recorded without a category.
const Uncategorized = "uncategorized"

// DefaultTopN is used by TopN when no positive limit is given.
const DefaultTopN = 5

var thousand = decimal.NewFromInt(1000)

// CategoryTotal is the expense total of one category and its share of all expenses.
type CategoryTotal struct {
	Total      decimal.Decimal // rounded to two decimals
	Percentage decimal.Decimal // one decimal
	Category   string
}

// GroupByCategory totals expense transactions per category, in the order each category
// is first seen. Income transactions are ignored.
func GroupByCategory(txns []model.Transaction) []CategoryTotal {
	var order []string
	sums := make(map[string]decimal.Decimal)
	grand := decimal.Zero

	for _, txn := range txns {
		if txn.Type != model.TransactionExpense {
			continue
		}
		key := txn.Category
		if key == "" {
			key = Uncategorized
		}
		sum, seen := sums[key]
		if !seen {
			order = append(order, key)
			sum = decimal.Zero
		}
		sums[key] = sum.Add(txn.Amount)
		grand = grand.Add(txn.Amount)
	}

	groups := make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		groups = append(groups, CategoryTotal{
			Category:   key,
			Total:      Round(sums[key]),
			Percentage: percentOf(sums[key], grand),
		})
	}
	return groups
}

// percentOf returns part/whole as a percentage with one decimal, zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(thousand).Round(0).Div(decimal.NewFromInt(10))
}

// SortByTotal returns a copy of groups ordered by descending total. Ties keep their
// input order.
func SortByTotal(groups []CategoryTotal) []CategoryTotal {
	sorted := make([]CategoryTotal, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.GreaterThan(sorted[j].Total)
	})
	return sorted
}

// TopN returns at most n groups with the largest totals.
func TopN(groups []CategoryTotal, n int) []CategoryTotal {
	if n <= 0 {
		n = DefaultTopN
	}
	sorted := SortByTotal(groups)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
