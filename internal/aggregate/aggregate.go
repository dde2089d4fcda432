// Package aggregate reduces transaction and disbursement records into money totals.
// Sums are kept exact and rounded to two decimals (half away from zero) only for output.
package aggregate

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amounter is implemented by records that carry a monetary amount.
type Amounter interface {
	AmountValue() decimal.Decimal
}

// Round rounds a money value to two decimals, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SumAmount adds up the amounts of records without rounding.
func SumAmount[T Amounter](records []T) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.AmountValue())
	}
	return total
}

// ProfitMargin returns net profit as a percentage of income, two decimals.
// It is zero when there is no income.
func ProfitMargin(income, expenses decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	net := income.Sub(expenses)
	return net.Div(income).Mul(hundred).Round(2)
}

// ShareAmount applies a percentage to net profit, two decimals.
func ShareAmount(netProfit, percentage decimal.Decimal) decimal.Decimal {
	return netProfit.Mul(percentage).Div(hundred).Round(2)
}
