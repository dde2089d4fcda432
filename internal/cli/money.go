package cli

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in the currency's own notation, e.g. "$1,500.00".
// Unknown currency codes fall back to a plain two-decimal number followed by the code.
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}

	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// FormatSignedMoney colors income green and expenses red.
func FormatSignedMoney(amount decimal.Decimal, currency string, expense bool) string {
	if expense {
		return ExpenseStyle.Render(FormatMoney(amount.Neg(), currency))
	}
	return IncomeStyle.Render(FormatMoney(amount, currency))
}

// FormatPercent renders a percentage with at most two decimals.
func FormatPercent(p decimal.Decimal) string {
	return p.Round(2).String() + "%"
}
