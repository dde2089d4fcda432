package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/sharebook/internal/model"
	"github.com/shopspring/decimal"
)

const monthKeyLayout = "2006-01"

// MonthTotals holds the unrounded income and expense totals of one calendar month.
type MonthTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	MonthKey string
}

// MonthKey returns the "YYYY-MM" key of t in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(monthKeyLayout)
}

// MonthLabel renders a month key for display, e.g. "2025-03" becomes "March 2025".
func MonthLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", t.Month(), t.Year())
}

// GroupByMonth buckets transactions by calendar month in loc and returns the months in
// ascending order. Every month between the earliest and latest bucket is present, with
// zero totals where nothing was recorded. A nil loc means time.Local.
func GroupByMonth(txns []model.Transaction, loc *time.Location) []MonthTotals {
	if len(txns) == 0 {
		return nil
	}

	buckets := make(map[string]*MonthTotals)
	for _, txn := range txns {
		key := MonthKey(txn.Date, loc)
		b, ok := buckets[key]
		if !ok {
			b = &MonthTotals{MonthKey: key, Income: decimal.Zero, Expenses: decimal.Zero}
			buckets[key] = b
		}
		switch txn.Type {
		case model.TransactionIncome:
			b.Income = b.Income.Add(txn.Amount)
		case model.TransactionExpense:
			b.Expenses = b.Expenses.Add(txn.Amount)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	first, err := time.Parse(monthKeyLayout, keys[0])
	if err != nil {
		return nil
	}
	last := keys[len(keys)-1]

	months := make([]MonthTotals, 0, len(keys))
	for m := first; ; m = m.AddDate(0, 1, 0) {
		key := m.Format(monthKeyLayout)
		if b, ok := buckets[key]; ok {
			months = append(months, *b)
		} else {
			months = append(months, MonthTotals{MonthKey: key, Income: decimal.Zero, Expenses: decimal.Zero})
		}
		if key == last {
			break
		}
	}
	return months
}
