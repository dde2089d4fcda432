package model

import "github.com/shopspring/decimal"

// Metrics is the headline summary for a date range.
type Metrics struct {
	TotalIncome     decimal.Decimal
	TotalExpenses   decimal.Decimal
	NetProfit       decimal.Decimal
	AvailableProfit decimal.Decimal
	ProfitMargin    decimal.Decimal // percent, two decimals
}

// ProfitSummary extends the metrics with the disbursed total.
type ProfitSummary struct {
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	NetProfit          decimal.Decimal
	TotalDisbursements decimal.Decimal
	AvailableProfit    decimal.Decimal
}

// MonthlyTrendPoint is one month of the income/expense trend.
type MonthlyTrendPoint struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Profit   decimal.Decimal
	Month    string // display label, e.g. "March 2025"
	MonthKey string // "2025-03"
}

// CategoryBreakdown is the expense total of one category.
type CategoryBreakdown struct {
	Total      decimal.Decimal
	Percentage decimal.Decimal // of all expenses, one decimal
	Category   string
}

// ShareholderShare is a shareholder's entitlement over a range.
type ShareholderShare struct {
	SharePercentage decimal.Decimal
	ShareAmount     decimal.Decimal
	Disbursed       decimal.Decimal
	Remaining       decimal.Decimal
	ShareholderID   string
	ShareholderName string
}
