// Package validation holds the business rules checked before any record is written.
// Every function is pure: callers pass in the snapshot of existing records they read.
package validation

import (
	"regexp"
	"strings"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Required fails when value is empty after trimming.
func Required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return common.NewValidationError("%s is required", field)
	}
	return nil
}

// Amount fails unless amount is strictly positive.
func Amount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.NewValidationError("amount must be greater than zero")
	}
	return nil
}

// Email checks the local@domain.tld shape of a trimmed address.
func Email(value string) error {
	if !emailRegex.MatchString(strings.TrimSpace(value)) {
		return common.NewValidationError("invalid email address %q", value)
	}
	return nil
}

// ShareholderPercentage checks candidate against the percentages already held by the
// active shareholders, ignoring excludeID (the record being edited).
func ShareholderPercentage(candidate decimal.Decimal, shareholders []model.Shareholder, excludeID string) error {
	if !candidate.IsPositive() || candidate.GreaterThan(hundred) {
		return common.NewValidationError("share percentage must be greater than 0 and at most 100")
	}

	current := AllocatedPercentage(shareholders, excludeID)
	if current.Add(candidate).GreaterThan(hundred) {
		return common.NewValidationError(
			"total share percentage cannot exceed 100%%: current total %s%% and remaining %s%%",
			current.Round(2).String(),
			hundred.Sub(current).Round(2).String(),
		)
	}
	return nil
}

// AllocatedPercentage sums the share percentage of active shareholders other than excludeID.
func AllocatedPercentage(shareholders []model.Shareholder, excludeID string) decimal.Decimal {
	total := decimal.Zero
	for _, sh := range shareholders {
		if !sh.IsActive || (excludeID != "" && sh.ID == excludeID) {
			continue
		}
		total = total.Add(sh.SharePercentage)
	}
	return total
}

// Transaction checks the fields of an income or expense entry. An expense must name
// one of activeCategoryNames exactly; an income must not carry a category.
func Transaction(txnType model.TransactionType, amount decimal.Decimal, description, category string, activeCategoryNames []string) error {
	if !txnType.Valid() {
		return common.NewValidationError("unknown transaction type %q", txnType)
	}
	if err := Amount(amount); err != nil {
		return err
	}
	if err := Required(description, "description"); err != nil {
		return err
	}

	switch txnType {
	case model.TransactionExpense:
		return ExpenseCategory(category, activeCategoryNames)
	case model.TransactionIncome:
		if category != "" {
			return common.NewValidationError("income transactions cannot have a category")
		}
	}
	return nil
}

// ExpenseCategory checks that category is present and names an active category.
func ExpenseCategory(category string, activeCategoryNames []string) error {
	if category == "" {
		return common.NewValidationError("expense transactions require a category")
	}
	for _, name := range activeCategoryNames {
		if name == category {
			return nil
		}
	}
	return common.NewValidationError("category %q does not exist or is not active", category)
}

// Disbursement checks a payout amount and that it targets an active shareholder.
func Disbursement(amount decimal.Decimal, shareholder *model.Shareholder) error {
	if err := Amount(amount); err != nil {
		return err
	}
	if shareholder == nil || !shareholder.IsActive {
		return common.NewValidationError("shareholder does not exist or is not active")
	}
	return nil
}

// CategoryName checks a category name for emptiness and for a case-insensitive
// clash with another active category.
func CategoryName(name string, existing []model.ExpenseCategory, excludeID string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return common.NewValidationError("category name is required")
	}

	for _, cat := range existing {
		if !cat.IsActive || (excludeID != "" && cat.ID == excludeID) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(cat.Name), trimmed) {
			return common.NewValidationError("a category named %q already exists", cat.Name)
		}
	}
	return nil
}
