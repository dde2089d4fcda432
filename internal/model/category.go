package model

import "time"

// ExpenseCategory is a named bucket that expense transactions reference by name.
// Categories are never hard-deleted; deactivation hides them from new entries.
type ExpenseCategory struct {
	CreatedAt   time.Time
	ID          string
	Name        string
	Description string
	IsActive    bool
}
