// Package fixtures seeds ledger test databases with categories and shareholders.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t, fixtures.NewBuilder(t).
//		WithBasicCategories().
//		WithShareholder("Ali", "60").
//		Build)
package fixtures
