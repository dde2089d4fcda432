package fixtures

// Common category names used across tests.
const (
	CategoryRent       = "Rent"
	CategoryUtilities  = "Utilities"
	CategorySalaries   = "Salaries"
	CategoryMarketing  = "Marketing"
	CategorySupplies   = "Supplies"
	CategoryOperations = "Operations"
)

// Fixture is a predefined set of category names.
type Fixture struct {
	Name       string
	Categories []string
}

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal is enough to record expenses.
	FixtureMinimal = Fixture{
		Name:       "Minimal",
		Categories: []string{CategoryRent},
	}

	// FixtureStandard covers the usual running costs of a small business.
	FixtureStandard = Fixture{
		Name: "Standard",
		Categories: []string{
			CategoryRent,
			CategoryUtilities,
			CategorySalaries,
			CategoryMarketing,
			CategorySupplies,
			CategoryOperations,
		},
	}
)
