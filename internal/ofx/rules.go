package ofx

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/Veraticus/sharebook/internal/model"
	"gopkg.in/yaml.v3"
)

// Rule assigns Category to debits whose payee name contains Match.
type Rule struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

// Rules is the import rules file:
//
//	default_category: Miscellaneous
//	rules:
//	  - match: "electric"
//	    category: Utilities
type Rules struct {
	DefaultCategory string `yaml:"default_category"`
	Rules           []Rule `yaml:"rules"`
}

// LoadRules reads a rules file. An empty path yields an empty rule set.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return &Rules{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	return ParseRules(data)
}

// ParseRules decodes rules from YAML.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	for i, r := range rules.Rules {
		if strings.TrimSpace(r.Match) == "" || strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d: match and category are required", i+1)
		}
	}
	rules.DefaultCategory = strings.TrimSpace(rules.DefaultCategory)

	return &rules, nil
}

// CategoryFor returns the category of the first rule matching name, case-insensitively,
// or the default category.
func (r *Rules) CategoryFor(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range r.Rules {
		if strings.Contains(lower, strings.ToLower(strings.TrimSpace(rule.Match))) {
			return strings.TrimSpace(rule.Category)
		}
	}
	return r.DefaultCategory
}

// Inputs converts entries to transaction inputs. Only expenses get a category;
// an expense nothing matched keeps an empty one and fails validation on import.
func (r *Rules) Inputs(entries []Entry) []ledger.TransactionInput {
	inputs := make([]ledger.TransactionInput, 0, len(entries))
	for _, e := range entries {
		in := ledger.TransactionInput{
			Date:        e.Date,
			Amount:      e.Amount,
			Type:        e.Type,
			Description: e.Name,
			Notes:       entryNotes(e),
		}
		if e.Type == model.TransactionExpense {
			in.Category = r.CategoryFor(e.Name)
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func entryNotes(e Entry) string {
	parts := []string{"OFX " + e.FITID}
	if e.CheckNumber != "" {
		parts = append(parts, "check "+e.CheckNumber)
	}
	if e.Memo != "" && !strings.EqualFold(e.Memo, e.Name) {
		parts = append(parts, e.Memo)
	}
	return strings.Join(parts, "; ")
}
