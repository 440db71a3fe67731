package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules lists the candidate patterns for each field, tried in order.
// Every pattern must capture exactly one group holding the number.
type Rules struct {
	Hours    []string `yaml:"hours"`
	Earned   []string `yaml:"earned"`
	Received []string `yaml:"received"`
}

// DefaultRules returns the patterns used for monthly cleaning invoices.
func DefaultRules() Rules {
	return Rules{
		Hours: []string{
			`total.*?hours.*?(\d+\.?\d*)`,
			`hours.*?worked.*?(\d+\.?\d*)`,
			`(\d+\.?\d*).*?hours`,
			`hours.*?(\d+\.?\d*)`,
		},
		Earned: []string{
			`total.*?amount.*?\$?(\d+,?\d*\.?\d*)`,
			`earned.*?\$?(\d+,?\d*\.?\d*)`,
			`amount.*?earned.*?\$?(\d+,?\d*\.?\d*)`,
			`\$(\d+,?\d*\.?\d*)`,
		},
		Received: []string{
			`received.*?\$?(\d+,?\d*\.?\d*)`,
			`payment.*?\$?(\d+,?\d*\.?\d*)`,
			`paid.*?\$?(\d+,?\d*\.?\d*)`,
		},
	}
}

// LoadRules reads a YAML rule file. Fields left empty keep the defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	rules := DefaultRules()
	if len(loaded.Hours) > 0 {
		rules.Hours = loaded.Hours
	}
	if len(loaded.Earned) > 0 {
		rules.Earned = loaded.Earned
	}
	if len(loaded.Received) > 0 {
		rules.Received = loaded.Received
	}
	return rules, nil
}
