package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AccountSplit routes a percentage of a balancing amount to one account.
// Percentages within one pattern must sum to 100.
type AccountSplit struct {
	Account    string  `yaml:"account"`
	Percentage float64 `yaml:"percentage"`
}

// Pattern maps a description match to a destination account, optionally
// split across several accounts. Patterns are evaluated in file order;
// the first match wins.
type Pattern struct {
	Match   string         `yaml:"match"`
	Regex   bool           `yaml:"regex"`
	Account string         `yaml:"account"`
	Splits  []AccountSplit `yaml:"splits"`
}

// Rules is the on-disk classification rule set.
type Rules struct {
	Patterns []Pattern `yaml:"patterns"`
}

// LoadRules reads a YAML rules file. An empty pattern list is valid; the
// importer's default account then takes every transaction.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return &r, nil
}
