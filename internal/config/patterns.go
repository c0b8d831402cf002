package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"cents/internal/receipt"
)

// merchantPatternsFile is the YAML shape of the operator-supplied pattern
// file referenced by CENTS_MERCHANT_PATTERNS_FILE:
//
//	patterns:
//	  - pattern: '(?i)\bmom\s*&\s*pop\b'
//	    name: Mom & Pop
//	    priority: 100
type merchantPatternsFile struct {
	Patterns []struct {
		Pattern  string `yaml:"pattern"`
		Name     string `yaml:"name"`
		Priority int    `yaml:"priority"`
	} `yaml:"patterns"`
}

// LoadMerchantPatterns reads extra merchant patterns from a YAML file. They
// extend the parser's built-in retailer table and compete on priority.
func LoadMerchantPatterns(path string) ([]receipt.MerchantPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read merchant patterns file: %w", err)
	}

	var file merchantPatternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse merchant patterns file: %w", err)
	}

	patterns := make([]receipt.MerchantPattern, 0, len(file.Patterns))
	for i, p := range file.Patterns {
		if p.Name == "" {
			return nil, fmt.Errorf("merchant pattern %d: name is required", i)
		}
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("merchant pattern %d (%s): %w", i, p.Name, err)
		}
		patterns = append(patterns, receipt.MerchantPattern{
			Pattern:       re,
			CanonicalName: p.Name,
			Priority:      p.Priority,
		})
	}
	return patterns, nil
}
