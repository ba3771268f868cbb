package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type rawRule struct {
	ID             string                 `json:"id" yaml:"id"`
	Description    string                 `json:"description" yaml:"description"`
	Recommendation string                 `json:"recommendation" yaml:"recommendation"`
	HelpURI        string                 `json:"helpUri" yaml:"helpUri"`
	Severity       int                    `json:"severity" yaml:"severity"`
	Evaluation     map[string]interface{} `json:"evaluation" yaml:"evaluation"`
}

// Load parses a JSON array of RuleDefinition objects and eagerly compiles
// each rule's evaluation into an expression tree. A parse failure of any
// single rule aborts the whole catalog load, naming the offending rule id.
func Load(data []byte) ([]RuleDefinition, error) {
	var raws []rawRule
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogParse, err)
	}
	return compileCatalog(raws)
}

// LoadYAML is the convenience YAML counterpart to Load, for rule catalogs
// authored as YAML.
func LoadYAML(data []byte) ([]RuleDefinition, error) {
	var raws []rawRule
	if err := yaml.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogParse, err)
	}
	return compileCatalog(raws)
}

func compileCatalog(raws []rawRule) ([]RuleDefinition, error) {
	seen := make(map[string]bool, len(raws))
	defs := make([]RuleDefinition, 0, len(raws))

	for _, r := range raws {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate rule id %q", ErrCatalogParse, r.ID)
		}
		seen[r.ID] = true

		if r.Severity < 1 || r.Severity > 4 {
			return nil, fmt.Errorf("%w: rule %q has invalid severity %d, must be 1..4", ErrCatalogParse, r.ID, r.Severity)
		}

		expr, err := CompileRule(r.Evaluation)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %q: %v", ErrCatalogParse, r.ID, err)
		}

		defs = append(defs, RuleDefinition{
			ID:             r.ID,
			Description:    r.Description,
			Recommendation: r.Recommendation,
			HelpURI:        r.HelpURI,
			Severity:       r.Severity,
			Evaluation:     expr,
		})
	}
	return defs, nil
}

// Apply runs the inclusion/exclusion filter and then the severity
// overrides, in that order: overrides apply to survivors only. Re-applying
// the same Config to its own output returns an identical catalog, except
// when a filter selects by severity and an override changed a surviving
// rule's severity: the second pass matches the overridden severity, not the
// original one.
func Apply(catalog []RuleDefinition, cfg Config) ([]RuleDefinition, error) {
	if cfg.Inclusions != nil && cfg.Exclusions != nil {
		return nil, ErrMutuallyExclusiveFilters
	}

	filtered := make([]RuleDefinition, 0, len(catalog))
	for _, r := range catalog {
		switch {
		case cfg.Inclusions != nil:
			if matchesFilter(r, cfg.Inclusions) {
				filtered = append(filtered, r)
			}
		case cfg.Exclusions != nil:
			if !matchesFilter(r, cfg.Exclusions) {
				filtered = append(filtered, r)
			}
		default:
			filtered = append(filtered, r)
		}
	}

	for i := range filtered {
		if sev, ok := cfg.SeverityOverrides[filtered[i].ID]; ok {
			filtered[i].Severity = sev
		}
	}
	return filtered, nil
}

func matchesFilter(r RuleDefinition, f *Filter) bool {
	for _, id := range f.IDs {
		if strings.EqualFold(id, r.ID) {
			return true
		}
	}
	for _, sev := range f.Severity {
		if sev == r.Severity {
			return true
		}
	}
	return false
}
