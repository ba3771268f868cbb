// Package rules implements the rule catalog: deserializing the
// DSL grammar into compiled expression.Expr trees, and the
// inclusion/exclusion/severity-override filtering config does after load.
package rules

import "github.com/Azure/template-analyzer-go/pkg/expression"

// RuleDefinition is one compiled rule from the catalog. Severity is
// mutable post-load: filtering may overwrite it via Config.
// SeverityOverrides.
type RuleDefinition struct {
	ID             string
	Description    string
	Recommendation string
	HelpURI        string
	Severity       int
	Evaluation     expression.Expr
}

// Filter names rules to keep by severity or id.
type Filter struct {
	Severity []int    `json:"severity,omitempty" yaml:"severity,omitempty"`
	IDs      []string `json:"ids,omitempty" yaml:"ids,omitempty"`
}

// Config is the optional rule inclusion/exclusion/severity-override
// configuration. Loading it from a file is the CLI's
// job; Apply operates on the already-parsed struct.
type Config struct {
	Inclusions        *Filter        `json:"inclusions,omitempty" yaml:"inclusions,omitempty"`
	Exclusions        *Filter        `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	SeverityOverrides map[string]int `json:"severityOverrides,omitempty" yaml:"severityOverrides,omitempty"`
}
