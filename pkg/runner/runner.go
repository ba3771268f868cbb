// Package runner drives every rule in a catalog against a template's
// expanded resources and collects the resulting Findings.
package runner

import (
	"fmt"

	"github.com/Azure/template-analyzer-go/pkg/expression"
	"github.com/Azure/template-analyzer-go/pkg/rules"
)

// Finding is one emitted Evaluation, tagged with the rule and template it
// came from.
type Finding struct {
	RuleID         string
	Description    string
	Severity       int
	Passed         bool
	FileIdentifier string
	Result         *expression.Result
	SubEvaluations []expression.Evaluation
}

// Analyze runs every rule in catalog against root (the whole expanded
// template), in (rule_index, resource_discovery_order) order, and returns
// the Findings each rule produced. A rule with a resourceType absent from
// the template yields no Findings.
func Analyze(catalog []rules.RuleDefinition, view expression.TemplateView, root map[string]interface{}, fileIdentifier string) ([]Finding, error) {
	var findings []Finding
	for _, rule := range catalog {
		evals, err := expression.Evaluate(rule.Evaluation, view, root, "")
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.ID, err)
		}
		for _, e := range evals {
			findings = append(findings, Finding{
				RuleID:         rule.ID,
				Description:    rule.Description,
				Severity:       rule.Severity,
				Passed:         e.Passed,
				FileIdentifier: fileIdentifier,
				Result:         e.Result,
				SubEvaluations: e.SubEvaluations,
			})
		}
	}
	return findings, nil
}
