// Package logging holds the structured log key constants and the
// process-wide zap logger used across the analyzer pipeline.
package logging

// Log keys. Pass these as zap.String/zap.Int fields so that every
// pipeline stage logs the same vocabulary.
const (
	Process             = "process"
	Details             = "details"
	EventType           = "event_type"
	TemplateIdentifier  = "template_identifier"
	RuleID              = "rule_id"
	RuleSeverity        = "rule_severity"
	ResourceType        = "resource_type"
	ResourcePath        = "resource_path"
	OriginalPath        = "original_path"
	OriginalName        = "original_name"
	ExpandedPath        = "expanded_path"
	ParameterName       = "parameter_name"
	EvaluationPassed    = "evaluation_passed"
	DebugLevel          = 2
)
