package rules

import "errors"

// Base errors for catalog loading and filtering.
var (
	// ErrCatalogParse indicates the rule JSON/YAML was malformed, or one
	// rule's evaluation expression could not be compiled. The returned
	// error always wraps this; when a single rule is at fault it also names
	// that rule's id.
	ErrCatalogParse = errors.New("rule catalog parse error")
	// ErrMutuallyExclusiveFilters indicates a Config specified both
	// Inclusions and Exclusions, which is not permitted.
	ErrMutuallyExclusiveFilters = errors.New("inclusions and exclusions are mutually exclusive")
	// ErrUnrecognizedExpression indicates a DSL node matched none of
	// leaf, allOf, anyOf, or not.
	ErrUnrecognizedExpression = errors.New("unrecognized expression node")
	// ErrUnknownLeafOperator indicates a leaf object named no recognized
	// operator key.
	ErrUnknownLeafOperator = errors.New("leaf object names no recognized operator")
)
