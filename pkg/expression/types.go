// Package expression implements the rule evaluation tree: a
// closed sum type of Leaf, AllOf, AnyOf, Not, and Scoped nodes, dispatched
// by an explicit Kind tag rather than by Go interface polymorphism — per
// the design note that a closed set of variants should be matched
// exhaustively, not handled through subtype dispatch.
package expression

import "github.com/Azure/template-analyzer-go/pkg/operators"

// Kind discriminates the variant an Expr holds.
type Kind string

const (
	KindLeaf   Kind = "leaf"
	KindAllOf  Kind = "allOf"
	KindAnyOf  Kind = "anyOf"
	KindNot    Kind = "not"
	KindScoped Kind = "scoped"
)

// Expr is a single node of a parsed rule expression tree. Only the fields
// relevant to Kind are populated.
type Expr struct {
	Kind Kind

	// Leaf fields.
	Path     string
	Operator operators.Name
	Operand  interface{}

	// AllOf / AnyOf fields.
	Children []Expr

	// Not fields.
	Child *Expr

	// Scoped fields. ResourceType is empty to mean "stay in current scope".
	ResourceType string
	Where        *Expr
	Body         *Expr
}

// Result carries the concrete location of a single failing leaf
// evaluation, with a line number filled in later by the line resolver.
type Result struct {
	Path       string
	LineNumber int
}

// Evaluation is the outcome of evaluating an Expr (or a whole rule) against
// one resource. Result is populated for leaf-level failures; SubEvaluations
// holds the evaluations of child nodes for diagnostic drill-down.
type Evaluation struct {
	Passed         bool
	Result         *Result
	SubEvaluations []Evaluation
}

// ResourceRef is one flattened resource as seen by the evaluator: its
// absolute path in the expanded template, and its JSON content.
type ResourceRef struct {
	Path     string
	Resource map[string]interface{}
}

// TemplateView is the read-only surface the expression tree needs from the
// expanded template in order to perform a scope shift: enumerate every
// resource of a given type, in flattened discovery order.
type TemplateView interface {
	ResourcesOfType(resourceType string) []ResourceRef
}
