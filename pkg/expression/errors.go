package expression

import "errors"

// Base errors for building and evaluating expression trees.
var (
	// ErrEmptyScopeBody indicates a ScopedExpression with no body, which
	// violates the invariant that a scope's body is non-empty.
	ErrEmptyScopeBody = errors.New("scoped expression body must not be empty")
	// ErrUnknownKind indicates an Expr was built (or deserialized) with a
	// Kind outside the closed variant set.
	ErrUnknownKind = errors.New("unknown expression kind")
)
