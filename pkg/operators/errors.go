package operators

import "errors"

// Base errors for operator lookup and construction.
var (
	// ErrUnknownOperator indicates a rule leaf named an operator this
	// engine does not implement.
	ErrUnknownOperator = errors.New("unknown leaf operator")
	// ErrInvalidOperand indicates an operand's shape does not match what
	// the named operator requires (e.g. a non-array operand to `in`).
	ErrInvalidOperand = errors.New("invalid operand for operator")
)
