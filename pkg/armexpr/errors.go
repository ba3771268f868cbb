package armexpr

import "errors"

// Base errors for the ARM language expression evaluator.
var (
	// ErrSyntax indicates an expression string could not be parsed as a
	// call tree.
	ErrSyntax = errors.New("arm expression syntax error")
	// ErrUnknownFunction indicates a function name resolved to neither a
	// built-in meta-function nor an entry in the injected FunctionLibrary.
	ErrUnknownFunction = errors.New("unknown arm function")
	// ErrUnknownParameter indicates parameters(name) named a parameter
	// with no bound value.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrUnknownVariable indicates variables(name) named an undeclared
	// variable.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrUnknownReference indicates reference(name) named a resource this
	// evaluator has no record of.
	ErrUnknownReference = errors.New("unknown reference target")
	// ErrNotIndexable indicates a property or index accessor was applied
	// to a value that is not an object or array.
	ErrNotIndexable = errors.New("value is not indexable")
	// ErrSelfReference indicates an expression recursively referenced
	// itself while being evaluated, which is never permitted.
	ErrSelfReference = errors.New("self-referential arm expression")
)

// NotParsed is the sentinel substituted for a leg of a template that failed
// to evaluate in Lenient mode.
const NotParsed = "NOT_PARSED"
