// Package armexpr evaluates ARM template language expressions: strings of
// the form "[func(arg, ...)]" embedded in resource properties, parameters,
// and outputs. The raw ARM function library itself (string/array/numeric
// helpers like concat, union, resourceId) is a host concern injected via
// FunctionLibrary; this package owns only the call-tree grammar and the
// handful of meta-functions that need direct scope access.
package armexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// EvaluationMode controls how an evaluation failure is reported.
type EvaluationMode int

const (
	// Lenient substitutes NotParsed for any sub-expression that fails to
	// evaluate, rather than failing the whole document.
	Lenient EvaluationMode = iota
	// Strict propagates the first evaluation error encountered.
	Strict
)

// FunctionLibrary resolves ARM functions that are not meta-functions
// (parameters, variables, reference, copyIndex, if). A host supplies the
// full standard ARM function set through this interface.
type FunctionLibrary interface {
	Call(name string, args []interface{}) (interface{}, error)
}

// Scopes exposes the lookups a single expression evaluation needs. Reference
// and CopyIndex are functions rather than maps because their results depend
// on evaluation-time context (which resource is being expanded, which copy
// iteration).
type Scopes struct {
	Parameters map[string]interface{}
	Variables  map[string]interface{}
	Reference  func(resourceName string) (interface{}, error)
	CopyIndex  func(loopName string) (int, error)
}

// Evaluate parses and evaluates a single ARM expression string. If expr is
// not bracket-syntax, it is returned unchanged as a literal; the "[["
// literal-escape form is returned as a literal with one leading bracket
// stripped. lib may be nil if the expression only needs meta-functions.
func Evaluate(expr string, scopes Scopes, lib FunctionLibrary, mode EvaluationMode) (interface{}, error) {
	inner, isExpr, literal := splitBracketExpr(expr)
	if !isExpr {
		return literal, nil
	}

	p, err := newParser(inner)
	if err != nil {
		return lenientResult(mode, err)
	}
	node, err := p.parseExpr()
	if err != nil {
		return lenientResult(mode, err)
	}
	if p.curTok.typ != tokEOF {
		return lenientResult(mode, newSyntaxErrorf("unexpected trailing input after expression"))
	}

	val, err := evalNode(node, scopes, lib)
	if err != nil {
		return lenientResult(mode, err)
	}
	return val, nil
}

func lenientResult(mode EvaluationMode, err error) (interface{}, error) {
	if mode == Strict {
		return nil, err
	}
	return NotParsed, nil
}

// splitBracketExpr reports whether s is ARM bracket-expression syntax. A
// leading "[[" is the literal escape: the result is the string with one
// leading bracket stripped, and isExpr is false. A single leading "[" with a
// matching trailing "]" is an expression to evaluate. Anything else passes
// through unchanged.
func splitBracketExpr(s string) (inner string, isExpr bool, literal string) {
	if strings.HasPrefix(s, "[[") {
		return "", false, s[1:]
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		return s[1 : len(s)-1], true, ""
	}
	return "", false, s
}

// EvaluateTree walks doc recursively, evaluating every string value that
// looks like a bracket expression and leaving every other value unchanged.
// Errors are swallowed per the supplied mode: in Lenient mode a failing leaf
// becomes NotParsed and the walk continues.
func EvaluateTree(doc interface{}, scopes Scopes, lib FunctionLibrary, mode EvaluationMode) (interface{}, error) {
	switch v := doc.(type) {
	case string:
		return Evaluate(v, scopes, lib, mode)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			evaluated, err := EvaluateTree(child, scopes, lib, mode)
			if err != nil {
				return nil, err
			}
			out[k] = evaluated
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			evaluated, err := EvaluateTree(child, scopes, lib, mode)
			if err != nil {
				return nil, err
			}
			out[i] = evaluated
		}
		return out, nil
	default:
		return v, nil
	}
}

func evalNode(n astNode, scopes Scopes, lib FunctionLibrary) (interface{}, error) {
	switch n.Kind {
	case astLiteralString:
		return n.Literal, nil
	case astLiteralNumber:
		f, err := strconv.ParseFloat(n.Literal, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number literal %q", ErrSyntax, n.Literal)
		}
		return f, nil
	case astCall:
		return evalCall(n, scopes, lib)
	case astFieldAccess:
		target, err := evalNode(*n.Target, scopes, lib)
		if err != nil {
			return nil, err
		}
		return accessField(target, n.Field)
	case astIndexAccess:
		target, err := evalNode(*n.Target, scopes, lib)
		if err != nil {
			return nil, err
		}
		idx, err := evalNode(*n.Index, scopes, lib)
		if err != nil {
			return nil, err
		}
		return accessIndex(target, idx)
	default:
		return nil, fmt.Errorf("%w: unknown ast kind %d", ErrSyntax, n.Kind)
	}
}

func evalCall(n astNode, scopes Scopes, lib FunctionLibrary) (interface{}, error) {
	args := make([]interface{}, len(n.Args))
	for i, a := range n.Args {
		v, err := evalNode(a, scopes, lib)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch strings.ToLower(n.FuncName) {
	case "parameters":
		name, err := argString(args, 0, "parameters")
		if err != nil {
			return nil, err
		}
		val, ok := scopes.Parameters[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		return val, nil
	case "variables":
		name, err := argString(args, 0, "variables")
		if err != nil {
			return nil, err
		}
		val, ok := scopes.Variables[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		return val, nil
	case "reference":
		name, err := argString(args, 0, "reference")
		if err != nil {
			return nil, err
		}
		if scopes.Reference == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReference, name)
		}
		return scopes.Reference(name)
	case "copyindex":
		loopName := ""
		if len(args) > 0 {
			s, err := argString(args, 0, "copyIndex")
			if err != nil {
				return nil, err
			}
			loopName = s
		}
		if scopes.CopyIndex == nil {
			return nil, fmt.Errorf("%w: copyIndex unavailable in this scope", ErrUnknownFunction)
		}
		return scopes.CopyIndex(loopName)
	case "if":
		if len(args) != 3 {
			return nil, fmt.Errorf("%w: if() requires 3 arguments, got %d", ErrSyntax, len(args))
		}
		cond, ok := args[0].(bool)
		if !ok {
			return nil, fmt.Errorf("%w: if() condition must be boolean", ErrSyntax)
		}
		if cond {
			return args[1], nil
		}
		return args[2], nil
	default:
		if lib == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, n.FuncName)
		}
		return lib.Call(n.FuncName, args)
	}
}

func argString(args []interface{}, i int, fn string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: %s() missing argument %d", ErrSyntax, fn, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s() argument %d must be a string", ErrSyntax, fn, i)
	}
	return s, nil
}

func accessField(target interface{}, field string) (interface{}, error) {
	obj, ok := target.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: cannot access field %q", ErrNotIndexable, field)
	}
	for k, v := range obj {
		if strings.EqualFold(k, field) {
			return v, nil
		}
	}
	return nil, nil
}

func accessIndex(target interface{}, idx interface{}) (interface{}, error) {
	arr, ok := target.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: cannot index non-array value", ErrNotIndexable)
	}
	f, ok := idx.(float64)
	if !ok {
		return nil, fmt.Errorf("%w: index must be numeric", ErrSyntax)
	}
	i := int(f)
	if i < 0 || i >= len(arr) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrNotIndexable, i)
	}
	return arr[i], nil
}
