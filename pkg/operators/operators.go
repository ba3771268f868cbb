// Package operators implements the leaf predicates of the rule DSL:
// equals, notEquals, hasValue, exists, in, regex, and the four numeric
// comparisons. Every operator is a pure function of (actual, operand); none
// of them ever see more than the single resolved sub-document a Leaf was
// evaluated against.
package operators

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Azure/template-analyzer-go/pkg/jsonpath"
)

// Name identifies a leaf operator by its JSON key in the rule DSL.
type Name string

const (
	Equals          Name = "equals"
	NotEquals       Name = "notEquals"
	HasValue        Name = "hasValue"
	Exists          Name = "exists"
	In              Name = "in"
	Regex           Name = "regex"
	Greater         Name = "greater"
	GreaterOrEquals Name = "greaterOrEquals"
	Less            Name = "less"
	LessOrEquals    Name = "lessOrEquals"
)

// Func evaluates a single leaf predicate. actual may be jsonpath.Missing.
type Func func(actual, operand interface{}) (bool, error)

var registry = map[Name]Func{
	Equals:          equals,
	NotEquals:       notEquals,
	HasValue:        hasValue,
	Exists:          exists,
	In:              in,
	Regex:           matchRegex,
	Greater:         greater,
	GreaterOrEquals: greaterOrEquals,
	Less:            less,
	LessOrEquals:    lessOrEquals,
}

// Lookup returns the Func registered for name.
func Lookup(name Name) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, name)
	}
	return fn, nil
}

func equals(actual, operand interface{}) (bool, error) {
	if jsonpath.IsMissing(actual) {
		return false, nil
	}
	return deepEqual(actual, operand), nil
}

func notEquals(actual, operand interface{}) (bool, error) {
	eq, err := equals(actual, operand)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func hasValue(actual, operand interface{}) (bool, error) {
	want, ok := operand.(bool)
	if !ok {
		return false, fmt.Errorf("%w: hasValue requires a boolean operand", ErrInvalidOperand)
	}
	present := !jsonpath.IsMissing(actual) && !isEmptyValue(actual)
	return present == want, nil
}

func exists(actual, operand interface{}) (bool, error) {
	want, ok := operand.(bool)
	if !ok {
		return false, fmt.Errorf("%w: exists requires a boolean operand", ErrInvalidOperand)
	}
	return !jsonpath.IsMissing(actual) == want, nil
}

func in(actual, operand interface{}) (bool, error) {
	list, ok := operand.([]interface{})
	if !ok {
		return false, fmt.Errorf("%w: in requires an array operand", ErrInvalidOperand)
	}
	if jsonpath.IsMissing(actual) {
		return false, nil
	}
	for _, candidate := range list {
		if deepEqual(actual, candidate) {
			return true, nil
		}
	}
	return false, nil
}

func matchRegex(actual, operand interface{}) (bool, error) {
	pattern, ok := operand.(string)
	if !ok {
		return false, fmt.Errorf("%w: regex requires a string operand", ErrInvalidOperand)
	}
	if jsonpath.IsMissing(actual) {
		return false, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false, fmt.Errorf("compiling regex %q: %w", pattern, err)
	}
	return re.MatchString(stringify(actual)), nil
}

func greater(actual, operand interface{}) (bool, error) {
	a, b, ok := numericPair(actual, operand)
	return ok && a > b, nil
}

func greaterOrEquals(actual, operand interface{}) (bool, error) {
	a, b, ok := numericPair(actual, operand)
	return ok && a >= b, nil
}

func less(actual, operand interface{}) (bool, error) {
	a, b, ok := numericPair(actual, operand)
	return ok && a < b, nil
}

func lessOrEquals(actual, operand interface{}) (bool, error) {
	a, b, ok := numericPair(actual, operand)
	return ok && a <= b, nil
}

// deepEqual implements the DSL's equality semantics: structural equality
// with case-insensitive string comparison.
func deepEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && strings.EqualFold(av, bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		keys := make([]string, 0, len(av))
		for k := range av {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			bval, present := bv[k]
			if !present || !deepEqual(av[k], bval) {
				return false
			}
		}
		return true
	case float64, int, int64, bool, nil:
		return numericOrLiteralEqual(a, b)
	default:
		return a == b
	}
}

func numericOrLiteralEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

// isEmptyValue treats JSON null, an empty string, an empty array, or an
// empty object as "no value" for hasValue. The Missing sentinel is handled
// by the caller.
func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}

func numericPair(actual, operand interface{}) (float64, float64, bool) {
	if jsonpath.IsMissing(actual) {
		return 0, 0, false
	}
	a, aok := toFloat(actual)
	b, bok := toFloat(operand)
	if !aok || !bok {
		return 0, 0, false
	}
	return a, b, true
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
