package template

import (
	"fmt"

	"github.com/Azure/template-analyzer-go/pkg/armexpr"
)

// evaluateLanguageExpressions evaluates language expressions recursively
// on every resource's properties (and, by the same walk, every other field
// carried on Content). Reference crosses resources by name; names are
// evaluated in an initial pass so reference(name) can resolve against the
// final, copy-disambiguated name before properties are touched.
func evaluateLanguageExpressions(nodes []*resourceNode, variables map[string]interface{}, parameters map[string]interface{}, lib armexpr.FunctionLibrary, mode armexpr.EvaluationMode) error {
	all := flattenForEval(nodes)

	for _, n := range all {
		scopes := scopesFor(n, parameters, variables, nil)
		evaluatedName, err := armexpr.Evaluate(fmt.Sprint(n.Content["name"]), scopes, lib, mode)
		if err != nil {
			return err
		}
		n.Content["name"] = evaluatedName
	}

	byName := make(map[string]*resourceNode, len(all))
	for _, n := range all {
		if name, ok := n.Content["name"].(string); ok {
			if _, exists := byName[name]; !exists {
				byName[name] = n
			}
		}
	}
	reference := func(name string) (interface{}, error) {
		target, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", armexpr.ErrUnknownReference, name)
		}
		return target.Content["properties"], nil
	}

	for _, n := range all {
		scopes := scopesFor(n, parameters, variables, reference)
		evaluated, err := evalWithPropertyCopies(n.Content, scopes, lib, mode)
		if err != nil {
			return err
		}
		n.Content = evaluated.(map[string]interface{})
	}
	return nil
}

// evalWithPropertyCopies walks doc like armexpr.EvaluateTree, but also
// expands ARM property copy loops: an object whose "copy" key holds an
// array of {name, count, input} descriptors gets, for each descriptor, a
// <name> key bound to count evaluations of input, with copyIndex(name)
// resolving to the iteration ordinal. A "copy" array itself never survives
// into the evaluated document; a "copy" key holding anything other than an
// array is evaluated and kept like any other field.
func evalWithPropertyCopies(doc interface{}, scopes armexpr.Scopes, lib armexpr.FunctionLibrary, mode armexpr.EvaluationMode) (interface{}, error) {
	switch v := doc.(type) {
	case string:
		return armexpr.Evaluate(v, scopes, lib, mode)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			if k == "copy" {
				if entries, ok := child.([]interface{}); ok {
					if err := expandPropertyCopies(out, entries, scopes, lib, mode); err != nil {
						return nil, err
					}
					continue
				}
			}
			evaluated, err := evalWithPropertyCopies(child, scopes, lib, mode)
			if err != nil {
				return nil, err
			}
			out[k] = evaluated
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			evaluated, err := evalWithPropertyCopies(child, scopes, lib, mode)
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

func expandPropertyCopies(out map[string]interface{}, entries []interface{}, scopes armexpr.Scopes, lib armexpr.FunctionLibrary, mode armexpr.EvaluationMode) error {
	for _, entryRaw := range entries {
		entry, ok := entryRaw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if name == "" {
			continue
		}
		count, err := evaluateCopyCount(entry["count"], scopes, lib, mode)
		if err != nil {
			if mode == armexpr.Strict {
				return err
			}
			out[name] = armexpr.NotParsed
			continue
		}

		items := make([]interface{}, count)
		for i := 0; i < count; i++ {
			iterScopes := scopes
			iterScopes.CopyIndex = propertyCopyIndex(name, i, scopes.CopyIndex)
			items[i], err = evalWithPropertyCopies(deepCopyJSON(entry["input"]), iterScopes, lib, mode)
			if err != nil {
				return err
			}
		}
		out[name] = items
	}
	return nil
}

// propertyCopyIndex layers one property loop over an outer copyIndex
// lookup: a bare copyIndex() or copyIndex(name) resolves to this loop's
// ordinal, anything else falls through to the enclosing resource loops.
func propertyCopyIndex(name string, ordinal int, outer func(string) (int, error)) func(string) (int, error) {
	return func(loopName string) (int, error) {
		if loopName == "" || loopName == name {
			return ordinal, nil
		}
		if outer == nil {
			return 0, fmt.Errorf("copyIndex(%q): no enclosing copy loop with that name", loopName)
		}
		return outer(loopName)
	}
}

func scopesFor(n *resourceNode, parameters, variables map[string]interface{}, reference func(string) (interface{}, error)) armexpr.Scopes {
	return armexpr.Scopes{
		Parameters: parameters,
		Variables:  variables,
		Reference:  reference,
		CopyIndex:  copyIndexLookup(n),
	}
}

// copyIndexLookup returns the copyIndex(name) implementation for a single
// node: with no argument it resolves to the innermost enclosing copy loop;
// with an argument it searches the node's copy ancestry outward.
func copyIndexLookup(n *resourceNode) func(string) (int, error) {
	return func(loopName string) (int, error) {
		if len(n.copyAncestry) == 0 {
			return 0, fmt.Errorf("copyIndex() used outside of any copy loop")
		}
		if loopName == "" {
			return n.copyAncestry[len(n.copyAncestry)-1].ordinal, nil
		}
		for i := len(n.copyAncestry) - 1; i >= 0; i-- {
			if n.copyAncestry[i].loopName == loopName {
				return n.copyAncestry[i].ordinal, nil
			}
		}
		return 0, fmt.Errorf("copyIndex(%q): no enclosing copy loop with that name", loopName)
	}
}

func flattenForEval(nodes []*resourceNode) []*resourceNode {
	var out []*resourceNode
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, flattenForEval(n.Children)...)
	}
	return out
}
