// Package jsonpath resolves dot-and-bracket resource paths such as
// resources[0].properties.cors.allowedOrigins[*] against an in-memory JSON
// document tree, walking the document recursively under the guidance of a
// parsed ast.Node chain and fanning out across array globs.
package jsonpath

import (
	"strings"

	"github.com/Azure/template-analyzer-go/pkg/jsonpath/ast"
)

// missingSentinel is a distinct value from JSON null, returned when a
// terminal path segment names a key or index that is not present.
type missingSentinel struct{}

// Missing is the sentinel value yielded when a terminal path segment does
// not exist in the document. It is never equal to nil or to any JSON value.
var Missing interface{} = missingSentinel{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v interface{}) bool {
	_, ok := v.(missingSentinel)
	return ok
}

// Result is one sub-document produced by resolving a path, paired with the
// concrete absolute path (wildcard indices substituted) at which it lives.
type Result struct {
	Value interface{}
	Path  string
}

// Resolve parses path and evaluates it against doc, yielding zero or more
// Results. A missing intermediate key yields the empty sequence; a missing
// terminal key yields exactly one Result whose Value is Missing.
func Resolve(doc interface{}, path string) ([]Result, error) {
	p, err := ast.Parse(path)
	if err != nil {
		return nil, err
	}
	return resolveNodes(doc, p.Nodes, nil), nil
}

func resolveNodes(doc interface{}, nodes []ast.Node, consumed []ast.Node) []Result {
	if len(nodes) == 0 {
		return []Result{{Value: doc, Path: concretePath(consumed)}}
	}

	node, rest := nodes[0], nodes[1:]
	switch n := node.(type) {
	case ast.Field:
		return resolveField(doc, n, rest, consumed)
	case ast.Index:
		return resolveIndex(doc, n, rest, consumed)
	default:
		return nil
	}
}

func resolveField(doc interface{}, n ast.Field, rest []ast.Node, consumed []ast.Node) []Result {
	obj, ok := asObject(doc)
	if !ok {
		return nil
	}

	val, found := lookupCaseInsensitive(obj, n.Name)
	next := appendNode(consumed, n)
	if !found {
		if len(rest) == 0 {
			return []Result{{Value: Missing, Path: concretePath(next)}}
		}
		return nil
	}
	return resolveNodes(val, rest, next)
}

func resolveIndex(doc interface{}, n ast.Index, rest []ast.Node, consumed []ast.Node) []Result {
	arr, ok := doc.([]interface{})
	if !ok {
		return nil
	}

	if n.Glob {
		var results []Result
		for i, elem := range arr {
			next := appendNode(consumed, ast.Index{Value: i})
			results = append(results, resolveNodes(elem, rest, next)...)
		}
		return results
	}

	next := appendNode(consumed, n)
	if n.Value < 0 || n.Value >= len(arr) {
		if len(rest) == 0 {
			return []Result{{Value: Missing, Path: concretePath(next)}}
		}
		return nil
	}
	return resolveNodes(arr[n.Value], rest, next)
}

// appendNode returns consumed+n without mutating consumed's backing array,
// since resolveIndex's glob fan-out calls this once per sibling element.
func appendNode(consumed []ast.Node, n ast.Node) []ast.Node {
	out := make([]ast.Node, len(consumed), len(consumed)+1)
	copy(out, consumed)
	return append(out, n)
}

func concretePath(nodes []ast.Node) string {
	return ast.Path{Nodes: nodes}.String()
}

func asObject(doc interface{}) (map[string]interface{}, bool) {
	obj, ok := doc.(map[string]interface{})
	return obj, ok
}

func lookupCaseInsensitive(obj map[string]interface{}, key string) (interface{}, bool) {
	if val, ok := obj[key]; ok {
		return val, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
