package template

import (
	"fmt"

	"github.com/Azure/template-analyzer-go/pkg/armexpr"
)

// copyDescriptor is the shape of a resource's "copy" block.
type copyDescriptor struct {
	Name  string
	Count int
}

// expandCopies replaces every node in nodes that carries a "copy" block
// with N clones (ordinals 0..count-1), recursing into children first so
// nested copy loops expand independently inside each outer clone. Every
// clone keeps the prototype's OriginalName and OriginalPath, since a
// failure on any copy must report the prototype's source location.
func expandCopies(nodes []*resourceNode, parentScopes armexpr.Scopes, lib armexpr.FunctionLibrary, mode armexpr.EvaluationMode) ([]*resourceNode, error) {
	var out []*resourceNode
	for _, n := range nodes {
		expandedChildren, err := expandCopies(n.Children, parentScopes, lib, mode)
		if err != nil {
			return nil, err
		}
		n.Children = expandedChildren

		desc, present, err := readCopyDescriptor(n, parentScopes, lib, mode)
		if err != nil {
			return nil, err
		}
		if !present {
			out = append(out, n)
			continue
		}

		delete(n.Content, "copy")
		for i := 0; i < desc.Count; i++ {
			clone := cloneNode(n)
			// Children were expanded first, so this loop is outer to any
			// frame already recorded in the clone's subtree: prepend it to
			// the clone and to every descendant.
			frame := copyFrame{loopName: desc.Name, ordinal: i}
			stack := []*resourceNode{clone}
			for len(stack) > 0 {
				c := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.copyAncestry = append([]copyFrame{frame}, c.copyAncestry...)
				stack = append(stack, c.Children...)
			}
			out = append(out, clone)
		}
	}
	return out, nil
}

func readCopyDescriptor(n *resourceNode, scopes armexpr.Scopes, lib armexpr.FunctionLibrary, mode armexpr.EvaluationMode) (copyDescriptor, bool, error) {
	raw, ok := n.Content["copy"].(map[string]interface{})
	if !ok {
		return copyDescriptor{}, false, nil
	}

	nameVal, _ := raw["name"].(string)
	evaluatedName, err := armexpr.Evaluate(nameVal, scopes, lib, mode)
	if err != nil {
		return copyDescriptor{}, false, err
	}
	name, _ := evaluatedName.(string)

	countVal := raw["count"]
	count, err := evaluateCopyCount(countVal, scopes, lib, mode)
	if err != nil {
		return copyDescriptor{}, false, err
	}

	return copyDescriptor{Name: name, Count: count}, true, nil
}

func evaluateCopyCount(raw interface{}, scopes armexpr.Scopes, lib armexpr.FunctionLibrary, mode armexpr.EvaluationMode) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case string:
		evaluated, err := armexpr.Evaluate(v, scopes, lib, mode)
		if err != nil {
			return 0, err
		}
		f, ok := evaluated.(float64)
		if !ok {
			return 0, fmt.Errorf("copy count did not evaluate to a number: %v", evaluated)
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("copy count has unsupported type %T", raw)
	}
}
