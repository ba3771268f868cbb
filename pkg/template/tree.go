package template

import "fmt"

// resourceNode is the processor's working representation of one resource
// during the pipeline. Content never holds a "resources" key while the
// pipeline is running; children are tracked separately and rewoven into
// Content["resources"] once flattening assigns their final paths.
type resourceNode struct {
	Content      map[string]interface{}
	OriginalName string
	OriginalPath string
	Children     []*resourceNode

	// copyAncestry records, outermost first, every copy loop this node (or
	// an ancestor) was expanded from: the loop name and this node's ordinal
	// within it. copyIndex(name) resolves against this stack.
	copyAncestry []copyFrame
}

type copyFrame struct {
	loopName string
	ordinal  int
}

// buildResourceTree walks tmpl's top-level "resources" array (and each
// resource's nested "resources" array) into a resourceNode tree, recording
// each node's original name literal and original path before any
// expression evaluation or copy expansion happens.
func buildResourceTree(tmpl map[string]interface{}) ([]*resourceNode, error) {
	raw, _ := tmpl["resources"].([]interface{})
	return buildSiblings(raw, "")
}

func buildSiblings(raw []interface{}, pathPrefix string) ([]*resourceNode, error) {
	nodes := make([]*resourceNode, 0, len(raw))
	for i, r := range raw {
		resMap, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: resource at index %d is not a JSON object", ErrSchema, i)
		}
		path := fmt.Sprintf("%sresources[%d]", pathPrefix, i)
		node, err := buildNode(resMap, path)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func buildNode(resMap map[string]interface{}, path string) (*resourceNode, error) {
	name, _ := resMap["name"].(string)

	var childRaw []interface{}
	if v, ok := resMap["resources"]; ok {
		childRaw, _ = v.([]interface{})
	}
	content := make(map[string]interface{}, len(resMap))
	for k, v := range resMap {
		if k == "resources" {
			continue
		}
		content[k] = v
	}

	children, err := buildSiblings(childRaw, path+".")
	if err != nil {
		return nil, err
	}

	return &resourceNode{
		Content:      content,
		OriginalName: name,
		OriginalPath: path,
		Children:     children,
	}, nil
}

// cloneNode deep-copies a node (and its subtree) so independent copy
// iterations don't alias each other's Content.
func cloneNode(n *resourceNode) *resourceNode {
	children := make([]*resourceNode, len(n.Children))
	for i, c := range n.Children {
		children[i] = cloneNode(c)
	}
	ancestry := make([]copyFrame, len(n.copyAncestry))
	copy(ancestry, n.copyAncestry)
	return &resourceNode{
		Content:      deepCopyJSON(n.Content).(map[string]interface{}),
		OriginalName: n.OriginalName,
		OriginalPath: n.OriginalPath,
		Children:     children,
		copyAncestry: ancestry,
	}
}

func deepCopyJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[k] = deepCopyJSON(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, child := range t {
			out[i] = deepCopyJSON(child)
		}
		return out
	default:
		return v
	}
}
