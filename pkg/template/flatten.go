package template

import (
	"fmt"
	"strings"
)

// flattenResult accumulates the output of walking the resource tree: the
// flattened key/resource set in discovery order, and the resource-path
// mapping from every expanded path back to its originating source path.
type flattenResult struct {
	flattened map[string]FlatResource
	order     []string
	mappings  map[string]string
}

func newFlattenResult() *flattenResult {
	return &flattenResult{
		flattened: map[string]FlatResource{},
		mappings:  map[string]string{},
	}
}

// addMapping records expandedPath -> originalPath, refusing to silently
// overwrite a mapping to a different original path so ResourceMappings
// stays functional (each expanded path maps to at most one original).
func (r *flattenResult) addMapping(expandedPath, originalPath string) error {
	if existing, ok := r.mappings[expandedPath]; ok {
		if existing != originalPath {
			return fmt.Errorf("%w: %s already maps to %s, cannot also map to %s", ErrMappingConflict, expandedPath, existing, originalPath)
		}
		return nil
	}
	r.mappings[expandedPath] = originalPath
	return nil
}

// flatten walks nodes depth-first, assigning each one its expanded path and
// cascaded name-chain/type-chain key, and rebuilds each node's
// Content["resources"] from its (already-flattened) children.
func flatten(nodes []*resourceNode, parentPath, parentNameChain, parentTypeChain string, result *flattenResult) error {
	for i, n := range nodes {
		path := fmt.Sprintf("%sresources[%d]", parentPath, i)

		name, _ := n.Content["name"].(string)
		typ, _ := n.Content["type"].(string)
		nameChain := joinChain(parentNameChain, name)
		typeChain := joinChain(parentTypeChain, typ)
		key := strings.ToLower(nameChain + " " + typeChain)

		if _, exists := result.flattened[key]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateResourceKey, key)
		}

		// Record this resource before recursing so that discovery order is
		// pre-order (parent, then children), matching the depth-first
		// enumeration order scoped rule evaluation relies on.
		result.flattened[key] = FlatResource{
			Path:         path,
			OriginalPath: n.OriginalPath,
			OriginalName: n.OriginalName,
			Content:      n.Content,
		}
		result.order = append(result.order, key)

		if err := result.addMapping(path, n.OriginalPath); err != nil {
			return err
		}

		if err := flatten(n.Children, path+".", nameChain, typeChain, result); err != nil {
			return err
		}

		if len(n.Children) > 0 {
			childResources := make([]interface{}, len(n.Children))
			for j, c := range n.Children {
				childResources[j] = c.Content
			}
			n.Content["resources"] = childResources
		}
	}
	return nil
}

func joinChain(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "/" + segment
}
