package template

import (
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	"go.uber.org/zap"

	"github.com/Azure/template-analyzer-go/pkg/logging"
)

// dependsOnHash is the identity hash for the dependsOn graph: vertices are
// flattened resource keys themselves, so no separate ID type is needed.
func dependsOnHash(key string) string { return key }

// attachDependsOn resolves every dependsOn reference to a flattened
// resource, appends the dependent under that resource's "resources" array,
// and propagates the resulting mapping through any copy-loop siblings of
// the target so grandchildren of a copied resource remain discoverable. A
// directed edge dependent->target is added to a graph for every attachment;
// an edge that would close a cycle is refused, logged, and the dependent is
// left unattached for that reference rather than attached into an unbounded
// loop.
func attachDependsOn(result *flattenResult, log *zap.Logger) error {
	siblingsByOriginal := map[string][]string{}
	for expPath, origPath := range result.mappings {
		siblingsByOriginal[origPath] = append(siblingsByOriginal[origPath], expPath)
	}

	g := graph.New(dependsOnHash, graph.Directed())
	for key := range result.flattened {
		if err := g.AddVertex(key); err != nil {
			return fmt.Errorf("building dependsOn graph: %w", err)
		}
	}

	keys := append([]string{}, result.order...)
	for _, key := range keys {
		dependent := result.flattened[key]
		dependsRaw, ok := dependent.Content["dependsOn"].([]interface{})
		if !ok {
			continue
		}
		for _, depRaw := range dependsRaw {
			dep, ok := depRaw.(string)
			if !ok {
				continue
			}
			targetKey, found := resolveDependsOn(dep, result.flattened)
			if !found {
				log.Warn("could not resolve dependsOn reference",
					zap.String(logging.OriginalName, dependent.OriginalName),
					zap.String(logging.Details, dep))
				continue
			}

			creates, err := graph.CreatesCycle(g, key, targetKey)
			if err != nil {
				return fmt.Errorf("checking dependsOn cycle for %q: %w", key, err)
			}
			if creates {
				log.Warn("dependsOn reference would create a cycle; skipping attachment",
					zap.String(logging.OriginalName, dependent.OriginalName),
					zap.String(logging.Details, dep))
				continue
			}
			if err := g.AddEdge(key, targetKey); err != nil {
				return fmt.Errorf("recording dependsOn edge for %q: %w", key, err)
			}

			if err := attachOne(result, targetKey, dependent, siblingsByOriginal); err != nil {
				return err
			}
		}
	}
	return nil
}

func attachOne(result *flattenResult, targetKey string, dependent FlatResource, siblingsByOriginal map[string][]string) error {
	target := result.flattened[targetKey]
	existingChildren, _ := target.Content["resources"].([]interface{})
	k := len(existingChildren)
	target.Content["resources"] = append(existingChildren, dependent.Content)

	childPath := fmt.Sprintf("%s.resources[%d]", target.Path, k)
	if err := result.addMapping(childPath, dependent.OriginalPath); err != nil {
		return err
	}
	for _, sibling := range siblingsByOriginal[target.OriginalPath] {
		if sibling == target.Path {
			continue
		}
		siblingChildPath := fmt.Sprintf("%s.resources[%d]", sibling, k)
		if err := result.addMapping(siblingChildPath, dependent.OriginalPath); err != nil {
			return err
		}
	}
	return nil
}

// resolveDependsOn resolves one dependsOn entry to a flattened resource
// key: either a fully qualified resource ID, or a bare name that must
// uniquely prefix-match a flattened key.
func resolveDependsOn(dep string, flattened map[string]FlatResource) (string, bool) {
	if strings.HasPrefix(dep, "/subscriptions/") {
		name, typ, ok := parseResourceID(dep)
		if !ok {
			return "", false
		}
		wantKey := strings.ToLower(name + " " + typ)
		if _, exists := flattened[wantKey]; exists {
			return wantKey, true
		}
		for key := range flattened {
			if strings.HasSuffix(key, wantKey) {
				return key, true
			}
		}
		return "", false
	}

	prefix := strings.ToLower(dep) + " "
	var matches []string
	for key := range flattened {
		if strings.HasPrefix(key, prefix) {
			matches = append(matches, key)
		}
	}
	if len(matches) != 1 {
		return "", false
	}
	return matches[0], true
}

// parseResourceID extracts the unqualified type and name from an ARM
// resource ID, e.g. "/subscriptions/s/resourceGroups/g/providers/
// Microsoft.Web/sites/mySite" -> name "mySite", type "Microsoft.Web/sites".
func parseResourceID(id string) (name, typ string, ok bool) {
	parts := strings.Split(id, "/")
	idx := -1
	for i, p := range parts {
		if strings.EqualFold(p, "providers") {
			idx = i
			break
		}
	}
	if idx == -1 || idx+2 >= len(parts) {
		return "", "", false
	}
	provider := parts[idx+1]
	rest := parts[idx+2:]
	if len(rest) < 2 || len(rest)%2 != 0 {
		return "", "", false
	}
	var types, names []string
	for i := 0; i+1 < len(rest); i += 2 {
		types = append(types, rest[i])
		names = append(names, rest[i+1])
	}
	return strings.Join(names, "/"), provider + "/" + strings.Join(types, "/"), true
}
