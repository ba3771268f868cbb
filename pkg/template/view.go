package template

import (
	"strings"

	"github.com/Azure/template-analyzer-go/pkg/expression"
)

// ResourcesOfType enumerates every flattened resource whose "type" matches
// resourceType case-insensitively, in discovery order, satisfying
// expression.TemplateView.
func (e *ExpandedTemplate) ResourcesOfType(resourceType string) []expression.ResourceRef {
	var refs []expression.ResourceRef
	for _, key := range e.order {
		fr, ok := e.FlattenedResources[key]
		if !ok {
			continue
		}
		typ, _ := fr.Content["type"].(string)
		if !strings.EqualFold(typ, resourceType) {
			continue
		}
		refs = append(refs, expression.ResourceRef{Path: fr.Path, Resource: fr.Content})
	}
	return refs
}
