package template

import (
	"strings"

	"github.com/Azure/template-analyzer-go/pkg/armexpr"
	"github.com/Azure/template-analyzer-go/pkg/expression"
)

// ParameterDefinition is one entry of a template's top-level "parameters"
// object, as declared by the template author.
type ParameterDefinition struct {
	Type          string        `json:"type"`
	DefaultValue  interface{}   `json:"defaultValue,omitempty"`
	AllowedValues []interface{} `json:"allowedValues,omitempty"`
	MinLength     *int          `json:"minLength,omitempty"`
	MaxLength     *int          `json:"maxLength,omitempty"`
	MinValue      *float64      `json:"minValue,omitempty"`
	MaxValue      *float64      `json:"maxValue,omitempty"`
}

// Options configures a single Process call.
type Options struct {
	// Mode selects how ARM language expression failures are handled.
	// The zero value is armexpr.Lenient.
	Mode armexpr.EvaluationMode
	// FunctionLibrary resolves the standard ARM function set. May be nil;
	// calls to anything but the built-in meta-functions then fail (and are
	// swallowed or propagated per Mode).
	FunctionLibrary armexpr.FunctionLibrary
}

// FlatResource is one resource in the expanded, flattened template.
type FlatResource struct {
	// Path is this resource's location in the expanded template, e.g.
	// "resources[0].resources[1]".
	Path string
	// OriginalPath is the location of the prototype this resource was
	// expanded from in the source template.
	OriginalPath string
	// OriginalName is the resource's name literal as it appeared in the
	// source template, snapshotted before copy expansion and language
	// expression evaluation rewrote Content["name"] to its disambiguated,
	// per-copy-iteration value. Used for diagnostics that must name a
	// resource the way its author wrote it, independent of which copy
	// iteration produced a given finding.
	OriginalName string
	// Content is the resource's evaluated JSON object.
	Content map[string]interface{}
}

// ExpandedTemplate is the output of Process: the fully expanded template
// tree plus the bookkeeping the rule runner and line resolver need.
type ExpandedTemplate struct {
	// Root is the expanded template document, with every top-level
	// resource's "resources" child array rebuilt post-expansion.
	Root map[string]interface{}

	// FlattenedResources maps a case-insensitive "<name-chain> <type-chain>"
	// key to its resource.
	FlattenedResources map[string]FlatResource

	// ResourceMappings maps an expanded path to the original path it was
	// expanded from. Many expanded paths may map to the same original path
	// (copy loops); the mapping is never one expanded path to many.
	ResourceMappings map[string]string

	// order preserves resource discovery order (depth-first over the
	// flattened set), the order ResourcesOfType must enumerate in.
	order []string
}

var _ expression.TemplateView = (*ExpandedTemplate)(nil)

// OriginalPath resolves an expanded path, which may point anywhere inside a
// resource (a leaf property, not just the resource root), to its equivalent
// path in the original source template. ResourceMappings only records one
// entry per flattened resource (and per dependsOn-attached child), so a
// leaf path such as "resources[0].properties.cors.allowedOrigins[0]" is
// resolved by finding the longest mapped key that is either an exact match
// or a dotted prefix of path, and substituting it for the mapped original.
//
// Two distinct mapping keys of the same length can never both be a prefix
// of path, since a string has only one substring of a given length starting
// at position 0, so the longest match is unambiguous.
func (e *ExpandedTemplate) OriginalPath(path string) (string, bool) {
	bestKey := ""
	bestOriginal := ""
	found := false
	for key, original := range e.ResourceMappings {
		if path == key {
			return original, true
		}
		if strings.HasPrefix(path, key+".") && len(key) > len(bestKey) {
			bestKey, bestOriginal, found = key, original, true
		}
	}
	if !found {
		return "", false
	}
	return bestOriginal + path[len(bestKey):], true
}
