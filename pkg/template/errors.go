// Package template implements the Template Processor: it turns raw ARM
// template JSON plus an optional parameters document into an
// ExpandedTemplate the rule runner can walk — placeholders generated for
// unbound parameters, copy loops expanded, language expressions evaluated,
// and a resource-path mapping back to the original source recorded along
// the way.
package template

import "errors"

var (
	// ErrSchema indicates the template is missing a mandatory top-level key
	// (schema, resources) or that key is the wrong shape.
	ErrSchema = errors.New("template does not match the expected ARM schema")
	// ErrParametersSchema indicates a supplied parameters document is
	// missing its "parameters" key or an entry has neither value nor
	// reference.
	ErrParametersSchema = errors.New("parameters document does not match the expected ARM parameters schema")
	// ErrUnsupportedParameterType indicates a parameter declares a type the
	// placeholder generator does not know how to satisfy.
	ErrUnsupportedParameterType = errors.New("unsupported parameter type")
	// ErrDuplicateResourceKey indicates two resources flattened to the same
	// case-insensitive "<name-chain> <type-chain>" key.
	ErrDuplicateResourceKey = errors.New("duplicate flattened resource key")
	// ErrMappingConflict indicates an expanded path was about to be mapped
	// to a second, different original path — a processor bug.
	ErrMappingConflict = errors.New("resource mapping conflict")
)
