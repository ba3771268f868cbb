package template

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Azure/template-analyzer-go/pkg/armexpr"
	"github.com/Azure/template-analyzer-go/pkg/logging"
)

// Process runs the full pipeline over raw template JSON and an
// optional raw parameters document, producing an ExpandedTemplate ready for
// the rule runner. log must not be nil; pass zap.NewNop() in tests.
func Process(templateRaw, parametersRaw []byte, opts Options, log *zap.Logger) (*ExpandedTemplate, error) {
	var tmpl map[string]interface{}
	if err := json.Unmarshal(templateRaw, &tmpl); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchema, err)
	}
	if err := validateSchema(tmpl); err != nil {
		return nil, err
	}

	parameters, err := resolveParameters(tmpl, parametersRaw)
	if err != nil {
		return nil, err
	}

	variables, _ := tmpl["variables"].(map[string]interface{})
	evaluatedVariables, err := armexpr.EvaluateTree(variables, armexpr.Scopes{Parameters: parameters}, opts.FunctionLibrary, opts.Mode)
	if err != nil {
		return nil, err
	}
	variablesMap, _ := evaluatedVariables.(map[string]interface{})

	nodes, err := buildResourceTree(tmpl)
	if err != nil {
		return nil, err
	}

	nodes, err = expandCopies(nodes, armexpr.Scopes{Parameters: parameters, Variables: variablesMap}, opts.FunctionLibrary, opts.Mode)
	if err != nil {
		return nil, err
	}

	if err := evaluateLanguageExpressions(nodes, variablesMap, parameters, opts.FunctionLibrary, opts.Mode); err != nil {
		return nil, err
	}

	validateProcessed(nodes, log)

	result := newFlattenResult()
	if err := flatten(nodes, "", "", "", result); err != nil {
		return nil, err
	}
	if err := attachDependsOn(result, log); err != nil {
		return nil, err
	}

	root := tmpl
	topLevel := make([]interface{}, len(nodes))
	for i, n := range nodes {
		topLevel[i] = n.Content
	}
	root["resources"] = topLevel
	if outputs, ok := root["outputs"]; ok {
		evaluatedOutputs, err := armexpr.EvaluateTree(outputs, armexpr.Scopes{Parameters: parameters, Variables: variablesMap}, opts.FunctionLibrary, opts.Mode)
		if err != nil {
			return nil, err
		}
		root["outputs"] = evaluatedOutputs
	}

	return &ExpandedTemplate{
		Root:               root,
		FlattenedResources: result.flattened,
		ResourceMappings:   result.mappings,
		order:              result.order,
	}, nil
}

// validateProcessed checks each expanded resource still carries the keys
// the rule engine relies on. A resource that lost (or never had) its type
// or apiVersion is logged and kept; rules scoped to a resourceType simply
// never see it.
func validateProcessed(nodes []*resourceNode, log *zap.Logger) {
	for _, n := range nodes {
		if _, ok := n.Content["type"].(string); !ok {
			log.Warn("processed resource has no type",
				zap.String(logging.OriginalName, n.OriginalName),
				zap.String(logging.OriginalPath, n.OriginalPath))
		}
		if _, ok := n.Content["apiVersion"].(string); !ok {
			log.Warn("processed resource has no apiVersion",
				zap.String(logging.OriginalName, n.OriginalName),
				zap.String(logging.OriginalPath, n.OriginalPath))
		}
		validateProcessed(n.Children, log)
	}
}
