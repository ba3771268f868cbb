package template

import (
	"encoding/json"
	"fmt"
)

func validateSchema(tmpl map[string]interface{}) error {
	schemaURL, ok := tmpl["$schema"].(string)
	if !ok || schemaURL == "" {
		return fmt.Errorf("%w: missing or empty $schema", ErrSchema)
	}
	if _, ok := tmpl["resources"]; !ok {
		return fmt.Errorf("%w: missing top-level \"resources\"", ErrSchema)
	}
	return nil
}

// resolveParameters generates a deterministic placeholder for every
// declared parameter with no supplied value, then binds supplied
// parameters (value used directly, reference replaced with a sentinel
// since this analyzer never contacts a live deployment).
func resolveParameters(tmpl map[string]interface{}, suppliedRaw []byte) (map[string]interface{}, error) {
	declared := map[string]ParameterDefinition{}
	if rawParams, ok := tmpl["parameters"].(map[string]interface{}); ok {
		for name, raw := range rawParams {
			def, err := decodeParameterDefinition(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
			declared[name] = def
		}
	}

	supplied, err := parseSuppliedParameters(suppliedRaw)
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(declared))
	for name, def := range declared {
		if v, ok := supplied[name]; ok {
			values[name] = v
			continue
		}
		placeholder, err := GeneratePlaceholder(name, def)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		values[name] = placeholder
	}
	// Supplied values for parameters the template did not declare are kept
	// too; a stray extra value should not break evaluation of expressions
	// that legitimately reference it.
	for name, v := range supplied {
		if _, ok := values[name]; !ok {
			values[name] = v
		}
	}
	return values, nil
}

func decodeParameterDefinition(raw interface{}) (ParameterDefinition, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return ParameterDefinition{}, err
	}
	var def ParameterDefinition
	if err := json.Unmarshal(b, &def); err != nil {
		return ParameterDefinition{}, err
	}
	return def, nil
}

// parseSuppliedParameters parses an ARM parameters document of the shape
// {"parameters": {name: {"value": ...} | {"reference": ...}}}. A nil/empty
// raw document is not an error; it simply supplies nothing.
func parseSuppliedParameters(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var doc struct {
		Parameters map[string]map[string]interface{} `json:"parameters"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParametersSchema, err)
	}
	if doc.Parameters == nil {
		return nil, fmt.Errorf("%w: missing top-level \"parameters\"", ErrParametersSchema)
	}

	out := make(map[string]interface{}, len(doc.Parameters))
	for name, entry := range doc.Parameters {
		if v, ok := entry["value"]; ok {
			out[name] = v
			continue
		}
		if _, ok := entry["reference"]; ok {
			out[name] = fmt.Sprintf("REF_NOT_AVAIL_%s", name)
			continue
		}
		return nil, fmt.Errorf("%w: parameter %q has neither value nor reference", ErrParametersSchema, name)
	}
	return out, nil
}
