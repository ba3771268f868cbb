package template

import (
	"fmt"
	"regexp"
	"strings"
)

// namePatternPlaceholders special-cases well-known parameter name
// fragments so a rule that regex-matches against a parameter's well-known
// shape (a location code, a connection string) still sees something
// plausible rather than an opaque hash.
var namePatternPlaceholders = []struct {
	pattern *regexp.Regexp
	value   string
}{
	{regexp.MustCompile(`(?i)location`), "westus2"},
	{regexp.MustCompile(`(?i)connectionstring`), "Server=tcp:placeholder;Database=placeholder;"},
	{regexp.MustCompile(`(?i)password`), "P1aceholder$Passw0rd"},
	{regexp.MustCompile(`(?i)(subscriptionid|subscription_id)`), "00000000-0000-0000-0000-000000000000"},
}

// GeneratePlaceholder produces a deterministic value for parameterName that
// satisfies def's declared constraints. The same (name, def) pair always
// yields the same placeholder across runs.
func GeneratePlaceholder(parameterName string, def ParameterDefinition) (interface{}, error) {
	if def.DefaultValue != nil {
		return def.DefaultValue, nil
	}
	if len(def.AllowedValues) > 0 {
		return def.AllowedValues[0], nil
	}

	switch strings.ToLower(def.Type) {
	case "string", "securestring":
		return generateStringPlaceholder(parameterName, def), nil
	case "int":
		return generateIntPlaceholder(def), nil
	case "bool":
		return true, nil
	case "array":
		return []interface{}{}, nil
	case "object", "secureobject":
		return map[string]interface{}{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedParameterType, def.Type)
	}
}

func generateStringPlaceholder(parameterName string, def ParameterDefinition) string {
	for _, p := range namePatternPlaceholders {
		if p.pattern.MatchString(parameterName) {
			return fitToLength(p.value, def)
		}
	}
	base := fmt.Sprintf("ta%s", stableID(parameterName).String())
	base = strings.ReplaceAll(base, "-", "")
	return fitToLength(base, def)
}

// fitToLength pads or truncates s so it satisfies def's MinLength and
// MaxLength, preferring truncation over violating MaxLength.
func fitToLength(s string, def ParameterDefinition) string {
	if def.MaxLength != nil && len(s) > *def.MaxLength {
		s = s[:*def.MaxLength]
	}
	if def.MinLength != nil {
		for len(s) < *def.MinLength {
			s += "x"
		}
	}
	return s
}

func generateIntPlaceholder(def ParameterDefinition) float64 {
	v := 1.0
	if def.MinValue != nil && v < *def.MinValue {
		v = *def.MinValue
	}
	if def.MaxValue != nil && v > *def.MaxValue {
		v = *def.MaxValue
	}
	return v
}
