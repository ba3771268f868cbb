package template

import "github.com/google/uuid"

// namespace roots every deterministic placeholder derived from a parameter
// name, so two processor runs over the same template produce byte-identical
// placeholders without the generator needing any mutable state.
var namespace = uuid.MustParse("6ba7b814-9dad-11d1-80b4-00c04fd430c8")

// stableID returns a deterministic, reproducible UUID for a parameter name.
func stableID(parameterName string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(parameterName))
}
