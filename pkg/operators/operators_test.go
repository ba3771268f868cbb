package operators

import (
	"testing"

	"github.com/Azure/template-analyzer-go/pkg/jsonpath"
)

func TestEquals(t *testing.T) {
	fn, err := Lookup(Equals)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		actual  interface{}
		operand interface{}
		want    bool
	}{
		{"equal strings", "Linux", "linux", true},
		{"unequal strings", "Linux", "windows", false},
		{"missing never equals", jsonpath.Missing, "anything", false},
		{"equal numbers", float64(3), float64(3), true},
		{"equal arrays", []interface{}{"a", "b"}, []interface{}{"A", "B"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fn(tc.actual, tc.operand)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("equals(%v, %v) = %v, want %v", tc.actual, tc.operand, got, tc.want)
			}
		})
	}
}

func TestHasValue(t *testing.T) {
	fn, _ := Lookup(HasValue)

	tests := []struct {
		name    string
		actual  interface{}
		operand bool
		want    bool
	}{
		{"present non-empty string counts as has value", "x", true, true},
		{"empty string has no value", "", true, false},
		{"empty array has no value", []interface{}{}, true, false},
		{"empty object has no value", map[string]interface{}{}, true, false},
		{"missing has no value", jsonpath.Missing, true, false},
		{"null has no value", nil, true, false},
		{"empty value matches false operand", "", false, true},
		{"non-empty value fails false operand", "x", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fn(tc.actual, tc.operand)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("hasValue(%v, %v) = %v, want %v", tc.actual, tc.operand, got, tc.want)
			}
		})
	}
}

func TestExists(t *testing.T) {
	fn, _ := Lookup(Exists)

	got, _ := fn(nil, true)
	if !got {
		t.Error("exists(nil, true) should be true: null is present")
	}
	got, _ = fn(jsonpath.Missing, true)
	if got {
		t.Error("exists(Missing, true) should be false")
	}
	got, _ = fn(jsonpath.Missing, false)
	if !got {
		t.Error("exists(Missing, false) should be true")
	}
}

func TestIn(t *testing.T) {
	fn, _ := Lookup(In)
	got, err := fn("https://a", []interface{}{"https://a", "https://b"})
	if err != nil || !got {
		t.Errorf("expected membership match, got %v, %v", got, err)
	}
	got, err = fn("https://c", []interface{}{"https://a", "https://b"})
	if err != nil || got {
		t.Errorf("expected no membership match, got %v, %v", got, err)
	}
}

func TestRegex(t *testing.T) {
	fn, _ := Lookup(Regex)
	got, err := fn("1.11.8", `^1\.1[0-1]\..*$`)
	if err != nil || !got {
		t.Errorf("expected regex match, got %v, %v", got, err)
	}
	got, err = fn("1.14.0", `^1\.1[0-1]\..*$`)
	if err != nil || got {
		t.Errorf("expected no regex match, got %v, %v", got, err)
	}
}

func TestNumericComparisons(t *testing.T) {
	greaterFn, _ := Lookup(Greater)
	got, _ := greaterFn(float64(5), float64(3))
	if !got {
		t.Error("5 > 3 should be true")
	}
	got, _ = greaterFn("not-a-number", float64(3))
	if got {
		t.Error("non-numeric actual should never satisfy greater")
	}
	got, _ = greaterFn(jsonpath.Missing, float64(3))
	if got {
		t.Error("missing actual should never satisfy greater")
	}
}

func TestLookupUnknownOperator(t *testing.T) {
	if _, err := Lookup(Name("bogus")); err == nil {
		t.Error("expected an error for an unknown operator")
	}
}
