package token

import (
	"testing"
)

func TestScannerNext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty",
			input: "",
			want:  []Token{{Type: EOF}},
		},
		{
			name:  "field chain",
			input: "a.b",
			want: []Token{
				{Type: IDENT, Literal: "a"},
				{Type: SEPARATOR, Literal: "."},
				{Type: IDENT, Literal: "b"},
				{Type: EOF},
			},
		},
		{
			name:  "index and glob",
			input: "r[3][*]",
			want: []Token{
				{Type: IDENT, Literal: "r"},
				{Type: LBRACKET, Literal: "["},
				{Type: INT, Literal: "3"},
				{Type: RBRACKET, Literal: "]"},
				{Type: LBRACKET, Literal: "["},
				{Type: GLOB, Literal: "*"},
				{Type: RBRACKET, Literal: "]"},
				{Type: EOF},
			},
		},
		{
			name:  "quoted identifier",
			input: `"a b"`,
			want: []Token{
				{Type: IDENT, Literal: "a b"},
				{Type: EOF},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScanner(tc.input)
			for i, want := range tc.want {
				got := s.Next()
				if got != want {
					t.Fatalf("token %d: got %+v, want %+v", i, got, want)
				}
			}
		})
	}
}

func TestScannerInvalidCharacter(t *testing.T) {
	s := NewScanner("a?b")
	_ = s.Next() // "a"
	tok := s.Next()
	if tok.Type != ERROR {
		t.Fatalf("got %+v, want ERROR token", tok)
	}
}
