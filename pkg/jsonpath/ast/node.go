// Package ast holds the parsed representation of a resource path
// expression, e.g. resources[3].properties.siteConfig.cors.
// allowedOrigins[*].
package ast

import (
	"fmt"
	"strings"
)

// NodeType discriminates the two kinds of path segment.
type NodeType string

const (
	// FieldNode selects a named key of a JSON object (case-insensitively).
	FieldNode NodeType = "Field"
	// IndexNode selects an element, or all elements, of a JSON array.
	IndexNode NodeType = "Index"
)

// Node is a single segment of a parsed Path.
type Node interface {
	Type() NodeType
	String() string
}

// Path is an entire parsed path specification.
type Path struct {
	Nodes []Node
}

func (p Path) String() string {
	var b strings.Builder
	for i, n := range p.Nodes {
		if n.Type() == FieldNode && i > 0 {
			b.WriteString(".")
		}
		b.WriteString(n.String())
	}
	return b.String()
}

// Field selects object key Name.
type Field struct {
	Name string
}

var _ Node = Field{}

func (f Field) Type() NodeType { return FieldNode }
func (f Field) String() string { return quote(f.Name) }

// Index selects an array element. Glob selects every element and takes
// precedence over Value.
type Index struct {
	Value int
	Glob  bool
}

var _ Node = Index{}

func (x Index) Type() NodeType { return IndexNode }

func (x Index) String() string {
	if x.Glob {
		return "[*]"
	}
	return fmt.Sprintf("[%d]", x.Value)
}

// quote renders a field name so the scanner would read it back as a single
// IDENT: a name that is already a bare identifier is left alone, anything
// else is double-quoted with backslash escapes for the quote and the
// backslash itself.
func quote(s string) string {
	if isBareIdent(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && (c == '-' || '0' <= c && c <= '9'):
		default:
			return false
		}
	}
	return true
}
