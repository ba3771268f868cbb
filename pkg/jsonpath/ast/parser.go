package ast

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Azure/template-analyzer-go/pkg/jsonpath/token"
)

// Base errors for parsing path strings.
var (
	ErrUnexpectedToken   = errors.New("unexpected token")
	ErrTrailingSeparator = errors.New("trailing separator")
	ErrInvalidInteger    = errors.New("invalid integer")
)

// Parse parses a dot-and-bracket path expression such as
// resources[0].properties.cors.allowedOrigins[*] into a Path.
//
// The grammar needs no lookahead: a path is field segments joined by '.',
// each optionally followed by bracketed indices, so a single current-token
// cursor is enough.
func Parse(input string) (Path, error) {
	p := &parser{sc: token.NewScanner(input)}
	p.advance()

	var nodes []Node
	for p.tok.Type != token.EOF {
		if p.tok.Type != token.IDENT {
			return Path{}, fmt.Errorf("%w: expected field name, got %q", ErrUnexpectedToken, p.tok.Literal)
		}
		nodes = append(nodes, Field{Name: p.tok.Literal})
		p.advance()

		for p.tok.Type == token.LBRACKET {
			p.advance()
			idx, err := p.index()
			if err != nil {
				return Path{}, err
			}
			nodes = append(nodes, idx)
		}

		switch p.tok.Type {
		case token.SEPARATOR:
			p.advance()
			if p.tok.Type == token.EOF {
				return Path{}, fmt.Errorf("%w: path ends in '.'", ErrTrailingSeparator)
			}
		case token.EOF:
		default:
			return Path{}, fmt.Errorf("%w: expected '.' or end of path, got %q", ErrUnexpectedToken, p.tok.Literal)
		}
	}
	return Path{Nodes: nodes}, nil
}

type parser struct {
	sc  *token.Scanner
	tok token.Token
}

func (p *parser) advance() {
	p.tok = p.sc.Next()
}

// index parses the inside of one bracket pair, with the opening bracket
// already consumed.
func (p *parser) index() (Node, error) {
	var node Node
	switch p.tok.Type {
	case token.GLOB:
		node = Index{Glob: true}
	case token.INT:
		v, err := strconv.Atoi(p.tok.Literal)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInteger, p.tok.Literal)
		}
		node = Index{Value: v}
	default:
		return nil, fmt.Errorf("%w: expected integer or '*' in index, got %q", ErrUnexpectedToken, p.tok.Literal)
	}

	p.advance()
	if p.tok.Type != token.RBRACKET {
		return nil, fmt.Errorf("%w: expected ']' closing index, got %q", ErrUnexpectedToken, p.tok.Literal)
	}
	p.advance()
	return node, nil
}
