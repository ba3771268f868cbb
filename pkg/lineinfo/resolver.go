// Package lineinfo maps a resource path in the expanded template back to a
// (line, column) in the original source text. For JSON sources this
// is done by streaming the raw text through encoding/json.Decoder while
// rebuilding the same dot-and-bracket path convention the rest of the
// engine uses; for Bicep-derived templates, a compiler-provided source map
// is consulted first.
package lineinfo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Position is a 1-based (line, column) pair.
type Position struct {
	Line   int
	Column int
}

// Resolver answers path -> Position lookups for one source document. A
// lookup miss is never an error; it returns the zero Position (line 0).
type Resolver struct {
	positions map[string]Position
	sourceMap map[string]Position
}

// Build indexes raw JSON source text, recording the position each resource
// path's value begins at.
func Build(raw []byte) (*Resolver, error) {
	b := &builder{
		raw:        raw,
		dec:        json.NewDecoder(bytes.NewReader(raw)),
		lineStarts: computeLineStarts(raw),
		positions:  map[string]Position{},
	}
	if err := b.walkValue(""); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedSource, err)
	}
	return &Resolver{positions: b.positions}, nil
}

// WithBicepSourceMap returns a Resolver that prefers sourceMap (original
// JSON path -> Bicep source coordinates) over the raw-JSON-derived
// positions, falling back to the latter for any path the source map does
// not cover.
func (r *Resolver) WithBicepSourceMap(sourceMap map[string]Position) *Resolver {
	return &Resolver{positions: r.positions, sourceMap: sourceMap}
}

// Resolve returns the (line, column) at which path's value begins. A miss
// returns (0, 0), the sentinel for "unknown"; Resolve never panics or
// returns an error.
func (r *Resolver) Resolve(path string) (line, column int) {
	if r == nil {
		return 0, 0
	}
	if r.sourceMap != nil {
		if p, ok := r.sourceMap[path]; ok {
			return p.Line, p.Column
		}
	}
	if p, ok := r.positions[path]; ok {
		return p.Line, p.Column
	}
	return 0, 0
}

type builder struct {
	raw        []byte
	dec        *json.Decoder
	lineStarts []int
	positions  map[string]Position
}

// walkValue reads exactly one JSON value (scalar, object, or array) and
// records its starting position under path.
func (b *builder) walkValue(path string) error {
	offset := int(b.dec.InputOffset())
	start := skipToToken(b.raw, offset)
	b.positions[path] = b.positionAt(start)

	tok, err := b.dec.Token()
	if err != nil {
		return err
	}
	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		return nil
	}
	switch delim {
	case '{':
		return b.walkObject(path)
	case '[':
		return b.walkArray(path)
	}
	return nil
}

func (b *builder) walkObject(path string) error {
	for b.dec.More() {
		keyTok, err := b.dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		if err := b.walkValue(joinField(path, key)); err != nil {
			return err
		}
	}
	_, err := b.dec.Token() // consume the closing '}'
	return err
}

func (b *builder) walkArray(path string) error {
	i := 0
	for b.dec.More() {
		if err := b.walkValue(fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
		i++
	}
	_, err := b.dec.Token() // consume the closing ']'
	return err
}

func joinField(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func (b *builder) positionAt(offset int) Position {
	idx := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return Position{Line: idx + 1, Column: offset - b.lineStarts[idx] + 1}
}

func computeLineStarts(raw []byte) []int {
	starts := []int{0}
	for i, c := range raw {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// skipToToken advances past whitespace and the structural characters that
// only ever appear between decoder tokens (never inside a string), so the
// returned offset lands on the first byte of the next real token.
func skipToToken(raw []byte, offset int) int {
	for offset < len(raw) {
		switch raw[offset] {
		case ' ', '\t', '\n', '\r', ':', ',':
			offset++
			continue
		}
		return offset
	}
	return offset
}
