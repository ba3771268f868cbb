package lineinfo

import "errors"

// ErrMalformedSource indicates the raw template text could not be
// tokenized as JSON while building a position index. Building a Resolver
// can fail; once built, Resolve itself never fails (a miss yields the
// sentinel line 0).
var ErrMalformedSource = errors.New("could not index source text for line numbers")
