package parsers

import "fmt"

// ParseError carries a byte offset into the source so callers can produce
// precise diagnostics, per §4.C's "typed parse error with byte offsets".
type ParseError struct {
	File   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:offset %d: %s", e.File, e.Offset, e.Msg)
}
