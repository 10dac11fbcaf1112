package engine

import (
	"fmt"
	"strings"
)

// ParseError records why a candidate node was rejected, innermost cause last.
type ParseError struct {
	Debug  string
	Offset int64
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "carve: parse error: " + strings.Join(s, ",")
}

// Wrap returns a new error with debug at offset in front of p.
func (p *ParseError) Wrap(debug string, offset int64) *ParseError {
	return &ParseError{Debug: debug, Offset: offset, prev: p}
}
