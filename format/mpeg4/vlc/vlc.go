// Package vlc holds the variable length code tables of MPEG-4 part 2 and
// H.263 baseline macroblock data, and a decoder that walks them bit by bit.
package vlc

import (
	"fmt"

	"github.com/ugparu/mediacarve/utils/bits"
)

// MaxCodeLen is the longest code of any table.
const MaxCodeLen = 13

// Code is one table row: Len bits of Bits, most significant bit first.
type Code[T comparable] struct {
	Bits  uint32
	Len   int
	Value T
}

// Table maps codes to values.
type Table[T comparable] struct {
	name   string
	maxLen int
	byLen  [MaxCodeLen + 1]map[uint32]T
	codes  []Code[T]
}

// NewTable indexes codes. It panics on a code longer than MaxCodeLen or a code
// that is the prefix of another: tables are package data.
func NewTable[T comparable](name string, codes []Code[T]) *Table[T] {
	t := &Table[T]{name: name, codes: codes}
	for _, c := range codes {
		if c.Len <= 0 || c.Len > MaxCodeLen {
			panic(fmt.Sprintf("vlc %s: code length %d", name, c.Len))
		}
		for _, o := range codes {
			if o.Len < c.Len && c.Bits>>(c.Len-o.Len) == o.Bits {
				panic(fmt.Sprintf("vlc %s: %0*b is a prefix of %0*b", name, o.Len, o.Bits, c.Len, c.Bits))
			}
		}
		if t.byLen[c.Len] == nil {
			t.byLen[c.Len] = make(map[uint32]T)
		}
		if _, dup := t.byLen[c.Len][c.Bits]; dup {
			panic(fmt.Sprintf("vlc %s: duplicate code %0*b", name, c.Len, c.Bits))
		}
		t.byLen[c.Len][c.Bits] = c.Value
		t.maxLen = max(t.maxLen, c.Len)
	}
	return t
}

// Decode consumes one code. ok is false when the next bits match no code or
// the source ends first; the cursor does not move then.
func (t *Table[T]) Decode(c *bits.Cursor) (v T, ok bool) {
	for n := 1; n <= t.maxLen; n++ {
		m := t.byLen[n]
		if m == nil {
			continue
		}
		code, ok := c.PeekBits(n)
		if !ok {
			return v, false
		}
		if v, ok := m[uint32(code)]; ok {
			c.SkipBits(int64(n))
			return v, true
		}
	}
	return v, false
}

// Encode returns the code of v.
func (t *Table[T]) Encode(v T) (Code[T], bool) {
	for _, c := range t.codes {
		if c.Value == v {
			return c, true
		}
	}
	return Code[T]{}, false
}

// Codes returns every row in declaration order.
func (t *Table[T]) Codes() []Code[T] {
	return t.codes
}

func (t *Table[T]) String() string {
	return "VLC " + t.name
}
