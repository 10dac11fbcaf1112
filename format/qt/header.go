package qt

import (
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

const (
	// HeaderSize is the size of a compact atom header.
	HeaderSize = 8
	// LargeHeaderSize is the size of a header carrying a 64-bit length.
	LargeHeaderSize = 16

	sizeToEnd   = 0
	sizeLarge   = 1
	terminator8 = 8
)

// atomHeader is a decoded size/type prefix.
type atomHeader struct {
	Tag       Tag
	Size      int64 // total size, resolved against the stream end for size 0
	HeaderLen int64
	Kind      grammar.Kind
	Known     bool
	ToEnd     bool
	Large     bool
}

// peekHeader decodes the atom header at pos without moving the cursor.
func peekHeader(c *bits.Cursor, pos int64) (atomHeader, bool) {
	b := c.Bytes(pos, pos+LargeHeaderSize)
	if len(b) < HeaderSize {
		return atomHeader{}, false
	}
	h := atomHeader{
		Tag:       Tag(pio.U32BE(b[4:])),
		Size:      int64(pio.U32BE(b)),
		HeaderLen: HeaderSize,
	}
	k, ok := Table.Lookup(grammar.Marker(h.Tag))
	h.Kind, h.Known = k, ok

	switch h.Size {
	case sizeToEnd:
		h.ToEnd = true
		h.Size = c.End() - pos
	case sizeLarge:
		if len(b) < LargeHeaderSize {
			return atomHeader{}, false
		}
		large := pio.U64BE(b[8:])
		if large < LargeHeaderSize || large > 1<<62 {
			return atomHeader{}, false
		}
		h.Large = true
		h.Size = int64(large)
		h.HeaderLen = LargeHeaderSize
	default:
		if h.Size < HeaderSize {
			return atomHeader{}, false
		}
	}
	return h, true
}

// plausible reports whether pos holds an atom the grammar would try to parse.
// Unknown atoms must be printable and fit the stream.
func plausible(c *bits.Cursor, pos int64, allowUnknown bool) (atomHeader, bool) {
	h, ok := peekHeader(c, pos)
	if !ok {
		return h, false
	}
	if h.Known {
		return h, true
	}
	if !allowUnknown || h.ToEnd || !h.Tag.Printable() || pos+h.Size > c.End() {
		return h, false
	}
	h.Kind = KindUnknown
	return h, true
}

// terminatorLength returns the length of the zero run at pos that ends an atom
// list. A bare zero word (up to maxLen zero bytes) only counts when a known atom
// other than mdat follows it; the 8-byte size-8 type-0 atom always counts.
func terminatorLength(c *bits.Cursor, pos int64, maxLen int64) (int64, bool) {
	b := c.Bytes(pos, pos+HeaderSize)
	if len(b) < 4 {
		return 0, false
	}
	if pio.U32BE(b) != 0 {
		if len(b) == HeaderSize && pio.U32BE(b) == terminator8 && pio.U32BE(b[4:]) == 0 {
			return terminator8, true
		}
		return 0, false
	}
	for z := int64(4); z <= maxLen; z++ {
		if z > 4 {
			if zb, ok := c.PeekByte(pos + z - 1); !ok || zb != 0 {
				break
			}
		}
		next, ok := peekHeader(c, pos+z)
		if ok && next.Known && !next.ToEnd && next.Kind != KindMediaData {
			return z, true
		}
	}
	return 0, false
}
