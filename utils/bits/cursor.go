// Package bits provides a position-tracking cursor over an in-memory byte source
// with byte-level and bit-level (big-endian bit order) primitives.
//
// Reading past the end of the source never panics: the cursor moves to the end,
// returns zero and raises a sticky overflow flag that stays set until the next
// SeekTo. Carving code checks Overflow after every structure it parses.
package bits

import (
	"fmt"

	mbits "github.com/bluenviron/mediacommon/pkg/bits"

	"github.com/ugparu/mediacarve/utils/bits/pio"
)

const byteSize = 8

// Cursor reads fixed-width fields from buf. Positions reported and accepted by
// the cursor are absolute: buf[0] lives at absolute byte offset base.
type Cursor struct {
	buf      []byte
	base     int64
	pos      int // bit position relative to buf
	overflow bool
}

// NewCursor returns a cursor at the start of buf, with buf[0] at absolute offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// NewCursorAt returns a cursor over buf where buf[0] lives at absolute offset base.
func NewCursorAt(buf []byte, base int64) *Cursor {
	return &Cursor{buf: buf, base: base}
}

// Base returns the absolute offset of the first byte of the source.
func (c *Cursor) Base() int64 {
	return c.base
}

// End returns the absolute offset one past the last byte of the source.
func (c *Cursor) End() int64 {
	return c.base + int64(len(c.buf))
}

// Len returns the length of the source in bytes.
func (c *Cursor) Len() int64 {
	return int64(len(c.buf))
}

// Position returns the absolute byte position, rounded down when the cursor
// is not byte aligned.
func (c *Cursor) Position() int64 {
	return c.base + int64(c.pos/byteSize)
}

// BitPosition returns the absolute position in bits.
func (c *Cursor) BitPosition() int64 {
	return c.base*byteSize + int64(c.pos)
}

// Remaining returns the number of whole bytes left.
func (c *Cursor) Remaining() int64 {
	return int64(len(c.buf)) - int64(c.pos/byteSize)
}

// RemainingBits returns the number of bits left.
func (c *Cursor) RemainingBits() int64 {
	return int64(len(c.buf))*byteSize - int64(c.pos)
}

// Overflow reports whether a read went past the end of the source since the last SeekTo.
func (c *Cursor) Overflow() bool {
	return c.overflow
}

// SeekTo moves to the absolute byte offset pos and clears the overflow flag.
// Positions outside the source clamp to its bounds and raise the flag again.
func (c *Cursor) SeekTo(pos int64) {
	c.SeekBits(pos * byteSize)
}

// SeekBits moves to the absolute bit offset pos and clears the overflow flag.
func (c *Cursor) SeekBits(pos int64) {
	c.overflow = false
	rel := pos - c.base*byteSize
	switch {
	case rel < 0:
		c.pos = 0
		c.overflow = true
	case rel > int64(len(c.buf))*byteSize:
		c.pos = len(c.buf) * byteSize
		c.overflow = true
	default:
		c.pos = int(rel)
	}
}

// ByteAligned reports whether the cursor sits on a byte boundary.
func (c *Cursor) ByteAligned() bool {
	return c.pos%byteSize == 0
}

// BitsToAlign returns the number of bits up to the next byte boundary (0 when aligned).
func (c *Cursor) BitsToAlign() int {
	return (byteSize - c.pos%byteSize) % byteSize
}

// ByteAlign advances to the next byte boundary.
func (c *Cursor) ByteAlign() {
	c.SkipBits(int64(c.BitsToAlign()))
}

func (c *Cursor) exhaust() {
	c.pos = len(c.buf) * byteSize
	c.overflow = true
}

// ReadBits reads n bits (0 <= n <= 64) in big-endian bit order.
func (c *Cursor) ReadBits(n int) uint64 {
	if n == 0 {
		return 0
	}
	v, err := mbits.ReadBits(c.buf, &c.pos, n)
	if err != nil {
		c.exhaust()
		return 0
	}
	return v
}

// PeekBits returns the next n bits without consuming them. ok is false when
// fewer than n bits remain; the overflow flag is never touched.
func (c *Cursor) PeekBits(n int) (v uint64, ok bool) {
	if n == 0 {
		return 0, true
	}
	pos := c.pos
	v, err := mbits.ReadBits(c.buf, &pos, n)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadFlag reads a single bit.
func (c *Cursor) ReadFlag() bool {
	v, err := mbits.ReadFlag(c.buf, &c.pos)
	if err != nil {
		c.exhaust()
		return false
	}
	return v
}

// ReadMarker reads a marker bit and reports whether it is set, as marker bits must be.
func (c *Cursor) ReadMarker() bool {
	return c.ReadFlag()
}

// ReadGolomb reads an unsigned Exp-Golomb code.
func (c *Cursor) ReadGolomb() uint32 {
	v, err := mbits.ReadGolombUnsigned(c.buf, &c.pos)
	if err != nil {
		c.exhaust()
		return 0
	}
	return v
}

// SkipBits advances n bits.
func (c *Cursor) SkipBits(n int64) {
	if n > c.RemainingBits() {
		c.exhaust()
		return
	}
	c.pos += int(n)
}

// SkipBytes advances n bytes.
func (c *Cursor) SkipBytes(n int64) {
	c.SkipBits(n * byteSize)
}

func (c *Cursor) aligned(n int) ([]byte, bool) {
	if !c.ByteAligned() {
		return nil, false
	}
	start := c.pos / byteSize
	if start+n > len(c.buf) {
		return nil, false
	}
	return c.buf[start : start+n], true
}

// U8 reads an 8-bit unsigned integer.
func (c *Cursor) U8() uint8 {
	if b, ok := c.aligned(1); ok {
		c.pos += byteSize
		return pio.U8(b)
	}
	return uint8(c.ReadBits(8)) //nolint:mnd
}

// U16 reads a big-endian 16-bit unsigned integer.
func (c *Cursor) U16() uint16 {
	if b, ok := c.aligned(2); ok { //nolint:mnd
		c.pos += 2 * byteSize
		return pio.U16BE(b)
	}
	return uint16(c.ReadBits(16)) //nolint:mnd
}

// U24 reads a big-endian 24-bit unsigned integer.
func (c *Cursor) U24() uint32 {
	if b, ok := c.aligned(3); ok { //nolint:mnd
		c.pos += 3 * byteSize
		return pio.U24BE(b)
	}
	return uint32(c.ReadBits(24)) //nolint:mnd
}

// U32 reads a big-endian 32-bit unsigned integer.
func (c *Cursor) U32() uint32 {
	if b, ok := c.aligned(4); ok { //nolint:mnd
		c.pos += 4 * byteSize
		return pio.U32BE(b)
	}
	return uint32(c.ReadBits(32)) //nolint:mnd
}

// U64 reads a big-endian 64-bit unsigned integer.
func (c *Cursor) U64() uint64 {
	if b, ok := c.aligned(8); ok { //nolint:mnd
		c.pos += 8 * byteSize
		return pio.U64BE(b)
	}
	return c.ReadBits(64) //nolint:mnd
}

// ReadBytes returns a view of the next n bytes. The cursor must be byte aligned;
// on overflow the returned slice holds what was left.
func (c *Cursor) ReadBytes(n int64) []byte {
	c.ByteAlign()
	start := c.pos / byteSize
	if n < 0 || int64(start)+n > int64(len(c.buf)) {
		rest := c.buf[start:]
		c.exhaust()
		return rest
	}
	c.pos += int(n) * byteSize
	return c.buf[start : start+int(n)]
}

// PeekByte returns the byte at absolute offset pos without moving the cursor.
func (c *Cursor) PeekByte(pos int64) (byte, bool) {
	rel := pos - c.base
	if rel < 0 || rel >= int64(len(c.buf)) {
		return 0, false
	}
	return c.buf[rel], true
}

// Bytes returns a view of the absolute byte range [from, to), clipped to the source.
func (c *Cursor) Bytes(from, to int64) []byte {
	from -= c.base
	to -= c.base
	if from < 0 {
		from = 0
	}
	if to > int64(len(c.buf)) {
		to = int64(len(c.buf))
	}
	if from >= to {
		return nil
	}
	return c.buf[from:to]
}

func (c *Cursor) String() string {
	return fmt.Sprintf("CURSOR %d.%d", c.Position(), c.pos%byteSize)
}
