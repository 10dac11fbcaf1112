package mpeg4

import (
	"github.com/ugparu/mediacarve/codec/h263"
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/utils/bits"
)

// Start code values, the byte after the 00 00 01 prefix.
const (
	VideoObjectFirst      = 0x00
	VideoObjectLast       = 0x1f
	VideoObjectLayerFirst = 0x20
	VideoObjectLayerLast  = 0x2f
	VisualObjectSequence  = 0xb0
	VisualObjectSeqEnd    = 0xb1
	UserData              = 0xb2
	GroupOfVop            = 0xb3
	VisualObject          = 0xb5
	Vop                   = 0xb6
)

const startCodePrefix = 0x000001

// StartCodeLen is the length of a full start code, prefix and value.
const StartCodeLen = 4

const (
	shortCodeLen     = 3
	shortMask        = 0xfc
	shortPictureBits = 0x80
	shortEnd         = 0xfc
	shortCodeBits    = 22
)

// isPrefix reports whether b starts with 00 00 01.
func isPrefix(b []byte) bool {
	return len(b) >= StartCodeLen && b[0] == 0 && b[1] == 0 && b[2] == 1
}

// IsChunkStart reports whether b opens an MPEG-4 part 2 access unit: a
// sequence, object, layer, GOV or VOP start code, or a short header picture.
func IsChunkStart(b []byte) bool {
	if isPrefix(b) {
		switch v := b[3]; {
		case v <= VideoObjectLayerLast:
			return true
		case v == VisualObjectSequence, v == GroupOfVop, v == VisualObject, v == Vop, v == UserData:
			return true
		}
		return false
	}
	return h263.IsPictureStart(b)
}

// marker is a start code found in the stream.
type marker struct {
	value grammar.Marker
	kind  grammar.Kind
	known bool
	short bool
}

// markerAt decodes the start code at p, if any. Reserved and system start
// codes are reported with known unset.
func markerAt(c *bits.Cursor, p int64) (marker, bool) {
	b := c.Bytes(p, p+StartCodeLen)
	if len(b) < shortCodeLen || b[0] != 0 || b[1] != 0 {
		return marker{}, false
	}
	var m marker
	switch {
	case b[2] == 1:
		if len(b) < StartCodeLen {
			return marker{}, false
		}
		m.value = StartMarker(b[3])
	case b[2]&shortMask == shortPictureBits:
		m.value, m.short = ShortPictureMarker, true
	case b[2]&shortMask == shortEnd:
		m.value, m.short = ShortEndMarker, true
	default:
		return marker{}, false
	}
	m.kind, m.known = Table.Lookup(m.value)
	return m, true
}

// shortPictureAt reports whether p holds a short header picture whose fixed
// PTYPE bits are in place.
func shortPictureAt(c *bits.Cursor, p int64) bool {
	return h263.IsPictureStart(c.Bytes(p, p+5)) //nolint:mnd
}

// temporalReference returns the 8-bit counter following a short picture code.
func temporalReference(c *bits.Cursor, p int64) (uint8, bool) {
	b := c.Bytes(p, p+4) //nolint:mnd
	if len(b) < 4 {      //nolint:mnd
		return 0, false
	}
	return b[2]<<6 | b[3]>>2, true
}

// scan slides over [from, limit] and returns the first start code accept
// takes. accept may stop the scan by returning stop.
func scan(c *bits.Cursor, from, limit int64, accept func(p int64, m marker) (ok, stop bool)) (int64, bool) {
	end := c.End()
	for p := from; p <= limit && p+shortCodeLen <= end; {
		if m, found := markerAt(c, p); found {
			ok, stop := accept(p, m)
			if ok {
				return p, true
			}
			if stop {
				return 0, false
			}
		}
		// no code can start at p+1 or p+2 unless the bytes before them are zero
		b2, _ := c.PeekByte(p + 2)
		b1, _ := c.PeekByte(p + 1)
		switch {
		case b2 != 0:
			p += 3
		case b1 != 0:
			p += 2
		default:
			p++
		}
	}
	return 0, false
}

// nextStartCode returns the first known start code in [from, from+budget].
// With short set only short header codes and a new visual object sequence end
// the node. When the source ends first it returns the source end with
// truncated set.
func nextStartCode(c *bits.Cursor, from, budget int64, short bool) (end int64, truncated, ok bool) {
	limit := from + budget
	p, found := scan(c, from, limit, func(p int64, m marker) (bool, bool) {
		switch {
		case !m.known:
			return false, false
		case !short:
			return !m.short, false
		case m.short && m.kind == KindVop:
			return shortPictureAt(c, p), false
		default:
			return m.short || m.kind == KindVisualObjectSequence, false
		}
	})
	if found {
		return p, false, true
	}
	if c.End() <= limit+shortCodeLen {
		return c.End(), true, true
	}
	return 0, false, false
}
