package qt

import (
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

// Atom encodes an atom with a compact header around the concatenated body.
func Atom(tag Tag, body ...[]byte) []byte {
	n := HeaderSize
	for _, b := range body {
		n += len(b)
	}
	out := make([]byte, HeaderSize, n)
	pio.PutU32BE(out, uint32(n)) //nolint:gosec
	pio.PutU32BE(out[4:], uint32(tag))
	for _, b := range body {
		out = append(out, b...)
	}
	return out
}

// FullAtom encodes an atom whose body starts with version and flags.
func FullAtom(tag Tag, version uint8, flags uint32, body ...[]byte) []byte {
	vf := make([]byte, 4) //nolint:mnd
	pio.PutU32BE(vf, uint32(version)<<24|flags&0xffffff)
	return Atom(tag, append([][]byte{vf}, body...)...)
}

// U32s encodes big-endian 32-bit fields.
func U32s(v ...uint32) []byte {
	out := make([]byte, 4*len(v)) //nolint:mnd
	for i, x := range v {
		pio.PutU32BE(out[4*i:], x)
	}
	return out
}
