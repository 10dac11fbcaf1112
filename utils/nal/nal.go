// Package nal walks NAL units framed either with length prefixes or with start codes.
package nal

import (
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

// MinNaluSize is the default (and largest) length prefix size.
const MinNaluSize = 4

// StartCodeLen reports whether a 3- or 4-byte start code begins at pos and returns its length.
func StartCodeLen(b []byte, pos int) (startCodeLength int, found bool) {
	if pos+2 >= len(b) || b[pos] != 0 {
		return 0, false
	}

	val3 := pio.U24BE(b[pos:])
	if val3 == 1 {
		return 3, true //nolint:mnd
	}

	if val3 == 0 && pos+3 < len(b) && b[pos+3] == 1 {
		return 4, true //nolint:mnd
	}

	return 0, false
}

// ReadLength reads a big-endian length prefix of size bytes (1, 2, 3 or 4).
func ReadLength(b []byte, size int) (int, bool) {
	if size < 1 || size > MinNaluSize || len(b) < size {
		return 0, false
	}
	var v int
	for i := range size {
		v = v<<8 | int(b[i])
	}
	return v, true
}

// SplitAVCC splits length-prefixed NAL units. complete is false when the last
// unit was cut short; the partial unit is still returned.
func SplitAVCC(b []byte, lengthSize int) (nalus [][]byte, complete bool) {
	for len(b) > 0 {
		size, ok := ReadLength(b, lengthSize)
		if !ok {
			return nalus, false
		}
		b = b[lengthSize:]
		if size > len(b) {
			if len(b) > 0 {
				nalus = append(nalus, b)
			}
			return nalus, false
		}
		if size > 0 {
			nalus = append(nalus, b[:size])
		}
		b = b[size:]
	}
	return nalus, true
}
