// Package h264 recognises H.264 payload inside carved containers.
package h264

import (
	mh264 "github.com/bluenviron/mediacommon/pkg/codecs/h264"

	"github.com/ugparu/mediacarve/utils/nal"
)

const (
	forbiddenBitMask = 0x80
	refIdcMask       = 0x60
	typeMask         = 0x1f
)

// NALUType returns the type field of a NAL unit header byte.
func NALUType(header byte) mh264.NALUType {
	return mh264.NALUType(header & typeMask)
}

// IsChunkStart reports whether b starts with a length-prefixed NAL unit that can
// open an H.264 access unit: forbidden bit clear, type in 1..9, a plausible
// nal_ref_idc and a non-zero length.
func IsChunkStart(b []byte, lengthSize int) bool {
	size, ok := nal.ReadLength(b, lengthSize)
	if !ok || size == 0 || len(b) <= lengthSize {
		return false
	}
	return isAccessUnitHeader(b[lengthSize])
}

// IsAnnexBChunkStart is IsChunkStart for chunks written with start codes.
func IsAnnexBChunkStart(b []byte) bool {
	n, ok := nal.StartCodeLen(b, 0)
	if !ok || len(b) <= n {
		return false
	}
	return isAccessUnitHeader(b[n])
}

func isAccessUnitHeader(h byte) bool {
	if h&forbiddenBitMask != 0 {
		return false
	}
	refIdc := h & refIdcMask
	switch NALUType(h) {
	case mh264.NALUTypeIDR, mh264.NALUTypeSPS, mh264.NALUTypePPS:
		return refIdc != 0
	case mh264.NALUTypeSEI, mh264.NALUTypeAccessUnitDelimiter:
		return refIdc == 0
	case mh264.NALUTypeNonIDR, mh264.NALUTypeDataPartitionA,
		mh264.NALUTypeDataPartitionB, mh264.NALUTypeDataPartitionC:
		return true
	default:
		return false
	}
}

// SPSInfo is the subset of a sequence parameter set reported on carved sample entries.
type SPSInfo struct {
	Width  int
	Height int
	FPS    float64
}

// ParseSPS decodes a raw SPS NAL unit.
func ParseSPS(sps []byte) (SPSInfo, error) {
	var s mh264.SPS
	if err := s.Unmarshal(sps); err != nil {
		return SPSInfo{}, err
	}
	return SPSInfo{Width: s.Width(), Height: s.Height(), FPS: s.FPS()}, nil
}
