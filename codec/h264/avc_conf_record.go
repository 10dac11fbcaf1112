package h264

import (
	"errors"

	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

// ErrDecconfInvalid is returned for a truncated or malformed avcC record.
var ErrDecconfInvalid = errors.New("h264: AVCDecoderConfRecord invalid")

const (
	maskLengthSizeMinusOne    = 0x03
	maskSPSCount              = 0x1f
	maskLengthSizeMinusOneInv = 0xfc
	maskSPSCountInv           = 0xe0
	lengthFieldSize           = 2
	minRecordSize             = 7
)

// AVCDecoderConfRecord is the avcC payload of an avc1/avc3 sample entry.
type AVCDecoderConfRecord struct {
	ConfigurationVersion uint8
	AVCProfileIndication uint8
	ProfileCompatibility uint8
	AVCLevelIndication   uint8
	LengthSizeMinusOne   uint8
	SPS                  [][]byte
	PPS                  [][]byte
}

// LengthSize returns the size in bytes of the NAL unit length prefix used by samples.
func (avc *AVCDecoderConfRecord) LengthSize() int {
	return int(avc.LengthSizeMinusOne) + 1
}

func readParameterSets(c *bits.Cursor, count int) ([][]byte, bool) {
	sets := make([][]byte, 0, count)
	for range count {
		l := int64(c.U16())
		if c.Overflow() || c.Remaining() < l {
			return nil, false
		}
		sets = append(sets, c.ReadBytes(l))
	}
	return sets, true
}

// Unmarshal decodes b and returns the number of bytes consumed.
func (avc *AVCDecoderConfRecord) Unmarshal(b []byte) (n int, err error) {
	if len(b) < minRecordSize {
		return 0, ErrDecconfInvalid
	}

	c := bits.NewCursor(b)
	avc.ConfigurationVersion = c.U8()
	avc.AVCProfileIndication = c.U8()
	avc.ProfileCompatibility = c.U8()
	avc.AVCLevelIndication = c.U8()
	avc.LengthSizeMinusOne = c.U8() & maskLengthSizeMinusOne

	var ok bool
	if avc.SPS, ok = readParameterSets(c, int(c.U8()&maskSPSCount)); !ok {
		return int(c.Position()), ErrDecconfInvalid
	}
	ppsCount := int(c.U8())
	if c.Overflow() {
		return int(c.Position()), ErrDecconfInvalid
	}
	if avc.PPS, ok = readParameterSets(c, ppsCount); !ok {
		return int(c.Position()), ErrDecconfInvalid
	}
	return int(c.Position()), nil
}

// Len returns the size of the marshalled record.
func (avc *AVCDecoderConfRecord) Len() (n int) {
	n = minRecordSize
	for _, sps := range avc.SPS {
		n += lengthFieldSize + len(sps)
	}
	for _, pps := range avc.PPS {
		n += lengthFieldSize + len(pps)
	}
	return
}

// Marshal writes the record into b, which must hold Len bytes.
func (avc *AVCDecoderConfRecord) Marshal(b []byte) (n int) {
	b[0] = 1
	b[1] = avc.AVCProfileIndication
	b[2] = avc.ProfileCompatibility
	b[3] = avc.AVCLevelIndication
	b[4] = avc.LengthSizeMinusOne | maskLengthSizeMinusOneInv
	b[5] = uint8(len(avc.SPS)) | maskSPSCountInv //nolint:gosec
	n = 6

	put := func(set []byte) {
		pio.PutU16BE(b[n:], uint16(len(set))) //nolint:gosec
		n += lengthFieldSize
		n += copy(b[n:], set)
	}
	for _, sps := range avc.SPS {
		put(sps)
	}
	b[n] = uint8(len(avc.PPS)) //nolint:gosec
	n++
	for _, pps := range avc.PPS {
		put(pps)
	}
	return
}
