// Package h263 recognises H.263 / MPEG-4 short-header pictures.
package h263

const (
	pscMask = 0xfc
	pscByte = 0x80
	// PictureStartCodeBits is the length of the picture start code.
	PictureStartCodeBits = 22
)

// IsPictureStartCode reports whether b starts with the 22-bit picture start code.
func IsPictureStartCode(b []byte) bool {
	return len(b) >= 3 && b[0] == 0 && b[1] == 0 && b[2]&pscMask == pscByte
}

// IsPictureStart reports whether b starts with a picture start code followed by
// the fixed PTYPE bits: marker 1, then 0 (H.263 id).
func IsPictureStart(b []byte) bool {
	if len(b) < 5 || !IsPictureStartCode(b) {
		return false
	}
	// bits 22..29 hold the temporal reference, 30 and 31 the PTYPE prefix
	ptype := b[3] & 0x03 //nolint:mnd
	return ptype == 0x02  //nolint:mnd
}

// SourceFormat names the picture sizes of the short header.
type SourceFormat uint8

const (
	FormatForbidden SourceFormat = iota
	FormatSubQCIF
	FormatQCIF
	FormatCIF
	Format4CIF
	Format16CIF
)

// Size returns the luma width and height of f, or zeros for reserved values.
func (f SourceFormat) Size() (width, height int) {
	switch f {
	case FormatSubQCIF:
		return 128, 96 //nolint:mnd
	case FormatQCIF:
		return 176, 144 //nolint:mnd
	case FormatCIF:
		return 352, 288 //nolint:mnd
	case Format4CIF:
		return 704, 576 //nolint:mnd
	case Format16CIF:
		return 1408, 1152 //nolint:mnd
	default:
		return 0, 0
	}
}

// Layout returns the number of groups of blocks and macroblocks per group.
func (f SourceFormat) Layout() (gobs, mbsPerGOB int) {
	switch f {
	case FormatSubQCIF:
		return 6, 8 //nolint:mnd
	case FormatQCIF:
		return 9, 11 //nolint:mnd
	case FormatCIF:
		return 18, 22 //nolint:mnd
	case Format4CIF:
		return 18, 88 //nolint:mnd
	case Format16CIF:
		return 18, 352 //nolint:mnd
	default:
		return 0, 0
	}
}

func (f SourceFormat) String() string {
	switch f {
	case FormatSubQCIF:
		return "sub-QCIF"
	case FormatQCIF:
		return "QCIF"
	case FormatCIF:
		return "CIF"
	case Format4CIF:
		return "4CIF"
	case Format16CIF:
		return "16CIF"
	default:
		return "reserved"
	}
}

// Valid reports whether f names a picture size.
func (f SourceFormat) Valid() bool {
	return f >= FormatSubQCIF && f <= Format16CIF
}
