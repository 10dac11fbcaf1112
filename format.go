package mediacarve

// Format identifies what a carved block holds.
type Format uint32

// formatMagic offsets format values away from small integers read from media.
const formatMagic = 233333

// makeContainerFormat creates a Format for size-prefixed container files.
func makeContainerFormat(base uint32) (f Format) {
	f = Format(base)<<formatOtherBits | Format(formatContainerBit)
	return
}

// makeStreamFormat creates a Format for start code delimited elementary streams.
func makeStreamFormat(base uint32) (f Format) {
	f = Format(base) << formatOtherBits
	return
}

// variables representing the carved formats.
var (
	QuickTime  = makeContainerFormat(formatMagic + 1) //nolint:mnd
	MP4        = makeContainerFormat(formatMagic + 2) //nolint:mnd
	ThreeGP    = makeContainerFormat(formatMagic + 3) //nolint:mnd
	MPEG4Video = makeStreamFormat(formatMagic + 1)    //nolint:mnd
	H263       = makeStreamFormat(formatMagic + 2)    //nolint:mnd
)

// Bitwise flags for formats.
const (
	formatContainerBit = 0x1
	formatOtherBits    = 1
)

// String returns the human-readable name of a Format.
func (f Format) String() string {
	switch f {
	case QuickTime:
		return "QUICKTIME"
	case MP4:
		return "MP4"
	case ThreeGP:
		return "3GP"
	case MPEG4Video:
		return "MPEG4_VIDEO"
	case H263:
		return "H263"
	}
	return "UNKNOWN"
}

// IsContainer returns true if the Format is an atom container file.
func (f Format) IsContainer() bool {
	return f&formatContainerBit != 0
}

// IsElementaryStream returns true if the Format is a raw video bitstream.
func (f Format) IsElementaryStream() bool {
	return f&formatContainerBit == 0
}
