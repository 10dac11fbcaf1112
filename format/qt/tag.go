package qt

import (
	"time"

	"github.com/ugparu/mediacarve/utils/bits/pio"
)

// Tag is a four-character atom code.
type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := range 4 {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

// Printable reports whether t is made of printable ASCII, allowing the
// copyright sign as first byte as in QuickTime user data atoms.
func (t Tag) Printable() bool {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i, c := range b {
		if i == 0 && c == copyrightSign {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

const copyrightSign = 0xa9

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], tag)
	return Tag(pio.U32BE(b[:]))
}

const (
	FTYP = Tag(0x66747970)
	MOOV = Tag(0x6d6f6f76)
	MVHD = Tag(0x6d766864)
	TRAK = Tag(0x7472616b)
	TKHD = Tag(0x746b6864)
	TREF = Tag(0x74726566)
	EDTS = Tag(0x65647473)
	ELST = Tag(0x656c7374)
	MDIA = Tag(0x6d646961)
	MDHD = Tag(0x6d646864)
	HDLR = Tag(0x68646c72)
	MINF = Tag(0x6d696e66)
	VMHD = Tag(0x766d6864)
	SMHD = Tag(0x736d6864)
	GMHD = Tag(0x676d6864)
	GMIN = Tag(0x676d696e)
	HMHD = Tag(0x686d6864)
	NMHD = Tag(0x6e6d6864)
	DINF = Tag(0x64696e66)
	DREF = Tag(0x64726566)
	URL  = Tag(0x75726c20)
	URN  = Tag(0x75726e20)
	ALIS = Tag(0x616c6973)
	STBL = Tag(0x7374626c)
	STSD = Tag(0x73747364)
	STTS = Tag(0x73747473)
	CTTS = Tag(0x63747473)
	STSS = Tag(0x73747373)
	STPS = Tag(0x73747073)
	SDTP = Tag(0x73647470)
	STSC = Tag(0x73747363)
	STSZ = Tag(0x7374737a)
	STZ2 = Tag(0x73747a32)
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
	UDTA = Tag(0x75647461)
	META = Tag(0x6d657461)
	ILST = Tag(0x696c7374)
	KEYS = Tag(0x6b657973)
	IODS = Tag(0x696f6473)
	MDAT = Tag(0x6d646174)
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
	WIDE = Tag(0x77696465)
	PNOT = Tag(0x706e6f74)
	UUID = Tag(0x75756964)

	AVC1 = Tag(0x61766331)
	AVC3 = Tag(0x61766333)
	MP4V = Tag(0x6d703476)
	S263 = Tag(0x73323633)
	H263 = Tag(0x68323633)
	JPEG = Tag(0x6a706567)
	MJPA = Tag(0x6d6a7061)
	MJPB = Tag(0x6d6a7062)

	MP4A = Tag(0x6d703461)
	SAMR = Tag(0x73616d72)
	SAWB = Tag(0x73617762)
	TWOS = Tag(0x74776f73)
	SOWT = Tag(0x736f7774)
	IMA4 = Tag(0x696d6134)
	ULAW = Tag(0x756c6177)
	ALAW = Tag(0x616c6177)
	LPCM = Tag(0x6c70636d)

	AVCC = Tag(0x61766343)
	ESDS = Tag(0x65736473)
	D263 = Tag(0x64323633)
	DAMR = Tag(0x64616d72)
	WAVE = Tag(0x77617665)
	FRMA = Tag(0x66726d61)
	ENDA = Tag(0x656e6461)
	BTRT = Tag(0x62747274)
	PASP = Tag(0x70617370)
	COLR = Tag(0x636f6c72)
	CLAP = Tag(0x636c6170)
	FIEL = Tag(0x6669656c)
)

// Handler subtypes.
const (
	HandlerVideo = Tag(0x76696465) // vide
	HandlerSound = Tag(0x736f756e) // soun
)

var macEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// GetTime32 converts seconds since 1904 to a time.
func GetTime32(sec uint32) time.Time {
	return macEpoch.Add(time.Second * time.Duration(sec))
}

// GetTime64 converts 64-bit seconds since 1904 to a time.
func GetTime64(sec uint64) time.Time {
	return macEpoch.Add(time.Second * time.Duration(sec)) //nolint:gosec
}

// GetFixed16 decodes an 8.8 fixed-point value.
func GetFixed16(v uint16) float64 {
	return float64(v>>8) + float64(v&0xff)/256.0 //nolint:mnd
}

// GetFixed32 decodes a 16.16 fixed-point value.
func GetFixed32(v uint32) float64 {
	return float64(v>>16) + float64(v&0xffff)/65536.0 //nolint:mnd
}
