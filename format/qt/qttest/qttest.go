// Package qttest builds small synthetic QuickTime files for tests.
package qttest

import (
	"github.com/ugparu/mediacarve/format/qt"
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

// Track describes one track of a synthetic file.
type Track struct {
	Format  qt.Tag
	Handler qt.Tag
	// Samples are written to mdat in order, SamplesPerChunk at a time.
	Samples         [][]byte
	SamplesPerChunk int
	// Config is the avcC payload for avc1 tracks.
	Config []byte
}

// File describes a synthetic file: ftyp, Extra, moov, then mdat.
type File struct {
	Brand  qt.Tag
	Tracks []Track
	Extra  [][]byte
}

// Layout reports where the pieces of a built file landed.
type Layout struct {
	Movie     int64
	MediaData int64
	Payload   int64
	End       int64
	// Chunks holds the absolute [offset, offset+length) of every chunk per track.
	Chunks [][][2]int64
}

// Build encodes f.
func Build(f File) ([]byte, Layout) {
	brand := f.Brand
	if brand == 0 {
		brand = qt.StringToTag("3gp4")
	}
	ftyp := qt.Atom(qt.FTYP, qt.U32s(uint32(brand), 0x200, uint32(brand)))
	head := append([]byte{}, ftyp...)
	for _, e := range f.Extra {
		head = append(head, e...)
	}

	// chunk offsets do not change the size of moov: build once to measure
	moov := movie(f, nil)
	var l Layout
	l.Movie = int64(len(head))
	l.MediaData = l.Movie + int64(len(moov))
	l.Payload = l.MediaData + qt.HeaderSize

	var payload []byte
	offsets := make([][]uint32, len(f.Tracks))
	l.Chunks = make([][][2]int64, len(f.Tracks))
	for i, t := range f.Tracks {
		for _, chunk := range chunks(t) {
			off := l.Payload + int64(len(payload))
			offsets[i] = append(offsets[i], uint32(off)) //nolint:gosec
			start := len(payload)
			for _, s := range chunk {
				payload = append(payload, s...)
			}
			l.Chunks[i] = append(l.Chunks[i], [2]int64{off, off + int64(len(payload)-start)})
		}
	}

	out := append(head, movie(f, offsets)...)
	out = append(out, qt.Atom(qt.MDAT, payload)...)
	l.End = int64(len(out))
	return out, l
}

func chunks(t Track) [][][]byte {
	per := max(t.SamplesPerChunk, 1)
	var out [][][]byte
	for i := 0; i < len(t.Samples); i += per {
		out = append(out, t.Samples[i:min(i+per, len(t.Samples))])
	}
	return out
}

func movie(f File, offsets [][]uint32) []byte {
	mvhd := qt.FullAtom(qt.MVHD, 0, 0, qt.U32s(0, 0, 1000, 0, 0x10000), make([]byte, 2+10+36+24), //nolint:mnd
		qt.U32s(uint32(len(f.Tracks)+1))) //nolint:gosec
	body := [][]byte{mvhd}
	for i, t := range f.Tracks {
		var off []uint32
		if offsets != nil {
			off = offsets[i]
		} else {
			off = make([]uint32, len(chunks(t)))
		}
		body = append(body, track(uint32(i+1), t, off)) //nolint:gosec
	}
	return qt.Atom(qt.MOOV, body...)
}

func track(id uint32, t Track, offsets []uint32) []byte {
	tkhd := qt.FullAtom(qt.TKHD, 0, 3, qt.U32s(0, 0, id, 0, 0), make([]byte, 8+2+2+2+2+36), //nolint:mnd
		qt.U32s(176<<16, 144<<16)) //nolint:mnd
	mdhd := qt.FullAtom(qt.MDHD, 0, 0, qt.U32s(0, 0, 90000, 0), []byte{0x55, 0xc4, 0, 0}) //nolint:mnd
	hdlr := qt.FullAtom(qt.HDLR, 0, 0, qt.U32s(0, uint32(t.Handler), 0, 0, 0), []byte("Handler\x00"))

	var mh []byte
	if t.Handler == qt.HandlerSound {
		mh = qt.FullAtom(qt.SMHD, 0, 0, make([]byte, 4)) //nolint:mnd
	} else {
		mh = qt.FullAtom(qt.VMHD, 0, 1, make([]byte, 8)) //nolint:mnd
	}
	dinf := qt.Atom(qt.DINF, qt.FullAtom(qt.DREF, 0, 0, qt.U32s(1), qt.FullAtom(qt.URL, 0, 1)))

	stsd := qt.FullAtom(qt.STSD, 0, 0, qt.U32s(1), SampleEntry(t))
	stts := qt.FullAtom(qt.STTS, 0, 0, qt.U32s(1, uint32(len(t.Samples)), 3000)) //nolint:gosec,mnd
	stsc := qt.FullAtom(qt.STSC, 0, 0, qt.U32s(1, 1, uint32(max(t.SamplesPerChunk, 1)), 1)) //nolint:gosec
	sizes := []uint32{0, uint32(len(t.Samples))} //nolint:gosec
	for _, s := range t.Samples {
		sizes = append(sizes, uint32(len(s))) //nolint:gosec
	}
	stsz := qt.FullAtom(qt.STSZ, 0, 0, qt.U32s(sizes...))
	stco := qt.FullAtom(qt.STCO, 0, 0, qt.U32s(append([]uint32{uint32(len(offsets))}, offsets...)...)) //nolint:gosec
	stbl := qt.Atom(qt.STBL, stsd, stts, stsc, stsz, stco)

	minf := qt.Atom(qt.MINF, mh, dinf, stbl)
	return qt.Atom(qt.TRAK, tkhd, qt.Atom(qt.MDIA, mdhd, hdlr, minf))
}

// SampleEntry encodes the sample description of t.
func SampleEntry(t Track) []byte {
	if t.Handler == qt.HandlerSound {
		b := make([]byte, 28) //nolint:mnd
		pio.PutU16BE(b[6:], 1)
		pio.PutU16BE(b[16:], 1)
		pio.PutU16BE(b[18:], 16)          //nolint:mnd
		pio.PutU32BE(b[24:], 8000<<16) //nolint:mnd
		damr := qt.Atom(qt.DAMR, []byte("test"), []byte{0, 0x81, 0xff, 0, 1})
		return qt.Atom(t.Format, b, damr)
	}
	b := make([]byte, 78) //nolint:mnd
	pio.PutU16BE(b[6:], 1)
	pio.PutU16BE(b[24:], 176)         //nolint:mnd
	pio.PutU16BE(b[26:], 144)         //nolint:mnd
	pio.PutU32BE(b[28:], 0x480000)    //nolint:mnd
	pio.PutU32BE(b[32:], 0x480000)    //nolint:mnd
	pio.PutU16BE(b[40:], 1)
	pio.PutU16BE(b[74:], 0x18)        //nolint:mnd
	pio.PutU16BE(b[76:], 0xffff)      //nolint:mnd
	var children [][]byte
	if t.Config != nil {
		children = append(children, qt.Atom(qt.AVCC, t.Config))
	}
	return qt.Atom(t.Format, append([][]byte{b}, children...)...)
}
