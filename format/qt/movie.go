package qt

import (
	"bytes"
	"time"

	"github.com/ugparu/mediacarve/engine"
)

// FileType is the ftyp payload.
type FileType struct {
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
}

func parseFileType(p *atomParser) engine.Outcome {
	if p.left() < 8 { //nolint:mnd
		return p.reject("ftyp brands")
	}
	h := &FileType{
		MajorBrand:   Tag(p.c.U32()),
		MinorVersion: p.c.U32(),
	}
	if !h.MajorBrand.Printable() {
		return p.reject("major brand")
	}
	for p.left() >= 4 { //nolint:mnd
		h.CompatibleBrands = append(h.CompatibleBrands, Tag(p.c.U32()))
	}
	p.cand.Header = h
	p.cand.Add("major_brand", h.MajorBrand)
	return p.done()
}

// MovieHeader is the mvhd payload.
type MovieHeader struct {
	Version         uint8
	CreateTime      time.Time
	ModifyTime      time.Time
	TimeScale       uint32
	Duration        uint64
	PreferredRate   float64
	PreferredVolume float64
	NextTrackID     uint32
}

func parseMovieHeader(p *atomParser) engine.Outcome {
	h := &MovieHeader{Version: p.version}
	switch p.version {
	case 0:
		h.CreateTime = GetTime32(p.c.U32())
		h.ModifyTime = GetTime32(p.c.U32())
		h.TimeScale = p.c.U32()
		h.Duration = uint64(p.c.U32())
	case 1:
		h.CreateTime = GetTime64(p.c.U64())
		h.ModifyTime = GetTime64(p.c.U64())
		h.TimeScale = p.c.U32()
		h.Duration = p.c.U64()
	default:
		return p.reject("mvhd version")
	}
	h.PreferredRate = GetFixed32(p.c.U32())
	h.PreferredVolume = GetFixed16(p.c.U16())
	// reserved, matrix, predefined
	p.c.SkipBytes(10 + 36 + 24) //nolint:mnd
	h.NextTrackID = p.c.U32()

	p.cand.Header = h
	p.cand.Add("timescale", h.TimeScale)
	p.cand.Add("duration", h.Duration)
	if h.TimeScale == 0 {
		p.cand.Suspect("timescale", h.TimeScale)
	}
	return p.done()
}

// TrackHeader is the tkhd payload.
type TrackHeader struct {
	Version  uint8
	Flags    uint32
	TrackID  uint32
	Duration uint64
	Volume   float64
	Width    float64
	Height   float64
}

func parseTrackHeader(p *atomParser) engine.Outcome {
	h := &TrackHeader{Version: p.version, Flags: p.flags}
	switch p.version {
	case 0:
		p.c.SkipBytes(8) //nolint:mnd
		h.TrackID = p.c.U32()
		p.c.SkipBytes(4) //nolint:mnd
		h.Duration = uint64(p.c.U32())
	case 1:
		p.c.SkipBytes(16) //nolint:mnd
		h.TrackID = p.c.U32()
		p.c.SkipBytes(4) //nolint:mnd
		h.Duration = p.c.U64()
	default:
		return p.reject("tkhd version")
	}
	// reserved, layer, alternate group
	p.c.SkipBytes(8 + 2 + 2) //nolint:mnd
	h.Volume = GetFixed16(p.c.U16())
	p.c.SkipBytes(2 + 36) //nolint:mnd
	h.Width = GetFixed32(p.c.U32())
	h.Height = GetFixed32(p.c.U32())

	p.cand.Header = h
	p.cand.Add("track_id", h.TrackID)
	if h.TrackID == 0 {
		p.cand.Suspect("track_id", h.TrackID)
	}
	return p.done()
}

// MediaHeader is the mdhd payload.
type MediaHeader struct {
	Version   uint8
	TimeScale uint32
	Duration  uint64
	Language  uint16
}

func parseMediaHeader(p *atomParser) engine.Outcome {
	h := &MediaHeader{Version: p.version}
	switch p.version {
	case 0:
		p.c.SkipBytes(8) //nolint:mnd
		h.TimeScale = p.c.U32()
		h.Duration = uint64(p.c.U32())
	case 1:
		p.c.SkipBytes(16) //nolint:mnd
		h.TimeScale = p.c.U32()
		h.Duration = p.c.U64()
	default:
		return p.reject("mdhd version")
	}
	h.Language = p.c.U16()
	p.c.SkipBytes(2) //nolint:mnd

	p.cand.Header = h
	p.cand.Add("timescale", h.TimeScale)
	if h.TimeScale == 0 {
		p.cand.Suspect("timescale", h.TimeScale)
	}
	return p.done()
}

// Handler is the hdlr payload.
type Handler struct {
	ComponentType Tag
	SubType       Tag
	Name          string
}

func parseHandler(p *atomParser) engine.Outcome {
	if p.left() < 20 { //nolint:mnd
		return p.reject("hdlr fields")
	}
	h := &Handler{
		ComponentType: Tag(p.c.U32()),
		SubType:       Tag(p.c.U32()),
	}
	// manufacturer, flags, flags mask
	p.c.SkipBytes(12) //nolint:mnd
	h.Name = atomString(p.c.ReadBytes(p.left()))

	p.cand.Header = h
	p.cand.Add("handler", h.SubType)
	return p.done()
}

// atomString decodes either a Pascal string (QuickTime) or a zero-terminated
// string (ISO) filling b.
func atomString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if n := int(b[0]); n > 0 && n < len(b) && (n == len(b)-1 || n < ' ') {
		return string(b[1 : 1+n])
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// EditListEntry is one elst entry.
type EditListEntry struct {
	Duration  uint64
	MediaTime int64
	Rate      float64
}

// EditList is the elst payload.
type EditList struct {
	Entries []EditListEntry
}

func parseEditList(p *atomParser) engine.Outcome {
	size := int64(12) //nolint:mnd
	switch p.version {
	case 0:
	case 1:
		size = 20
	default:
		return p.reject("elst version")
	}
	count := p.c.U32()
	if !p.table(count, size) {
		return p.reject("elst entries")
	}
	h := &EditList{Entries: make([]EditListEntry, count)}
	for i := range h.Entries {
		e := &h.Entries[i]
		if p.version == 1 {
			e.Duration = p.c.U64()
			e.MediaTime = int64(p.c.U64()) //nolint:gosec
		} else {
			e.Duration = uint64(p.c.U32())
			e.MediaTime = int64(int32(p.c.U32())) //nolint:gosec
		}
		e.Rate = GetFixed32(p.c.U32())
	}
	p.cand.Header = h
	p.cand.Add("entries", count)
	return p.done()
}

func parseVideoMediaHeader(p *atomParser) engine.Outcome {
	// graphics mode and opcolor
	p.c.SkipBytes(8) //nolint:mnd
	return p.done()
}

func parseSoundMediaHeader(p *atomParser) engine.Outcome {
	// balance and reserved
	p.c.SkipBytes(4) //nolint:mnd
	return p.done()
}

// parseEntryCount reads the child count of dref and stsd. The children follow
// as atoms of their own.
func parseEntryCount(p *atomParser) engine.Outcome {
	count := p.c.U32()
	p.cand.Add("entries", count)
	if count == 0 {
		p.cand.Warn("entries", count)
	}
	return p.done()
}

// DataEntry is a url, urn or alis reference.
type DataEntry struct {
	SelfContained bool
	Location      string
}

const selfContained = 0x000001

func parseDataEntry(p *atomParser) engine.Outcome {
	h := &DataEntry{SelfContained: p.flags&selfContained != 0}
	if !h.SelfContained {
		h.Location = atomString(p.c.ReadBytes(p.left()))
	}
	p.cand.Header = h
	return p.done()
}

// Meta records which layout a meta atom uses: ISO meta is a full atom, the
// QuickTime one is a plain container.
type Meta struct {
	ISO bool
}

func parseMeta(p *atomParser) engine.Outcome {
	h := &Meta{}
	if v, ok := p.c.PeekBits(32); ok && v == 0 && p.left() >= 4 { //nolint:mnd
		h.ISO = true
		p.c.SkipBytes(4) //nolint:mnd
	}
	p.cand.Header = h
	return p.done()
}
