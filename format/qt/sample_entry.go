package qt

import (
	"math"

	"github.com/ugparu/mediacarve/codec/h264"
	"github.com/ugparu/mediacarve/engine"
)

const (
	// sampleEntryBase is the reserved/data reference prefix of every sample entry.
	sampleEntryBase = 8
	videoEntrySize  = sampleEntryBase + 70
	audioEntrySize  = sampleEntryBase + 20
	audioV1Extra    = 16
	audioV2Extra    = 36
	compressorLen   = 32
)

// VideoSampleEntry is a visual sample description.
type VideoSampleEntry struct {
	Format       Tag
	DataRefIndex uint16
	Vendor       Tag
	Width        uint16
	Height       uint16
	HorizRes     float64
	VertRes      float64
	FrameCount   uint16
	Compressor   string
	Depth        uint16
}

func parseVideoSampleEntry(p *atomParser) engine.Outcome {
	if p.left() < videoEntrySize {
		return p.reject("video sample entry")
	}
	h := &VideoSampleEntry{Format: p.tag}
	p.c.SkipBytes(6) //nolint:mnd
	h.DataRefIndex = p.c.U16()
	// version, revision
	p.c.SkipBytes(4) //nolint:mnd
	h.Vendor = Tag(p.c.U32())
	// temporal and spatial quality
	p.c.SkipBytes(8) //nolint:mnd
	h.Width = p.c.U16()
	h.Height = p.c.U16()
	h.HorizRes = GetFixed32(p.c.U32())
	h.VertRes = GetFixed32(p.c.U32())
	p.c.SkipBytes(4) //nolint:mnd
	h.FrameCount = p.c.U16()
	h.Compressor = atomString(p.c.ReadBytes(compressorLen))
	h.Depth = p.c.U16()
	p.c.SkipBytes(2) //nolint:mnd

	p.cand.Header = h
	p.cand.Add("width", h.Width)
	p.cand.Add("height", h.Height)
	if h.Width == 0 || h.Height == 0 {
		p.cand.Warn("dimensions", h.Width)
	}
	if h.DataRefIndex == 0 {
		p.cand.Warn("data_ref_index", h.DataRefIndex)
	}
	return p.done()
}

// AudioSampleEntry is a sound sample description in QuickTime v0, v1 or v2 layout.
type AudioSampleEntry struct {
	Format           Tag
	DataRefIndex     uint16
	Version          uint16
	Channels         uint32
	SampleSize       uint32
	SampleRate       float64
	SamplesPerPacket uint32
	BytesPerFrame    uint32
}

func parseAudioSampleEntry(p *atomParser) engine.Outcome {
	if p.left() < audioEntrySize {
		// a bare format atom, as found inside wave
		p.cand.Kind = KindUnknown
		return skipBody(p)
	}
	h := &AudioSampleEntry{Format: p.tag}
	p.c.SkipBytes(6) //nolint:mnd
	h.DataRefIndex = p.c.U16()
	h.Version = p.c.U16()
	// revision, vendor
	p.c.SkipBytes(6) //nolint:mnd
	h.Channels = uint32(p.c.U16())
	h.SampleSize = uint32(p.c.U16())
	// compression id, packet size
	p.c.SkipBytes(4) //nolint:mnd
	h.SampleRate = GetFixed32(p.c.U32())

	switch h.Version {
	case 0:
	case 1:
		if p.left() < audioV1Extra {
			return p.reject("sound v1 fields")
		}
		h.SamplesPerPacket = p.c.U32()
		p.c.SkipBytes(4) //nolint:mnd
		h.BytesPerFrame = p.c.U32()
		p.c.SkipBytes(4) //nolint:mnd
	case 2: //nolint:mnd
		if p.left() < audioV2Extra {
			return p.reject("sound v2 fields")
		}
		p.c.SkipBytes(4) //nolint:mnd
		h.SampleRate = math.Float64frombits(p.c.U64())
		h.Channels = p.c.U32()
		p.c.SkipBytes(4) //nolint:mnd
		h.SampleSize = p.c.U32()
		p.c.SkipBytes(8) //nolint:mnd
		h.SamplesPerPacket = p.c.U32()
	default:
		return p.reject("sound version")
	}

	p.cand.Header = h
	p.cand.Add("channels", h.Channels)
	p.cand.Add("sample_rate", h.SampleRate)
	if h.Channels == 0 {
		p.cand.Warn("channels", h.Channels)
	}
	return p.done()
}

// AVCConfig is the avcC payload.
type AVCConfig struct {
	Record h264.AVCDecoderConfRecord
	SPS    *h264.SPSInfo
}

func parseAVCConfig(p *atomParser) engine.Outcome {
	h := &AVCConfig{}
	n, err := h.Record.Unmarshal(p.c.Bytes(p.c.Position(), p.end))
	if err != nil {
		return p.reject("avcC")
	}
	p.c.SkipBytes(int64(n))
	if len(h.Record.SPS) > 0 {
		if info, err := h264.ParseSPS(h.Record.SPS[0]); err == nil {
			h.SPS = &info
			p.cand.Add("width", info.Width)
			p.cand.Add("height", info.Height)
		} else {
			p.cand.Warn("sps", err.Error())
		}
	}
	p.cand.Header = h
	p.cand.Add("length_size", h.Record.LengthSize())
	if h.Record.LengthSizeMinusOne == 2 { //nolint:mnd
		p.cand.Suspect("length_size", h.Record.LengthSize())
	}
	return p.done()
}

// ESDescriptor is the part of an esds payload the carver cares about.
type ESDescriptor struct {
	ESID          uint16
	ObjectType    uint8
	StreamType    uint8
	MaxBitrate    uint32
	AvgBitrate    uint32
	DecoderConfig []byte
}

const (
	esDescrTag            = 0x03
	decoderConfigDescrTag = 0x04
	decSpecificInfoTag    = 0x05
)

// descriptor reads an MPEG-4 descriptor tag and its 7-bit varint length.
func (p *atomParser) descriptor() (tag uint8, length int64, ok bool) {
	tag = p.c.U8()
	for range 4 {
		b := p.c.U8()
		length = length<<7 | int64(b&0x7f) //nolint:mnd
		if b&0x80 == 0 {
			return tag, length, !p.c.Overflow() && length <= p.left()
		}
	}
	return 0, 0, false
}

func parseESDescriptor(p *atomParser) engine.Outcome {
	tag, _, ok := p.descriptor()
	if !ok || tag != esDescrTag {
		return p.reject("es descriptor")
	}
	h := &ESDescriptor{ESID: p.c.U16()}
	flags := p.c.U8()
	if flags&0x80 != 0 {
		p.c.SkipBytes(2) //nolint:mnd
	}
	if flags&0x40 != 0 {
		p.c.SkipBytes(int64(p.c.U8()))
	}
	if flags&0x20 != 0 {
		p.c.SkipBytes(2) //nolint:mnd
	}

	tag, l, ok := p.descriptor()
	if !ok || tag != decoderConfigDescrTag || l < 13 { //nolint:mnd
		return p.reject("decoder config descriptor")
	}
	end := p.c.Position() + l
	h.ObjectType = p.c.U8()
	h.StreamType = p.c.U8() >> 2 //nolint:mnd
	p.c.SkipBytes(3) //nolint:mnd
	h.MaxBitrate = p.c.U32()
	h.AvgBitrate = p.c.U32()
	if p.c.Position() < end {
		if tag, l, ok := p.descriptor(); ok && tag == decSpecificInfoTag {
			h.DecoderConfig = p.c.ReadBytes(l)
		}
	}
	if p.c.Overflow() || p.c.Position() > p.end {
		return p.reject("es descriptor length")
	}
	p.cand.Header = h
	p.cand.Add("object_type", h.ObjectType)
	// SL config and anything after it
	return skipBody(p)
}

// H263Config is the d263 payload.
type H263Config struct {
	Vendor         Tag
	DecoderVersion uint8
	Level          uint8
	Profile        uint8
}

func parseH263Config(p *atomParser) engine.Outcome {
	h := &H263Config{
		Vendor:         Tag(p.c.U32()),
		DecoderVersion: p.c.U8(),
		Level:          p.c.U8(),
		Profile:        p.c.U8(),
	}
	p.cand.Header = h
	p.cand.Add("level", h.Level)
	p.cand.Add("profile", h.Profile)
	return p.done()
}

// AMRConfig is the damr payload.
type AMRConfig struct {
	Vendor           Tag
	DecoderVersion   uint8
	ModeSet          uint16
	ModeChangePeriod uint8
	FramesPerSample  uint8
}

func parseAMRConfig(p *atomParser) engine.Outcome {
	h := &AMRConfig{
		Vendor:           Tag(p.c.U32()),
		DecoderVersion:   p.c.U8(),
		ModeSet:          p.c.U16(),
		ModeChangePeriod: p.c.U8(),
		FramesPerSample:  p.c.U8(),
	}
	p.cand.Header = h
	p.cand.Add("mode_set", h.ModeSet)
	if h.FramesPerSample == 0 {
		p.cand.Warn("frames_per_sample", h.FramesPerSample)
	}
	return p.done()
}

func parseOriginalFormat(p *atomParser) engine.Outcome {
	f := Tag(p.c.U32())
	p.cand.Header = f
	p.cand.Add("format", f)
	return p.done()
}

// BitRate is the btrt payload.
type BitRate struct {
	BufferSize uint32
	MaxBitrate uint32
	AvgBitrate uint32
}

func parseBitRate(p *atomParser) engine.Outcome {
	h := &BitRate{BufferSize: p.c.U32(), MaxBitrate: p.c.U32(), AvgBitrate: p.c.U32()}
	p.cand.Header = h
	p.cand.Add("avg_bitrate", h.AvgBitrate)
	return p.done()
}

// PixelAspect is the pasp payload.
type PixelAspect struct {
	HSpacing uint32
	VSpacing uint32
}

func parsePixelAspect(p *atomParser) engine.Outcome {
	h := &PixelAspect{HSpacing: p.c.U32(), VSpacing: p.c.U32()}
	p.cand.Header = h
	if h.HSpacing == 0 || h.VSpacing == 0 {
		p.cand.Warn("spacing", h.VSpacing)
	}
	return p.done()
}
