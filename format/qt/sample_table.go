package qt

import (
	"math"

	"github.com/ugparu/mediacarve/engine"
)

// TimeToSampleEntry is one stts run.
type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

// TimeToSample is the stts payload.
type TimeToSample struct {
	Entries []TimeToSampleEntry
}

// Samples returns the number of samples the table describes.
func (t *TimeToSample) Samples() uint64 {
	var n uint64
	for _, e := range t.Entries {
		n += uint64(e.Count)
	}
	return n
}

func parseTimeToSample(p *atomParser) engine.Outcome {
	count := p.c.U32()
	if !p.table(count, 8) { //nolint:mnd
		return p.reject("stts entries")
	}
	h := &TimeToSample{Entries: make([]TimeToSampleEntry, count)}
	for i := range h.Entries {
		h.Entries[i] = TimeToSampleEntry{Count: p.c.U32(), Duration: p.c.U32()}
	}
	p.cand.Header = h
	p.cand.Add("entries", count)
	return p.done()
}

// CompositionOffsetEntry is one ctts run.
type CompositionOffsetEntry struct {
	Count  uint32
	Offset int32
}

// CompositionOffset is the ctts payload.
type CompositionOffset struct {
	Entries []CompositionOffsetEntry
}

func parseCompositionOffset(p *atomParser) engine.Outcome {
	count := p.c.U32()
	if !p.table(count, 8) { //nolint:mnd
		return p.reject("ctts entries")
	}
	h := &CompositionOffset{Entries: make([]CompositionOffsetEntry, count)}
	for i := range h.Entries {
		h.Entries[i] = CompositionOffsetEntry{Count: p.c.U32(), Offset: int32(p.c.U32())} //nolint:gosec
	}
	p.cand.Header = h
	p.cand.Add("entries", count)
	return p.done()
}

// SyncSample is the stss or stps payload: 1-based sample numbers.
type SyncSample struct {
	Samples []uint32
}

func parseSyncSample(p *atomParser) engine.Outcome {
	count := p.c.U32()
	if !p.table(count, 4) { //nolint:mnd
		return p.reject("sync entries")
	}
	h := &SyncSample{Samples: make([]uint32, count)}
	var prev uint32
	for i := range h.Samples {
		h.Samples[i] = p.c.U32()
		if h.Samples[i] <= prev {
			p.cand.Warn("order", i)
		}
		prev = h.Samples[i]
	}
	p.cand.Header = h
	p.cand.Add("entries", count)
	return p.done()
}

// SampleToChunkEntry is one stsc run.
type SampleToChunkEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescID    uint32
}

// SampleToChunk is the stsc payload.
type SampleToChunk struct {
	Entries []SampleToChunkEntry
}

func parseSampleToChunk(p *atomParser) engine.Outcome {
	count := p.c.U32()
	if !p.table(count, 12) { //nolint:mnd
		return p.reject("stsc entries")
	}
	h := &SampleToChunk{Entries: make([]SampleToChunkEntry, count)}
	var prev uint32
	for i := range h.Entries {
		e := SampleToChunkEntry{FirstChunk: p.c.U32(), SamplesPerChunk: p.c.U32(), SampleDescID: p.c.U32()}
		if e.FirstChunk <= prev || (i == 0 && e.FirstChunk != 1) {
			p.cand.Suspect("first_chunk", e.FirstChunk)
		}
		prev = e.FirstChunk
		h.Entries[i] = e
	}
	p.cand.Header = h
	p.cand.Add("entries", count)
	return p.done()
}

// SampleSize is the stsz or stz2 payload. A non-zero ConstantSize applies to
// every sample and Sizes is empty.
type SampleSize struct {
	ConstantSize uint32
	Count        uint32
	Sizes        []uint32
}

// Size returns the size of the 0-based sample i.
func (s *SampleSize) Size(i int) uint32 {
	if s.ConstantSize != 0 {
		return s.ConstantSize
	}
	if i < 0 || i >= len(s.Sizes) {
		return 0
	}
	return s.Sizes[i]
}

// Sum returns the total size of the n samples starting at the 0-based sample
// from, saturating at math.MaxInt64.
func (s *SampleSize) Sum(from, n int) int64 {
	if n <= 0 {
		return 0
	}
	if s.ConstantSize != 0 {
		size := int64(s.ConstantSize)
		if int64(n) > math.MaxInt64/size {
			return math.MaxInt64
		}
		return int64(n) * size
	}
	from = max(from, 0)
	var total int64
	for _, v := range s.Sizes[min(from, len(s.Sizes)):min(from+n, len(s.Sizes))] {
		total += int64(v)
	}
	return total
}

func parseSampleSize(p *atomParser) engine.Outcome {
	h := &SampleSize{ConstantSize: p.c.U32(), Count: p.c.U32()}
	if h.ConstantSize == 0 {
		if !p.table(h.Count, 4) { //nolint:mnd
			return p.reject("stsz entries")
		}
		h.Sizes = make([]uint32, h.Count)
		for i := range h.Sizes {
			h.Sizes[i] = p.c.U32()
		}
	}
	p.cand.Header = h
	p.cand.Add("samples", h.Count)
	return p.done()
}

func parseCompactSampleSize(p *atomParser) engine.Outcome {
	p.c.SkipBits(24) //nolint:mnd
	field := int(p.c.U8())
	h := &SampleSize{Count: p.c.U32()}
	switch field {
	case 4, 8, 16: //nolint:mnd
	default:
		return p.reject("stz2 field size")
	}
	if int64(h.Count) > p.left()*8/int64(field) {
		return p.reject("stz2 entries")
	}
	h.Sizes = make([]uint32, h.Count)
	for i := range h.Sizes {
		h.Sizes[i] = uint32(p.c.ReadBits(field))
	}
	p.c.ByteAlign()
	p.cand.Header = h
	p.cand.Add("samples", h.Count)
	return p.done()
}

// ChunkOffset is the stco or co64 payload.
type ChunkOffset struct {
	Offsets []uint64
}

func parseChunkOffset(p *atomParser) engine.Outcome {
	size := int64(4) //nolint:mnd
	if p.tag == CO64 {
		size = 8
	}
	count := p.c.U32()
	if !p.table(count, size) {
		return p.reject("chunk offsets")
	}
	h := &ChunkOffset{Offsets: make([]uint64, count)}
	for i := range h.Offsets {
		if size == 8 { //nolint:mnd
			h.Offsets[i] = p.c.U64()
		} else {
			h.Offsets[i] = uint64(p.c.U32())
		}
	}
	p.cand.Header = h
	p.cand.Add("chunks", count)
	return p.done()
}
