// Package qt carves QuickTime / ISO base media / 3GPP files: size-prefixed
// atoms nested by byte range, ending with the media data atom.
package qt

import (
	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
)

// Grammar implements engine.Grammar for atoms.
type Grammar struct {
	cfg *config.Config
}

func NewGrammar(cfg *config.Config) *Grammar {
	return &Grammar{cfg: cfg}
}

func (g *Grammar) Table() *grammar.Table {
	return Table
}

func (g *Grammar) BulkKind() grammar.Kind {
	return KindMediaData
}

// ProbeDistance is zero: atoms are contiguous, a gap ends the run.
func (g *Grammar) ProbeDistance() int64 {
	return 0
}

func (g *Grammar) Contains() bool {
	return true
}

// FindFirst looks for a known atom. Unknown atoms and terminators never open a run.
func (g *Grammar) FindFirst(c *bits.Cursor, from, limit int64) (int64, bool) {
	for p := from; p <= limit && p+HeaderSize <= c.End(); p++ {
		if _, ok := plausible(c, p, false); ok {
			return p, true
		}
	}
	return 0, false
}

// Next only looks at from itself.
func (g *Grammar) Next(pc *engine.Context, from, _ int64) (int64, bool) {
	c := pc.Cursor
	if _, ok := plausible(c, from, true); ok {
		return from, true
	}
	if _, ok := terminatorLength(c, from, g.cfg.MaxTerminatorLength); ok {
		return from, true
	}
	return 0, false
}

// Suitable adds the file-level ordering rules: ftyp opens the file, and an
// unknown atom or a terminator cannot.
func (g *Grammar) Suitable(t *tree.Tree, cand *engine.Candidate, parent tree.NodeID) bool {
	if parent != tree.RootID {
		return true
	}
	first := len(t.Children(tree.RootID)) == 0
	switch cand.Kind {
	case KindFileType:
		return first
	case KindUnknown, KindTerminatingZero:
		return !first
	default:
		return true
	}
}

func (g *Grammar) Parse(pc *engine.Context, cand *engine.Candidate) engine.Outcome {
	c := pc.Cursor
	pos := cand.Offset

	h, ok := plausible(c, pos, true)
	if !ok {
		if z, ok := terminatorLength(c, pos, g.cfg.MaxTerminatorLength); ok {
			cand.Kind = KindTerminatingZero
			cand.Length = z
			c.SkipBytes(z)
			return cand.Outcome()
		}
		return cand.Reject("atom header", pos)
	}

	cand.Kind = h.Kind
	cand.Length = h.Size
	if len(Table.Entry(h.Kind).Markers) != 1 {
		cand.Add("type", h.Tag)
	}
	if h.Large {
		cand.Add("large_size", true)
	}
	if h.ToEnd {
		cand.Add("size_to_end", true)
	}
	c.SkipBytes(h.HeaderLen)

	p := &atomParser{
		c:    c,
		cfg:  g.cfg,
		cand: cand,
		tag:  h.Tag,
		end:  min(pos+h.Size, c.End()),
	}
	if Table.Has(h.Kind, grammar.HasVersionAndFlags) {
		p.version = c.U8()
		p.flags = c.U24()
	}

	if fn, ok := parsers[h.Kind]; ok {
		return fn(p)
	}
	return cand.Outcome()
}

type parseFunc func(p *atomParser) engine.Outcome

var parsers = map[grammar.Kind]parseFunc{
	KindUnknown:           skipBody,
	KindFree:              skipBody,
	KindMediaData:         skipBody,
	KindPreview:           skipBody,
	KindUUID:              parseUUID,
	KindFileType:          parseFileType,
	KindMovieHeader:       parseMovieHeader,
	KindTrackHeader:       parseTrackHeader,
	KindMediaHeader:       parseMediaHeader,
	KindHandler:           parseHandler,
	KindEditList:          parseEditList,
	KindVideoMediaHeader:  parseVideoMediaHeader,
	KindSoundMediaHeader:  parseSoundMediaHeader,
	KindDataRef:           parseEntryCount,
	KindDataEntry:         parseDataEntry,
	KindSampleDescription: parseEntryCount,
	KindTimeToSample:      parseTimeToSample,
	KindCompositionOffset: parseCompositionOffset,
	KindSyncSample:        parseSyncSample,
	KindPartialSyncSample: parseSyncSample,
	KindSampleToChunk:     parseSampleToChunk,
	KindSampleSize:        parseSampleSize,
	KindCompactSampleSize: parseCompactSampleSize,
	KindChunkOffset:       parseChunkOffset,
	KindChunkOffset64:     parseChunkOffset,
	KindMeta:              parseMeta,
	KindVideoSampleEntry:  parseVideoSampleEntry,
	KindAudioSampleEntry:  parseAudioSampleEntry,
	KindAVCConfig:         parseAVCConfig,
	KindESDescriptor:      parseESDescriptor,
	KindH263Config:        parseH263Config,
	KindAMRConfig:         parseAMRConfig,
	KindOriginalFormat:    parseOriginalFormat,
	KindBitRate:           parseBitRate,
	KindPixelAspect:       parsePixelAspect,
}

// atomParser carries the state shared by the per-atom field parsers.
type atomParser struct {
	c       *bits.Cursor
	cfg     *config.Config
	cand    *engine.Candidate
	tag     Tag
	end     int64
	version uint8
	flags   uint32
}

func (p *atomParser) left() int64 {
	return p.end - p.c.Position()
}

// table checks that count entries of size bytes fit the atom.
func (p *atomParser) table(count uint32, size int64) bool {
	return int64(count) <= p.left()/size
}

func (p *atomParser) reject(debug string) engine.Outcome {
	return p.cand.Reject(debug, p.c.Position())
}

func (p *atomParser) done() engine.Outcome {
	return p.cand.Outcome()
}

func skipBody(p *atomParser) engine.Outcome {
	p.c.SeekTo(p.end)
	return p.done()
}

func parseUUID(p *atomParser) engine.Outcome {
	if p.left() < 16 { //nolint:mnd
		return p.reject("usertype")
	}
	p.cand.Add("usertype", p.c.ReadBytes(16)) //nolint:mnd
	return skipBody(p)
}
