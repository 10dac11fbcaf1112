// Package mpeg4 carves MPEG-4 part 2 visual elementary streams, including
// the H.263 compatible short header pictures, by start code.
package mpeg4

import (
	"slices"

	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
)

// Grammar implements engine.Grammar for start code delimited headers.
type Grammar struct {
	cfg  *config.Config
	refs []*VOLHeader
}

// NewGrammar returns a grammar that decodes VOPs lacking a layer header
// against refs, in order.
func NewGrammar(cfg *config.Config, refs ...*VOLHeader) *Grammar {
	return &Grammar{cfg: cfg, refs: refs}
}

func (g *Grammar) Table() *grammar.Table {
	return Table
}

func (g *Grammar) BulkKind() grammar.Kind {
	return KindVop
}

func (g *Grammar) ProbeDistance() int64 {
	return g.cfg.MaxOffsetBetweenHeaders
}

func (g *Grammar) Contains() bool {
	return false
}

func (g *Grammar) String() string {
	return "MPEG4 GRAMMAR"
}

// FindFirst accepts any known start code but the sequence end, and short
// pictures whose fixed header bits are in place.
func (g *Grammar) FindFirst(c *bits.Cursor, from, limit int64) (int64, bool) {
	return scan(c, from, limit, func(p int64, m marker) (bool, bool) {
		switch {
		case !m.known || m.kind == KindSequenceEnd:
			return false, false
		case m.short:
			return shortPictureAt(c, p), false
		default:
			return true, false
		}
	})
}

// Next finds the next start code that may follow pc.Prev, as listed in
// successors. A sequence end is only followed by a new sequence. Short
// pictures only follow a video object or another short picture, and a short
// picture is only followed by short codes whose temporal reference advances
// within the configured drift.
func (g *Grammar) Next(pc *engine.Context, from, limit int64) (int64, bool) {
	c := pc.Cursor
	prev := pc.Tree.Node(pc.Prev)
	prevShort, prevTR := shortPicture(prev)
	allowShort := prevShort || prev.Kind == KindVideoObject

	return scan(c, from, limit, func(p int64, m marker) (bool, bool) {
		if prev.Kind == KindSequenceEnd {
			// only a new sequence follows an end code
			ok := m.known && !m.short && m.kind == KindVisualObjectSequence
			return ok, !ok
		}
		if prevShort {
			switch {
			case !m.short:
				return false, true
			case m.kind == KindSequenceEnd:
				return true, false
			case !shortPictureAt(c, p):
				return false, false
			}
			tr, _ := temporalReference(c, p)
			if d := int(tr - prevTR); d == 0 || d > g.cfg.MaxTemporalReferenceDrift {
				return false, true
			}
			return true, false
		}
		if m.short {
			return allowShort && m.kind == KindVop && shortPictureAt(c, p), false
		}
		return m.known && follows(prev.Kind, m.kind), false
	})
}

// successors lists the headers that may come right after a full header.
// Kinds without an entry accept any known header.
var successors = map[grammar.Kind][]grammar.Kind{
	KindVisualObjectSequence: {KindVisualObject, KindVideoObject, KindVideoObjectLayer, KindUserData, KindSequenceEnd},
	KindVisualObject:         {KindVideoObject, KindVideoObjectLayer, KindUserData},
	KindVideoObject:          {KindVideoObjectLayer, KindUserData},
	KindVideoObjectLayer:     {KindVideoObjectLayer, KindGroupOfVop, KindVop, KindUserData, KindSequenceEnd},
	KindGroupOfVop:           {KindVop, KindUserData},
	KindVop:                  {KindVop, KindGroupOfVop, KindVideoObjectLayer, KindUserData, KindSequenceEnd, KindVisualObjectSequence},
}

func follows(prev, next grammar.Kind) bool {
	kinds, ok := successors[prev]
	return !ok || slices.Contains(kinds, next)
}

func shortPicture(n *tree.Node) (bool, uint8) {
	if h, ok := n.Header.(*VOPHeader); ok && h.ShortVideoHeader {
		return true, h.TemporalReference
	}
	return false, 0
}

func (g *Grammar) Parse(pc *engine.Context, cand *engine.Candidate) engine.Outcome {
	c := pc.Cursor
	m, ok := markerAt(c, cand.Offset)
	if !ok || !m.known {
		return cand.Reject("start code", cand.Offset)
	}
	cand.Kind = m.kind
	if m.short {
		c.SkipBits(shortCodeBits)
	} else {
		c.SkipBytes(StartCodeLen)
	}

	p := &nodeParser{
		c:    c,
		cfg:  g.cfg,
		g:    g,
		pc:   pc,
		cand: cand,
		m:    m,
	}
	return parsers[m.kind](p)
}

type parseFunc func(p *nodeParser) engine.Outcome

var parsers = map[grammar.Kind]parseFunc{
	KindVisualObjectSequence: parseSequence,
	KindVisualObject:         parseVisualObject,
	KindVideoObject:          parseVideoObject,
	KindVideoObjectLayer:     parseVideoObjectLayer,
	KindGroupOfVop:           parseGroupOfVop,
	KindVop:                  parseVop,
	KindUserData:             parseUserData,
	KindSequenceEnd:          parseSequenceEnd,
}

// nodeParser carries the state shared by the per-header parsers.
type nodeParser struct {
	c    *bits.Cursor
	cfg  *config.Config
	g    *Grammar
	pc   *engine.Context
	cand *engine.Candidate
	m    marker
}

func (p *nodeParser) reject(debug string) engine.Outcome {
	return p.cand.Reject(debug, p.c.Position())
}

func (p *nodeParser) done() engine.Outcome {
	if p.c.Overflow() {
		return p.reject("header past stream end")
	}
	return p.cand.Outcome()
}

// stuffing consumes next_start_code: a zero bit, then ones up to the byte
// boundary. A header that ends differently is kept with a warning.
func (p *nodeParser) stuffing() {
	if !nextStartCodeStuffing(p.c) {
		p.cand.Warn("stuffing", p.c.Position())
		p.c.ByteAlign()
	}
}

// nextStartCodeStuffing consumes the stuffing bits when they are well formed.
func nextStartCodeStuffing(c *bits.Cursor) bool {
	n := c.BitsToAlign()
	if n == 0 {
		n = 8
	}
	v, ok := c.PeekBits(n)
	if !ok || v != 1<<(n-1)-1 {
		return false
	}
	c.SkipBits(int64(n))
	return true
}

// bound ends the node at the next start code within budget.
func (p *nodeParser) bound(budget int64) bool {
	from := p.cand.Offset + StartCodeLen
	if p.m.short {
		from = p.cand.Offset + shortCodeLen
	}
	end, truncated, ok := nextStartCode(p.c, from, budget, p.m.short)
	if !ok {
		return false
	}
	p.cand.Length = end - p.cand.Offset
	p.cand.Truncated = truncated
	p.c.SeekTo(end)
	return true
}
