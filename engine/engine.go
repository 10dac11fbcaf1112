// Package engine is the grammar-independent carving loop. It finds the first
// plausible marker, parses node after node into a tree, and resynchronises
// within a bounded probe window when a node turns out to be corrupt.
package engine

import (
	"context"
	"fmt"

	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/logger"
)

// Context is handed to a grammar for every parse and marker search.
type Context struct {
	Cursor *bits.Cursor
	Tree   *tree.Tree
	// Prev is the most recently committed node, RootID before the first one.
	Prev   tree.NodeID
	Config *config.Config
}

// Grammar instantiates the engine for one family of formats.
type Grammar interface {
	Table() *grammar.Table
	// FindFirst returns the first offset in [from, limit] holding a plausible
	// marker that can start a run.
	FindFirst(c *bits.Cursor, from, limit int64) (int64, bool)
	// Next returns the offset in [from, limit] of a marker that may legally
	// follow pc.Prev.
	Next(pc *Context, from, limit int64) (int64, bool)
	// Parse reads the node at cand.Offset, where the cursor is positioned. It
	// sets the kind and the declared length and consumes the node's own fields;
	// a container consumes only its header, its children follow in the stream.
	Parse(pc *Context, cand *Candidate) Outcome
	// BulkKind is the payload node that is truncated, not rejected, at the stream end.
	BulkKind() grammar.Kind
	// ProbeDistance bounds the distance between two consecutive nodes.
	ProbeDistance() int64
	// Contains reports whether children must lie inside their parent's byte range.
	Contains() bool
}

// SuitabilityChecker is implemented by grammars with parent rules that go
// beyond the grammar table.
type SuitabilityChecker interface {
	Suitable(t *tree.Tree, cand *Candidate, parent tree.NodeID) bool
}

// State is a step of the per-run state machine.
type State uint8

const (
	Searching State = iota
	Parsing
	Appended
	Failed
	Retrying
	GaveUp
	StreamExhausted
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Parsing:
		return "parsing"
	case Appended:
		return "appended"
	case Failed:
		return "failed"
	case Retrying:
		return "retrying"
	case GaveUp:
		return "gave up"
	case StreamExhausted:
		return "stream exhausted"
	default:
		return "unknown"
	}
}

// Result is a finished run.
type Result struct {
	Tree *tree.Tree
	// State is GaveUp or StreamExhausted.
	State State
	// Resume is the furthest end of any committed node, where a caller
	// continues scanning.
	Resume int64
	// Probes counts every failed parse attempt of the run.
	Probes int
}

// Engine carves one grammar. It holds no per-run state and is safe for
// concurrent use with distinct cursors.
type Engine struct {
	g   Grammar
	cfg *config.Config
}

func New(g Grammar, cfg *config.Config) *Engine {
	return &Engine{g: g, cfg: cfg}
}

// Grammar returns the grammar the engine was built with.
func (e *Engine) Grammar() Grammar {
	return e.g
}

func (e *Engine) String() string {
	return "ENGINE " + e.g.Table().String()
}

type run struct {
	pc       *Context
	state    State
	pos      int64 // next search position
	at       int64 // offset of the candidate being parsed
	gapStart int64 // end of the last committed node as seen by the cursor
	limit    int64
	resume   int64
	probes   int
	cand     *Candidate
}

func (r *run) started() bool {
	return r.pc.Tree.Len() > 1
}

// Carve runs the state machine from offset. The first marker is searched up to
// limit. It returns nil when no node could be committed or ctx was cancelled.
func (e *Engine) Carve(ctx context.Context, c *bits.Cursor, offset, limit int64) *Result {
	if limit > c.End() {
		limit = c.End()
	}
	r := &run{
		pc: &Context{
			Cursor: c,
			Tree:   tree.New(e.g.Table(), offset),
			Prev:   tree.RootID,
			Config: e.cfg,
		},
		state: Searching,
		pos:   offset,
		limit: limit,
	}

	for {
		switch r.state {
		case Searching:
			if ctx.Err() != nil {
				logger.Debugf(e, "cancelled at %d", r.pos)
				return nil
			}
			e.search(r)
		case Parsing:
			e.parse(r)
		case Appended:
			e.appended(r)
		case Failed:
			r.probes++
			r.state = Retrying
		case Retrying:
			e.retry(r)
		case GaveUp, StreamExhausted:
			return e.finish(r)
		}
	}
}

func (e *Engine) search(r *run) {
	if r.pos >= r.pc.Cursor.End() {
		r.state = StreamExhausted
		return
	}
	if r.pos > r.limit {
		r.state = GaveUp
		return
	}

	var (
		at int64
		ok bool
	)
	if r.started() {
		at, ok = e.g.Next(r.pc, r.pos, r.limit)
	} else {
		at, ok = e.g.FindFirst(r.pc.Cursor, r.pos, r.limit)
	}
	if !ok {
		r.state = GaveUp
		if r.started() && e.g.Contains() {
			// nothing legal follows inside an open container: skip its rest
			if _, open := e.enclosing(r.pc.Tree, r.pc.Prev, r.pos); open {
				r.at = r.pos
				r.state = Failed
			}
		}
		return
	}
	r.at = at
	r.state = Parsing
}

func (e *Engine) parse(r *run) {
	c := r.pc.Cursor
	c.SeekTo(r.at)
	cand := &Candidate{Offset: r.at}

	out := e.g.Parse(r.pc, cand)
	if out != Rejected {
		out = e.parseEnd(r.pc, cand, out)
	}
	if out == Rejected {
		logger.Tracef(e, "%s at %d rejected: %v", e.g.Table().Name(cand.Kind), r.at, cand.Err())
		r.state = Failed
		return
	}
	r.cand = cand
	r.state = Appended
}

func (e *Engine) appended(r *run) {
	cand := r.cand
	r.cand = nil

	id, ok := e.attach(r.pc.Tree, r.pc.Prev, cand)
	if !ok {
		logger.Tracef(e, "%s at %d has no suitable parent", e.g.Table().Name(cand.Kind), cand.Offset)
		r.state = Failed
		return
	}
	if !e.g.Contains() {
		r.pc.Tree.Cover(id)
	}
	r.pc.Prev = id
	r.resume = max(r.resume, cand.End())

	pos := r.pc.Cursor.Position()
	if pos <= cand.Offset {
		pos = cand.Offset + 1
	}
	r.pos = pos
	r.gapStart = pos
	if r.started() {
		r.limit = r.gapStart + e.g.ProbeDistance()
	}
	if r.pos >= r.pc.Cursor.End() {
		r.state = StreamExhausted
		return
	}
	r.state = Searching
}

func (e *Engine) retry(r *run) {
	if r.started() && e.g.Contains() {
		if open, ok := e.enclosing(r.pc.Tree, r.pc.Prev, r.at); ok {
			// skip the rest of the enclosing container
			n := r.pc.Tree.Node(open)
			unparsed := n.End() - r.at
			n.Attrs = append(n.Attrs, tree.Attr{Name: "unparsed", Value: unparsed})
			if unparsed > e.cfg.MaxUnparsedBytes {
				n.Valid = false
			}
			r.pos = n.End()
			r.gapStart = r.pos
			r.limit = r.pos + e.g.ProbeDistance()
			r.resume = max(r.resume, r.pos)
			r.state = Searching
			return
		}
	}

	r.pos = r.at + 1
	if r.pos > r.limit {
		r.state = GaveUp
		return
	}
	r.state = Searching
}

// enclosing returns the innermost open container, Root excluded, whose span
// holds pos and still has bytes left after it.
func (e *Engine) enclosing(t *tree.Tree, prev tree.NodeID, pos int64) (tree.NodeID, bool) {
	tbl := t.Table()
	for p := prev; p != tree.None && p != tree.RootID; p = t.Parent(p) {
		n := t.Node(p)
		if !tbl.Has(n.Kind, grammar.Container) {
			continue
		}
		if pos >= n.Offset && pos < n.End() {
			return p, true
		}
	}
	return tree.None, false
}

func (e *Engine) finish(r *run) *Result {
	if !r.started() {
		return nil
	}
	logger.Debugf(e, "run %d..%d %s: %d nodes, %d probes",
		r.pc.Tree.Root().Offset, r.resume, r.state, r.pc.Tree.Len()-1, r.probes)
	return &Result{
		Tree:   r.pc.Tree,
		State:  r.state,
		Resume: r.resume,
		Probes: r.probes,
	}
}

// parseEnd finalises the span of a parsed candidate against the stream end
// and the bytes the grammar actually consumed.
func (e *Engine) parseEnd(pc *Context, cand *Candidate, out Outcome) Outcome {
	c := pc.Cursor
	tbl := e.g.Table()
	streamEnd := c.End()

	if c.Overflow() && !cand.Truncated {
		return cand.Reject("read overflow", c.Position())
	}
	pos := c.Position()
	if !c.ByteAligned() {
		pos++
	}
	if out == Suspect {
		cand.suspect = true
	}

	if !tbl.Has(cand.Kind, grammar.HasLengthAndType) {
		if cand.Length <= 0 {
			cand.Length = pos - cand.Offset
		}
		if cand.Length <= 0 {
			return cand.Reject("empty node", cand.Offset)
		}
		c.SeekTo(cand.End())
		return cand.Outcome()
	}

	if cand.Length <= 0 {
		return cand.Reject("empty node", cand.Offset)
	}

	if tbl.Has(cand.Kind, grammar.Container) {
		if cand.End() > streamEnd {
			cand.Add("declared_length", cand.Length)
			cand.Length = streamEnd - cand.Offset
			cand.Truncated = true
		}
		if pos > cand.End() {
			return cand.Reject("header past end", pos)
		}
		c.SeekTo(pos)
		return cand.Outcome()
	}

	end := cand.End()
	if end > streamEnd {
		if cand.Kind != e.g.BulkKind() {
			return cand.Reject("extends past stream end", end)
		}
		cand.Add("declared_length", cand.Length)
		cand.Length = streamEnd - cand.Offset
		cand.Truncated = true
		end = streamEnd
	}
	if pos > end {
		return cand.Reject("read past declared end", pos)
	}
	if pos < end && cand.Kind != e.g.BulkKind() {
		unparsed := end - pos
		cand.Add("unparsed", unparsed)
		if unparsed > e.cfg.MaxUnparsedBytes {
			cand.Suspect("unparsed_over_budget", fmt.Sprintf("%d > %d", unparsed, e.cfg.MaxUnparsedBytes))
		}
	}
	c.SeekTo(end)
	return cand.Outcome()
}
