package mpeg4

import (
	"errors"
	"fmt"

	"github.com/ugparu/mediacarve/codec/h263"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
)

var (
	// errTruncated means the source ended inside the VOP.
	errTruncated = errors.New("truncated")
	// errUnsupported means the VOP uses tools whose macroblocks are not checked.
	errUnsupported = errors.New("unsupported")
	errSyntax      = errors.New("syntax")
)

func syntaxError(what string) error {
	return fmt.Errorf("%s: %w", what, errSyntax)
}

func parseVop(p *nodeParser) engine.Outcome {
	if p.m.short {
		h, err := decodeShortVop(p.c)
		return p.finishVop(h, err)
	}

	local, layers := p.layers()
	if local != nil {
		h, err := decodeVop(p.c, local)
		return p.finishVop(h, err)
	}
	start := p.c.BitPosition()
	for _, vol := range layers {
		p.c.SeekBits(start)
		h, err := decodeVop(p.c, vol)
		if err == nil || errors.Is(err, errTruncated) || errors.Is(err, errUnsupported) {
			h.Reference = referenceIndex(p.g.refs, vol)
			return p.finishVop(h, err)
		}
	}

	// no layer header fits: keep the picture, bounded by the next start code
	p.c.SeekBits(start)
	h := &VOPHeader{CodingType: CodingType(p.c.ReadBits(2)), Reference: -1}
	p.cand.Header = h
	p.cand.Add("vop_coding_type", h.CodingType.String())
	p.cand.Add("macroblocks", "no layer header")
	return p.boundVop()
}

// layers returns the layer header of the enclosing VOL, or the one the
// previous VOP used, followed by the reference headers.
func (p *nodeParser) layers() (*VOLHeader, []*VOLHeader) {
	t := p.pc.Tree
	var local, carried *VOLHeader
	for id := p.pc.Prev; id != tree.None && local == nil; id = t.Parent(id) {
		switch h := t.Node(id).Header.(type) {
		case *VOLHeader:
			local = h
		case *VOPHeader:
			if id == p.pc.Prev && carried == nil {
				carried = h.Layer
			}
		}
	}
	var res []*VOLHeader
	if local != nil {
		return local, []*VOLHeader{local}
	}
	if carried != nil {
		res = append(res, carried)
	}
	for _, r := range p.g.refs {
		if r != carried {
			res = append(res, r)
		}
	}
	return nil, res
}

func referenceIndex(refs []*VOLHeader, vol *VOLHeader) int {
	for i, r := range refs {
		if r == vol {
			return i
		}
	}
	return -1
}

// finishVop turns the decode result into the node. A VOP whose macroblocks
// do not fit its layer is kept as suspect, bounded by the next start code.
func (p *nodeParser) finishVop(h *VOPHeader, err error) engine.Outcome {
	cand := p.cand
	cand.Header = h
	cand.Attrs = append(cand.Attrs, h.warnings...)
	if h.ShortVideoHeader {
		cand.Add("short_video_header", true)
		cand.Add("temporal_reference", h.TemporalReference)
	}
	cand.Add("vop_coding_type", h.CodingType.String())
	if h.Reference >= 0 {
		cand.Add("reference_header", h.Reference)
	}

	switch {
	case err == nil:
		cand.Add("macroblocks", h.Macroblocks)
		return cand.Outcome()
	case errors.Is(err, errTruncated):
		cand.Truncated = true
		cand.Length = p.c.End() - cand.Offset
		p.c.SeekTo(p.c.End())
		return cand.Outcome()
	case errors.Is(err, errUnsupported):
		cand.Add("macroblocks", err.Error())
	default:
		cand.Suspect("macroblocks", err.Error())
	}
	return p.boundVop()
}

func (p *nodeParser) boundVop() engine.Outcome {
	if !p.bound(p.cfg.MaxVopLength) {
		return p.reject("vop length over budget")
	}
	return p.cand.Outcome()
}

// decodeVop reads a full VOP header and checks its macroblocks against vol.
func decodeVop(c *bits.Cursor, vol *VOLHeader) (*VOPHeader, error) {
	h := &VOPHeader{Layer: vol, Reference: -1}
	h.CodingType = CodingType(c.ReadBits(2))
	for c.ReadFlag() {
		h.ModuloTimeBase++
	}
	if !c.ReadMarker() {
		return h, overflowOr(c, syntaxError("marker before vop_time_increment"))
	}
	h.TimeIncrement = uint32(c.ReadBits(vol.TimeIncrementBits))
	if h.TimeIncrement >= uint32(vol.TimeIncrementResolution) {
		return h, overflowOr(c, syntaxError("vop_time_increment"))
	}
	if !c.ReadMarker() {
		return h, overflowOr(c, syntaxError("marker after vop_time_increment"))
	}
	if h.Coded = c.ReadFlag(); !h.Coded {
		return h, endOfVop(c)
	}
	if vol.NewPred {
		n := min(vol.TimeIncrementBits+3, 15) //nolint:mnd
		c.SkipBits(int64(n))
		if c.ReadFlag() {
			c.SkipBits(int64(n))
		}
		if !c.ReadMarker() {
			return h, overflowOr(c, syntaxError("newpred marker"))
		}
	}
	if vol.Shape != ShapeBinaryOnly && (h.CodingType == CodingP || h.CodingType == CodingS && vol.Sprite == SpriteGMC) {
		h.Rounding = c.ReadFlag()
	}
	reduced := false
	if vol.ReducedResolution && vol.Shape == ShapeRectangular && (h.CodingType == CodingP || h.CodingType == CodingI) {
		reduced = c.ReadFlag()
	}
	if vol.Shape != ShapeRectangular {
		return h, fmt.Errorf("shape %d: %w", vol.Shape, errUnsupported)
	}
	if vol.Complexity != nil {
		c.SkipBits(int64(vol.Complexity.Bits(h.CodingType)))
	}
	h.IntraDCVLCThr = uint8(c.ReadBits(3))
	switch {
	case vol.Interlaced:
		return h, fmt.Errorf("interlaced: %w", errUnsupported)
	case h.CodingType == CodingS && vol.Sprite != SpriteNone:
		return h, fmt.Errorf("sprite: %w", errUnsupported)
	}
	h.Quant = uint8(c.ReadBits(vol.QuantPrecision))
	if h.Quant == 0 {
		return h, overflowOr(c, syntaxError("vop_quant"))
	}
	if h.CodingType != CodingI {
		if h.FCodeForward = uint8(c.ReadBits(3)); h.FCodeForward == 0 {
			return h, overflowOr(c, syntaxError("vop_fcode_forward"))
		}
	}
	if h.CodingType == CodingB {
		if h.FCodeBackward = uint8(c.ReadBits(3)); h.FCodeBackward == 0 {
			return h, overflowOr(c, syntaxError("vop_fcode_backward"))
		}
	}
	switch {
	case c.Overflow():
		return h, errTruncated
	case h.CodingType == CodingB, h.CodingType == CodingS:
		return h, fmt.Errorf("%s-VOP: %w", h.CodingType, errUnsupported)
	case vol.Scalability:
		return h, fmt.Errorf("scalability: %w", errUnsupported)
	case vol.DataPartitioned:
		return h, fmt.Errorf("data partitioning: %w", errUnsupported)
	case reduced:
		return h, fmt.Errorf("reduced resolution: %w", errUnsupported)
	}

	m := newMacroblocks(c, h, vol)
	if err := m.decode(); err != nil {
		return h, err
	}
	return h, endOfVop(c)
}

// endOfVop checks the next_start_code stuffing that closes a VOP.
func endOfVop(c *bits.Cursor) error {
	if nextStartCodeStuffing(c) {
		return nil
	}
	return overflowOr(c, syntaxError("stuffing"))
}

// overflowOr returns errTruncated when the source ran out, else err.
func overflowOr(c *bits.Cursor, err error) error {
	if c.Overflow() || c.RemainingBits() == 0 {
		return errTruncated
	}
	return err
}

// decodeShortVop reads video_plane_with_short_header after its start code.
func decodeShortVop(c *bits.Cursor) (*VOPHeader, error) {
	h := &VOPHeader{ShortVideoHeader: true, Coded: true, Reference: -1}
	h.TemporalReference = uint8(c.ReadBits(8))
	if !c.ReadMarker() {
		return h, overflowOr(c, syntaxError("ptype marker"))
	}
	if c.ReadFlag() {
		return h, overflowOr(c, syntaxError("ptype zero bit"))
	}
	for _, name := range []string{"split_screen_indicator", "document_camera_indicator", "full_picture_freeze_release"} {
		if c.ReadFlag() {
			h.warn(name, true)
		}
	}
	h.SourceFormat = h263.SourceFormat(c.ReadBits(3))
	if !h.SourceFormat.Valid() {
		return h, overflowOr(c, syntaxError("source_format"))
	}
	h.CodingType = CodingType(c.ReadBits(1))
	if modes := c.ReadBits(4); modes != 0 {
		return h, fmt.Errorf("optional modes %04b: %w", modes, errUnsupported)
	}
	if h.Quant = uint8(c.ReadBits(5)); h.Quant == 0 {
		return h, overflowOr(c, syntaxError("vop_quant"))
	}
	if c.ReadFlag() {
		return h, fmt.Errorf("continuous presence multipoint: %w", errUnsupported)
	}
	for c.ReadFlag() { // pei
		c.SkipBits(8) // psupp
	}
	if c.Overflow() {
		return h, errTruncated
	}

	m := newMacroblocks(c, h, nil)
	if err := m.decodeShort(); err != nil {
		return h, err
	}
	// zero stuffing up to the byte boundary
	if n := c.BitsToAlign(); n > 0 && c.ReadBits(n) != 0 {
		h.warn("stuffing", c.Position())
	}
	return h, nil
}
