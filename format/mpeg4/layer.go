package mpeg4

import (
	mathbits "math/bits"

	"github.com/ugparu/mediacarve/engine"
)

const (
	visualTypeVideo   = 1
	visualTypeTexture = 2
	visualTypeLast    = 5
	quantMatrixSize   = 64
	defaultQuantBits  = 5
)

func parseSequence(p *nodeParser) engine.Outcome {
	h := &SequenceHeader{ProfileLevel: p.c.U8()}
	if h.ProfileLevel == 0 {
		p.cand.Warn("profile_level", h.ProfileLevel)
	} else {
		p.cand.Add("profile_level", h.ProfileLevel)
	}
	p.cand.Header = h
	return p.done()
}

func parseVisualObject(p *nodeParser) engine.Outcome {
	c := p.c
	h := &VisualObjectHeader{VerID: 1}
	if c.ReadFlag() {
		h.VerID = uint8(c.ReadBits(4))
		c.SkipBits(3) // priority
	}
	h.Type = uint8(c.ReadBits(4))
	switch {
	case h.Type == 0:
		return p.reject("visual_object_type")
	case h.Type > visualTypeLast:
		p.cand.Suspect("visual_object_type", h.Type)
	}
	if h.Type == visualTypeVideo || h.Type == visualTypeTexture {
		if c.ReadFlag() { // video_signal_type
			h.VideoFormat = uint8(c.ReadBits(3))
			h.FullRange = c.ReadFlag()
			if c.ReadFlag() {
				h.ColourPrimaries = uint8(c.ReadBits(8))
				h.Transfer = uint8(c.ReadBits(8))
				h.Matrix = uint8(c.ReadBits(8))
			}
		}
	}
	p.stuffing()
	p.cand.Add("visual_object_type", h.Type)
	p.cand.Header = h
	return p.done()
}

func parseVideoObject(p *nodeParser) engine.Outcome {
	p.cand.Add("id", uint8(p.m.value&VideoObjectLast))
	return p.done()
}

func parseVideoObjectLayer(p *nodeParser) engine.Outcome {
	c := p.c
	cand := p.cand
	h := &VOLHeader{
		ID:             uint8(p.m.value & 0x0f), //nolint:mnd
		VerID:          1,
		QuantPrecision: defaultQuantBits,
	}

	h.RandomAccessible = c.ReadFlag()
	h.ObjectType = uint8(c.ReadBits(8))
	if h.ObjectType == 0 {
		cand.Warn("video_object_type", h.ObjectType)
	}
	if c.ReadFlag() { // is_object_layer_identifier
		h.VerID = uint8(c.ReadBits(4))
		c.SkipBits(3) // priority
		switch h.VerID {
		case 1, 2, 4, 5:
		default:
			cand.Warn("verid", h.VerID)
		}
	}

	h.AspectRatio = uint8(c.ReadBits(4))
	switch {
	case h.AspectRatio == aspectExtended:
		h.PARWidth = uint8(c.ReadBits(8))
		h.PARHeight = uint8(c.ReadBits(8))
		if h.PARWidth == 0 || h.PARHeight == 0 {
			cand.Warn("par", [2]uint8{h.PARWidth, h.PARHeight})
		}
	case h.AspectRatio == 0 || h.AspectRatio > 5:
		cand.Warn("aspect_ratio_info", h.AspectRatio)
	}

	h.ChromaFormat = 1
	if c.ReadFlag() { // vol_control_parameters
		h.ChromaFormat = uint8(c.ReadBits(2))
		if h.ChromaFormat != 1 {
			cand.Suspect("chroma_format", h.ChromaFormat)
		}
		h.LowDelay = c.ReadFlag()
		if c.ReadFlag() && !vbvParameters(p) {
			return p.reject("vbv_parameters marker")
		}
	}

	h.Shape = Shape(c.ReadBits(2))
	if h.Shape == ShapeGrayscale && h.VerID != 1 {
		c.SkipBits(4) // shape extension
	}
	if !c.ReadMarker() {
		return p.reject("marker before vop_time_increment_resolution")
	}
	h.TimeIncrementResolution = uint16(c.ReadBits(16))
	if h.TimeIncrementResolution == 0 {
		return p.reject("vop_time_increment_resolution")
	}
	h.TimeIncrementBits = max(1, mathbits.Len16(h.TimeIncrementResolution-1))
	if !c.ReadMarker() {
		return p.reject("marker after vop_time_increment_resolution")
	}
	if h.FixedVopRate = c.ReadFlag(); h.FixedVopRate {
		h.FixedVopTimeIncrement = uint32(c.ReadBits(h.TimeIncrementBits))
	}

	if h.Shape == ShapeBinaryOnly {
		if h.VerID != 1 {
			if h.Scalability = c.ReadFlag(); h.Scalability {
				c.SkipBits(4 + 4*5) //nolint:mnd
			}
		}
		h.ResyncMarkerDisable = c.ReadFlag()
		return p.finishLayer(h)
	}

	if h.Shape == ShapeRectangular {
		if !c.ReadMarker() {
			return p.reject("marker before width")
		}
		h.Width = int(c.ReadBits(13))
		if !c.ReadMarker() {
			return p.reject("marker before height")
		}
		h.Height = int(c.ReadBits(13))
		if !c.ReadMarker() {
			return p.reject("marker after height")
		}
		if h.Width == 0 || h.Height == 0 {
			return p.reject("picture size")
		}
	}
	h.Interlaced = c.ReadFlag()
	h.OBMCDisable = c.ReadFlag()
	if h.VerID == 1 {
		h.Sprite = Sprite(c.ReadBits(1))
	} else {
		h.Sprite = Sprite(c.ReadBits(2))
	}
	if h.Sprite > SpriteGMC {
		return p.reject("sprite_enable")
	}
	if h.Sprite != SpriteNone && !spriteParameters(p, h.Sprite) {
		return p.reject("sprite marker")
	}
	if h.VerID != 1 && h.Shape != ShapeRectangular {
		c.SkipBits(1) // sadct_disable
	}
	if c.ReadFlag() { // not_8_bit
		h.QuantPrecision = int(c.ReadBits(4))
		h.BitsPerPixel = int(c.ReadBits(4))
		if h.QuantPrecision < 3 || h.QuantPrecision > 9 {
			cand.Suspect("quant_precision", h.QuantPrecision)
		}
	}
	if h.Shape == ShapeGrayscale {
		c.SkipBits(3) // no_gray_quant_update, composition_method, linear_composition
	}
	if h.QuantType = c.ReadFlag(); h.QuantType {
		if c.ReadFlag() {
			quantMatrix(p)
		}
		if c.ReadFlag() {
			quantMatrix(p)
		}
		if h.Shape == ShapeGrayscale {
			cand.Warn("unsupported", "grayscale quantiser matrices")
			if !p.bound(p.cfg.MaxUnparsedBytes) {
				return p.reject("layer end")
			}
			cand.Header = h
			return cand.Outcome()
		}
	}
	if h.VerID != 1 {
		h.QuarterSample = c.ReadFlag()
	}
	if !c.ReadFlag() { // complexity_estimation_disable
		if !complexityEstimation(p, h) {
			return p.reject("complexity estimation marker")
		}
	}
	h.ResyncMarkerDisable = c.ReadFlag()
	if h.DataPartitioned = c.ReadFlag(); h.DataPartitioned {
		h.ReversibleVLC = c.ReadFlag()
	}
	if h.VerID != 1 {
		if h.NewPred = c.ReadFlag(); h.NewPred {
			c.SkipBits(3) // requested_upstream_message_type, newpred_segment_type
		}
		h.ReducedResolution = c.ReadFlag()
	}
	if h.Scalability = c.ReadFlag(); h.Scalability {
		hierarchy := c.ReadFlag()
		c.SkipBits(4 + 1 + 4*5 + 1) //nolint:mnd
		if h.Shape == ShapeBinary && !hierarchy {
			c.SkipBits(2 + 4*5) //nolint:mnd
		}
	}
	return p.finishLayer(h)
}

func (p *nodeParser) finishLayer(h *VOLHeader) engine.Outcome {
	if p.c.Overflow() {
		return p.reject("layer past stream end")
	}
	p.stuffing()
	if h.Shape == ShapeRectangular {
		p.cand.Add("size", [2]int{h.Width, h.Height})
	}
	p.cand.Add("object_type", h.ObjectType)
	p.cand.Header = h
	return p.done()
}

func vbvParameters(p *nodeParser) bool {
	c := p.c
	// bit rate, buffer size and occupancy, each split in two halves
	for _, n := range []int{15, 15, 15} {
		c.SkipBits(int64(n))
		if !c.ReadMarker() {
			return false
		}
	}
	c.SkipBits(3 + 11) //nolint:mnd
	if !c.ReadMarker() {
		return false
	}
	c.SkipBits(15) //nolint:mnd
	return c.ReadMarker()
}

func spriteParameters(p *nodeParser, s Sprite) bool {
	c := p.c
	if s != SpriteGMC {
		// width, height, left and top
		for range 4 {
			c.SkipBits(13) //nolint:mnd
			if !c.ReadMarker() {
				return false
			}
		}
	}
	c.SkipBits(6 + 2 + 1) //nolint:mnd
	if s != SpriteGMC {
		c.SkipBits(1) // low_latency_sprite_enable
	}
	return true
}

func quantMatrix(p *nodeParser) {
	for range quantMatrixSize {
		if p.c.ReadBits(8) == 0 {
			return
		}
	}
}

// complexityEstimation reads define_vop_complexity_estimation_header and
// sums the VOP header bits each enabled field costs.
func complexityEstimation(p *nodeParser, h *VOLHeader) bool {
	c := p.c
	e := &ComplexityEstimation{Method: uint8(c.ReadBits(2))}
	h.Complexity = e
	if e.Method > 1 {
		p.cand.Suspect("estimation_method", e.Method)
		return true
	}
	field := func(dst *int, n int) {
		if c.ReadFlag() {
			*dst += n
		}
	}
	if !c.ReadFlag() { // shape_complexity_estimation_disable
		for range 6 {
			field(&e.IntraBits, 8) //nolint:mnd
		}
	}
	if !c.ReadFlag() { // texture_complexity_estimation_set_1_disable
		field(&e.IntraBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
		field(&e.IntraBits, 8) //nolint:mnd
	}
	if !c.ReadMarker() {
		return false
	}
	if !c.ReadFlag() { // texture_complexity_estimation_set_2_disable
		field(&e.IntraBits, 8) //nolint:mnd
		field(&e.IntraBits, 8) //nolint:mnd
		field(&e.IntraBits, 8) //nolint:mnd
		field(&e.IntraBits, 4) //nolint:mnd
	}
	if !c.ReadFlag() { // motion_compensation_complexity_disable
		field(&e.InterBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
		field(&e.BidirBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
	}
	if !c.ReadMarker() {
		return false
	}
	if e.Method == 1 && !c.ReadFlag() { // version2_complexity_estimation_disable
		field(&e.IntraBits, 8) //nolint:mnd
		field(&e.InterBits, 8) //nolint:mnd
	}
	return true
}

func parseGroupOfVop(p *nodeParser) engine.Outcome {
	c := p.c
	h := &GroupOfVopHeader{
		Hours:   uint8(c.ReadBits(5)),
		Minutes: uint8(c.ReadBits(6)),
	}
	if !c.ReadMarker() {
		return p.reject("time_code marker")
	}
	h.Seconds = uint8(c.ReadBits(6))
	h.Closed = c.ReadFlag()
	h.BrokenLink = c.ReadFlag()
	if h.Hours > 23 || h.Minutes > 59 || h.Seconds > 59 {
		return p.reject("time_code")
	}
	p.stuffing()
	p.cand.Add("time_code", [3]uint8{h.Hours, h.Minutes, h.Seconds})
	p.cand.Header = h
	return p.done()
}

func parseUserData(p *nodeParser) engine.Outcome {
	if !p.bound(p.cfg.MaxUserDataLength) {
		return p.reject("user data over budget")
	}
	return p.cand.Outcome()
}

func parseSequenceEnd(p *nodeParser) engine.Outcome {
	if p.m.short {
		p.c.ByteAlign()
	}
	return p.done()
}
