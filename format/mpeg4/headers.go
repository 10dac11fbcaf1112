package mpeg4

import (
	"github.com/ugparu/mediacarve/codec/h263"
	"github.com/ugparu/mediacarve/tree"
)

// Shape is video_object_layer_shape.
type Shape uint8

const (
	ShapeRectangular Shape = iota
	ShapeBinary
	ShapeBinaryOnly
	ShapeGrayscale
)

// Sprite is sprite_enable.
type Sprite uint8

const (
	SpriteNone Sprite = iota
	SpriteStatic
	SpriteGMC
)

// CodingType is vop_coding_type.
type CodingType uint8

const (
	CodingI CodingType = iota
	CodingP
	CodingB
	CodingS
)

func (t CodingType) String() string {
	switch t {
	case CodingI:
		return "I"
	case CodingP:
		return "P"
	case CodingB:
		return "B"
	default:
		return "S"
	}
}

const aspectExtended = 0x0f

// SequenceHeader is the visual object sequence header.
type SequenceHeader struct {
	ProfileLevel uint8
}

// VisualObjectHeader is the visual object header.
type VisualObjectHeader struct {
	VerID           uint8
	Type            uint8
	VideoFormat     uint8
	FullRange       bool
	ColourPrimaries uint8
	Transfer        uint8
	Matrix          uint8
}

// ComplexityEstimation holds the per-VOP complexity fields announced by the
// layer, reduced to the number of bits they take in each VOP header.
type ComplexityEstimation struct {
	Method    uint8
	IntraBits int
	InterBits int
	BidirBits int
}

// Bits returns the length of the complexity fields in a VOP of type t.
func (e *ComplexityEstimation) Bits(t CodingType) int {
	n := e.IntraBits
	if t != CodingI {
		n += e.InterBits
	}
	if t == CodingB {
		n += e.BidirBits
	}
	return n
}

// VOLHeader is the video object layer header a VOP is decoded against.
type VOLHeader struct {
	ID                      uint8
	RandomAccessible        bool
	ObjectType              uint8
	VerID                   uint8
	AspectRatio             uint8
	PARWidth, PARHeight     uint8
	ChromaFormat            uint8
	LowDelay                bool
	Shape                   Shape
	TimeIncrementResolution uint16
	TimeIncrementBits       int
	FixedVopRate            bool
	FixedVopTimeIncrement   uint32
	Width, Height           int
	Interlaced              bool
	OBMCDisable             bool
	Sprite                  Sprite
	QuantPrecision          int
	BitsPerPixel            int
	QuantType               bool
	QuarterSample           bool
	Complexity              *ComplexityEstimation
	ResyncMarkerDisable     bool
	DataPartitioned         bool
	ReversibleVLC           bool
	NewPred                 bool
	ReducedResolution       bool
	Scalability             bool
}

// Macroblocks returns the number of macroblocks of a rectangular VOP.
func (h *VOLHeader) Macroblocks() int {
	return ((h.Width + 15) / 16) * ((h.Height + 15) / 16) //nolint:mnd
}

// GroupOfVopHeader is the GOV time code.
type GroupOfVopHeader struct {
	Hours, Minutes, Seconds uint8
	Closed                  bool
	BrokenLink              bool
}

// VOPHeader describes one picture, in either the full or the short header form.
type VOPHeader struct {
	ShortVideoHeader bool
	CodingType       CodingType
	// Full header fields.
	ModuloTimeBase int
	TimeIncrement  uint32
	Coded          bool
	Rounding       bool
	IntraDCVLCThr  uint8
	FCodeForward   uint8
	FCodeBackward  uint8
	// Short header fields.
	TemporalReference uint8
	SourceFormat      h263.SourceFormat

	Quant uint8
	// Macroblocks counts the macroblocks whose codes were checked.
	Macroblocks int
	// VideoPackets counts resync points: video packet or GOB headers.
	VideoPackets int
	// Layer is the layer header the VOP was decoded against, nil when none fit.
	Layer *VOLHeader
	// Reference is the index of the reference layer header used, or -1.
	Reference int

	warnings []tree.Attr
}

func (h *VOPHeader) warn(name string, value any) {
	h.warnings = append(h.warnings, tree.Attr{Name: name, Value: value, Invalid: true})
}
