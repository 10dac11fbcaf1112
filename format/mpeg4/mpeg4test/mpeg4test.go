// Package mpeg4test builds small synthetic MPEG-4 part 2 elementary streams
// for tests.
package mpeg4test

import (
	"github.com/ugparu/mediacarve/format/mpeg4"
	"github.com/ugparu/mediacarve/format/mpeg4/vlc"
)

// Writer appends fields most significant bit first.
type Writer struct {
	buf []byte
	n   int // bits written
}

// Bits writes the low n bits of v.
func (w *Writer) Bits(v uint64, n int) *Writer {
	for i := n - 1; i >= 0; i-- {
		if w.n%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>i&1 == 1 {
			w.buf[len(w.buf)-1] |= 0x80 >> (w.n % 8)
		}
		w.n++
	}
	return w
}

// Flag writes one bit.
func (w *Writer) Flag(b bool) *Writer {
	if b {
		return w.Bits(1, 1)
	}
	return w.Bits(0, 1)
}

// Code writes the code of v from tbl. It panics on a value the table lacks.
func Code[T comparable](w *Writer, tbl *vlc.Table[T], v T) *Writer {
	c, ok := tbl.Encode(v)
	if !ok {
		panic("mpeg4test: no code for value in " + tbl.String())
	}
	return w.Bits(uint64(c.Bits), c.Len)
}

// Stuff writes next_start_code: a zero bit, then ones up to the byte boundary.
func (w *Writer) Stuff() *Writer {
	n := 8 - w.n%8
	return w.Bits(1<<(n-1)-1, n)
}

// ZeroAlign pads with zero bits up to the byte boundary.
func (w *Writer) ZeroAlign() *Writer {
	if r := w.n % 8; r != 0 {
		w.Bits(0, 8-r)
	}
	return w
}

// StartCode writes 00 00 01 v. The writer must be byte aligned.
func (w *Writer) StartCode(v byte) *Writer {
	if w.n%8 != 0 {
		panic("mpeg4test: start code off the byte boundary")
	}
	return w.Bits(0x000001, 24).Bits(uint64(v), 8)
}

// Raw appends bytes at a byte boundary.
func (w *Writer) Raw(b ...byte) *Writer {
	w.ZeroAlign()
	w.buf = append(w.buf, b...)
	w.n += 8 * len(b)
	return w
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the stream.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Layer describes a rectangular video object layer.
type Layer struct {
	Width, Height int
	// TimeResolution is vop_time_increment_resolution, 30 when zero.
	TimeResolution uint16
	Resync         bool
}

func (l Layer) timeBits() int {
	r := l.resolution() - 1
	n := 1
	for r>>n != 0 {
		n++
	}
	return n
}

func (l Layer) resolution() uint16 {
	if l.TimeResolution == 0 {
		return 30 //nolint:mnd
	}
	return l.TimeResolution
}

// Macroblocks returns the number of macroblocks of a picture of the layer.
func (l Layer) Macroblocks() int {
	return ((l.Width + 15) / 16) * ((l.Height + 15) / 16) //nolint:mnd
}

// Sequence writes a visual object sequence start with profile_and_level.
func Sequence(w *Writer, profile byte) {
	w.StartCode(mpeg4.VisualObjectSequence).Bits(uint64(profile), 8)
}

// VisualObject writes a video visual object without signal type.
func VisualObject(w *Writer) {
	w.StartCode(mpeg4.VisualObject).Flag(false).Bits(1, 4).Flag(false).Stuff()
}

// VideoObject writes video_object_start_code id.
func VideoObject(w *Writer, id byte) {
	w.StartCode(mpeg4.VideoObjectFirst + id)
}

// VideoObjectLayer writes a simple profile layer header for l.
func VideoObjectLayer(w *Writer, l Layer) {
	w.StartCode(mpeg4.VideoObjectLayerFirst)
	w.Flag(false).Bits(1, 8) // random_accessible_vol, video_object_type_indication
	w.Flag(false)            // is_object_layer_identifier
	w.Bits(1, 4)             // aspect_ratio_info
	w.Flag(false)            // vol_control_parameters
	w.Bits(0, 2)             // rectangular
	w.Flag(true).Bits(uint64(l.resolution()), 16).Flag(true)
	w.Flag(false) // fixed_vop_rate
	w.Flag(true).Bits(uint64(l.Width), 13).Flag(true).Bits(uint64(l.Height), 13).Flag(true)
	w.Flag(false).Flag(true).Flag(false) // interlaced, obmc_disable, sprite_enable
	w.Flag(false).Flag(false)            // not_8_bit, quant_type
	w.Flag(true)                         // complexity_estimation_disable
	w.Flag(!l.Resync)
	w.Flag(false).Flag(false) // data_partitioned, scalability
	w.Stuff()
}

// Picture describes the macroblocks of one full header VOP.
type Picture struct {
	Type  mpeg4.CodingType
	Time  uint32
	Quant uint8
	// Coded lists, per macroblock, the luma blocks carrying one coefficient.
	// Missing entries are zero.
	Coded []int
	// Packets lists macroblocks preceded by a video packet header.
	Packets map[int]int
}

// Vop writes a full header I or P VOP of layer l. P macroblocks are not coded
// unless Coded names them.
func Vop(w *Writer, l Layer, p Picture) {
	VopHeader(w, l, p)
	total := l.Macroblocks()
	for mb := range total {
		if n, ok := p.Packets[mb]; ok {
			VideoPacket(w, total, n)
		}
		coded := 0
		if mb < len(p.Coded) {
			coded = p.Coded[mb]
		}
		if p.Type == mpeg4.CodingI {
			intraMacroblock(w, coded)
		} else {
			interMacroblock(w, coded)
		}
	}
	w.Stuff()
}

// VopHeader writes the start code and header of a VOP, up to its first macroblock.
func VopHeader(w *Writer, l Layer, p Picture) {
	quant := p.Quant
	if quant == 0 {
		quant = 4 //nolint:mnd
	}
	w.StartCode(mpeg4.Vop)
	w.Bits(uint64(p.Type), 2)
	w.Flag(false).Flag(true) // modulo_time_base, marker
	w.Bits(uint64(p.Time), l.timeBits()).Flag(true)
	w.Flag(true) // vop_coded
	if p.Type == mpeg4.CodingP {
		w.Flag(false) // vop_rounding_type
	}
	w.Bits(0, 3) // intra_dc_vlc_thr
	w.Bits(uint64(quant), 5)
	if p.Type == mpeg4.CodingP {
		w.Bits(1, 3) // vop_fcode_forward
	}
}

// VideoPacket writes next_resync_marker stuffing, a resync marker and a video
// packet header numbered n, without header extension.
func VideoPacket(w *Writer, total, n int) {
	w.Stuff()
	w.Bits(1, 17) //nolint:mnd // resync_marker, also for P with fcode 1
	numBits := 1
	for (total-1)>>numBits != 0 {
		numBits++
	}
	w.Bits(uint64(n), numBits)
	w.Bits(4, 5)  //nolint:mnd // quant_scale
	w.Flag(false) // header_extension_code
}

// coefficient writes a single last coefficient of level 1.
func coefficient(w *Writer, tbl *vlc.Table[vlc.TCoef]) {
	Code(w, tbl, vlc.TCoef{Last: true, Run: 0, Level: 1})
	w.Flag(false) // sign
}

func intraMacroblock(w *Writer, luma int) {
	Code(w, vlc.MCBPCIntra, vlc.MCBPC{Type: vlc.MBIntra})
	w.Flag(false) // ac_pred_flag
	Code(w, vlc.CBPY, luma)
	for b := range 6 {
		if b < 4 { //nolint:mnd
			Code(w, vlc.DCSizeLuma, 0)
		} else {
			Code(w, vlc.DCSizeChroma, 0)
		}
		if b < 4 && luma&(8>>b) != 0 {
			coefficient(w, vlc.TCoefIntra)
		}
	}
}

func interMacroblock(w *Writer, luma int) {
	if luma == 0 {
		w.Flag(true) // not_coded
		return
	}
	w.Flag(false)
	Code(w, vlc.MCBPCInter, vlc.MCBPC{Type: vlc.MBInter})
	Code(w, vlc.CBPY, 15-luma)
	Code(w, vlc.MVD, 0)
	Code(w, vlc.MVD, 0)
	for b := range 4 {
		if luma&(8>>b) != 0 {
			coefficient(w, vlc.TCoefInter)
		}
	}
}

// ShortHeader writes a sub-QCIF short header picture up to its first
// macroblock. The writer must be byte aligned.
func ShortHeader(w *Writer, tr uint8, t mpeg4.CodingType) {
	w.Bits(0x20, 22) // picture_start_code
	w.Bits(uint64(tr), 8)
	w.Flag(true).Flag(false)  // marker, zero bit
	w.Bits(0, 3)              // split screen, document camera, freeze release
	w.Bits(1, 3)              // sub-QCIF
	w.Bits(uint64(t), 1)      // picture_coding_type
	w.Bits(0, 4)              // optional modes
	w.Bits(4, 5)              //nolint:mnd // vop_quant
	w.Flag(false).Flag(false) // cpm, pei
}

// ShortPicture writes a sub-QCIF short header P picture whose macroblocks are
// all skipped, with temporal reference tr.
func ShortPicture(w *Writer, tr uint8) {
	ShortHeader(w, tr, mpeg4.CodingP)
	w.Bits(1<<48-1, 48) //nolint:mnd // 6 GOBs of 8 skipped macroblocks
	w.ZeroAlign()
}

// ShortIntra writes one short header intra macroblock without coefficients.
func ShortIntra(w *Writer, dc uint8) {
	Code(w, vlc.MCBPCIntra, vlc.MCBPC{Type: vlc.MBIntra})
	Code(w, vlc.CBPY, 0)
	for range 6 {
		w.Bits(uint64(dc), 8)
	}
}

// ShortGOB writes a GOB header numbered gn, zero stuffed to the byte boundary.
func ShortGOB(w *Writer, gn int) {
	w.ZeroAlign()
	w.Bits(1, 17).Bits(uint64(gn), 5) //nolint:mnd
	w.Bits(0, 2)                      // gob_frame_id
	w.Bits(4, 5)                      //nolint:mnd // gquant
}

// ShortEnd writes the 22-bit short header end marker.
func ShortEnd(w *Writer) {
	w.Bits(0x3f, 22).ZeroAlign()
}
