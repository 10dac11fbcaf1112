package mpeg4

import (
	"errors"
	"fmt"
	mathbits "math/bits"

	"github.com/ugparu/mediacarve/format/mpeg4/vlc"
	"github.com/ugparu/mediacarve/utils/bits"
)

const (
	blocksPerMacroblock = 6
	lumaBlocks          = 4
	coefficients        = 64
	resyncZeros         = 16
	gobStartCodeBits    = 17
	intraDCBits         = 8
	escapeRunBits       = 6
	escapeLevelBits     = 12
	shortLevelBits      = 8
	maxQuant            = 31
)

var (
	errInvalidCode = errors.New("invalid code")
	errPacket      = errors.New("resync header out of place")
)

// dquant maps the 2-bit DQUANT field to a quantiser step.
var dquant = [4]int{-1, -2, 1, 2}

// dcThresholds maps intra_dc_vlc_thr to the quantiser from which intra DC is
// coded as an AC coefficient.
var dcThresholds = [8]int{99, 13, 15, 17, 19, 21, 23, 0}

// macroblocks walks the macroblock layer of one VOP, checking that every
// code exists, block coefficients stay inside the block, and resync headers
// land on the macroblock they announce. Sample values are not reconstructed.
type macroblocks struct {
	c     *bits.Cursor
	vop   *VOPHeader
	vol   *VOLHeader
	short bool
	qp    int
}

func newMacroblocks(c *bits.Cursor, vop *VOPHeader, vol *VOLHeader) *macroblocks {
	return &macroblocks{c: c, vop: vop, vol: vol, short: vol == nil, qp: int(vop.Quant)}
}

// decode checks the macroblocks of a full header VOP.
func (m *macroblocks) decode() error {
	total := m.vol.Macroblocks()
	numBits := max(1, mathbits.Len(uint(total-1)))
	for mb := range total {
		if mb > 0 && !m.vol.ResyncMarkerDisable && m.atResync() {
			if err := m.videoPacket(mb, numBits); err != nil {
				return err
			}
		}
		if err := m.macroblock(); err != nil {
			return fmt.Errorf("macroblock %d: %w", mb, err)
		}
		if m.c.Overflow() {
			return errTruncated
		}
		m.vop.Macroblocks++
	}
	return nil
}

// decodeShort checks the group of blocks layout of a short header picture.
func (m *macroblocks) decodeShort() error {
	gobs, perGOB := m.vop.SourceFormat.Layout()
	for g := range gobs {
		if g > 0 {
			if err := m.gobHeader(g); err != nil {
				return err
			}
		}
		for i := range perGOB {
			if err := m.macroblock(); err != nil {
				return fmt.Errorf("macroblock %d: %w", g*perGOB+i, err)
			}
			if m.c.Overflow() {
				return errTruncated
			}
			m.vop.Macroblocks++
		}
	}
	return nil
}

func (m *macroblocks) resyncLen() int {
	if m.vop.CodingType == CodingI {
		return resyncZeros + 1
	}
	return resyncZeros + int(m.vop.FCodeForward)
}

// atResync reports whether next_resync_marker stuffing and a resync marker follow.
func (m *macroblocks) atResync() bool {
	n := m.c.BitsToAlign()
	if n == 0 {
		n = 8
	}
	l := m.resyncLen()
	v, ok := m.c.PeekBits(n + l)
	if !ok {
		return false
	}
	return v>>l == 1<<(n-1)-1 && v&(1<<l-1) == 1
}

// videoPacket reads video_packet_header, which must number the macroblock
// it precedes.
func (m *macroblocks) videoPacket(mb, numBits int) error {
	c := m.c
	n := c.BitsToAlign()
	if n == 0 {
		n = 8
	}
	c.SkipBits(int64(n + m.resyncLen()))
	if got := int(c.ReadBits(numBits)); got != mb {
		return overflowOr(c, fmt.Errorf("video packet numbered %d before macroblock %d: %w", got, mb, errPacket))
	}
	if m.qp = int(c.ReadBits(m.vol.QuantPrecision)); m.qp == 0 {
		return overflowOr(c, syntaxError("quant_scale"))
	}
	if c.ReadFlag() { // header_extension_code
		for c.ReadFlag() {
		}
		if !c.ReadMarker() {
			return overflowOr(c, syntaxError("video packet time marker"))
		}
		c.SkipBits(int64(m.vol.TimeIncrementBits))
		if !c.ReadMarker() {
			return overflowOr(c, syntaxError("video packet time marker"))
		}
		if t := CodingType(c.ReadBits(2)); t != m.vop.CodingType {
			return overflowOr(c, syntaxError("video packet coding type"))
		}
		c.SkipBits(3) // intra_dc_vlc_thr
		if m.vop.CodingType != CodingI {
			c.SkipBits(3) // vop_fcode_forward
		}
	}
	m.vop.VideoPackets++
	return overflowOr(c, nil)
}

// gobHeader reads an optional GOB header, possibly preceded by zero stuffing.
func (m *macroblocks) gobHeader(g int) error {
	c := m.c
	for _, n := range []int{c.BitsToAlign(), 0} {
		v, ok := c.PeekBits(n + gobStartCodeBits)
		if !ok || v != 1 {
			continue
		}
		c.SkipBits(int64(n + gobStartCodeBits))
		if got := int(c.ReadBits(5)); got != g {
			return overflowOr(c, fmt.Errorf("GOB numbered %d at group %d: %w", got, g, errPacket))
		}
		c.SkipBits(2) // gob_frame_id
		if m.qp = int(c.ReadBits(5)); m.qp == 0 {
			return overflowOr(c, syntaxError("quant_scale"))
		}
		m.vop.VideoPackets++
		return nil
	}
	return nil
}

func (m *macroblocks) invalid(what string) error {
	if m.c.RemainingBits() < vlc.MaxCodeLen {
		return errTruncated
	}
	return fmt.Errorf("%s: %w", what, errInvalidCode)
}

func (m *macroblocks) macroblock() error {
	c := m.c
	var mcbpc vlc.MCBPC
	for {
		if m.vop.CodingType != CodingI && c.ReadFlag() {
			return nil // not coded
		}
		tbl := vlc.MCBPCInter
		if m.vop.CodingType == CodingI {
			tbl = vlc.MCBPCIntra
		}
		v, ok := tbl.Decode(c)
		if !ok {
			return m.invalid("mcbpc")
		}
		if !v.Stuffing {
			mcbpc = v
			break
		}
	}

	intra := mcbpc.Intra()
	if intra && !m.short {
		c.SkipBits(1) // ac_pred_flag
	}
	cbpy, ok := vlc.CBPY.Decode(c)
	if !ok {
		return m.invalid("cbpy")
	}
	if !intra {
		cbpy = 15 - cbpy
	}
	cbp := cbpy<<2 | mcbpc.CBPC

	useDCVLC := m.qp < dcThresholds[m.vop.IntraDCVLCThr&7]
	if mcbpc.Quant() {
		m.qp = min(max(m.qp+dquant[c.ReadBits(2)], 1), maxQuant)
	}

	if !intra {
		vectors := 1
		if mcbpc.Type == vlc.MBInter4V {
			if m.short {
				return syntaxError("inter4v in short header")
			}
			vectors = 4
		}
		for range vectors * 2 {
			if err := m.motionVector(); err != nil {
				return err
			}
		}
	}

	for b := range blocksPerMacroblock {
		start := 0
		if intra {
			if err := m.intraDC(b, useDCVLC); err != nil {
				return err
			}
			if m.short || useDCVLC {
				start = 1
			}
		}
		if cbp&(1<<(blocksPerMacroblock-1-b)) == 0 {
			continue
		}
		if err := m.block(intra, start); err != nil {
			return fmt.Errorf("block %d: %w", b, err)
		}
	}
	return nil
}

// motionVector reads one motion vector component.
func (m *macroblocks) motionVector() error {
	v, ok := vlc.MVD.Decode(m.c)
	if !ok {
		return m.invalid("mvd")
	}
	if f := int(m.vop.FCodeForward); !m.short && f > 1 && v != 0 {
		m.c.SkipBits(int64(f - 1)) // residual
	}
	return nil
}

func (m *macroblocks) intraDC(b int, useVLC bool) error {
	c := m.c
	if m.short {
		if dc := c.ReadBits(intraDCBits); dc == 0 || dc == 128 {
			return overflowOr(c, syntaxError("intra dc"))
		}
		return nil
	}
	if !useVLC {
		return nil
	}
	tbl := vlc.DCSizeLuma
	if b >= lumaBlocks {
		tbl = vlc.DCSizeChroma
	}
	size, ok := tbl.Decode(c)
	if !ok {
		return m.invalid("dct_dc_size")
	}
	c.SkipBits(int64(size)) // dct_dc_differential
	if size > 8 && !c.ReadMarker() {
		return overflowOr(c, syntaxError("dc marker"))
	}
	return nil
}

// block walks the run/level events of one block up to the last one.
func (m *macroblocks) block(intra bool, start int) error {
	c := m.c
	tbl := vlc.TCoefInter
	if intra && !m.short {
		tbl = vlc.TCoefIntra
	}
	for i := start; ; {
		v, ok := tbl.Decode(c)
		if !ok {
			return m.invalid("tcoef")
		}
		switch {
		case !v.Escape:
			c.SkipBits(1) // sign
		case m.short:
			v.Last = c.ReadFlag()
			v.Run = int(c.ReadBits(escapeRunBits))
			if level := c.ReadBits(shortLevelBits); level == 0 || level == 128 {
				return overflowOr(c, syntaxError("escape level"))
			}
		case !c.ReadFlag(), !c.ReadFlag():
			// level or run offset escapes wrap a regular code
			if v, ok = tbl.Decode(c); !ok || v.Escape {
				return m.invalid("escaped tcoef")
			}
			c.SkipBits(1) // sign
		default:
			v.Last = c.ReadFlag()
			v.Run = int(c.ReadBits(escapeRunBits))
			if !c.ReadMarker() {
				return overflowOr(c, syntaxError("escape marker"))
			}
			if c.ReadBits(escapeLevelBits) == 0 {
				return overflowOr(c, syntaxError("escape level"))
			}
			if !c.ReadMarker() {
				return overflowOr(c, syntaxError("escape marker"))
			}
		}
		if i += v.Run; i >= coefficients {
			return overflowOr(c, syntaxError("run past block end"))
		}
		i++
		if v.Last {
			return nil
		}
	}
}
