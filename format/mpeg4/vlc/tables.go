package vlc

// Macroblock types carried by MCBPC.
const (
	MBInter   = 0
	MBInterQ  = 1
	MBInter4V = 2
	MBIntra   = 3
	MBIntraQ  = 4
)

// MCBPC is the combined macroblock type and chroma coded block pattern.
type MCBPC struct {
	Type     int
	CBPC     int
	Stuffing bool
}

// Intra reports whether the macroblock is intra coded.
func (m MCBPC) Intra() bool {
	return m.Type == MBIntra || m.Type == MBIntraQ
}

// Quant reports whether a DQUANT field follows.
func (m MCBPC) Quant() bool {
	return m.Type == MBInterQ || m.Type == MBIntraQ
}

// TCoef is one run/level event of a transform block. Escape marks the escape
// code, whose fields follow in the bitstream.
type TCoef struct {
	Last   bool
	Run    int
	Level  int
	Escape bool
}

// MCBPCIntra is used in I pictures.
var MCBPCIntra = NewTable("MCBPCIntra", []Code[MCBPC]{
	{Bits: 0b1, Len: 1, Value: MCBPC{Type: MBIntra, CBPC: 0}},
	{Bits: 0b001, Len: 3, Value: MCBPC{Type: MBIntra, CBPC: 1}},
	{Bits: 0b010, Len: 3, Value: MCBPC{Type: MBIntra, CBPC: 2}},
	{Bits: 0b011, Len: 3, Value: MCBPC{Type: MBIntra, CBPC: 3}},
	{Bits: 0b0001, Len: 4, Value: MCBPC{Type: MBIntraQ, CBPC: 0}},
	{Bits: 0b000001, Len: 6, Value: MCBPC{Type: MBIntraQ, CBPC: 1}},
	{Bits: 0b000010, Len: 6, Value: MCBPC{Type: MBIntraQ, CBPC: 2}},
	{Bits: 0b000011, Len: 6, Value: MCBPC{Type: MBIntraQ, CBPC: 3}},
	{Bits: 0b000000001, Len: 9, Value: MCBPC{Stuffing: true}},
})

// MCBPCInter is used in P pictures.
var MCBPCInter = NewTable("MCBPCInter", []Code[MCBPC]{
	{Bits: 0b1, Len: 1, Value: MCBPC{Type: MBInter, CBPC: 0}},
	{Bits: 0b0011, Len: 4, Value: MCBPC{Type: MBInter, CBPC: 1}},
	{Bits: 0b0010, Len: 4, Value: MCBPC{Type: MBInter, CBPC: 2}},
	{Bits: 0b000101, Len: 6, Value: MCBPC{Type: MBInter, CBPC: 3}},
	{Bits: 0b011, Len: 3, Value: MCBPC{Type: MBInterQ, CBPC: 0}},
	{Bits: 0b0000111, Len: 7, Value: MCBPC{Type: MBInterQ, CBPC: 1}},
	{Bits: 0b0000110, Len: 7, Value: MCBPC{Type: MBInterQ, CBPC: 2}},
	{Bits: 0b000000101, Len: 9, Value: MCBPC{Type: MBInterQ, CBPC: 3}},
	{Bits: 0b010, Len: 3, Value: MCBPC{Type: MBInter4V, CBPC: 0}},
	{Bits: 0b0000101, Len: 7, Value: MCBPC{Type: MBInter4V, CBPC: 1}},
	{Bits: 0b0000100, Len: 7, Value: MCBPC{Type: MBInter4V, CBPC: 2}},
	{Bits: 0b00000101, Len: 8, Value: MCBPC{Type: MBInter4V, CBPC: 3}},
	{Bits: 0b00011, Len: 5, Value: MCBPC{Type: MBIntra, CBPC: 0}},
	{Bits: 0b00000100, Len: 8, Value: MCBPC{Type: MBIntra, CBPC: 1}},
	{Bits: 0b00000011, Len: 8, Value: MCBPC{Type: MBIntra, CBPC: 2}},
	{Bits: 0b0000011, Len: 7, Value: MCBPC{Type: MBIntra, CBPC: 3}},
	{Bits: 0b000100, Len: 6, Value: MCBPC{Type: MBIntraQ, CBPC: 0}},
	{Bits: 0b000000100, Len: 9, Value: MCBPC{Type: MBIntraQ, CBPC: 1}},
	{Bits: 0b000000011, Len: 9, Value: MCBPC{Type: MBIntraQ, CBPC: 2}},
	{Bits: 0b000000010, Len: 9, Value: MCBPC{Type: MBIntraQ, CBPC: 3}},
	{Bits: 0b000000001, Len: 9, Value: MCBPC{Stuffing: true}},
})

// CBPY values are the luma coded block pattern of an intra macroblock; inter
// macroblocks use 15 minus the value.
var CBPY = NewTable("CBPY", []Code[int]{
	{Bits: 0b0011, Len: 4, Value: 0},
	{Bits: 0b00101, Len: 5, Value: 1},
	{Bits: 0b00100, Len: 5, Value: 2},
	{Bits: 0b1001, Len: 4, Value: 3},
	{Bits: 0b00011, Len: 5, Value: 4},
	{Bits: 0b0111, Len: 4, Value: 5},
	{Bits: 0b000010, Len: 6, Value: 6},
	{Bits: 0b1011, Len: 4, Value: 7},
	{Bits: 0b00010, Len: 5, Value: 8},
	{Bits: 0b000011, Len: 6, Value: 9},
	{Bits: 0b0101, Len: 4, Value: 10},
	{Bits: 0b1010, Len: 4, Value: 11},
	{Bits: 0b0100, Len: 4, Value: 12},
	{Bits: 0b1000, Len: 4, Value: 13},
	{Bits: 0b0110, Len: 4, Value: 14},
	{Bits: 0b11, Len: 2, Value: 15},
})

// DCSizeLuma and DCSizeChroma give the size of the intra DC differential.
var DCSizeLuma = NewTable("DCSizeLuma", []Code[int]{
	{Bits: 0b011, Len: 3, Value: 0},
	{Bits: 0b11, Len: 2, Value: 1},
	{Bits: 0b10, Len: 2, Value: 2},
	{Bits: 0b010, Len: 3, Value: 3},
	{Bits: 0b001, Len: 3, Value: 4},
	{Bits: 0b0001, Len: 4, Value: 5},
	{Bits: 0b00001, Len: 5, Value: 6},
	{Bits: 0b000001, Len: 6, Value: 7},
	{Bits: 0b0000001, Len: 7, Value: 8},
	{Bits: 0b00000001, Len: 8, Value: 9},
	{Bits: 0b000000001, Len: 9, Value: 10},
	{Bits: 0b0000000001, Len: 10, Value: 11},
	{Bits: 0b00000000001, Len: 11, Value: 12},
})

var DCSizeChroma = NewTable("DCSizeChroma", []Code[int]{
	{Bits: 0b11, Len: 2, Value: 0},
	{Bits: 0b10, Len: 2, Value: 1},
	{Bits: 0b01, Len: 2, Value: 2},
	{Bits: 0b001, Len: 3, Value: 3},
	{Bits: 0b0001, Len: 4, Value: 4},
	{Bits: 0b00001, Len: 5, Value: 5},
	{Bits: 0b000001, Len: 6, Value: 6},
	{Bits: 0b0000001, Len: 7, Value: 7},
	{Bits: 0b00000001, Len: 8, Value: 8},
	{Bits: 0b000000001, Len: 9, Value: 9},
	{Bits: 0b0000000001, Len: 10, Value: 10},
	{Bits: 0b00000000001, Len: 11, Value: 11},
	{Bits: 0b000000000001, Len: 12, Value: 12},
})

// MVD values are motion vector differences in half sample units, -32..32.
var MVD = NewTable("MVD", []Code[int]{
	{Bits: 0b0000000000101, Len: 13, Value: -32},
	{Bits: 0b0000000000111, Len: 13, Value: -31},
	{Bits: 0b000000000101, Len: 12, Value: -30},
	{Bits: 0b000000000111, Len: 12, Value: -29},
	{Bits: 0b000000001001, Len: 12, Value: -28},
	{Bits: 0b000000001011, Len: 12, Value: -27},
	{Bits: 0b000000001101, Len: 12, Value: -26},
	{Bits: 0b000000001111, Len: 12, Value: -25},
	{Bits: 0b00000001001, Len: 11, Value: -24},
	{Bits: 0b00000001011, Len: 11, Value: -23},
	{Bits: 0b00000001101, Len: 11, Value: -22},
	{Bits: 0b00000001111, Len: 11, Value: -21},
	{Bits: 0b00000010001, Len: 11, Value: -20},
	{Bits: 0b00000010011, Len: 11, Value: -19},
	{Bits: 0b00000010101, Len: 11, Value: -18},
	{Bits: 0b00000010111, Len: 11, Value: -17},
	{Bits: 0b00000011001, Len: 11, Value: -16},
	{Bits: 0b00000011011, Len: 11, Value: -15},
	{Bits: 0b00000011101, Len: 11, Value: -14},
	{Bits: 0b00000011111, Len: 11, Value: -13},
	{Bits: 0b00000100001, Len: 11, Value: -12},
	{Bits: 0b00000100011, Len: 11, Value: -11},
	{Bits: 0b0000010011, Len: 10, Value: -10},
	{Bits: 0b0000010101, Len: 10, Value: -9},
	{Bits: 0b0000010111, Len: 10, Value: -8},
	{Bits: 0b00000111, Len: 8, Value: -7},
	{Bits: 0b00001001, Len: 8, Value: -6},
	{Bits: 0b00001011, Len: 8, Value: -5},
	{Bits: 0b0000111, Len: 7, Value: -4},
	{Bits: 0b00011, Len: 5, Value: -3},
	{Bits: 0b0011, Len: 4, Value: -2},
	{Bits: 0b011, Len: 3, Value: -1},
	{Bits: 0b1, Len: 1, Value: 0},
	{Bits: 0b010, Len: 3, Value: 1},
	{Bits: 0b0010, Len: 4, Value: 2},
	{Bits: 0b00010, Len: 5, Value: 3},
	{Bits: 0b0000110, Len: 7, Value: 4},
	{Bits: 0b00001010, Len: 8, Value: 5},
	{Bits: 0b00001000, Len: 8, Value: 6},
	{Bits: 0b00000110, Len: 8, Value: 7},
	{Bits: 0b0000010110, Len: 10, Value: 8},
	{Bits: 0b0000010100, Len: 10, Value: 9},
	{Bits: 0b0000010010, Len: 10, Value: 10},
	{Bits: 0b00000100010, Len: 11, Value: 11},
	{Bits: 0b00000100000, Len: 11, Value: 12},
	{Bits: 0b00000011110, Len: 11, Value: 13},
	{Bits: 0b00000011100, Len: 11, Value: 14},
	{Bits: 0b00000011010, Len: 11, Value: 15},
	{Bits: 0b00000011000, Len: 11, Value: 16},
	{Bits: 0b00000010110, Len: 11, Value: 17},
	{Bits: 0b00000010100, Len: 11, Value: 18},
	{Bits: 0b00000010010, Len: 11, Value: 19},
	{Bits: 0b00000010000, Len: 11, Value: 20},
	{Bits: 0b00000001110, Len: 11, Value: 21},
	{Bits: 0b00000001100, Len: 11, Value: 22},
	{Bits: 0b00000001010, Len: 11, Value: 23},
	{Bits: 0b00000001000, Len: 11, Value: 24},
	{Bits: 0b000000001110, Len: 12, Value: 25},
	{Bits: 0b000000001100, Len: 12, Value: 26},
	{Bits: 0b000000001010, Len: 12, Value: 27},
	{Bits: 0b000000001000, Len: 12, Value: 28},
	{Bits: 0b000000000110, Len: 12, Value: 29},
	{Bits: 0b000000000100, Len: 12, Value: 30},
	{Bits: 0b0000000000110, Len: 13, Value: 31},
	{Bits: 0b0000000000100, Len: 13, Value: 32},
})

// TCoefInter codes inter blocks, and every block of a short header picture.
var TCoefInter = NewTable("TCoefInter", []Code[TCoef]{
	{Bits: 0x2, Len: 2, Value: TCoef{Run: 0, Level: 1}},
	{Bits: 0xf, Len: 4, Value: TCoef{Run: 0, Level: 2}},
	{Bits: 0x15, Len: 6, Value: TCoef{Run: 0, Level: 3}},
	{Bits: 0x17, Len: 7, Value: TCoef{Run: 0, Level: 4}},
	{Bits: 0x1f, Len: 8, Value: TCoef{Run: 0, Level: 5}},
	{Bits: 0x25, Len: 9, Value: TCoef{Run: 0, Level: 6}},
	{Bits: 0x24, Len: 9, Value: TCoef{Run: 0, Level: 7}},
	{Bits: 0x21, Len: 10, Value: TCoef{Run: 0, Level: 8}},
	{Bits: 0x20, Len: 10, Value: TCoef{Run: 0, Level: 9}},
	{Bits: 0x7, Len: 11, Value: TCoef{Run: 0, Level: 10}},
	{Bits: 0x6, Len: 11, Value: TCoef{Run: 0, Level: 11}},
	{Bits: 0x20, Len: 11, Value: TCoef{Run: 0, Level: 12}},
	{Bits: 0x6, Len: 3, Value: TCoef{Run: 1, Level: 1}},
	{Bits: 0x14, Len: 6, Value: TCoef{Run: 1, Level: 2}},
	{Bits: 0x1e, Len: 8, Value: TCoef{Run: 1, Level: 3}},
	{Bits: 0xf, Len: 10, Value: TCoef{Run: 1, Level: 4}},
	{Bits: 0x21, Len: 11, Value: TCoef{Run: 1, Level: 5}},
	{Bits: 0x50, Len: 12, Value: TCoef{Run: 1, Level: 6}},
	{Bits: 0xe, Len: 4, Value: TCoef{Run: 2, Level: 1}},
	{Bits: 0x1d, Len: 8, Value: TCoef{Run: 2, Level: 2}},
	{Bits: 0xe, Len: 10, Value: TCoef{Run: 2, Level: 3}},
	{Bits: 0x51, Len: 12, Value: TCoef{Run: 2, Level: 4}},
	{Bits: 0xd, Len: 5, Value: TCoef{Run: 3, Level: 1}},
	{Bits: 0x23, Len: 9, Value: TCoef{Run: 3, Level: 2}},
	{Bits: 0xd, Len: 10, Value: TCoef{Run: 3, Level: 3}},
	{Bits: 0xc, Len: 5, Value: TCoef{Run: 4, Level: 1}},
	{Bits: 0x22, Len: 9, Value: TCoef{Run: 4, Level: 2}},
	{Bits: 0x52, Len: 12, Value: TCoef{Run: 4, Level: 3}},
	{Bits: 0xb, Len: 5, Value: TCoef{Run: 5, Level: 1}},
	{Bits: 0xc, Len: 10, Value: TCoef{Run: 5, Level: 2}},
	{Bits: 0x53, Len: 12, Value: TCoef{Run: 5, Level: 3}},
	{Bits: 0x13, Len: 6, Value: TCoef{Run: 6, Level: 1}},
	{Bits: 0xb, Len: 10, Value: TCoef{Run: 6, Level: 2}},
	{Bits: 0x54, Len: 12, Value: TCoef{Run: 6, Level: 3}},
	{Bits: 0x12, Len: 6, Value: TCoef{Run: 7, Level: 1}},
	{Bits: 0xa, Len: 10, Value: TCoef{Run: 7, Level: 2}},
	{Bits: 0x11, Len: 6, Value: TCoef{Run: 8, Level: 1}},
	{Bits: 0x9, Len: 10, Value: TCoef{Run: 8, Level: 2}},
	{Bits: 0x10, Len: 6, Value: TCoef{Run: 9, Level: 1}},
	{Bits: 0x8, Len: 10, Value: TCoef{Run: 9, Level: 2}},
	{Bits: 0x16, Len: 7, Value: TCoef{Run: 10, Level: 1}},
	{Bits: 0x55, Len: 12, Value: TCoef{Run: 10, Level: 2}},
	{Bits: 0x15, Len: 7, Value: TCoef{Run: 11, Level: 1}},
	{Bits: 0x14, Len: 7, Value: TCoef{Run: 12, Level: 1}},
	{Bits: 0x1c, Len: 8, Value: TCoef{Run: 13, Level: 1}},
	{Bits: 0x1b, Len: 8, Value: TCoef{Run: 14, Level: 1}},
	{Bits: 0x21, Len: 9, Value: TCoef{Run: 15, Level: 1}},
	{Bits: 0x20, Len: 9, Value: TCoef{Run: 16, Level: 1}},
	{Bits: 0x1f, Len: 9, Value: TCoef{Run: 17, Level: 1}},
	{Bits: 0x1e, Len: 9, Value: TCoef{Run: 18, Level: 1}},
	{Bits: 0x1d, Len: 9, Value: TCoef{Run: 19, Level: 1}},
	{Bits: 0x1c, Len: 9, Value: TCoef{Run: 20, Level: 1}},
	{Bits: 0x1b, Len: 9, Value: TCoef{Run: 21, Level: 1}},
	{Bits: 0x1a, Len: 9, Value: TCoef{Run: 22, Level: 1}},
	{Bits: 0x22, Len: 11, Value: TCoef{Run: 23, Level: 1}},
	{Bits: 0x23, Len: 11, Value: TCoef{Run: 24, Level: 1}},
	{Bits: 0x56, Len: 12, Value: TCoef{Run: 25, Level: 1}},
	{Bits: 0x57, Len: 12, Value: TCoef{Run: 26, Level: 1}},
	{Bits: 0x7, Len: 4, Value: TCoef{Last: true, Run: 0, Level: 1}},
	{Bits: 0x19, Len: 9, Value: TCoef{Last: true, Run: 0, Level: 2}},
	{Bits: 0x5, Len: 11, Value: TCoef{Last: true, Run: 0, Level: 3}},
	{Bits: 0xf, Len: 6, Value: TCoef{Last: true, Run: 1, Level: 1}},
	{Bits: 0x4, Len: 11, Value: TCoef{Last: true, Run: 1, Level: 2}},
	{Bits: 0xe, Len: 6, Value: TCoef{Last: true, Run: 2, Level: 1}},
	{Bits: 0xd, Len: 6, Value: TCoef{Last: true, Run: 3, Level: 1}},
	{Bits: 0xc, Len: 6, Value: TCoef{Last: true, Run: 4, Level: 1}},
	{Bits: 0x13, Len: 7, Value: TCoef{Last: true, Run: 5, Level: 1}},
	{Bits: 0x12, Len: 7, Value: TCoef{Last: true, Run: 6, Level: 1}},
	{Bits: 0x11, Len: 7, Value: TCoef{Last: true, Run: 7, Level: 1}},
	{Bits: 0x10, Len: 7, Value: TCoef{Last: true, Run: 8, Level: 1}},
	{Bits: 0x1a, Len: 8, Value: TCoef{Last: true, Run: 9, Level: 1}},
	{Bits: 0x19, Len: 8, Value: TCoef{Last: true, Run: 10, Level: 1}},
	{Bits: 0x18, Len: 8, Value: TCoef{Last: true, Run: 11, Level: 1}},
	{Bits: 0x17, Len: 8, Value: TCoef{Last: true, Run: 12, Level: 1}},
	{Bits: 0x16, Len: 8, Value: TCoef{Last: true, Run: 13, Level: 1}},
	{Bits: 0x15, Len: 8, Value: TCoef{Last: true, Run: 14, Level: 1}},
	{Bits: 0x14, Len: 8, Value: TCoef{Last: true, Run: 15, Level: 1}},
	{Bits: 0x13, Len: 8, Value: TCoef{Last: true, Run: 16, Level: 1}},
	{Bits: 0x18, Len: 9, Value: TCoef{Last: true, Run: 17, Level: 1}},
	{Bits: 0x17, Len: 9, Value: TCoef{Last: true, Run: 18, Level: 1}},
	{Bits: 0x16, Len: 9, Value: TCoef{Last: true, Run: 19, Level: 1}},
	{Bits: 0x15, Len: 9, Value: TCoef{Last: true, Run: 20, Level: 1}},
	{Bits: 0x14, Len: 9, Value: TCoef{Last: true, Run: 21, Level: 1}},
	{Bits: 0x13, Len: 9, Value: TCoef{Last: true, Run: 22, Level: 1}},
	{Bits: 0x12, Len: 9, Value: TCoef{Last: true, Run: 23, Level: 1}},
	{Bits: 0x11, Len: 9, Value: TCoef{Last: true, Run: 24, Level: 1}},
	{Bits: 0x7, Len: 10, Value: TCoef{Last: true, Run: 25, Level: 1}},
	{Bits: 0x6, Len: 10, Value: TCoef{Last: true, Run: 26, Level: 1}},
	{Bits: 0x5, Len: 10, Value: TCoef{Last: true, Run: 27, Level: 1}},
	{Bits: 0x4, Len: 10, Value: TCoef{Last: true, Run: 28, Level: 1}},
	{Bits: 0x24, Len: 11, Value: TCoef{Last: true, Run: 29, Level: 1}},
	{Bits: 0x25, Len: 11, Value: TCoef{Last: true, Run: 30, Level: 1}},
	{Bits: 0x26, Len: 11, Value: TCoef{Last: true, Run: 31, Level: 1}},
	{Bits: 0x27, Len: 11, Value: TCoef{Last: true, Run: 32, Level: 1}},
	{Bits: 0x58, Len: 12, Value: TCoef{Last: true, Run: 33, Level: 1}},
	{Bits: 0x59, Len: 12, Value: TCoef{Last: true, Run: 34, Level: 1}},
	{Bits: 0x5a, Len: 12, Value: TCoef{Last: true, Run: 35, Level: 1}},
	{Bits: 0x5b, Len: 12, Value: TCoef{Last: true, Run: 36, Level: 1}},
	{Bits: 0x5c, Len: 12, Value: TCoef{Last: true, Run: 37, Level: 1}},
	{Bits: 0x5d, Len: 12, Value: TCoef{Last: true, Run: 38, Level: 1}},
	{Bits: 0x5e, Len: 12, Value: TCoef{Last: true, Run: 39, Level: 1}},
	{Bits: 0x5f, Len: 12, Value: TCoef{Last: true, Run: 40, Level: 1}},
	{Bits: 0x3, Len: 7, Value: TCoef{Escape: true}},
})

// TCoefIntra codes intra blocks outside short header pictures.
var TCoefIntra = NewTable("TCoefIntra", []Code[TCoef]{
	{Bits: 0x2, Len: 2, Value: TCoef{Run: 0, Level: 1}},
	{Bits: 0x6, Len: 3, Value: TCoef{Run: 0, Level: 2}},
	{Bits: 0xf, Len: 4, Value: TCoef{Run: 0, Level: 3}},
	{Bits: 0xd, Len: 5, Value: TCoef{Run: 0, Level: 4}},
	{Bits: 0xc, Len: 5, Value: TCoef{Run: 0, Level: 5}},
	{Bits: 0x15, Len: 6, Value: TCoef{Run: 0, Level: 6}},
	{Bits: 0x13, Len: 6, Value: TCoef{Run: 0, Level: 7}},
	{Bits: 0x12, Len: 6, Value: TCoef{Run: 0, Level: 8}},
	{Bits: 0x17, Len: 7, Value: TCoef{Run: 0, Level: 9}},
	{Bits: 0x1f, Len: 8, Value: TCoef{Run: 0, Level: 10}},
	{Bits: 0x1e, Len: 8, Value: TCoef{Run: 0, Level: 11}},
	{Bits: 0x1d, Len: 8, Value: TCoef{Run: 0, Level: 12}},
	{Bits: 0x25, Len: 9, Value: TCoef{Run: 0, Level: 13}},
	{Bits: 0x24, Len: 9, Value: TCoef{Run: 0, Level: 14}},
	{Bits: 0x23, Len: 9, Value: TCoef{Run: 0, Level: 15}},
	{Bits: 0x21, Len: 9, Value: TCoef{Run: 0, Level: 16}},
	{Bits: 0x21, Len: 10, Value: TCoef{Run: 0, Level: 17}},
	{Bits: 0x20, Len: 10, Value: TCoef{Run: 0, Level: 18}},
	{Bits: 0xf, Len: 10, Value: TCoef{Run: 0, Level: 19}},
	{Bits: 0xe, Len: 10, Value: TCoef{Run: 0, Level: 20}},
	{Bits: 0x7, Len: 11, Value: TCoef{Run: 0, Level: 21}},
	{Bits: 0x6, Len: 11, Value: TCoef{Run: 0, Level: 22}},
	{Bits: 0x20, Len: 11, Value: TCoef{Run: 0, Level: 23}},
	{Bits: 0x21, Len: 11, Value: TCoef{Run: 0, Level: 24}},
	{Bits: 0x50, Len: 12, Value: TCoef{Run: 0, Level: 25}},
	{Bits: 0x51, Len: 12, Value: TCoef{Run: 0, Level: 26}},
	{Bits: 0x52, Len: 12, Value: TCoef{Run: 0, Level: 27}},
	{Bits: 0xe, Len: 4, Value: TCoef{Run: 1, Level: 1}},
	{Bits: 0x14, Len: 6, Value: TCoef{Run: 1, Level: 2}},
	{Bits: 0x16, Len: 7, Value: TCoef{Run: 1, Level: 3}},
	{Bits: 0x1c, Len: 8, Value: TCoef{Run: 1, Level: 4}},
	{Bits: 0x20, Len: 9, Value: TCoef{Run: 1, Level: 5}},
	{Bits: 0x1f, Len: 9, Value: TCoef{Run: 1, Level: 6}},
	{Bits: 0xd, Len: 10, Value: TCoef{Run: 1, Level: 7}},
	{Bits: 0x22, Len: 11, Value: TCoef{Run: 1, Level: 8}},
	{Bits: 0x53, Len: 12, Value: TCoef{Run: 1, Level: 9}},
	{Bits: 0x55, Len: 12, Value: TCoef{Run: 1, Level: 10}},
	{Bits: 0xb, Len: 5, Value: TCoef{Run: 2, Level: 1}},
	{Bits: 0x15, Len: 7, Value: TCoef{Run: 2, Level: 2}},
	{Bits: 0x1e, Len: 9, Value: TCoef{Run: 2, Level: 3}},
	{Bits: 0xc, Len: 10, Value: TCoef{Run: 2, Level: 4}},
	{Bits: 0x56, Len: 12, Value: TCoef{Run: 2, Level: 5}},
	{Bits: 0x11, Len: 6, Value: TCoef{Run: 3, Level: 1}},
	{Bits: 0x1b, Len: 8, Value: TCoef{Run: 3, Level: 2}},
	{Bits: 0x1d, Len: 9, Value: TCoef{Run: 3, Level: 3}},
	{Bits: 0xb, Len: 10, Value: TCoef{Run: 3, Level: 4}},
	{Bits: 0x10, Len: 6, Value: TCoef{Run: 4, Level: 1}},
	{Bits: 0x22, Len: 9, Value: TCoef{Run: 4, Level: 2}},
	{Bits: 0xa, Len: 10, Value: TCoef{Run: 4, Level: 3}},
	{Bits: 0xd, Len: 6, Value: TCoef{Run: 5, Level: 1}},
	{Bits: 0x1c, Len: 9, Value: TCoef{Run: 5, Level: 2}},
	{Bits: 0x8, Len: 10, Value: TCoef{Run: 5, Level: 3}},
	{Bits: 0x12, Len: 7, Value: TCoef{Run: 6, Level: 1}},
	{Bits: 0x1b, Len: 9, Value: TCoef{Run: 6, Level: 2}},
	{Bits: 0x54, Len: 12, Value: TCoef{Run: 6, Level: 3}},
	{Bits: 0x14, Len: 7, Value: TCoef{Run: 7, Level: 1}},
	{Bits: 0x1a, Len: 9, Value: TCoef{Run: 7, Level: 2}},
	{Bits: 0x57, Len: 12, Value: TCoef{Run: 7, Level: 3}},
	{Bits: 0x19, Len: 8, Value: TCoef{Run: 8, Level: 1}},
	{Bits: 0x9, Len: 10, Value: TCoef{Run: 8, Level: 2}},
	{Bits: 0x18, Len: 8, Value: TCoef{Run: 9, Level: 1}},
	{Bits: 0x23, Len: 11, Value: TCoef{Run: 9, Level: 2}},
	{Bits: 0x17, Len: 8, Value: TCoef{Run: 10, Level: 1}},
	{Bits: 0x19, Len: 9, Value: TCoef{Run: 11, Level: 1}},
	{Bits: 0x18, Len: 9, Value: TCoef{Run: 12, Level: 1}},
	{Bits: 0x7, Len: 10, Value: TCoef{Run: 13, Level: 1}},
	{Bits: 0x58, Len: 12, Value: TCoef{Run: 14, Level: 1}},
	{Bits: 0x7, Len: 4, Value: TCoef{Last: true, Run: 0, Level: 1}},
	{Bits: 0xc, Len: 6, Value: TCoef{Last: true, Run: 0, Level: 2}},
	{Bits: 0x16, Len: 8, Value: TCoef{Last: true, Run: 0, Level: 3}},
	{Bits: 0x17, Len: 9, Value: TCoef{Last: true, Run: 0, Level: 4}},
	{Bits: 0x6, Len: 10, Value: TCoef{Last: true, Run: 0, Level: 5}},
	{Bits: 0x5, Len: 11, Value: TCoef{Last: true, Run: 0, Level: 6}},
	{Bits: 0x4, Len: 11, Value: TCoef{Last: true, Run: 0, Level: 7}},
	{Bits: 0x59, Len: 12, Value: TCoef{Last: true, Run: 0, Level: 8}},
	{Bits: 0xf, Len: 6, Value: TCoef{Last: true, Run: 1, Level: 1}},
	{Bits: 0x16, Len: 9, Value: TCoef{Last: true, Run: 1, Level: 2}},
	{Bits: 0x5, Len: 10, Value: TCoef{Last: true, Run: 1, Level: 3}},
	{Bits: 0xe, Len: 6, Value: TCoef{Last: true, Run: 2, Level: 1}},
	{Bits: 0x4, Len: 10, Value: TCoef{Last: true, Run: 2, Level: 2}},
	{Bits: 0x11, Len: 7, Value: TCoef{Last: true, Run: 3, Level: 1}},
	{Bits: 0x24, Len: 11, Value: TCoef{Last: true, Run: 3, Level: 2}},
	{Bits: 0x10, Len: 7, Value: TCoef{Last: true, Run: 4, Level: 1}},
	{Bits: 0x25, Len: 11, Value: TCoef{Last: true, Run: 4, Level: 2}},
	{Bits: 0x13, Len: 7, Value: TCoef{Last: true, Run: 5, Level: 1}},
	{Bits: 0x5a, Len: 12, Value: TCoef{Last: true, Run: 5, Level: 2}},
	{Bits: 0x15, Len: 8, Value: TCoef{Last: true, Run: 6, Level: 1}},
	{Bits: 0x5b, Len: 12, Value: TCoef{Last: true, Run: 6, Level: 2}},
	{Bits: 0x14, Len: 8, Value: TCoef{Last: true, Run: 7, Level: 1}},
	{Bits: 0x13, Len: 8, Value: TCoef{Last: true, Run: 8, Level: 1}},
	{Bits: 0x1a, Len: 8, Value: TCoef{Last: true, Run: 9, Level: 1}},
	{Bits: 0x15, Len: 9, Value: TCoef{Last: true, Run: 10, Level: 1}},
	{Bits: 0x14, Len: 9, Value: TCoef{Last: true, Run: 11, Level: 1}},
	{Bits: 0x13, Len: 9, Value: TCoef{Last: true, Run: 12, Level: 1}},
	{Bits: 0x12, Len: 9, Value: TCoef{Last: true, Run: 13, Level: 1}},
	{Bits: 0x11, Len: 9, Value: TCoef{Last: true, Run: 14, Level: 1}},
	{Bits: 0x26, Len: 11, Value: TCoef{Last: true, Run: 15, Level: 1}},
	{Bits: 0x27, Len: 11, Value: TCoef{Last: true, Run: 16, Level: 1}},
	{Bits: 0x5c, Len: 12, Value: TCoef{Last: true, Run: 17, Level: 1}},
	{Bits: 0x5d, Len: 12, Value: TCoef{Last: true, Run: 18, Level: 1}},
	{Bits: 0x5e, Len: 12, Value: TCoef{Last: true, Run: 19, Level: 1}},
	{Bits: 0x5f, Len: 12, Value: TCoef{Last: true, Run: 20, Level: 1}},
	{Bits: 0x3, Len: 7, Value: TCoef{Escape: true}},
})
