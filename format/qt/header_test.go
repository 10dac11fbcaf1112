package qt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

func TestMarkerRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range Table.Kinds() {
		e := Table.Entry(k)
		for _, r := range e.Markers {
			tag := Tag(r.Lo)
			t.Run(tag.String(), func(t *testing.T) {
				t.Parallel()

				h, ok := peekHeader(bits.NewCursor(Atom(tag, make([]byte, 8))), 0)
				require.True(t, ok)
				require.True(t, h.Known)
				require.Equal(t, e.Kind, h.Kind)
				require.Equal(t, tag, h.Tag)
			})
		}
	}
}

func TestPeekHeader(t *testing.T) {
	t.Parallel()

	large := make([]byte, 24)
	pio.PutU32BE(large, sizeLarge)
	pio.PutU32BE(large[4:], uint32(MDAT))
	pio.PutU64BE(large[8:], 24)

	toEnd := make([]byte, 20)
	pio.PutU32BE(toEnd[4:], uint32(MDAT))

	tests := []struct {
		name string
		data []byte
		ok   bool
		want atomHeader
	}{
		{
			name: "compact",
			data: Atom(FREE, make([]byte, 4)),
			ok:   true,
			want: atomHeader{Tag: FREE, Size: 12, HeaderLen: HeaderSize, Kind: KindFree, Known: true},
		},
		{
			name: "large",
			data: large,
			ok:   true,
			want: atomHeader{Tag: MDAT, Size: 24, HeaderLen: LargeHeaderSize, Kind: KindMediaData, Known: true, Large: true},
		},
		{
			name: "to_end",
			data: toEnd,
			ok:   true,
			want: atomHeader{Tag: MDAT, Size: 20, HeaderLen: HeaderSize, Kind: KindMediaData, Known: true, ToEnd: true},
		},
		{
			name: "size_below_header",
			data: []byte{0, 0, 0, 7, 'f', 'r', 'e', 'e'},
		},
		{
			name: "short",
			data: []byte{0, 0, 0, 8, 'f', 'r'},
		},
		{
			name: "large_too_small",
			data: append([]byte{0, 0, 0, 1, 'm', 'd', 'a', 't'}, make([]byte, 8)...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, ok := peekHeader(bits.NewCursor(tt.data), 0)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, h)
			}
		})
	}
}

func TestPlausible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		data         []byte
		allowUnknown bool
		ok           bool
		kind         grammar.Kind
	}{
		{name: "known", data: Atom(MOOV), ok: true, kind: KindMovie},
		{name: "unknown_allowed", data: Atom(StringToTag("abcd")), allowUnknown: true, ok: true, kind: KindUnknown},
		{name: "unknown_refused", data: Atom(StringToTag("abcd"))},
		{name: "copyright", data: Atom(Tag(0xa96e616d)), allowUnknown: true, ok: true, kind: KindUnknown},
		{name: "binary_tag", data: Atom(Tag(0x01020304)), allowUnknown: true},
		{name: "unknown_past_end", data: Atom(StringToTag("abcd"), make([]byte, 4))[:10], allowUnknown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, ok := plausible(bits.NewCursor(tt.data), 0, tt.allowUnknown)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.kind, h.Kind)
			}
		})
	}
}

func TestTerminatorLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want int64
		ok   bool
	}{
		{name: "zero_word", data: append([]byte{0, 0, 0, 0}, Atom(UDTA)...), want: 4, ok: true},
		{name: "zero_run", data: append(make([]byte, 6), Atom(UDTA)...), want: 6, ok: true},
		{name: "zero_run_too_long", data: append(make([]byte, 9), Atom(UDTA)...)},
		{name: "before_mdat", data: append([]byte{0, 0, 0, 0}, Atom(MDAT)...)},
		{name: "before_unknown", data: append([]byte{0, 0, 0, 0}, Atom(StringToTag("abcd"))...)},
		{name: "eight_byte_atom", data: []byte{0, 0, 0, 8, 0, 0, 0, 0}, want: 8, ok: true},
		{name: "nonzero", data: Atom(FREE)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, ok := terminatorLength(bits.NewCursor(tt.data), 0, 8)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, n)
		})
	}
}

func TestAtomString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "VideoHandler", atomString([]byte("VideoHandler\x00")))
	require.Equal(t, "abc", atomString([]byte{3, 'a', 'b', 'c'}))
	require.Equal(t, "H.263", atomString(append([]byte{5, 'H', '.', '2', '6', '3'}, make([]byte, 26)...)))
	require.Equal(t, "", atomString([]byte{0, 0, 0}))
	require.Equal(t, "", atomString(nil))
}

func TestTag(t *testing.T) {
	t.Parallel()

	require.Equal(t, "moov", MOOV.String())
	require.Equal(t, MOOV, StringToTag("moov"))
	require.True(t, StringToTag("url ").Printable())
	require.False(t, Tag(0).Printable())
	require.Equal(t, 1.5, GetFixed32(0x18000))
	require.Equal(t, 1.0, GetFixed16(0x100))
	require.Equal(t, 1904, GetTime32(0).Year())
}

func TestSampleSize_Sum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sizes SampleSize
		from  int
		n     int
		want  int64
	}{
		{name: "table", sizes: SampleSize{Count: 3, Sizes: []uint32{5, 7, 9}}, from: 1, n: 2, want: 16},
		{name: "table_past_end", sizes: SampleSize{Count: 3, Sizes: []uint32{5, 7, 9}}, from: 2, n: 10, want: 9},
		{name: "table_from_past_end", sizes: SampleSize{Count: 3, Sizes: []uint32{5, 7, 9}}, from: 4, n: 1, want: 0},
		{name: "constant", sizes: SampleSize{ConstantSize: 3, Count: 100}, from: 10, n: 4, want: 12},
		{name: "constant_huge", sizes: SampleSize{ConstantSize: 1, Count: math.MaxUint32}, n: math.MaxUint32, want: math.MaxUint32},
		{name: "saturated", sizes: SampleSize{ConstantSize: math.MaxUint32}, n: math.MaxInt, want: math.MaxInt64},
		{name: "none", sizes: SampleSize{ConstantSize: 3}, n: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.sizes.Sum(tt.from, tt.n))
		})
	}
}
