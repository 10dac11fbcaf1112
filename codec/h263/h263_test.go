package h263

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPictureStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "qcif_intra", data: []byte{0x00, 0x00, 0x80, 0x02, 0x08}, want: true},
		{name: "temporal_reference_bits", data: []byte{0x00, 0x00, 0x83, 0xfe, 0x08}, want: true},
		{name: "marker_clear", data: []byte{0x00, 0x00, 0x80, 0x00, 0x08}, want: false},
		{name: "h263_id_set", data: []byte{0x00, 0x00, 0x80, 0x03, 0x08}, want: false},
		{name: "not_psc", data: []byte{0x00, 0x00, 0x01, 0xb6, 0x08}, want: false},
		{name: "too_short", data: []byte{0x00, 0x00, 0x80, 0x02}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, IsPictureStart(tt.data))
		})
	}
}

func TestSourceFormat(t *testing.T) {
	t.Parallel()

	w, h := FormatQCIF.Size()
	require.Equal(t, 176, w)
	require.Equal(t, 144, h)

	gobs, mbs := FormatCIF.Layout()
	require.Equal(t, 18, gobs)
	require.Equal(t, 22, mbs)

	require.False(t, SourceFormat(6).Valid())
	require.Equal(t, "reserved", SourceFormat(7).String())
}
