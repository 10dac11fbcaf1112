package nal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAVCC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       []byte
		lengthSize int
		nalus      [][]byte
		complete   bool
	}{
		{
			name:       "two_units",
			data:       []byte{0, 0, 0, 2, 0x65, 0x01, 0, 0, 0, 1, 0x41},
			lengthSize: 4,
			nalus:      [][]byte{{0x65, 0x01}, {0x41}},
			complete:   true,
		},
		{
			name:       "truncated_tail",
			data:       []byte{0, 2, 0x65, 0x01, 0, 9, 0x41, 0x42},
			lengthSize: 2,
			nalus:      [][]byte{{0x65, 0x01}, {0x41, 0x42}},
			complete:   false,
		},
		{
			name:       "dangling_prefix",
			data:       []byte{1, 0x65, 0},
			lengthSize: 2,
			nalus:      [][]byte{{0}},
			complete:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			nalus, complete := SplitAVCC(tt.data, tt.lengthSize)
			require.Equal(t, tt.nalus, nalus)
			require.Equal(t, tt.complete, complete)
		})
	}
}

func TestStartCodeLen(t *testing.T) {
	t.Parallel()

	n, ok := StartCodeLen([]byte{0, 0, 1, 0x67}, 0)
	require.True(t, ok)
	require.Equal(t, 3, n)

	n, ok = StartCodeLen([]byte{0xff, 0, 0, 0, 1}, 1)
	require.True(t, ok)
	require.Equal(t, 4, n)

	_, ok = StartCodeLen([]byte{0, 0, 2}, 0)
	require.False(t, ok)
}
