package buffer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 5000)
	path := filepath.Join(dir, "sample.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	src, err := OpenFile(path)
	require.NoError(t, err)
	require.IsType(t, &mappedSource{}, src)
	require.Equal(t, data, src.Data())
	require.Equal(t, len(data), src.Len())
	src.Release()
	src.Release()
	require.Nil(t, src.Data())

	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	es, err := OpenFile(empty)
	require.NoError(t, err)
	require.Zero(t, es.Len())
	es.Release()

	_, err = OpenFile(filepath.Join(dir, "missing.bin"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		limit   int
		wantErr error
	}{
		{name: "empty", size: 0, limit: 100},
		{name: "small", size: 10, limit: 100},
		{name: "several_chunks", size: 300_000, limit: 1 << 20},
		{name: "exact_limit", size: 64, limit: 64},
		{name: "over_limit", size: 65, limit: 64, wantErr: ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := make([]byte, tt.size)
			for i := range data {
				data[i] = byte(i * 7)
			}
			src, err := ReadAll(bytes.NewReader(data), tt.limit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.size, src.Len())
			require.True(t, bytes.Equal(data, src.Data()))
			src.Release()
		})
	}
}

func TestClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int
		want int
	}{
		{size: 0, want: minClass},
		{size: 4096, want: 12},
		{size: 4097, want: 13},
		{size: 1 << 20, want: 20},
		{size: 1<<20 + 1, want: 21},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, class(tt.size), tt.size)
	}
}

func TestHeapSource_Grow(t *testing.T) {
	t.Parallel()

	h := get(0)
	require.Equal(t, 1<<minClass, cap(h.buf))
	copy(h.grow(3), "abc")
	h.buf = h.buf[:3]

	tail := h.grow(1 << 13)
	require.Len(t, tail, 1<<13)
	require.Equal(t, 1<<14, cap(h.buf))
	require.Equal(t, []byte("abc"), h.Data())
	h.Release()
	require.Nil(t, h.Data())
}
