package codecstream_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediacarve/codec/h264"
	"github.com/ugparu/mediacarve/codecstream"
	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/format/qt"
	"github.com/ugparu/mediacarve/format/qt/qttest"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

func reconstruct(t *testing.T, data []byte) (*codecstream.Stream, *bits.Cursor) {
	t.Helper()

	cfg := config.Default()
	c := bits.NewCursor(data)
	res := engine.New(qt.NewGrammar(&cfg), &cfg).Carve(context.Background(), c, 0, c.End())
	require.NotNil(t, res)
	return codecstream.Reconstruct(res.Tree, c), c
}

func vop(payload ...byte) []byte {
	return append([]byte{0, 0, 1, 0xb6}, payload...)
}

func mp4vFile(perChunk int, samples ...[]byte) qttest.File {
	return qttest.File{Tracks: []qttest.Track{{
		Format:          qt.MP4V,
		Handler:         qt.HandlerVideo,
		Samples:         samples,
		SamplesPerChunk: perChunk,
	}}}
}

func TestReconstruct_WellFormed(t *testing.T) {
	t.Parallel()

	samples := [][]byte{vop(0x10, 0x11), vop(0x50), vop(0x51, 0x52, 0x53)}
	data, l := qttest.Build(mp4vFile(3, samples...))

	s, c := reconstruct(t, data)
	require.Len(t, s.Tracks, 1)
	tr := s.Tracks[0]
	require.Equal(t, qt.MP4V, tr.Format)
	require.Equal(t, qt.HandlerVideo, tr.Handler)
	require.True(t, tr.IsVideo())
	require.Equal(t, []codecstream.Chunk{{
		Offset:  l.Payload,
		Length:  int64(len(bytes.Join(samples, nil))),
		Samples: 3,
		Valid:   true,
	}}, tr.Chunks)
	require.True(t, tr.Complete)
	require.False(t, tr.HasInvalidChunks)
	require.Equal(t, int64(-1), tr.FirstInvalid)
	require.True(t, s.IsFullFile())
	require.Equal(t, int64(len(data)), s.Resume)

	payload, err := io.ReadAll(tr.Reader(c))
	require.NoError(t, err)
	require.Equal(t, bytes.Join(samples, nil), payload)
}

func TestReconstruct_EmbeddedFile(t *testing.T) {
	t.Parallel()

	samples := [][]byte{vop(0x10, 0x11), vop(0x50)}
	file, l := qttest.Build(mp4vFile(1, samples...))
	data := append(bytes.Repeat([]byte{0xff}, 64), file...)

	s, c := reconstruct(t, data)
	require.Equal(t, int64(64), s.Base)
	require.Len(t, s.Tracks, 1)
	tr := s.Tracks[0]
	require.Len(t, tr.Chunks, 2)
	for i, ch := range tr.Chunks {
		require.True(t, ch.Valid)
		require.Equal(t, 64+l.Chunks[0][i][0], ch.Offset)
	}
	require.True(t, s.IsFullFile())
	require.Equal(t, int64(len(data)), s.Resume)

	payload, err := io.ReadAll(tr.Reader(c))
	require.NoError(t, err)
	require.Equal(t, bytes.Join(samples, nil), payload)
}

func TestReconstruct_TruncatedPayload(t *testing.T) {
	t.Parallel()

	big := vop(make([]byte, 1500)...)
	data, l := qttest.Build(mp4vFile(1, vop(0x10), big))
	cut := data[:len(data)-1000]

	s, _ := reconstruct(t, cut)
	mdat := s.Tree.Node(s.MediaData)
	require.True(t, mdat.Truncated)
	require.Equal(t, int64(len(cut)), mdat.End())
	require.Equal(t, int64(len(cut)), s.Resume)

	tr := s.Tracks[0]
	require.Len(t, tr.Chunks, 2)
	require.True(t, tr.Chunks[0].Valid)
	last := tr.Chunks[1]
	require.True(t, last.Valid)
	require.True(t, last.Clipped)
	require.Equal(t, l.Chunks[0][1][0], last.Offset)
	require.Equal(t, int64(len(big)-1000), last.Length)
	require.False(t, tr.Complete)
	require.False(t, s.IsFullFile())
}

func TestReconstruct_ChunkOutsideMediaData(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(mp4vFile(1, vop(0x10), vop(0x20)))
	i := bytes.Index(data, []byte("stco"))
	require.Positive(t, i)
	// second chunk offset, after version/flags, count and the first offset
	pio.PutU32BE(data[i+16:], 0x7fff0000)

	s, _ := reconstruct(t, data)
	mdat := s.Tree.Node(s.MediaData)
	require.True(t, mdat.Truncated)
	require.Equal(t, int64(qt.HeaderSize), mdat.Length)
	require.Equal(t, l.Payload, s.Resume)
	for _, c := range s.Tracks[0].Chunks {
		require.False(t, c.Valid)
	}
	require.False(t, s.IsFullFile())
}

func TestReconstruct_HugeConstantSampleSize(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(mp4vFile(1, vop(0x10)))
	i := bytes.Index(data, []byte("stsz"))
	require.Positive(t, i)
	// constant size 1 for 2^32-1 samples
	pio.PutU32BE(data[i+8:], 1)
	pio.PutU32BE(data[i+12:], 0xffffffff)
	i = bytes.Index(data, []byte("stsc"))
	require.Positive(t, i)
	// samples per chunk of the only entry
	pio.PutU32BE(data[i+16:], 0xffffffff)

	start := time.Now()
	s, _ := reconstruct(t, data)
	require.Less(t, time.Since(start), time.Second)

	tr := s.Tracks[0]
	require.Len(t, tr.Chunks, 1)
	require.Equal(t, l.Payload, tr.Chunks[0].Offset)
	require.LessOrEqual(t, tr.Chunks[0].End(), int64(len(data))+1)
	require.False(t, tr.Chunks[0].Valid)
	require.False(t, tr.Complete)

	mdat := s.Tree.Node(s.MediaData)
	require.True(t, mdat.Truncated)
	require.Equal(t, l.Payload, mdat.End())
}

func TestReconstruct_CorruptChunk(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(mp4vFile(1, vop(0x10), vop(0x20), vop(0x30)))
	second := l.Chunks[0][1]
	copy(data[second[0]:], []byte{0xff, 0xff, 0xff, 0xff})

	s, _ := reconstruct(t, data)
	tr := s.Tracks[0]
	require.True(t, tr.HasInvalidChunks)
	require.Equal(t, second[0], tr.FirstInvalid)
	require.Equal(t, l.Chunks[0][2][0], tr.LastInvalid)
	require.Equal(t, []bool{true, false, false}, []bool{tr.Chunks[0].Valid, tr.Chunks[1].Valid, tr.Chunks[2].Valid})

	mdat := s.Tree.Node(s.MediaData)
	require.True(t, mdat.Truncated)
	require.Equal(t, l.Chunks[0][0][1], mdat.End())
	require.Equal(t, l.Chunks[0][0][1], s.Resume)
}

func TestReconstruct_AVC(t *testing.T) {
	t.Parallel()

	rec := h264.AVCDecoderConfRecord{
		AVCProfileIndication: 0x42,
		ProfileCompatibility: 0xc0,
		AVCLevelIndication:   0x1e,
		LengthSizeMinusOne:   1,
		SPS:                  [][]byte{{0x67, 0x42, 0xc0, 0x1e}},
		PPS:                  [][]byte{{0x68, 0xce, 0x3c, 0x80}},
	}
	conf := make([]byte, rec.Len())
	rec.Marshal(conf)

	f := qttest.File{Tracks: []qttest.Track{{
		Format:  qt.AVC1,
		Handler: qt.HandlerVideo,
		Config:  conf,
		Samples: [][]byte{
			{0x00, 0x03, 0x65, 0x88, 0x84},
			{0x00, 0x02, 0x41, 0x9a},
			// nal_ref_idc set on a SEI
			{0x00, 0x02, 0x66, 0x00},
		},
	}}}
	data, _ := qttest.Build(f)

	s, _ := reconstruct(t, data)
	tr := s.Tracks[0]
	require.Equal(t, 2, tr.LengthSize)
	require.Equal(t, []bool{true, true, false}, []bool{tr.Chunks[0].Valid, tr.Chunks[1].Valid, tr.Chunks[2].Valid})
	require.False(t, tr.Complete)
}

func TestReconstruct_AudioTrackSkipsStartCheck(t *testing.T) {
	t.Parallel()

	f := qttest.File{Tracks: []qttest.Track{{
		Format:          qt.SAMR,
		Handler:         qt.HandlerSound,
		Samples:         [][]byte{{0x3c, 1}, {0x3c, 2}, {0x3c, 3}},
		SamplesPerChunk: 2,
	}}}
	data, _ := qttest.Build(f)

	s, _ := reconstruct(t, data)
	tr := s.Tracks[0]
	require.False(t, tr.IsVideo())
	require.Len(t, tr.Chunks, 2)
	require.Equal(t, 2, tr.Chunks[0].Samples)
	require.Equal(t, 1, tr.Chunks[1].Samples)
	require.True(t, tr.Complete)
	require.True(t, s.IsFullFile())
}

func TestReconstruct_NoMediaData(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(mp4vFile(1, vop(0x10)))
	s, _ := reconstruct(t, data[:l.MediaData])
	require.Equal(t, tree.None, s.MediaData)
	require.False(t, s.Tracks[0].Chunks[0].Valid)
	require.False(t, s.IsFullFile())
	require.Equal(t, l.MediaData, s.Resume)
}

func TestTruncationMonotonicity(t *testing.T) {
	t.Parallel()

	samples := [][]byte{vop(1, 2, 3), vop(4, 5), vop(6), vop(7, 8, 9, 10), vop(11)}
	data, l := qttest.Build(mp4vFile(2, samples...))

	accepted := func(s *codecstream.Stream) map[int64]bool {
		res := map[int64]bool{}
		for _, tr := range s.Tracks {
			for _, c := range tr.Chunks {
				if c.Valid {
					res[c.Offset] = true
				}
			}
		}
		return res
	}

	full, _ := reconstruct(t, data)
	before := accepted(full)
	require.Len(t, before, 3)

	for k := l.End; k >= l.Payload; k-- {
		s, _ := reconstruct(t, data)
		s.TruncateMediaData(k)
		after := accepted(s)
		for off := range after {
			require.True(t, before[off], "chunk at %d accepted only after truncation to %d", off, k)
		}
		require.LessOrEqual(t, len(after), len(before))
		before = after
	}
}
