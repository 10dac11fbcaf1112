package qt_test

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/format/qt"
	"github.com/ugparu/mediacarve/format/qt/qttest"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/bits/pio"
)

func carve(t *testing.T, data []byte) *engine.Result {
	t.Helper()

	cfg := config.Default()
	e := engine.New(qt.NewGrammar(&cfg), &cfg)
	return e.Carve(context.Background(), bits.NewCursor(data), 0, int64(len(data)))
}

func names(t *tree.Tree, id tree.NodeID) []string {
	var res []string
	t.Walk(id, func(n tree.NodeID, _ int) bool {
		if n != id {
			res = append(res, t.Name(n))
		}
		return true
	})
	return res
}

func rootNames(t *tree.Tree) []string {
	var res []string
	for _, id := range t.Children(tree.RootID) {
		res = append(res, t.Name(id))
	}
	return res
}

func videoFile() qttest.File {
	return qttest.File{
		Tracks: []qttest.Track{{
			Format:          qt.MP4V,
			Handler:         qt.HandlerVideo,
			Samples:         [][]byte{{0, 0, 1, 0xb6, 0x10, 0x20}, {0, 0, 1, 0xb6, 0x50}, {0, 0, 1, 0xb6, 0x51, 0x52}},
			SamplesPerChunk: 2,
		}},
	}
}

func TestCarve_WellFormed(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(videoFile())
	res := carve(t, data)
	require.NotNil(t, res)
	require.Equal(t, engine.StreamExhausted, res.State)
	require.Equal(t, int64(len(data)), res.Resume)
	require.Zero(t, res.Probes)

	tr := res.Tree
	require.Equal(t, []string{
		"FileType", "Movie", "MovieHeader", "Track", "TrackHeader", "Media", "MediaHeader", "Handler",
		"MediaInfo", "VideoMediaHeader", "DataInfo", "DataRef", "DataEntry", "SampleTable",
		"SampleDescription", "VideoSampleEntry", "TimeToSample", "SampleToChunk", "SampleSize",
		"ChunkOffset", "MediaData",
	}, names(tr, tree.RootID))
	require.Zero(t, tr.Count(func(n *tree.Node) bool { return !n.Valid || n.Truncated }))

	mdat := tr.Child(tree.RootID, qt.KindMediaData)
	require.Equal(t, l.MediaData, tr.Node(mdat).Offset)

	stco := tr.Find(tree.RootID, qt.KindChunkOffset)
	require.Len(t, stco, 1)
	offsets := tr.Node(stco[0]).Header.(*qt.ChunkOffset).Offsets
	require.Equal(t, []uint64{uint64(l.Chunks[0][0][0]), uint64(l.Chunks[0][1][0])}, offsets)

	entry := tr.Node(tr.Find(tree.RootID, qt.KindVideoSampleEntry)[0])
	v := entry.Header.(*qt.VideoSampleEntry)
	require.Equal(t, qt.MP4V, v.Format)
	require.Equal(t, uint16(176), v.Width)
	require.Equal(t, uint16(144), v.Height)

	hdlr := tr.Node(tr.Find(tree.RootID, qt.KindHandler)[0]).Header.(*qt.Handler)
	require.Equal(t, qt.HandlerVideo, hdlr.SubType)
	require.Equal(t, "Handler", hdlr.Name)

	// containment
	tr.Walk(tree.RootID, func(id tree.NodeID, _ int) bool {
		if p := tr.Parent(id); p != tree.None && p != tree.RootID {
			n, pn := tr.Node(id), tr.Node(p)
			require.GreaterOrEqual(t, n.Offset, pn.Offset)
			require.LessOrEqual(t, n.End(), pn.End())
		}
		return true
	})

	var out bytes.Buffer
	require.NoError(t, tree.Fprint(&out, tr))
	require.Contains(t, out.String(), "  SampleSize @")
}

func TestCarve_UnknownAtom(t *testing.T) {
	t.Parallel()

	f := videoFile()
	f.Extra = [][]byte{qt.Atom(qt.StringToTag("abcd"))}
	data, l := qttest.Build(f)

	res := carve(t, data)
	require.NotNil(t, res)
	require.Equal(t, []string{"FileType", "Unknown", "Movie", "MediaData"}, rootNames(res.Tree))

	unknown := res.Tree.Node(res.Tree.Child(tree.RootID, qt.KindUnknown))
	require.Equal(t, l.Movie-8, unknown.Offset)
	require.Equal(t, int64(8), unknown.Length)
	require.True(t, unknown.Valid)
	a, ok := unknown.Attr("type")
	require.True(t, ok)
	require.Equal(t, qt.StringToTag("abcd"), a.Value)
}

func TestCarve_TerminatingZero(t *testing.T) {
	t.Parallel()

	f := videoFile()
	f.Extra = [][]byte{{0, 0, 0, 0}}
	data, _ := qttest.Build(f)

	res := carve(t, data)
	require.NotNil(t, res)
	require.Equal(t, []string{"FileType", "TerminatingZero", "Movie", "MediaData"}, rootNames(res.Tree))
	require.Equal(t, int64(4), res.Tree.Node(res.Tree.Child(tree.RootID, qt.KindTerminatingZero)).Length)
}

func TestCarve_TruncatedMediaData(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(videoFile())
	cut := data[:l.End-3]

	res := carve(t, cut)
	require.NotNil(t, res)
	require.Equal(t, engine.StreamExhausted, res.State)

	mdat := res.Tree.Node(res.Tree.Child(tree.RootID, qt.KindMediaData))
	require.True(t, mdat.Truncated)
	require.True(t, mdat.Valid)
	require.Equal(t, int64(len(cut)), mdat.End())
	a, ok := mdat.Attr("declared_length")
	require.True(t, ok)
	require.Equal(t, l.End-l.MediaData, a.Value)
}

func TestCarve_SizeVariants(t *testing.T) {
	t.Parallel()

	ftyp := qt.Atom(qt.FTYP, qt.U32s(uint32(qt.StringToTag("isom")), 0))

	large := make([]byte, 20)
	pio.PutU32BE(large, 1)
	pio.PutU32BE(large[4:], uint32(qt.MDAT))
	pio.PutU64BE(large[8:], 20)

	toEnd := make([]byte, 12)
	pio.PutU32BE(toEnd[4:], uint32(qt.MDAT))

	tests := []struct {
		name string
		atom []byte
		attr string
	}{
		{name: "large", atom: large, attr: "large_size"},
		{name: "to_end", atom: toEnd, attr: "size_to_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := append(append([]byte{}, ftyp...), tt.atom...)
			res := carve(t, data)
			require.NotNil(t, res)
			require.Equal(t, []string{"FileType", "MediaData"}, rootNames(res.Tree))

			mdat := res.Tree.Node(res.Tree.Child(tree.RootID, qt.KindMediaData))
			require.Equal(t, int64(len(tt.atom)), mdat.Length)
			_, ok := mdat.Attr(tt.attr)
			require.True(t, ok)
		})
	}
}

func TestCarve_LeadingGarbage(t *testing.T) {
	t.Parallel()

	data, _ := qttest.Build(videoFile())
	data = append([]byte("garbage before the file"), data...)

	res := carve(t, data)
	require.NotNil(t, res)
	require.Equal(t, int64(23), res.Tree.Root().Offset)
	require.Equal(t, []string{"FileType", "Movie", "MediaData"}, rootNames(res.Tree))
}

func TestCarve_FileTypeMustComeFirst(t *testing.T) {
	t.Parallel()

	data, l := qttest.Build(videoFile())
	moov := data[l.Movie:l.MediaData]
	ftyp := data[:l.Movie]
	swapped := append(append([]byte{}, moov...), ftyp...)

	res := carve(t, swapped)
	require.NotNil(t, res)
	require.Equal(t, engine.GaveUp, res.State)
	require.Equal(t, []string{"Movie"}, rootNames(res.Tree))
	require.Equal(t, int64(len(moov)), res.Resume)
}

func TestCarve_CorruptChildSkipsContainer(t *testing.T) {
	t.Parallel()

	data, _ := qttest.Build(videoFile())
	// corrupt the sample size atom's type, the rest of stbl is skipped
	i := bytes.Index(data, []byte("stsz"))
	require.Positive(t, i)
	copy(data[i:], []byte{0x01, 0x02, 0x03, 0x04})

	res := carve(t, data)
	require.NotNil(t, res)
	tr := res.Tree
	require.Empty(t, tr.Find(tree.RootID, qt.KindSampleSize))
	require.Empty(t, tr.Find(tree.RootID, qt.KindChunkOffset))
	require.Equal(t, []string{"FileType", "Movie", "MediaData"}, rootNames(tr))

	stbl := tr.Node(tr.Find(tree.RootID, qt.KindSampleTable)[0])
	_, ok := stbl.Attr("unparsed")
	require.True(t, ok)
}

func TestCarve_AudioTrack(t *testing.T) {
	t.Parallel()

	f := qttest.File{Tracks: []qttest.Track{{
		Format:  qt.SAMR,
		Handler: qt.HandlerSound,
		Samples: [][]byte{{0x3c, 1, 2, 3}, {0x3c, 4, 5, 6}},
	}}}
	data, _ := qttest.Build(f)

	res := carve(t, data)
	require.NotNil(t, res)
	tr := res.Tree
	require.Zero(t, tr.Count(func(n *tree.Node) bool { return !n.Valid }))

	entry := tr.Node(tr.Find(tree.RootID, qt.KindAudioSampleEntry)[0]).Header.(*qt.AudioSampleEntry)
	require.Equal(t, uint32(1), entry.Channels)
	require.Equal(t, 8000.0, entry.SampleRate)
	require.Len(t, tr.Find(tree.RootID, qt.KindAMRConfig), 1)
}

func TestCarve_RandomNoise(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(7)) //nolint:gosec
	data := make([]byte, 10000)
	rnd.Read(data)

	cfg := config.Default()
	e := engine.New(qt.NewGrammar(&cfg), &cfg)
	c := bits.NewCursor(data)
	for pos := int64(0); pos < c.End(); {
		res := e.Carve(context.Background(), c, pos, c.End())
		if res == nil {
			break
		}
		require.Greater(t, res.Resume, pos)
		pos = res.Resume
	}
}
