package mpeg4_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/format/mpeg4"
	"github.com/ugparu/mediacarve/format/mpeg4/mpeg4test"
	"github.com/ugparu/mediacarve/format/mpeg4/vlc"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
)

var layer = mpeg4test.Layer{Width: 32, Height: 32}

func carve(t *testing.T, data []byte, refs ...*mpeg4.VOLHeader) *engine.Result {
	t.Helper()

	cfg := config.Default()
	e := engine.New(mpeg4.NewGrammar(&cfg, refs...), &cfg)
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

func requireContained(t *testing.T, tr *tree.Tree) {
	t.Helper()

	for i := 1; i < tr.Len(); i++ {
		n := tr.Node(tree.NodeID(i))
		if n.Parent == tree.RootID || n.Truncated {
			continue
		}
		p := tr.Node(n.Parent)
		require.GreaterOrEqual(t, n.Offset, p.Offset, tr.Name(tree.NodeID(i)))
		require.LessOrEqual(t, n.End(), p.End(), tr.Name(tree.NodeID(i)))
	}
}

// stream writes a visual object sequence up to its layer header.
func stream(l mpeg4test.Layer) *mpeg4test.Writer {
	w := &mpeg4test.Writer{}
	mpeg4test.Sequence(w, 0x08)
	mpeg4test.VisualObject(w)
	mpeg4test.VideoObject(w, 0)
	mpeg4test.VideoObjectLayer(w, l)
	return w
}

func vops(tr *tree.Tree) []*tree.Node {
	var res []*tree.Node
	for _, id := range tr.Find(tree.RootID, mpeg4.KindVop) {
		res = append(res, tr.Node(id))
	}
	return res
}

func TestCarve_ElementaryStream(t *testing.T) {
	t.Parallel()

	w := stream(layer)
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI, Coded: []int{8, 0, 5, 15}})
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingP, Time: 1, Coded: []int{0, 1}})
	w.StartCode(mpeg4.VisualObjectSeqEnd)
	data := w.Bytes()

	res := carve(t, data)
	require.NotNil(t, res)
	require.Equal(t, engine.StreamExhausted, res.State)
	require.Equal(t, int64(len(data)), res.Resume)
	require.Zero(t, res.Probes)

	tr := res.Tree
	require.Equal(t, []string{
		"VisualObjectSequence", "VisualObject", "VideoObject", "VideoObjectLayer", "Vop", "Vop", "SequenceEnd",
	}, names(tr, tree.RootID))
	require.Zero(t, tr.Count(func(n *tree.Node) bool { return !n.Valid || n.Truncated }))
	requireContained(t, tr)

	vol := tr.Find(tree.RootID, mpeg4.KindVideoObjectLayer)[0]
	a, ok := tr.Node(vol).Attr("size")
	require.True(t, ok)
	require.Equal(t, [2]int{32, 32}, a.Value)

	for i, n := range vops(tr) {
		h, ok := n.Header.(*mpeg4.VOPHeader)
		require.True(t, ok)
		require.Equal(t, 4, h.Macroblocks)
		require.Equal(t, uint32(i), h.TimeIncrement)
		require.Same(t, tr.Node(vol).Header, h.Layer)
		require.Equal(t, vol, n.Parent)
	}
	require.Equal(t, int64(len(data)), tr.Root().End())
}

func TestCarve_AfterSequenceEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		next func(w *mpeg4test.Writer)
		want []string
	}{
		{
			name: "picture",
			next: func(w *mpeg4test.Writer) { mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI}) },
			want: []string{"VisualObjectSequence"},
		},
		{
			name: "sequence",
			next: func(w *mpeg4test.Writer) { mpeg4test.Sequence(w, 0x08) },
			want: []string{"VisualObjectSequence", "VisualObjectSequence"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := stream(layer)
			mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI})
			w.StartCode(mpeg4.VisualObjectSeqEnd)
			end := int64(w.Len())
			w.Raw(0xff, 0xff)
			tt.next(w)

			res := carve(t, w.Bytes())
			require.NotNil(t, res)
			var got []string
			for _, id := range res.Tree.Children(tree.RootID) {
				got = append(got, res.Tree.Name(id))
			}
			require.Equal(t, tt.want, got)
			if len(tt.want) == 1 {
				require.Equal(t, mpeg4.KindSequenceEnd, res.Tree.Kind(res.Tree.Last()))
				require.Equal(t, end, res.Resume)
			}
		})
	}
}

func TestCarve_Successors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		between func(w *mpeg4test.Writer)
		want    []string
	}{
		{
			name:    "visual_object",
			between: mpeg4test.VisualObject,
			want:    []string{"Vop", "Vop"},
		},
		{
			name:    "user_data",
			between: func(w *mpeg4test.Writer) { w.StartCode(mpeg4.UserData).Raw([]byte("tag")...) },
			want:    []string{"Vop", "UserData", "Vop"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := stream(layer)
			mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI})
			tt.between(w)
			mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingP, Time: 1})

			res := carve(t, w.Bytes())
			require.NotNil(t, res)
			tr := res.Tree
			vol := tr.Find(tree.RootID, mpeg4.KindVideoObjectLayer)[0]
			require.Equal(t, tt.want, names(tr, vol))
			require.Len(t, tr.Find(tree.RootID, mpeg4.KindVisualObject), 1)
			require.Zero(t, res.Probes)
		})
	}
}

func TestCarve_GroupOfVop(t *testing.T) {
	t.Parallel()

	gov := func(w *mpeg4test.Writer, minutes uint64) {
		w.StartCode(mpeg4.GroupOfVop).Bits(1, 5).Bits(minutes, 6).Flag(true).Bits(30, 6).Flag(true).Flag(false).Stuff()
	}

	tests := []struct {
		name    string
		minutes uint64
		want    []string
		probes  bool
	}{
		{name: "valid", minutes: 59, want: []string{"GroupOfVop", "Vop"}},
		{name: "bad_time_code", minutes: 61, want: []string{"Vop"}, probes: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := stream(layer)
			gov(w, tt.minutes)
			mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI})
			res := carve(t, w.Bytes())
			require.NotNil(t, res)

			tr := res.Tree
			vol := tr.Find(tree.RootID, mpeg4.KindVideoObjectLayer)[0]
			require.Equal(t, tt.want, names(tr, vol))
			require.Equal(t, tt.probes, res.Probes > 0)
		})
	}
}

func TestCarve_UserData(t *testing.T) {
	t.Parallel()

	w := &mpeg4test.Writer{}
	mpeg4test.Sequence(w, 0x08)
	w.StartCode(mpeg4.UserData).Raw([]byte("encoder 1.0")...)
	mpeg4test.VisualObject(w)
	mpeg4test.VideoObject(w, 0)
	mpeg4test.VideoObjectLayer(w, layer)
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI})

	res := carve(t, w.Bytes())
	require.NotNil(t, res)
	tr := res.Tree
	require.Equal(t, []string{
		"VisualObjectSequence", "UserData", "VisualObject", "VideoObject", "VideoObjectLayer", "Vop",
	}, names(tr, tree.RootID))

	ud := tr.Node(tr.Find(tree.RootID, mpeg4.KindUserData)[0])
	require.Equal(t, int64(mpeg4.StartCodeLen+len("encoder 1.0")), ud.Length)
}

func TestCarve_ShortPictures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		trs   []uint8
		end   bool
		count int
		state engine.State
	}{
		{name: "run", trs: []uint8{0, 1, 2}, count: 3, state: engine.StreamExhausted},
		{name: "wrap", trs: []uint8{254, 255, 0, 2}, count: 4, state: engine.StreamExhausted},
		{name: "drift", trs: []uint8{0, 1, 9}, count: 2, state: engine.GaveUp},
		{name: "repeat", trs: []uint8{5, 5}, count: 1, state: engine.GaveUp},
		{name: "end_marker", trs: []uint8{0, 1}, end: true, count: 2, state: engine.StreamExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := &mpeg4test.Writer{}
			for _, tr := range tt.trs {
				mpeg4test.ShortPicture(w, tr)
			}
			if tt.end {
				mpeg4test.ShortEnd(w)
			}
			res := carve(t, w.Bytes())
			require.NotNil(t, res)
			require.Equal(t, tt.state, res.State)

			tr := res.Tree
			root := tr.Children(tree.RootID)
			want := tt.count
			if tt.end {
				want++
				require.Equal(t, mpeg4.KindSequenceEnd, tr.Kind(root[len(root)-1]))
			}
			require.Len(t, root, want)

			for i, n := range vops(tr) {
				require.Equal(t, tree.RootID, n.Parent)
				require.True(t, n.Valid)
				h := n.Header.(*mpeg4.VOPHeader)
				require.True(t, h.ShortVideoHeader)
				require.Equal(t, tt.trs[i], h.TemporalReference)
				require.Equal(t, 48, h.Macroblocks)
			}
		})
	}
}

func TestCarve_ShortPicturesUnderVideoObject(t *testing.T) {
	t.Parallel()

	w := &mpeg4test.Writer{}
	mpeg4test.Sequence(w, 0x08)
	mpeg4test.VisualObject(w)
	mpeg4test.VideoObject(w, 0)
	mpeg4test.ShortPicture(w, 0)
	mpeg4test.ShortPicture(w, 1)

	res := carve(t, w.Bytes())
	require.NotNil(t, res)
	tr := res.Tree
	vo := tr.Find(tree.RootID, mpeg4.KindVideoObject)[0]
	require.Equal(t, []string{"Vop", "Vop"}, names(tr, vo))
	requireContained(t, tr)
}

func TestCarve_ReferenceHeaders(t *testing.T) {
	t.Parallel()

	side := stream(layer)
	sres := carve(t, side.Bytes())
	require.NotNil(t, sres)
	ref := sres.Tree.Node(sres.Tree.Find(tree.RootID, mpeg4.KindVideoObjectLayer)[0]).Header.(*mpeg4.VOLHeader)

	w := &mpeg4test.Writer{}
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI, Coded: []int{1}})
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingP, Time: 1, Coded: []int{0, 0, 3}})
	data := w.Bytes()

	t.Run("with_reference", func(t *testing.T) {
		t.Parallel()

		res := carve(t, data, &mpeg4.VOLHeader{Width: 640, Height: 480, TimeIncrementResolution: 1,
			TimeIncrementBits: 1, QuantPrecision: 5}, ref)
		require.NotNil(t, res)
		ns := vops(res.Tree)
		require.Len(t, ns, 2)
		for _, n := range ns {
			require.True(t, n.Valid)
			a, ok := n.Attr("reference_header")
			require.True(t, ok)
			require.Equal(t, 1, a.Value)
			require.Equal(t, 4, n.Header.(*mpeg4.VOPHeader).Macroblocks)
		}
		require.Equal(t, int64(len(data)), res.Resume)
	})

	t.Run("without_reference", func(t *testing.T) {
		t.Parallel()

		res := carve(t, data)
		require.NotNil(t, res)
		ns := vops(res.Tree)
		require.Len(t, ns, 2)
		for _, n := range ns {
			a, ok := n.Attr("macroblocks")
			require.True(t, ok)
			require.Equal(t, "no layer header", a.Value)
		}
		require.Equal(t, ns[1].Offset, ns[0].End())
		require.Equal(t, int64(len(data)), ns[1].End())
	})
}

func TestCarve_CorruptMacroblocks(t *testing.T) {
	t.Parallel()

	w := stream(layer)
	mpeg4test.VopHeader(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI})
	w.Bits(0, 10).Stuff() // no intra MCBPC starts with nine zeros
	second := int64(w.Len())
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI, Time: 1})

	res := carve(t, w.Bytes())
	require.NotNil(t, res)
	ns := vops(res.Tree)
	require.Len(t, ns, 2)

	require.False(t, ns[0].Valid)
	require.Equal(t, second, ns[0].End())
	a, ok := ns[0].Attr("macroblocks")
	require.True(t, ok)
	require.True(t, a.Invalid)

	require.True(t, ns[1].Valid)
}

func TestCarve_VideoPackets(t *testing.T) {
	t.Parallel()

	l := mpeg4test.Layer{Width: 32, Height: 32, Resync: true}
	tests := []struct {
		name    string
		typ     mpeg4.CodingType
		packets map[int]int
		valid   bool
		count   int
	}{
		{name: "none", typ: mpeg4.CodingI, valid: true},
		{name: "intra", typ: mpeg4.CodingI, packets: map[int]int{1: 1, 3: 3}, valid: true, count: 2},
		{name: "inter", typ: mpeg4.CodingP, packets: map[int]int{2: 2}, valid: true, count: 1},
		{name: "misnumbered", typ: mpeg4.CodingI, packets: map[int]int{2: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := stream(l)
			mpeg4test.Vop(w, l, mpeg4test.Picture{Type: tt.typ, Coded: []int{2, 4, 6, 8}, Packets: tt.packets})
			res := carve(t, w.Bytes())
			require.NotNil(t, res)

			ns := vops(res.Tree)
			require.Len(t, ns, 1)
			require.Equal(t, tt.valid, ns[0].Valid)
			if tt.valid {
				require.Equal(t, tt.count, ns[0].Header.(*mpeg4.VOPHeader).VideoPackets)
			}
		})
	}
}

func TestCarve_TruncatedVop(t *testing.T) {
	t.Parallel()

	w := stream(layer)
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI, Coded: []int{15, 15, 15, 15}})
	data := w.Bytes()
	data = data[:len(data)-3]

	res := carve(t, data)
	require.NotNil(t, res)
	require.Equal(t, engine.StreamExhausted, res.State)

	ns := vops(res.Tree)
	require.Len(t, ns, 1)
	require.True(t, ns[0].Truncated)
	require.Equal(t, int64(len(data)), ns[0].End())
	require.Equal(t, int64(len(data)), res.Resume)
}

func TestCarve_Idempotent(t *testing.T) {
	t.Parallel()

	w := stream(layer)
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI, Coded: []int{3}})
	w.Raw(0xde, 0xad, 0xbe, 0xef)
	mpeg4test.Vop(w, layer, mpeg4test.Picture{Type: mpeg4.CodingP, Time: 2})
	data := w.Bytes()

	shape := func(tr *tree.Tree) []tree.Node {
		var res []tree.Node
		for i := 1; i < tr.Len(); i++ {
			n := *tr.Node(tree.NodeID(i))
			n.Attrs, n.Header = nil, nil
			res = append(res, n)
		}
		return res
	}
	a, b := carve(t, data), carve(t, data)
	require.NotNil(t, a)
	require.Equal(t, shape(a.Tree), shape(b.Tree))
	require.Equal(t, a.Resume, b.Resume)
}

func TestCarve_RandomNoise(t *testing.T) {
	t.Parallel()

	data := make([]byte, 10000)
	rand.New(rand.NewSource(7)).Read(data) //nolint:gosec

	cfg := config.Default()
	res := carve(t, data)
	if res == nil {
		return
	}
	meaningful := res.Tree.Count(func(n *tree.Node) bool { return n.Valid })
	require.Less(t, meaningful, cfg.MinMeaningfulNodes)
	require.LessOrEqual(t, res.Probes, len(data))
}

func TestCarve_EscapeModes(t *testing.T) {
	t.Parallel()

	escape := func(w *mpeg4test.Writer) {
		mpeg4test.Code(w, vlc.TCoefIntra, vlc.TCoef{Escape: true})
	}
	fixed := func(last bool, run, level uint64, marker bool) func(w *mpeg4test.Writer) {
		return func(w *mpeg4test.Writer) {
			escape(w)
			w.Flag(true).Flag(true) // fixed length
			w.Flag(last).Bits(run, 6).Flag(true).Bits(level, 12).Flag(marker)
		}
	}
	tests := []struct {
		name  string
		block func(w *mpeg4test.Writer)
		valid bool
	}{
		{name: "level_offset", valid: true, block: func(w *mpeg4test.Writer) {
			escape(w)
			w.Flag(false)
			mpeg4test.Code(w, vlc.TCoefIntra, vlc.TCoef{Last: true, Run: 0, Level: 2})
			w.Flag(true)
		}},
		{name: "run_offset", valid: true, block: func(w *mpeg4test.Writer) {
			escape(w)
			w.Flag(true).Flag(false)
			mpeg4test.Code(w, vlc.TCoefIntra, vlc.TCoef{Last: true, Run: 1, Level: 1})
			w.Flag(false)
		}},
		{name: "fixed_length", valid: true, block: fixed(true, 3, 200, true)},
		{name: "fixed_length_zero_level", block: fixed(true, 3, 0, true)},
		{name: "fixed_length_marker", block: fixed(true, 3, 200, false)},
		{name: "run_past_block", block: fixed(true, 63, 1, true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := stream(layer)
			mpeg4test.VopHeader(w, layer, mpeg4test.Picture{Type: mpeg4.CodingI})
			for mb := range layer.Macroblocks() {
				mpeg4test.Code(w, vlc.MCBPCIntra, vlc.MCBPC{Type: vlc.MBIntra})
				w.Flag(false) // ac_pred_flag
				cbpy := 0
				if mb == 0 {
					cbpy = 8
				}
				mpeg4test.Code(w, vlc.CBPY, cbpy)
				for b := range 6 {
					if b < 4 {
						mpeg4test.Code(w, vlc.DCSizeLuma, 0)
					} else {
						mpeg4test.Code(w, vlc.DCSizeChroma, 0)
					}
					if mb == 0 && b == 0 {
						tt.block(w)
					}
				}
			}
			w.Stuff()
			w.StartCode(mpeg4.VisualObjectSeqEnd)

			res := carve(t, w.Bytes())
			require.NotNil(t, res)
			ns := vops(res.Tree)
			require.Len(t, ns, 1)
			require.Equal(t, tt.valid, ns[0].Valid)
			require.False(t, ns[0].Truncated)
		})
	}
}

func TestCarve_ShortMacroblocks(t *testing.T) {
	t.Parallel()

	skipped := func(w *mpeg4test.Writer, n int) {
		w.Bits(1<<n-1, n)
	}
	tests := []struct {
		name    string
		picture func(w *mpeg4test.Writer)
		valid   bool
		packets int
	}{
		{name: "intra", valid: true, picture: func(w *mpeg4test.Writer) {
			mpeg4test.ShortHeader(w, 0, mpeg4.CodingI)
			for range 48 {
				mpeg4test.ShortIntra(w, 100)
			}
		}},
		{name: "intra_dc_zero", picture: func(w *mpeg4test.Writer) {
			mpeg4test.ShortHeader(w, 0, mpeg4.CodingI)
			mpeg4test.ShortIntra(w, 0)
			for range 47 {
				mpeg4test.ShortIntra(w, 100)
			}
		}},
		{name: "gob_header", valid: true, packets: 2, picture: func(w *mpeg4test.Writer) {
			mpeg4test.ShortHeader(w, 0, mpeg4.CodingP)
			skipped(w, 8)
			mpeg4test.ShortGOB(w, 1)
			skipped(w, 16)
			mpeg4test.ShortGOB(w, 3)
			skipped(w, 24)
		}},
		{name: "gob_misnumbered", picture: func(w *mpeg4test.Writer) {
			mpeg4test.ShortHeader(w, 0, mpeg4.CodingP)
			skipped(w, 8)
			mpeg4test.ShortGOB(w, 2)
			skipped(w, 40)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := &mpeg4test.Writer{}
			tt.picture(w)
			w.ZeroAlign()
			next := int64(w.Len())
			mpeg4test.ShortPicture(w, 1)

			res := carve(t, w.Bytes())
			require.NotNil(t, res)
			ns := vops(res.Tree)
			require.Len(t, ns, 2)
			require.Equal(t, tt.valid, ns[0].Valid)
			require.Equal(t, next, ns[0].End())
			require.True(t, ns[1].Valid)
			if tt.valid {
				h := ns[0].Header.(*mpeg4.VOPHeader)
				require.Equal(t, 48, h.Macroblocks)
				require.Equal(t, tt.packets, h.VideoPackets)
			}
		})
	}
}
