package codecstream

import (
	"github.com/ugparu/mediacarve/format/qt"
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/nal"
)

// header returns the parsed header of the first kind node below id.
func header[T any](t *tree.Tree, id tree.NodeID, k grammar.Kind) (T, bool) {
	var zero T
	found := t.Find(id, k)
	if len(found) == 0 {
		return zero, false
	}
	h, ok := t.Node(found[0]).Header.(T)
	return h, ok
}

// resolve turns the sample tables of trak into chunk spans. limit is the
// furthest byte a chunk can reach: the end of the source or of mdat as declared.
func resolve(t *tree.Tree, trak tree.NodeID, limit int64) *Track {
	tr := &Track{Node: trak, LengthSize: nal.MinNaluSize, FirstInvalid: -1, LastInvalid: -1}

	if h, ok := header[*qt.Handler](t, trak, qt.KindHandler); ok {
		tr.Handler = h.SubType
	}
	if v, ok := header[*qt.VideoSampleEntry](t, trak, qt.KindVideoSampleEntry); ok {
		tr.Format = v.Format
	} else if a, ok := header[*qt.AudioSampleEntry](t, trak, qt.KindAudioSampleEntry); ok {
		tr.Format = a.Format
	}
	if c, ok := header[*qt.AVCConfig](t, trak, qt.KindAVCConfig); ok {
		tr.LengthSize = c.Record.LengthSize()
	}

	sizes, ok := header[*qt.SampleSize](t, trak, qt.KindSampleSize)
	if !ok {
		sizes, ok = header[*qt.SampleSize](t, trak, qt.KindCompactSampleSize)
	}
	if !ok {
		return tr
	}
	tr.Samples = int(sizes.Count)

	stsc, ok := header[*qt.SampleToChunk](t, trak, qt.KindSampleToChunk)
	if !ok || len(stsc.Entries) == 0 {
		return tr
	}
	offsets, ok := header[*qt.ChunkOffset](t, trak, qt.KindChunkOffset)
	if !ok {
		if offsets, ok = header[*qt.ChunkOffset](t, trak, qt.KindChunkOffset64); !ok {
			return tr
		}
	}

	sample, entry := 0, 0
	for i, off := range offsets.Offsets {
		chunk := uint32(i + 1) //nolint:gosec
		for entry+1 < len(stsc.Entries) && stsc.Entries[entry+1].FirstChunk <= chunk {
			entry++
		}
		n := min(int(stsc.Entries[entry].SamplesPerChunk), tr.Samples-sample)
		if n <= 0 {
			break
		}
		// lengths running past everything addressable end one byte past it,
		// which keeps them outside mdat
		length := min(sizes.Sum(sample, n), max(limit-int64(off), 0)+1) //nolint:gosec
		tr.spans = append(tr.spans, span{offset: int64(off), length: length, samples: n}) //nolint:gosec
		sample += n
	}
	tr.resolved = sample
	return tr
}
