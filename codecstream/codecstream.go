// Package codecstream rebuilds per-track codec payload from a carved QuickTime
// tree: chunk tables are resolved into byte ranges, checked against the media
// data atom and the codec's start patterns, and mdat is truncated to what the
// tables actually cover.
package codecstream

import (
	"bytes"
	"io"

	"github.com/ugparu/mediacarve/codec/h263"
	"github.com/ugparu/mediacarve/codec/h264"
	"github.com/ugparu/mediacarve/format/mpeg4"
	"github.com/ugparu/mediacarve/format/qt"
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/logger"
	"github.com/ugparu/mediacarve/utils/nal"
)

// startCheckLen is how many leading bytes of a chunk the start checks look at.
const startCheckLen = 16

// Chunk is one resolved run of consecutive samples.
type Chunk struct {
	Offset  int64
	Length  int64
	Samples int
	// Clipped chunks were cut short by the end of a truncated mdat.
	Clipped bool
	Valid   bool
}

func (c Chunk) End() int64 {
	return c.Offset + c.Length
}

type span struct {
	offset, length int64
	samples        int
}

// Track is the payload of one trak atom.
type Track struct {
	Node       tree.NodeID
	Handler    qt.Tag
	Format     qt.Tag
	LengthSize int
	// Samples is the sample count declared by the sample size table.
	Samples int
	Chunks  []Chunk

	HasInvalidChunks bool
	Complete         bool
	// FirstInvalid and LastInvalid are chunk offsets, -1 without invalid chunks.
	FirstInvalid int64
	LastInvalid  int64

	spans    []span
	resolved int
}

// IsVideo reports whether the track carries pictures.
func (t *Track) IsVideo() bool {
	if t.Handler == qt.HandlerVideo {
		return true
	}
	k, ok := qt.Table.Lookup(grammar.Marker(t.Format))
	return ok && k == qt.KindVideoSampleEntry
}

// Reader returns the concatenated valid chunks of the track, read from src.
func (t *Track) Reader(src *bits.Cursor) io.Reader {
	var rs []io.Reader
	for _, c := range t.Chunks {
		if c.Valid {
			rs = append(rs, bytes.NewReader(src.Bytes(c.Offset, c.End())))
		}
	}
	return io.MultiReader(rs...)
}

// startsChunk checks the leading bytes of a video chunk against the patterns
// of the track's codec, or against all of them for other formats.
func (t *Track) startsChunk(b []byte) bool {
	switch t.Format {
	case qt.AVC1, qt.AVC3:
		return h264.IsChunkStart(b, t.LengthSize)
	case qt.MP4V:
		return mpeg4.IsChunkStart(b)
	case qt.S263, qt.H263:
		return h263.IsPictureStart(b)
	case qt.JPEG, qt.MJPA, qt.MJPB:
		return len(b) >= 2 && b[0] == 0xff && b[1] == 0xd8
	default:
		return h264.IsChunkStart(b, nal.MinNaluSize) || mpeg4.IsChunkStart(b) || h263.IsPictureStart(b)
	}
}

// Stream is a reconstructed file.
type Stream struct {
	Tree *tree.Tree
	// MediaData is the mdat node, tree.None when the tree has none.
	MediaData tree.NodeID
	Tracks    []*Track
	// Base is added to every chunk table offset. It is the start of the
	// carved file when the tables only fit relative to it, else 0.
	Base int64
	// Resume is where a caller continues scanning after this file.
	Resume int64

	src         *bits.Cursor
	payload     int64
	declaredEnd int64
}

func (s *Stream) String() string {
	return "CODECSTREAM"
}

// Reconstruct resolves every track of t against the bytes in src.
func Reconstruct(t *tree.Tree, src *bits.Cursor) *Stream {
	s := &Stream{
		Tree:      t,
		MediaData: t.Child(tree.RootID, qt.KindMediaData),
		src:       src,
	}
	if s.MediaData != tree.None {
		n := t.Node(s.MediaData)
		s.payload = n.Offset + qt.HeaderSize
		if _, ok := n.Attr("large_size"); ok {
			s.payload = n.Offset + qt.LargeHeaderSize
		}
		s.declaredEnd = n.End()
		if a, ok := n.Attr("declared_length"); ok {
			if l, ok := a.Value.(int64); ok {
				s.declaredEnd = n.Offset + l
			}
		}
	}

	limit := max(src.End(), s.declaredEnd)
	for _, trak := range t.Find(tree.RootID, qt.KindTrack) {
		s.Tracks = append(s.Tracks, resolve(t, trak, limit))
	}
	if base := t.Root().Offset; base > 0 && s.outside() {
		s.rebase(base)
		if s.outside() {
			s.rebase(-base)
		} else {
			logger.Debugf(s, "chunk tables are relative to %d", base)
		}
	}
	s.validate()

	if s.outside() {
		logger.Debugf(s, "chunks outside mdat, truncating it to its header")
		s.TruncateMediaData(s.payload)
	} else if end, ok := s.covered(); ok {
		logger.Debugf(s, "truncating mdat to the chunks it covers, %d", end)
		s.TruncateMediaData(end)
	}
	s.Resume = s.resume()
	return s
}

// TruncateMediaData cuts mdat to end and revalidates every track. It never grows mdat.
func (s *Stream) TruncateMediaData(end int64) {
	if s.MediaData == tree.None {
		return
	}
	n := s.Tree.Node(s.MediaData)
	end = max(end, min(s.payload, n.End()))
	if end >= n.End() {
		return
	}
	s.Tree.Resize(s.MediaData, end-n.Offset)
	s.Tree.Node(s.MediaData).Attrs = append(s.Tree.Node(s.MediaData).Attrs,
		tree.Attr{Name: "payload_end", Value: end})
	s.validate()
	s.Resume = s.resume()
}

// IsFullFile reports whether the tree is a complete, undamaged file: movie and
// media data present, nothing truncated or invalid at the top and every track complete.
func (s *Stream) IsFullFile() bool {
	t := s.Tree
	if s.MediaData == tree.None || t.Child(tree.RootID, qt.KindMovie) == tree.None || len(s.Tracks) == 0 {
		return false
	}
	for _, id := range t.Children(tree.RootID) {
		if n := t.Node(id); !n.Valid || n.Truncated {
			return false
		}
	}
	for _, tr := range s.Tracks {
		if !tr.Complete {
			return false
		}
	}
	return true
}

func (s *Stream) mdatEnd() int64 {
	if s.MediaData == tree.None {
		return s.payload
	}
	return s.Tree.Node(s.MediaData).End()
}

func (s *Stream) validate() {
	end := s.mdatEnd()
	for _, tr := range s.Tracks {
		tr.validate(s.src, s.payload, end)
	}
}

func (t *Track) validate(src *bits.Cursor, payload, end int64) {
	t.Chunks = t.Chunks[:0]
	t.HasInvalidChunks = false
	t.FirstInvalid, t.LastInvalid = -1, -1
	video := t.IsVideo()
	samples := 0

	for _, sp := range t.spans {
		c := Chunk{Offset: sp.offset, Length: sp.length, Samples: sp.samples}
		switch {
		case sp.length <= 0, sp.offset < payload, sp.offset >= end:
		default:
			if c.End() > end {
				c.Length = end - c.Offset
				c.Clipped = true
			}
			c.Valid = !video || t.startsChunk(src.Bytes(c.Offset, min(c.End(), c.Offset+startCheckLen)))
		}
		if c.Valid {
			samples += c.Samples
		} else {
			t.HasInvalidChunks = true
			if t.FirstInvalid < 0 {
				t.FirstInvalid = c.Offset
			}
			t.LastInvalid = c.Offset
		}
		t.Chunks = append(t.Chunks, c)
	}

	t.Complete = len(t.Chunks) > 0 && !t.HasInvalidChunks && t.resolved == t.Samples &&
		samples == t.Samples && !t.clipped()
}

func (t *Track) clipped() bool {
	for _, c := range t.Chunks {
		if c.Clipped {
			return true
		}
	}
	return false
}

// outside reports whether a chunk points outside the range mdat declares.
func (s *Stream) outside() bool {
	if s.MediaData == tree.None {
		return false
	}
	for _, tr := range s.Tracks {
		for _, sp := range tr.spans {
			if sp.length > 0 && (sp.offset < s.payload || sp.offset+sp.length > s.declaredEnd) {
				return true
			}
		}
	}
	return false
}

// covered returns the end of the valid chunks preceding the first invalid one
// across tracks, when that lies before the end of mdat.
func (s *Stream) covered() (int64, bool) {
	cut := int64(-1)
	for _, tr := range s.Tracks {
		if tr.FirstInvalid >= 0 && (cut < 0 || tr.FirstInvalid < cut) {
			cut = tr.FirstInvalid
		}
	}
	if cut < 0 || s.MediaData == tree.None {
		return 0, false
	}
	end := s.payload
	for _, tr := range s.Tracks {
		for _, c := range tr.Chunks {
			if c.Valid && c.End() <= cut {
				end = max(end, c.End())
			}
		}
	}
	return end, end < s.mdatEnd()
}

func (s *Stream) rebase(delta int64) {
	s.Base += delta
	for _, tr := range s.Tracks {
		for i := range tr.spans {
			tr.spans[i].offset += delta
		}
	}
}

func (s *Stream) resume() int64 {
	var end int64
	for _, id := range s.Tree.Children(tree.RootID) {
		end = max(end, s.Tree.Node(id).End())
	}
	return end
}
