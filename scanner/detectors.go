package scanner

import (
	"context"
	"strings"

	"github.com/ugparu/mediacarve"
	"github.com/ugparu/mediacarve/codecstream"
	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/format/mpeg4"
	"github.com/ugparu/mediacarve/format/qt"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/logger"
)

// QTDetector carves QuickTime, MP4 and 3GP files and reconstructs their tracks.
type QTDetector struct {
	e *engine.Engine
}

func NewQTDetector(cfg *config.Config) *QTDetector {
	return &QTDetector{e: engine.New(qt.NewGrammar(cfg), cfg)}
}

func (d *QTDetector) Name() string {
	return "qt"
}

func (d *QTDetector) String() string {
	return "QT DETECTOR"
}

func (d *QTDetector) Detect(ctx context.Context, c *bits.Cursor, offset, limit int64) (*mediacarve.Block, error) {
	res := d.e.Carve(ctx, c, offset, limit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, mediacarve.ErrNoStructure
	}

	t := res.Tree
	s := codecstream.Reconstruct(t, c)
	b := &mediacarve.Block{
		Detector: d.Name(),
		Format:   brandFormat(t),
		Tree:     t,
		Offset:   t.Root().Offset,
		FullFile: s.IsFullFile(),
		Meaningful: t.Count(func(n *tree.Node) bool {
			return n.Valid && n.Kind != qt.KindUnknown && n.Kind != qt.KindTerminatingZero
		}),
	}
	// mdat may have been cut back to its valid chunks
	b.End = max(s.Resume, b.Offset+1)
	b.Resume = b.End
	for i, tr := range s.Tracks {
		for _, ch := range tr.Chunks {
			if ch.Valid {
				b.Segments = append(b.Segments, mediacarve.Segment{Track: i, Offset: ch.Offset, Length: ch.Length})
			}
		}
	}
	for _, id := range t.Children(tree.RootID) {
		b.Truncated = b.Truncated || t.Node(id).Truncated
	}
	logger.Debugf(d, "%s block %d..%d, %d tracks, full file %t", b.Format, b.Offset, b.End, len(s.Tracks), b.FullFile)
	return b, nil
}

// brandFormat maps the major brand of ftyp to a Format. Files without ftyp
// predate it and are QuickTime movies.
func brandFormat(t *tree.Tree) mediacarve.Format {
	id := t.Child(tree.RootID, qt.KindFileType)
	if id == tree.None {
		return mediacarve.QuickTime
	}
	ft, ok := t.Node(id).Header.(*qt.FileType)
	if !ok {
		return mediacarve.QuickTime
	}
	brand := ft.MajorBrand.String()
	switch {
	case brand == "qt  ":
		return mediacarve.QuickTime
	case strings.HasPrefix(brand, "3g"):
		return mediacarve.ThreeGP
	default:
		return mediacarve.MP4
	}
}

// MPEG4Detector carves MPEG-4 part 2 visual elementary streams, including
// runs of short header pictures.
type MPEG4Detector struct {
	e *engine.Engine
}

// NewMPEG4Detector returns a detector that decodes pictures lacking their own
// layer header against refs.
func NewMPEG4Detector(cfg *config.Config, refs ...*mpeg4.VOLHeader) *MPEG4Detector {
	return &MPEG4Detector{e: engine.New(mpeg4.NewGrammar(cfg, refs...), cfg)}
}

func (d *MPEG4Detector) Name() string {
	return "mpeg4"
}

func (d *MPEG4Detector) String() string {
	return "MPEG4 DETECTOR"
}

func (d *MPEG4Detector) Detect(ctx context.Context, c *bits.Cursor, offset, limit int64) (*mediacarve.Block, error) {
	res := d.e.Carve(ctx, c, offset, limit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, mediacarve.ErrNoStructure
	}

	t := res.Tree
	root := t.Root()
	b := &mediacarve.Block{
		Detector: d.Name(),
		Format:   mediacarve.MPEG4Video,
		Tree:     t,
		Offset:   root.Offset,
		End:      root.End(),
		Resume:   max(res.Resume, root.Offset+1),
	}
	full := 0
	for i := 1; i < t.Len(); i++ {
		n := t.Node(tree.NodeID(i))
		b.Truncated = b.Truncated || n.Truncated
		if !n.Valid {
			continue
		}
		switch n.Kind {
		case mpeg4.KindUserData, mpeg4.KindSequenceEnd:
			continue
		case mpeg4.KindVop:
			if h, ok := n.Header.(*mpeg4.VOPHeader); ok && h.ShortVideoHeader {
				b.ShortHeaders++
			} else {
				full++
			}
		default:
			full++
		}
		b.Meaningful++
	}
	if full == 0 && b.ShortHeaders > 0 {
		b.Format = mediacarve.H263
	}
	b.Segments = []mediacarve.Segment{{Offset: b.Offset, Length: b.Length()}}
	logger.Debugf(d, "%s block %d..%d, %d meaningful, %d short", b.Format, b.Offset, b.End, b.Meaningful, b.ShortHeaders)
	return b, nil
}
