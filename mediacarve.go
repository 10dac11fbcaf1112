// Package mediacarve recovers media containers and video elementary streams
// from raw, possibly damaged byte sources. Detectors turn the bytes at an
// offset into a carved Block; the scanner package walks whole sources.
package mediacarve

import (
	"context"
	"errors"

	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
)

// ErrNoStructure is returned by a Detector that found nothing it could keep.
var ErrNoStructure = errors.New("no recognizable structure")

// Segment is an absolute byte range of recovered codec payload.
type Segment struct {
	Track  int   // Index of the track the payload belongs to, 0 for elementary streams.
	Offset int64 // Absolute offset of the first byte.
	Length int64 // Number of bytes.
}

// End returns the absolute offset one past the segment.
func (s Segment) End() int64 {
	return s.Offset + s.Length
}

// Block is one carved structure.
type Block struct {
	Detector string     // Name of the detector that produced the block.
	Format   Format     // What the block holds.
	Tree     *tree.Tree // The carved node tree, owned by the block.
	Offset   int64      // Absolute offset of the first node.
	End      int64      // Absolute offset one past the last node.
	Resume   int64      // Where scanning continues after the block.
	Segments []Segment  // Recovered payload in stream order per track.
	// Meaningful counts valid nodes that say something about the format,
	// leaving out unknown atoms, user data and end markers.
	Meaningful int
	// ShortHeaders counts short header pictures.
	ShortHeaders int
	FullFile     bool // Complete and undamaged file.
	Truncated    bool // The block ends at a cut in the source.
}

// Length returns the span of the block in bytes.
func (b *Block) Length() int64 {
	return b.End - b.Offset
}

// Detector carves one family of formats.
type Detector interface {
	Name() string // Returns the detector name used in reports and logs.
	// Detect carves the first structure starting in [offset, limit]. It returns
	// ErrNoStructure when there is none and the context error on cancellation.
	Detect(ctx context.Context, c *bits.Cursor, offset, limit int64) (*Block, error)
}
