// Package scanner walks whole byte sources with a set of detectors, keeps the
// blocks that pass the acceptance policies and scans disjoint regions in parallel.
package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ugparu/mediacarve"
	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/format/mpeg4"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/logger"
)

// Scanner tries every detector at the current offset and keeps the earliest
// block. It holds no per-scan state and is safe for concurrent use.
type Scanner struct {
	cfg       *config.Config
	detectors []mediacarve.Detector
}

// New returns a scanner over detectors, tried in order. The order breaks ties
// between blocks starting at the same offset.
func New(cfg *config.Config, detectors ...mediacarve.Detector) *Scanner {
	return &Scanner{cfg: cfg, detectors: detectors}
}

// NewDefault returns a scanner with the container detector followed by the
// elementary stream detector using refs.
func NewDefault(cfg *config.Config, refs ...*mpeg4.VOLHeader) *Scanner {
	return New(cfg, NewQTDetector(cfg), NewMPEG4Detector(cfg, refs...))
}

func (s *Scanner) String() string {
	return "SCANNER"
}

// Scan returns the accepted blocks starting in [from, to), in source order.
func (s *Scanner) Scan(ctx context.Context, c *bits.Cursor, from, to int64) ([]*mediacarve.Block, error) {
	to = min(to, c.End())
	pending := make([]*mediacarve.Block, len(s.detectors))
	done := make([]bool, len(s.detectors))

	var blocks []*mediacarve.Block
	for pos := max(from, c.Base()); pos < to; {
		best := -1
		for i, d := range s.detectors {
			if done[i] {
				continue
			}
			// a block found further on stays the first one from pos
			if pending[i] == nil || pending[i].Offset < pos {
				b, err := d.Detect(ctx, c, pos, to)
				switch {
				case errors.Is(err, mediacarve.ErrNoStructure):
					done[i] = true
					continue
				case err != nil:
					return blocks, fmt.Errorf("%s at %d: %w", d.Name(), pos, err)
				}
				pending[i] = b
			}
			if b := pending[i]; b.Offset < to && (best < 0 || earlier(b, pending[best])) {
				best = i
			}
		}
		if best < 0 {
			break
		}

		b := pending[best]
		pending[best] = nil
		if reason := s.reject(b); reason != "" {
			logger.Debugf(s, "discarding %s block at %d: %s", b.Format, b.Offset, reason)
			pos = b.Offset + 1
			continue
		}
		logger.Infof(s, "%s block %d..%d by %s", b.Format, b.Offset, b.End, b.Detector)
		blocks = append(blocks, b)
		pos = max(b.Resume, b.Offset+1)
	}
	return blocks, ctx.Err()
}

// earlier orders blocks by start offset, then by length.
func earlier(a, b *mediacarve.Block) bool {
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return a.Length() > b.Length()
}

// reject applies the acceptance policies and returns why b is discarded, or "".
func (s *Scanner) reject(b *mediacarve.Block) string {
	switch {
	case b.Meaningful < s.cfg.MinMeaningfulNodes:
		return fmt.Sprintf("%d meaningful nodes", b.Meaningful)
	case b.Format == mediacarve.H263 && b.ShortHeaders < s.cfg.MinShortHeaderCount:
		return fmt.Sprintf("%d short headers", b.ShortHeaders)
	}
	return ""
}

// Region is a half-open byte range [From, To) in which blocks may start.
type Region struct {
	From, To int64
}

// Result holds the blocks of one region.
type Result struct {
	ID     uuid.UUID
	Region Region
	Blocks []*mediacarve.Block
}

// ScanRegions scans regions of data concurrently, at most cfg.Workers at a
// time. data is shared read-only; every worker reads it through its own cursor.
// Results are in region order. The first failure cancels the other regions.
func (s *Scanner) ScanRegions(ctx context.Context, data []byte, regions []Region) ([]Result, error) {
	results := make([]Result, len(regions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Workers, 1))

	for i, r := range regions {
		results[i] = Result{ID: uuid.New(), Region: r}
		g.Go(func() error {
			blocks, err := s.Scan(ctx, bits.NewCursor(data), r.From, r.To)
			if err != nil {
				return fmt.Errorf("region %d..%d: %w", r.From, r.To, err)
			}
			logger.Debugf(s, "region %s %d..%d: %d blocks", results[i].ID, r.From, r.To, len(blocks))
			results[i].Blocks = blocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Split cuts [0, size) into n regions of nearly equal length.
func Split(size int64, n int) []Region {
	if n < 1 || size <= 0 {
		return nil
	}
	step := (size + int64(n) - 1) / int64(n)
	var res []Region
	for from := int64(0); from < size; from += step {
		res = append(res, Region{From: from, To: min(from+step, size)})
	}
	return res
}
