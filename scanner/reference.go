package scanner

import (
	"context"
	"fmt"

	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/engine"
	"github.com/ugparu/mediacarve/format/mpeg4"
	"github.com/ugparu/mediacarve/tree"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/buffer"
	"github.com/ugparu/mediacarve/utils/logger"
)

// LoadReferenceHeaders carves the file at path as an elementary stream and
// returns every valid video object layer header it holds, in file order.
// Pictures separated from their own layer header are decoded against them.
func LoadReferenceHeaders(ctx context.Context, path string, cfg *config.Config) ([]*mpeg4.VOLHeader, error) {
	buf, err := buffer.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("reference headers: %w", err)
	}
	defer buf.Release()

	refs := ReferenceHeaders(ctx, bits.NewCursor(buf.Data()), cfg)
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	logger.Infof(path, "%d reference headers", len(refs))
	return refs, nil
}

// ReferenceHeaders returns the valid layer headers carved from c.
func ReferenceHeaders(ctx context.Context, c *bits.Cursor, cfg *config.Config) []*mpeg4.VOLHeader {
	e := engine.New(mpeg4.NewGrammar(cfg), cfg)
	var refs []*mpeg4.VOLHeader
	for pos := c.Base(); pos < c.End(); {
		res := e.Carve(ctx, c, pos, c.End())
		if res == nil {
			break
		}
		t := res.Tree
		for _, id := range t.Find(tree.RootID, mpeg4.KindVideoObjectLayer) {
			if n := t.Node(id); n.Valid {
				if h, ok := n.Header.(*mpeg4.VOLHeader); ok {
					refs = append(refs, h)
				}
			}
		}
		pos = max(res.Resume, t.Root().Offset+1)
	}
	return refs
}
