package engine

import (
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
)

// attach walks up from prev to the first container that accepts cand and commits
// it there. With byte-range containment the walk stops at the innermost
// container whose span holds the candidate's offset: a node found inside a
// container never escapes it.
func (e *Engine) attach(t *tree.Tree, prev tree.NodeID, cand *Candidate) (tree.NodeID, bool) {
	tbl := t.Table()
	for p := prev; p != tree.None; p = t.Parent(p) {
		if !tbl.Has(t.Kind(p), grammar.Container) {
			continue
		}
		if e.IsSuitableParent(t, cand, p) {
			return t.Append(p, cand.node()), true
		}
		if e.g.Contains() && p != tree.RootID {
			n := t.Node(p)
			if cand.Offset >= n.Offset && cand.Offset < n.End() {
				return tree.None, false
			}
		}
	}
	return tree.None, false
}

// IsSuitableParent checks span containment, sibling uniqueness, the declared
// parent set with the partial-file fallback to Root, and grammar-specific rules.
func (e *Engine) IsSuitableParent(t *tree.Tree, cand *Candidate, parent tree.NodeID) bool {
	tbl := t.Table()
	pn := t.Node(parent)

	if e.g.Contains() && parent != tree.RootID {
		if cand.Offset < pn.Offset || cand.Offset >= pn.End() {
			return false
		}
		if cand.End() > pn.End() && !(cand.Truncated && pn.Truncated) {
			return false
		}
	}

	if t.HasChild(parent, cand.Kind) && !tbl.Has(cand.Kind, grammar.AllowsDuplicates) {
		// fragments of partial files may repeat in Root, top-level kinds may not
		if parent != tree.RootID || tbl.Has(cand.Kind, grammar.TopLevel) {
			return false
		}
	}

	if !tbl.IsDeclaredParent(cand.Kind, pn.Kind) {
		if parent != tree.RootID || !e.rootFallback(t, cand.Kind) {
			return false
		}
	}

	if sc, ok := e.g.(SuitabilityChecker); ok {
		return sc.Suitable(t, cand, parent)
	}
	return true
}

// rootFallback accepts k directly under Root unless Root already holds a
// top-level node of a kind that should have contained it.
func (e *Engine) rootFallback(t *tree.Tree, k grammar.Kind) bool {
	tbl := t.Table()
	ancestors := tbl.Ancestors(k)
	for _, ch := range t.Children(tree.RootID) {
		ck := t.Kind(ch)
		if _, ok := ancestors[ck]; ok && tbl.Has(ck, grammar.TopLevel) {
			return false
		}
	}
	return true
}
