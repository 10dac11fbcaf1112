// Package tree stores carved nodes in an arena addressed by NodeID.
package tree

import (
	"fmt"

	"github.com/ugparu/mediacarve/grammar"
)

// NodeID indexes a node inside its Tree.
type NodeID int32

const (
	// None marks the absence of a node (the parent of the root).
	None NodeID = -1
	// RootID is always the first node of a tree.
	RootID NodeID = 0
)

// Attr is one named value collected while parsing a node.
type Attr struct {
	Name    string
	Value   any
	Invalid bool
}

func (a Attr) String() string {
	if a.Invalid {
		return fmt.Sprintf("%s=%v (invalid)", a.Name, a.Value)
	}
	return fmt.Sprintf("%s=%v", a.Name, a.Value)
}

// Node is one typed element of a carved tree.
type Node struct {
	Kind      grammar.Kind
	Offset    int64
	Length    int64
	Valid     bool
	Truncated bool
	Parent    NodeID
	Children  []NodeID
	Attrs     []Attr
	// Header holds the kind-specific decoded fields.
	Header any
}

// End returns the absolute offset one past the node's span.
func (n *Node) End() int64 {
	return n.Offset + n.Length
}

// Attr returns the first attribute called name.
func (n *Node) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// Tree is an arena of nodes rooted at RootID.
type Tree struct {
	table *grammar.Table
	nodes []Node
}

// New returns a tree with a zero-length root at offset. The root moves to the
// first node appended.
func New(table *grammar.Table, offset int64) *Tree {
	return &Tree{
		table: table,
		nodes: []Node{{Kind: grammar.Root, Offset: offset, Valid: true, Parent: None}},
	}
}

func (t *Tree) Table() *grammar.Table {
	return t.table
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id. The pointer is valid until the next Append.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return &t.nodes[RootID]
}

// Append commits n as the last child of parent and returns its id. The root's
// span grows to cover every node appended below it.
func (t *Tree) Append(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.Parent = parent
	n.Children = nil
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	t.extendRoot(n.Offset, n.End())
	return id
}

func (t *Tree) extendRoot(offset, end int64) {
	root := &t.nodes[RootID]
	if len(t.nodes) == 2 { //nolint:mnd
		root.Offset, root.Length = offset, 0
	}
	if end > root.End() {
		root.Length = end - root.Offset
	}
}

// Resize changes the length of id, marking it truncated when it shrinks.
func (t *Tree) Resize(id NodeID, length int64) {
	n := &t.nodes[id]
	if length < n.Length {
		n.Truncated = true
	}
	n.Length = length
}

// Cover grows every ancestor of id below the root until it spans id. Grammars
// that nest by stream order use it to keep parents around their children.
func (t *Tree) Cover(id NodeID) {
	end := t.nodes[id].End()
	for p := t.nodes[id].Parent; p != None && p != RootID; p = t.nodes[p].Parent {
		if n := &t.nodes[p]; end > n.End() {
			n.Length = end - n.Offset
		}
	}
}

// Children returns the children of id in stream order.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].Children
}

// Parent returns the parent of id, or None for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].Parent
}

// Kind returns the kind of id.
func (t *Tree) Kind(id NodeID) grammar.Kind {
	return t.nodes[id].Kind
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for p := t.nodes[id].Parent; p != None; p = t.nodes[p].Parent {
		d++
	}
	return d
}

// HasChild reports whether id has a direct child of kind k.
func (t *Tree) HasChild(id NodeID, k grammar.Kind) bool {
	return t.Child(id, k) != None
}

// Child returns the first direct child of id with kind k.
func (t *Tree) Child(id NodeID, k grammar.Kind) NodeID {
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Kind == k {
			return c
		}
	}
	return None
}

// Path follows kinds from id one level at a time using the first matching child.
func (t *Tree) Path(id NodeID, kinds ...grammar.Kind) NodeID {
	for _, k := range kinds {
		if id = t.Child(id, k); id == None {
			return None
		}
	}
	return id
}

// Walk visits id and its descendants in pre-order. Returning false from fn skips
// the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].Children {
		t.walk(c, depth+1, fn)
	}
}

// Find returns every node of kind k below id, in pre-order.
func (t *Tree) Find(id NodeID, k grammar.Kind) []NodeID {
	var res []NodeID
	t.Walk(id, func(n NodeID, _ int) bool {
		if n != id && t.nodes[n].Kind == k {
			res = append(res, n)
		}
		return true
	})
	return res
}

// Last returns the most recently appended node, or RootID for an empty tree.
func (t *Tree) Last() NodeID {
	return NodeID(len(t.nodes) - 1)
}

// Count returns the number of nodes below the root that satisfy keep.
func (t *Tree) Count(keep func(*Node) bool) int {
	n := 0
	for i := 1; i < len(t.nodes); i++ {
		if keep(&t.nodes[i]) {
			n++
		}
	}
	return n
}

// Name returns the display name of the kind of id.
func (t *Tree) Name(id NodeID) string {
	return t.table.Name(t.nodes[id].Kind)
}

func (t *Tree) String() string {
	return fmt.Sprintf("TREE %s %d nodes", t.table, len(t.nodes))
}
