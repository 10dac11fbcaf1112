// Package grammar holds the static per-kind metadata that drives the carving engine:
// markers, structural flags and the set of kinds a node may nest under.
package grammar

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// Kind identifies a grammar symbol. Kinds are local to one Table.
type Kind uint16

// Root is the synthetic node every carved tree starts from.
const Root Kind = 0

// Flags describe the layout and nesting behaviour of a kind.
type Flags uint8

const (
	HasLengthAndType Flags = 1 << iota
	HasVersionAndFlags
	Container
	AllowsDuplicates
	TopLevel
)

// Marker is a 4-character code or a numeric start code.
type Marker uint32

// Range is an inclusive marker range.
type Range struct {
	Lo, Hi Marker
}

// One returns a range holding a single marker.
func One(m Marker) Range {
	return Range{Lo: m, Hi: m}
}

// Entry describes one kind.
type Entry struct {
	Kind    Kind
	Name    string
	Markers []Range
	Flags   Flags
	// Parents lists the kinds this kind may nest under. Empty means any container.
	Parents []Kind
}

// Has reports whether all bits of f are set.
func (e *Entry) Has(f Flags) bool {
	return e.Flags&f == f
}

type markerSpan struct {
	Range
	kind Kind
}

// Table is an immutable, validated set of entries.
type Table struct {
	name    string
	entries map[Kind]*Entry
	single  map[Marker]Kind
	spans   []markerSpan
	kinds   []Kind
}

// NewTable builds a table and validates it. Every declared parent must be a
// container, kinds and markers must be unique, and Root must be present.
func NewTable(name string, entries ...Entry) (*Table, error) {
	t := &Table{
		name:    name,
		entries: make(map[Kind]*Entry, len(entries)),
		single:  make(map[Marker]Kind),
	}

	var err error
	for i := range entries {
		e := entries[i]
		if _, dup := t.entries[e.Kind]; dup {
			err = multierr.Append(err, fmt.Errorf("%s: kind %d (%s) declared twice", name, e.Kind, e.Name))
			continue
		}
		t.entries[e.Kind] = &e
		t.kinds = append(t.kinds, e.Kind)
		for _, r := range e.Markers {
			if r.Lo > r.Hi {
				err = multierr.Append(err, fmt.Errorf("%s: %s has inverted marker range %#x-%#x", name, e.Name, r.Lo, r.Hi))
				continue
			}
			if r.Lo == r.Hi {
				if prev, dup := t.single[r.Lo]; dup {
					err = multierr.Append(err, fmt.Errorf("%s: marker %#x of %s already maps to kind %d", name, r.Lo, e.Name, prev))
					continue
				}
				t.single[r.Lo] = e.Kind
				continue
			}
			t.spans = append(t.spans, markerSpan{Range: r, kind: e.Kind})
		}
	}

	root, ok := t.entries[Root]
	switch {
	case !ok:
		err = multierr.Append(err, fmt.Errorf("%s: missing root entry", name))
	case !root.Has(Container):
		err = multierr.Append(err, fmt.Errorf("%s: root is not a container", name))
	}

	for _, k := range t.kinds {
		e := t.entries[k]
		for _, p := range e.Parents {
			pe, ok := t.entries[p]
			if !ok {
				err = multierr.Append(err, fmt.Errorf("%s: %s declares unknown parent %d", name, e.Name, p))
				continue
			}
			if !pe.Has(Container) {
				err = multierr.Append(err, fmt.Errorf("%s: %s declares non-container parent %s", name, e.Name, pe.Name))
			}
		}
	}

	sort.Slice(t.spans, func(i, j int) bool { return t.spans[i].Lo < t.spans[j].Lo })
	for i := 1; i < len(t.spans); i++ {
		if t.spans[i].Lo <= t.spans[i-1].Hi {
			err = multierr.Append(err, fmt.Errorf("%s: marker ranges of %s and %s overlap",
				name, t.Name(t.spans[i-1].kind), t.Name(t.spans[i].kind)))
		}
	}
	for m, k := range t.single {
		if sk, ok := t.lookupSpan(m); ok {
			err = multierr.Append(err, fmt.Errorf("%s: marker %#x of %s falls inside a range of %s",
				name, m, t.Name(k), t.Name(sk)))
		}
	}

	sort.Slice(t.kinds, func(i, j int) bool { return t.kinds[i] < t.kinds[j] })

	if err != nil {
		return nil, err
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid table. Grammars build their
// tables at package initialisation where a bad table is a programming error.
func MustTable(name string, entries ...Entry) *Table {
	t, err := NewTable(name, entries...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) lookupSpan(m Marker) (Kind, bool) {
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].Hi >= m })
	if i < len(t.spans) && t.spans[i].Lo <= m {
		return t.spans[i].kind, true
	}
	return 0, false
}

// Lookup maps a marker to its kind.
func (t *Table) Lookup(m Marker) (Kind, bool) {
	if k, ok := t.single[m]; ok {
		return k, true
	}
	return t.lookupSpan(m)
}

// Entry returns the entry of k, or nil.
func (t *Table) Entry(k Kind) *Entry {
	return t.entries[k]
}

// Kinds returns every declared kind in ascending order.
func (t *Table) Kinds() []Kind {
	return t.kinds
}

// Name returns the display name of k.
func (t *Table) Name(k Kind) string {
	if e, ok := t.entries[k]; ok {
		return e.Name
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Has reports whether k carries all flags f.
func (t *Table) Has(k Kind, f Flags) bool {
	e, ok := t.entries[k]
	return ok && e.Has(f)
}

// IsDeclaredParent reports whether child may nest under parent according to the
// table alone. A child without declared parents accepts any container.
func (t *Table) IsDeclaredParent(child, parent Kind) bool {
	pe, ok := t.entries[parent]
	if !ok || !pe.Has(Container) {
		return false
	}
	ce, ok := t.entries[child]
	if !ok {
		return false
	}
	if len(ce.Parents) == 0 {
		return true
	}
	for _, p := range ce.Parents {
		if p == parent {
			return true
		}
	}
	return false
}

// Ancestors returns every kind that may transitively contain k, Root excluded.
func (t *Table) Ancestors(k Kind) map[Kind]struct{} {
	seen := make(map[Kind]struct{})
	queue := []Kind{k}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		e, ok := t.entries[cur]
		if !ok {
			continue
		}
		for _, p := range e.Parents {
			if p == Root {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return seen
}

func (t *Table) String() string {
	return t.name
}
