package tree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented listing of the tree with spans, flags and attributes.
func Fprint(w io.Writer, t *Tree) error {
	var err error
	t.Walk(RootID, func(id NodeID, depth int) bool {
		if err != nil {
			return false
		}
		n := t.Node(id)
		indent := strings.Repeat("  ", depth)

		var flags []string
		if !n.Valid {
			flags = append(flags, "invalid")
		}
		if n.Truncated {
			flags = append(flags, "truncated")
		}
		line := fmt.Sprintf("%s%s @%d+%d", indent, t.Name(id), n.Offset, n.Length)
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ",") + "]"
		}
		if _, err = fmt.Fprintln(w, line); err != nil {
			return false
		}
		for _, a := range n.Attrs {
			if _, err = fmt.Fprintf(w, "%s  - %s\n", indent, a); err != nil {
				return false
			}
		}
		return true
	})
	return err
}
