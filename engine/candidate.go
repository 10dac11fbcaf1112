package engine

import (
	"github.com/ugparu/mediacarve/grammar"
	"github.com/ugparu/mediacarve/tree"
)

// Outcome is the verdict on a parsed candidate.
type Outcome uint8

const (
	// Rejected candidates are dropped and the engine resynchronises.
	Rejected Outcome = iota
	// Suspect candidates are committed with Valid set to false.
	Suspect
	// Valid candidates are committed as they are.
	Valid
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Suspect:
		return "suspect"
	case Valid:
		return "valid"
	default:
		return "unknown"
	}
}

// Candidate is a node being parsed. It only enters the tree once the parse and
// the parent search have both succeeded.
type Candidate struct {
	Kind      grammar.Kind
	Offset    int64
	Length    int64
	Truncated bool
	Attrs     []tree.Attr
	Header    any

	suspect bool
	err     *ParseError
}

// End returns the absolute offset one past the candidate's span.
func (c *Candidate) End() int64 {
	return c.Offset + c.Length
}

// Add records an attribute.
func (c *Candidate) Add(name string, value any) {
	c.Attrs = append(c.Attrs, tree.Attr{Name: name, Value: value})
}

// Warn records a soft constraint violation. The node stays valid.
func (c *Candidate) Warn(name string, value any) {
	c.Attrs = append(c.Attrs, tree.Attr{Name: name, Value: value, Invalid: true})
}

// Suspect records a violation that keeps the node but marks it invalid.
func (c *Candidate) Suspect(name string, value any) {
	c.Warn(name, value)
	c.suspect = true
}

// Reject records why the candidate is unusable and returns Rejected.
func (c *Candidate) Reject(debug string, offset int64) Outcome {
	c.err = c.err.Wrap(debug, offset)
	return Rejected
}

// Err returns the rejection chain, or nil.
func (c *Candidate) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

// Outcome returns Suspect or Valid depending on the recorded violations.
func (c *Candidate) Outcome() Outcome {
	if c.suspect {
		return Suspect
	}
	return Valid
}

func (c *Candidate) node() tree.Node {
	return tree.Node{
		Kind:      c.Kind,
		Offset:    c.Offset,
		Length:    c.Length,
		Valid:     !c.suspect,
		Truncated: c.Truncated,
		Attrs:     c.Attrs,
		Header:    c.Header,
	}
}
