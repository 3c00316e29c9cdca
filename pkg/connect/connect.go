// Package connect turns connections proposed by the canvas into edges.
//
// The builder is deliberately permissive: self-loops and parallel edges
// between the same pair of nodes are accepted, and endpoints are not checked
// against the node collection. Dangling edges are prevented by cascade
// deletion instead.
package connect

import (
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
)

// Connection is a proposed link between two node handles.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Validate checks that both endpoints are named.
func (c Connection) Validate() error {
	if c.Source == "" || c.Target == "" {
		return errors.New(errors.ErrCodeInvalidInput, "connection needs both a source and a target")
	}
	return nil
}

// IDSource hands out fresh edge ids.
type IDSource interface {
	NextEdgeID() string
}

// EdgeSink receives synthesized edges.
type EdgeSink interface {
	AddEdge(e graph.Edge) error
}

// Builder synthesizes edges from connections.
type Builder struct {
	ids  IDSource
	sink EdgeSink
}

// NewBuilder returns a builder that allocates ids from ids and appends
// edges to sink.
func NewBuilder(ids IDSource, sink EdgeSink) *Builder {
	return &Builder{ids: ids, sink: sink}
}

// Build returns the edge for c without storing it.
func (b *Builder) Build(c Connection) graph.Edge {
	e := graph.Edge{
		ID:           b.ids.NextEdgeID(),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
		Label:        graph.DefaultEdgeLabel,
		Type:         graph.EdgeTypeStraight,
	}
	e.ApplyDefaultStyle()
	return e
}

// Connect builds the edge for c and appends it to the sink.
func (b *Builder) Connect(c Connection) (graph.Edge, error) {
	if err := c.Validate(); err != nil {
		return graph.Edge{}, err
	}
	e := b.Build(c)
	if err := b.sink.AddEdge(e); err != nil {
		return graph.Edge{}, err
	}
	return e, nil
}
