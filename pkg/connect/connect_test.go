package connect

import (
	"testing"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/ids"
	"github.com/matzehuels/graphedit/pkg/store"
)

func newBuilder() (*Builder, *store.Store) {
	s := store.New()
	s.Replace(graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "b"}}})
	return NewBuilder(ids.New(), s), s
}

func TestConnectSynthesizesEdge(t *testing.T) {
	b, s := newBuilder()

	e, err := b.Connect(Connection{Source: "a", Target: "b", SourceHandle: "right-source", TargetHandle: "left"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if e.ID != "edge-1" {
		t.Errorf("ID = %q, want edge-1", e.ID)
	}
	if e.Label != graph.DefaultEdgeLabel {
		t.Errorf("Label = %q, want %q", e.Label, graph.DefaultEdgeLabel)
	}
	if e.Type != graph.EdgeTypeStraight {
		t.Errorf("Type = %q, want %q", e.Type, graph.EdgeTypeStraight)
	}
	if e.SourceHandle != "right-source" || e.TargetHandle != "left" {
		t.Errorf("handles = %q/%q, want right-source/left", e.SourceHandle, e.TargetHandle)
	}
	if e.LabelStyle == nil || e.LabelBgStyle == nil {
		t.Error("default label style not applied")
	}

	g := s.Snapshot()
	if g.EdgeCount() != 1 {
		t.Fatalf("edges = %d, want exactly 1", g.EdgeCount())
	}
	if stored, _ := g.Edge("edge-1"); stored.Source != "a" || stored.Target != "b" {
		t.Errorf("stored edge = %+v", stored)
	}
}

func TestConnectIsPermissive(t *testing.T) {
	b, s := newBuilder()

	conns := []Connection{
		{Source: "a", Target: "a"},
		{Source: "a", Target: "b"},
		{Source: "a", Target: "b"},
	}
	for _, c := range conns {
		if _, err := b.Connect(c); err != nil {
			t.Fatalf("Connect(%+v): %v", c, err)
		}
	}

	g := s.Snapshot()
	if g.EdgeCount() != 3 {
		t.Fatalf("edges = %d, want 3", g.EdgeCount())
	}
	seen := map[string]bool{}
	for _, e := range g.Edges {
		if seen[e.ID] {
			t.Errorf("duplicate edge id %q", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestConnectEmptyHandlesStayEmpty(t *testing.T) {
	b, _ := newBuilder()
	e, err := b.Connect(Connection{Source: "a", Target: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if e.SourceHandle != "" || e.TargetHandle != "" {
		t.Errorf("handles = %q/%q, want empty", e.SourceHandle, e.TargetHandle)
	}
}

func TestConnectRequiresEndpoints(t *testing.T) {
	b, s := newBuilder()
	if _, err := b.Connect(Connection{Source: "a"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	snap := s.Snapshot()
	if snap.EdgeCount() != 0 {
		t.Error("invalid connection was stored")
	}
}
