package store

import (
	"sync"
	"testing"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
)

func node(id string) graph.Node {
	return graph.Node{ID: id, Kind: graph.KindCircular, Data: graph.NodeData{Label: "n" + id}}
}

func edge(id, src, dst string) graph.Edge {
	return graph.Edge{ID: id, Source: src, Target: dst, Type: graph.EdgeTypeStraight}
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Replace(graph.Graph{
		Nodes: []graph.Node{node("1"), node("2"), node("3")},
		Edges: []graph.Edge{edge("edge-1", "1", "2"), edge("edge-2", "2", "3")},
	})
	return s
}

func TestNewIsEmpty(t *testing.T) {
	s := New()
	g := s.Snapshot()
	if !g.IsEmpty() {
		t.Errorf("new store not empty: %+v", g)
	}
	if g.Nodes == nil || g.Edges == nil {
		t.Error("snapshot collections should be non-nil")
	}
	if s.Revision() != 0 {
		t.Errorf("Revision() = %d, want 0", s.Revision())
	}
}

func TestApplyNodeChanges(t *testing.T) {
	tests := []struct {
		name    string
		batch   []NodeChange
		wantErr errors.Code
		check   func(t *testing.T, g graph.Graph)
	}{
		{
			name:  "MultiDrag",
			batch: []NodeChange{MoveNode("1", graph.Position{X: 5, Y: 6}), MoveNode("2", graph.Position{X: 7, Y: 8})},
			check: func(t *testing.T, g graph.Graph) {
				n1, _ := g.Node("1")
				n2, _ := g.Node("2")
				if n1.Position != (graph.Position{X: 5, Y: 6}) || n2.Position != (graph.Position{X: 7, Y: 8}) {
					t.Errorf("positions = %+v, %+v", n1.Position, n2.Position)
				}
			},
		},
		{
			name:  "Select",
			batch: []NodeChange{SelectNode("3", true)},
			check: func(t *testing.T, g graph.Graph) {
				n, _ := g.Node("3")
				if !n.Selected {
					t.Error("node 3 not selected")
				}
			},
		},
		{
			name:  "RemoveKeepsEdges",
			batch: []NodeChange{RemoveNode("2")},
			check: func(t *testing.T, g graph.Graph) {
				if _, ok := g.Node("2"); ok {
					t.Error("node 2 still present")
				}
				if g.EdgeCount() != 2 {
					t.Errorf("edges = %d, want 2 (store does not cascade)", g.EdgeCount())
				}
			},
		},
		{
			name:  "UnknownIDIgnored",
			batch: []NodeChange{SelectNode("99", true)},
			check: func(t *testing.T, g graph.Graph) {
				if g.NodeCount() != 3 {
					t.Errorf("nodes = %d, want 3", g.NodeCount())
				}
			},
		},
		{
			name:    "UnknownTypeRejectsWholeBatch",
			batch:   []NodeChange{MoveNode("1", graph.Position{X: 100}), {Type: "dimensions", ID: "1"}},
			wantErr: errors.ErrCodeInvalidChange,
			check: func(t *testing.T, g graph.Graph) {
				n, _ := g.Node("1")
				if n.Position.X != 0 {
					t.Error("rejected batch was partially applied")
				}
			},
		},
		{
			name:    "MissingID",
			batch:   []NodeChange{{Type: ChangeSelect}},
			wantErr: errors.ErrCodeInvalidChange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			err := s.ApplyNodeChanges(tt.batch)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want code %s", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ApplyNodeChanges: %v", err)
			}
			if tt.check != nil {
				tt.check(t, s.Snapshot())
			}
		})
	}
}

func TestApplyEdgeChanges(t *testing.T) {
	s := seeded(t)
	if err := s.ApplyEdgeChanges([]EdgeChange{SelectEdge("edge-1", true), RemoveEdge("edge-2")}); err != nil {
		t.Fatalf("ApplyEdgeChanges: %v", err)
	}
	g := s.Snapshot()
	if g.EdgeCount() != 1 {
		t.Fatalf("edges = %d, want 1", g.EdgeCount())
	}
	if e, _ := g.Edge("edge-1"); !e.Selected {
		t.Error("edge-1 not selected")
	}

	err := s.ApplyEdgeChanges([]EdgeChange{{Type: ChangePosition, ID: "edge-1"}})
	if !errors.Is(err, errors.ErrCodeInvalidChange) {
		t.Errorf("position change on edge: err = %v, want INVALID_CHANGE", err)
	}
}

func TestApplyIsOneEvent(t *testing.T) {
	s := seeded(t)
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	err := s.Apply(Update{
		Nodes: []NodeChange{RemoveNode("2")},
		Edges: []EdgeChange{RemoveEdge("edge-1"), RemoveEdge("edge-2")},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if d := events[0].Graph.Dangling(); len(d) != 0 {
		t.Errorf("event observed dangling edges: %v", d)
	}
	if events[0].Op != OpUpdate {
		t.Errorf("Op = %s, want %s", events[0].Op, OpUpdate)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	s := seeded(t)
	if err := s.AddNode(node("1")); !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("AddNode duplicate: err = %v", err)
	}
	if err := s.AddEdge(edge("edge-1", "3", "1")); !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("AddEdge duplicate: err = %v", err)
	}
	if err := s.AddEdge(edge("edge-9", "ghost", "1")); err != nil {
		t.Errorf("AddEdge with unknown endpoint should be permitted: %v", err)
	}
}

func TestSetLabels(t *testing.T) {
	s := seeded(t)
	if err := s.SetNodeLabel("1", "renamed"); err != nil {
		t.Fatalf("SetNodeLabel: %v", err)
	}
	if err := s.SetEdgeLabel("edge-2", "uses"); err != nil {
		t.Fatalf("SetEdgeLabel: %v", err)
	}
	g := s.Snapshot()
	if n, _ := g.Node("1"); n.Label() != "renamed" {
		t.Errorf("node label = %q", n.Label())
	}
	if e, _ := g.Edge("edge-2"); e.Label != "uses" {
		t.Errorf("edge label = %q", e.Label)
	}

	if err := s.SetNodeLabel("nope", "x"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("SetNodeLabel unknown: err = %v", err)
	}
	if err := s.SetEdgeLabel("nope", "x"); !errors.Is(err, errors.ErrCodeEdgeNotFound) {
		t.Errorf("SetEdgeLabel unknown: err = %v", err)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := seeded(t)
	g := s.Snapshot()
	g.Nodes[0].Data.Label = "mutated"
	g.Nodes = append(g.Nodes, node("x"))

	again := s.Snapshot()
	if again.Nodes[0].Data.Label == "mutated" || again.NodeCount() != 3 {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestReplaceCopiesInput(t *testing.T) {
	in := graph.Graph{Nodes: []graph.Node{node("1")}}
	s := New()
	s.Replace(in)
	in.Nodes[0].Data.Label = "changed"
	snap := s.Snapshot()
	if n, _ := snap.Node("1"); n.Label() == "changed" {
		t.Error("Replace aliases its argument")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := New()
	s.Clear()
	s.Clear()
	if g := s.Snapshot(); !g.IsEmpty() {
		t.Errorf("Clear() left %+v", g)
	}
}

func TestNoEventWithoutChange(t *testing.T) {
	s := seeded(t)
	count := 0
	s.Subscribe(func(Event) { count++ })

	_ = s.ApplyNodeChanges([]NodeChange{SelectNode("99", true)})
	_ = s.ApplyNodeChanges([]NodeChange{SelectNode("1", false)})
	_ = s.SetNodeLabel("1", "n1")
	_ = s.AddNode(node("1"))

	if count != 0 {
		t.Errorf("events = %d, want 0 for no-op mutations", count)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	var a, b int
	unsubA := s.Subscribe(func(Event) { a++ })
	s.Subscribe(func(Event) { b++ })

	s.Clear()
	unsubA()
	s.Clear()

	if a != 1 || b != 2 {
		t.Errorf("a, b = %d, %d, want 1, 2", a, b)
	}
}

func TestListenerMayReadStore(t *testing.T) {
	s := New()
	var seen int
	s.Subscribe(func(ev Event) {
		snap := s.Snapshot()
		seen = snap.NodeCount()
	})
	if err := s.AddNode(node("1")); err != nil {
		t.Fatal(err)
	}
	if seen != 1 {
		t.Errorf("listener saw %d nodes, want 1", seen)
	}
}

func TestEventsAreOrdered(t *testing.T) {
	s := New()
	var (
		mu   sync.Mutex
		revs []uint64
	)
	s.Subscribe(func(ev Event) {
		mu.Lock()
		revs = append(revs, ev.Revision)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddNode(node(string(rune('A' + i))))
		}()
	}
	wg.Wait()

	if len(revs) != 50 {
		t.Fatalf("events = %d, want 50", len(revs))
	}
	for i, r := range revs {
		if r != uint64(i+1) {
			t.Fatalf("event %d has revision %d", i, r)
		}
	}
}
