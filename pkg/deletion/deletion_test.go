package deletion

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/store"
)

func build(nodes []string, edges [][3]string) graph.Graph {
	var g graph.Graph
	for _, id := range nodes {
		g.Nodes = append(g.Nodes, graph.Node{ID: id, Kind: graph.KindCircular})
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, graph.Edge{ID: e[0], Source: e[1], Target: e[2]})
	}
	return g
}

func TestPlanSelection(t *testing.T) {
	tests := []struct {
		name      string
		g         graph.Graph
		selNodes  []string
		selEdges  []string
		wantNodes []string
		wantEdges []string
	}{
		{
			name:      "NothingSelected",
			g:         build([]string{"1", "2"}, [][3]string{{"edge-1", "1", "2"}}),
			wantNodes: nil,
			wantEdges: nil,
		},
		{
			name:      "CascadeFromSource",
			g:         build([]string{"1", "2"}, [][3]string{{"edge-1", "1", "2"}}),
			selNodes:  []string{"1"},
			wantNodes: []string{"1"},
			wantEdges: []string{"edge-1"},
		},
		{
			name:      "CascadeFromTarget",
			g:         build([]string{"1", "2", "3"}, [][3]string{{"edge-1", "1", "2"}, {"edge-2", "3", "1"}}),
			selNodes:  []string{"2"},
			wantNodes: []string{"2"},
			wantEdges: []string{"edge-1"},
		},
		{
			name:      "UnionWithSelectedEdges",
			g:         build([]string{"1", "2", "3"}, [][3]string{{"edge-1", "1", "2"}, {"edge-2", "2", "3"}, {"edge-3", "3", "3"}}),
			selNodes:  []string{"1"},
			selEdges:  []string{"edge-3", "edge-1"},
			wantNodes: []string{"1"},
			wantEdges: []string{"edge-1", "edge-3"},
		},
		{
			name:      "EdgesOnly",
			g:         build([]string{"1", "2"}, [][3]string{{"edge-1", "1", "2"}, {"edge-2", "2", "1"}}),
			selEdges:  []string{"edge-2"},
			wantEdges: []string{"edge-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range tt.g.Nodes {
				tt.g.Nodes[i].Selected = slices.Contains(tt.selNodes, tt.g.Nodes[i].ID)
			}
			for i := range tt.g.Edges {
				tt.g.Edges[i].Selected = slices.Contains(tt.selEdges, tt.g.Edges[i].ID)
			}
			p := PlanSelection(tt.g)
			if !slices.Equal(p.NodeIDs, tt.wantNodes) {
				t.Errorf("NodeIDs = %v, want %v", p.NodeIDs, tt.wantNodes)
			}
			if !slices.Equal(p.EdgeIDs, tt.wantEdges) {
				t.Errorf("EdgeIDs = %v, want %v", p.EdgeIDs, tt.wantEdges)
			}
		})
	}
}

func TestHandleKeyScenario(t *testing.T) {
	s := store.New()
	s.Replace(build([]string{"1", "2"}, [][3]string{{"edge-1", "1", "2"}}))
	if err := s.ApplyNodeChanges([]store.NodeChange{store.SelectNode("1", true)}); err != nil {
		t.Fatal(err)
	}

	var events []store.Event
	s.Subscribe(func(ev store.Event) { events = append(events, ev) })

	c := NewCoordinator(s)
	if _, handled, _ := c.HandleKey("Backspace"); handled {
		t.Error("Backspace should not delete")
	}
	p, handled, err := c.HandleKey(DeleteKey)
	if err != nil || !handled {
		t.Fatalf("HandleKey(Delete) = %v, %v", handled, err)
	}
	if !slices.Equal(p.EdgeIDs, []string{"edge-1"}) {
		t.Errorf("plan edges = %v", p.EdgeIDs)
	}

	g := s.Snapshot()
	if g.NodeCount() != 1 || g.Nodes[0].ID != "2" {
		t.Errorf("nodes = %+v, want only 2", g.Nodes)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("edges = %+v, want none", g.Edges)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1 atomic update", len(events))
	}
}

func TestDeleteSelectionEmptyIsNoop(t *testing.T) {
	s := store.New()
	s.Replace(build([]string{"1"}, nil))
	rev := s.Revision()
	if _, err := NewCoordinator(s).DeleteSelection(); err != nil {
		t.Fatal(err)
	}
	if s.Revision() != rev {
		t.Error("empty deletion produced a mutation")
	}
}

func TestApplyNodeChangesCascades(t *testing.T) {
	s := store.New()
	s.Replace(build([]string{"1", "2", "3"}, [][3]string{{"edge-1", "1", "2"}, {"edge-2", "2", "3"}}))

	c := NewCoordinator(s)
	err := c.ApplyNodeChanges([]store.NodeChange{store.RemoveNode("3"), store.MoveNode("1", graph.Position{X: 4})})
	if err != nil {
		t.Fatal(err)
	}
	g := s.Snapshot()
	if d := g.Dangling(); len(d) != 0 {
		t.Errorf("dangling edges: %v", d)
	}
	if _, ok := g.Edge("edge-1"); !ok {
		t.Error("unrelated edge removed")
	}
	if n, _ := g.Node("1"); n.Position.X != 4 {
		t.Error("position change lost")
	}
}

func TestCascadeInvariantRandomized(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := range 50 {
		s := store.New()
		var g graph.Graph
		n := 2 + r.IntN(10)
		for i := 1; i <= n; i++ {
			g.Nodes = append(g.Nodes, graph.Node{ID: fmt.Sprint(i)})
		}
		m := r.IntN(3 * n)
		for i := 1; i <= m; i++ {
			g.Edges = append(g.Edges, graph.Edge{
				ID:     fmt.Sprintf("edge-%d", i),
				Source: fmt.Sprint(1 + r.IntN(n)),
				Target: fmt.Sprint(1 + r.IntN(n)),
			})
		}
		s.Replace(g)
		c := NewCoordinator(s)

		for range 3 {
			var sel []store.NodeChange
			for _, nd := range s.Snapshot().Nodes {
				if r.IntN(3) == 0 {
					sel = append(sel, store.SelectNode(nd.ID, true))
				}
			}
			if err := s.ApplyNodeChanges(sel); err != nil {
				t.Fatal(err)
			}
			if _, err := c.DeleteSelection(); err != nil {
				t.Fatal(err)
			}
			snap := s.Snapshot()
			if d := snap.Dangling(); len(d) != 0 {
				t.Fatalf("round %d: dangling edges %v", round, d)
			}
		}
	}
}
