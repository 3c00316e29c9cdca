// Package deletion computes and applies cascading removals.
//
// Removing a node also removes every edge that names it as source or
// target. The node removals, the cascaded edges and any explicitly selected
// edges are applied as one store update, so the graph is never observed
// with a dangling edge.
package deletion

import (
	"slices"

	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/store"
)

// DeleteKey is the key that triggers deletion of the current selection.
const DeleteKey = "Delete"

// Plan lists the ids one deletion removes.
type Plan struct {
	NodeIDs []string `json:"nodes"`
	EdgeIDs []string `json:"edges"`
}

// IsEmpty reports whether the plan removes nothing.
func (p Plan) IsEmpty() bool { return len(p.NodeIDs) == 0 && len(p.EdgeIDs) == 0 }

// Update converts the plan to a single store update.
func (p Plan) Update() store.Update {
	var u store.Update
	for _, id := range p.NodeIDs {
		u.Nodes = append(u.Nodes, store.RemoveNode(id))
	}
	for _, id := range p.EdgeIDs {
		u.Edges = append(u.Edges, store.RemoveEdge(id))
	}
	return u
}

// PlanSelection plans the removal of every selected node and edge of g.
func PlanSelection(g graph.Graph) Plan {
	var nodeIDs, edgeIDs []string
	for _, n := range g.Nodes {
		if n.Selected {
			nodeIDs = append(nodeIDs, n.ID)
		}
	}
	for _, e := range g.Edges {
		if e.Selected {
			edgeIDs = append(edgeIDs, e.ID)
		}
	}
	return PlanNodes(g, nodeIDs, edgeIDs...)
}

// PlanNodes plans the removal of nodeIDs, the edges touching them, and the
// explicitly named edgeIDs. Ids absent from g are dropped.
func PlanNodes(g graph.Graph, nodeIDs []string, edgeIDs ...string) Plan {
	removed := make(map[string]bool, len(nodeIDs))
	var p Plan
	for _, n := range g.Nodes {
		if slices.Contains(nodeIDs, n.ID) && !removed[n.ID] {
			removed[n.ID] = true
			p.NodeIDs = append(p.NodeIDs, n.ID)
		}
	}
	for _, e := range g.Edges {
		if removed[e.Source] || removed[e.Target] || slices.Contains(edgeIDs, e.ID) {
			p.EdgeIDs = append(p.EdgeIDs, e.ID)
		}
	}
	return p
}

// Cascade widens a canvas update so that node removals also remove their
// edges. The returned update keeps every original change.
func Cascade(g graph.Graph, u store.Update) store.Update {
	var removed []string
	for _, c := range u.Nodes {
		if c.Type == store.ChangeRemove {
			removed = append(removed, c.ID)
		}
	}
	if len(removed) == 0 {
		return u
	}

	already := map[string]bool{}
	for _, c := range u.Edges {
		if c.Type == store.ChangeRemove {
			already[c.ID] = true
		}
	}
	out := store.Update{
		Nodes: u.Nodes,
		Edges: slices.Clone(u.Edges),
	}
	for _, id := range PlanNodes(g, removed).EdgeIDs {
		if !already[id] {
			out.Edges = append(out.Edges, store.RemoveEdge(id))
		}
	}
	return out
}

// Coordinator applies deletions to a store.
type Coordinator struct {
	store *store.Store
}

// NewCoordinator returns a coordinator for s.
func NewCoordinator(s *store.Store) *Coordinator {
	return &Coordinator{store: s}
}

// DeleteSelection removes the current selection with its cascade.
func (c *Coordinator) DeleteSelection() (Plan, error) {
	p := PlanSelection(c.store.Snapshot())
	if p.IsEmpty() {
		return p, nil
	}
	if err := c.store.Apply(p.Update()); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// HandleKey deletes the selection when key is [DeleteKey]. It reports
// whether the key was handled.
func (c *Coordinator) HandleKey(key string) (Plan, bool, error) {
	if key != DeleteKey {
		return Plan{}, false, nil
	}
	p, err := c.DeleteSelection()
	return p, true, err
}

// ApplyNodeChanges applies a canvas node batch, cascading any removals to
// their edges within the same update.
func (c *Coordinator) ApplyNodeChanges(batch []store.NodeChange) error {
	u := Cascade(c.store.Snapshot(), store.Update{Nodes: batch})
	if len(u.Edges) == 0 {
		return c.store.ApplyNodeChanges(batch)
	}
	return c.store.Apply(u)
}
