package store

import (
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
)

// ChangeType discriminates the deltas of a change batch.
type ChangeType string

// Change types understood by the store.
const (
	ChangePosition ChangeType = "position"
	ChangeSelect   ChangeType = "select"
	ChangeRemove   ChangeType = "remove"
)

// NodeChange is one delta in a node change batch.
type NodeChange struct {
	Type     ChangeType      `json:"type"`
	ID       string          `json:"id"`
	Position *graph.Position `json:"position,omitempty"` // position changes; nil means no move
	Dragging bool            `json:"dragging,omitempty"`
	Selected bool            `json:"selected,omitempty"` // select changes
}

// EdgeChange is one delta in an edge change batch. Edges have no position.
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id"`
	Selected bool       `json:"selected,omitempty"`
}

// Update combines a node batch and an edge batch into one atomic mutation.
type Update struct {
	Nodes []NodeChange `json:"nodes,omitempty"`
	Edges []EdgeChange `json:"edges,omitempty"`
}

// IsEmpty reports whether the update carries no changes.
func (u Update) IsEmpty() bool { return len(u.Nodes) == 0 && len(u.Edges) == 0 }

// Convenience constructors used by coordinators and tests.

// MoveNode returns a position change.
func MoveNode(id string, p graph.Position) NodeChange {
	return NodeChange{Type: ChangePosition, ID: id, Position: &p}
}

// SelectNode returns a node selection change.
func SelectNode(id string, selected bool) NodeChange {
	return NodeChange{Type: ChangeSelect, ID: id, Selected: selected}
}

// RemoveNode returns a node removal change.
func RemoveNode(id string) NodeChange {
	return NodeChange{Type: ChangeRemove, ID: id}
}

// SelectEdge returns an edge selection change.
func SelectEdge(id string, selected bool) EdgeChange {
	return EdgeChange{Type: ChangeSelect, ID: id, Selected: selected}
}

// RemoveEdge returns an edge removal change.
func RemoveEdge(id string) EdgeChange {
	return EdgeChange{Type: ChangeRemove, ID: id}
}

func validateNodeChanges(batch []NodeChange) error {
	for i, c := range batch {
		switch c.Type {
		case ChangePosition, ChangeSelect, ChangeRemove:
		default:
			return errors.New(errors.ErrCodeInvalidChange, "node change %d: unknown type %q", i, c.Type)
		}
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "node change %d: missing id", i)
		}
	}
	return nil
}

func validateEdgeChanges(batch []EdgeChange) error {
	for i, c := range batch {
		switch c.Type {
		case ChangeSelect, ChangeRemove:
		default:
			return errors.New(errors.ErrCodeInvalidChange, "edge change %d: unknown type %q", i, c.Type)
		}
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "edge change %d: missing id", i)
		}
	}
	return nil
}

// applyNodeChanges applies batch to nodes in place and returns the result
// together with whether anything changed.
func applyNodeChanges(nodes []graph.Node, batch []NodeChange) ([]graph.Node, bool) {
	if len(batch) == 0 {
		return nodes, false
	}
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	changed := false
	removed := map[string]bool{}
	for _, c := range batch {
		i, ok := index[c.ID]
		if !ok || removed[c.ID] {
			continue
		}
		switch c.Type {
		case ChangePosition:
			if c.Position != nil && nodes[i].Position != *c.Position {
				nodes[i].Position = *c.Position
				changed = true
			}
		case ChangeSelect:
			if nodes[i].Selected != c.Selected {
				nodes[i].Selected = c.Selected
				changed = true
			}
		case ChangeRemove:
			removed[c.ID] = true
			changed = true
		}
	}
	if len(removed) == 0 {
		return nodes, changed
	}

	kept := nodes[:0]
	for _, n := range nodes {
		if !removed[n.ID] {
			kept = append(kept, n)
		}
	}
	return kept, changed
}

func applyEdgeChanges(edges []graph.Edge, batch []EdgeChange) ([]graph.Edge, bool) {
	if len(batch) == 0 {
		return edges, false
	}
	index := make(map[string]int, len(edges))
	for i, e := range edges {
		index[e.ID] = i
	}

	changed := false
	removed := map[string]bool{}
	for _, c := range batch {
		i, ok := index[c.ID]
		if !ok || removed[c.ID] {
			continue
		}
		switch c.Type {
		case ChangeSelect:
			if edges[i].Selected != c.Selected {
				edges[i].Selected = c.Selected
				changed = true
			}
		case ChangeRemove:
			removed[c.ID] = true
			changed = true
		}
	}
	if len(removed) == 0 {
		return edges, changed
	}

	kept := edges[:0]
	for _, e := range edges {
		if !removed[e.ID] {
			kept = append(kept, e)
		}
	}
	return kept, changed
}
