package store

import (
	"sync"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
)

// Op names the mutation that produced an [Event].
type Op string

// Mutation kinds reported to subscribers.
const (
	OpNodeChanges Op = "node_changes"
	OpEdgeChanges Op = "edge_changes"
	OpUpdate      Op = "update"
	OpAddNode     Op = "add_node"
	OpAddEdge     Op = "add_edge"
	OpNodeLabel   Op = "node_label"
	OpEdgeLabel   Op = "edge_label"
	OpReplace     Op = "replace"
	OpClear       Op = "clear"
)

// Event describes one committed mutation. Graph is a private deep copy.
type Event struct {
	Revision uint64      `json:"revision"`
	Op       Op          `json:"op"`
	Graph    graph.Graph `json:"graph"`
}

// Listener receives events synchronously, in mutation order.
type Listener func(Event)

// Store owns the live node and edge collections. It is safe for concurrent
// use; mutations are serialized and each one is observed atomically.
type Store struct {
	mu  sync.Mutex
	g   graph.Graph
	rev uint64

	// notifyMu serializes mutate calls including their notification, so
	// listeners observe events in mutation order. Lock order: notifyMu, mu.
	notifyMu  sync.Mutex
	listeners []subscriber
	nextID    int
}

type subscriber struct {
	id int
	fn Listener
}

// New returns an empty store.
func New() *Store {
	return &Store{
		g: graph.Graph{Nodes: []graph.Node{}, Edges: []graph.Edge{}},
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscriber{id: id, fn: fn})
	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a deep copy of the current graph.
func (s *Store) Snapshot() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Clone()
}

// Revision returns the number of committed mutations.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// ApplyNodeChanges applies one node change batch atomically.
func (s *Store) ApplyNodeChanges(batch []NodeChange) error {
	if err := validateNodeChanges(batch); err != nil {
		return err
	}
	s.mutate(OpNodeChanges, func(g *graph.Graph) bool {
		var changed bool
		g.Nodes, changed = applyNodeChanges(g.Nodes, batch)
		return changed
	})
	return nil
}

// ApplyEdgeChanges applies one edge change batch atomically.
func (s *Store) ApplyEdgeChanges(batch []EdgeChange) error {
	if err := validateEdgeChanges(batch); err != nil {
		return err
	}
	s.mutate(OpEdgeChanges, func(g *graph.Graph) bool {
		var changed bool
		g.Edges, changed = applyEdgeChanges(g.Edges, batch)
		return changed
	})
	return nil
}

// Apply applies a node batch and an edge batch as a single mutation.
func (s *Store) Apply(u Update) error {
	if err := validateNodeChanges(u.Nodes); err != nil {
		return err
	}
	if err := validateEdgeChanges(u.Edges); err != nil {
		return err
	}
	s.mutate(OpUpdate, func(g *graph.Graph) bool {
		var nodesChanged, edgesChanged bool
		g.Nodes, nodesChanged = applyNodeChanges(g.Nodes, u.Nodes)
		g.Edges, edgesChanged = applyEdgeChanges(g.Edges, u.Edges)
		return nodesChanged || edgesChanged
	})
	return nil
}

// AddNode appends n. Ids must be unique.
func (s *Store) AddNode(n graph.Node) error {
	var err error
	s.mutate(OpAddNode, func(g *graph.Graph) bool {
		if _, exists := g.Node(n.ID); exists {
			err = errors.New(errors.ErrCodeDuplicateID, "node %s already exists", n.ID)
			return false
		}
		g.Nodes = append(g.Nodes, n)
		return true
	})
	return err
}

// AddEdge appends e. Ids must be unique; endpoints are not checked.
func (s *Store) AddEdge(e graph.Edge) error {
	var err error
	s.mutate(OpAddEdge, func(g *graph.Graph) bool {
		if _, exists := g.Edge(e.ID); exists {
			err = errors.New(errors.ErrCodeDuplicateID, "edge %s already exists", e.ID)
			return false
		}
		g.Edges = append(g.Edges, e)
		return true
	})
	return err
}

// SetNodeLabel replaces the committed label of node id.
func (s *Store) SetNodeLabel(id, label string) error {
	var err error
	s.mutate(OpNodeLabel, func(g *graph.Graph) bool {
		for i := range g.Nodes {
			if g.Nodes[i].ID == id {
				if g.Nodes[i].Data.Label == label {
					return false
				}
				g.Nodes[i].Data.Label = label
				return true
			}
		}
		err = errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
		return false
	})
	return err
}

// SetEdgeLabel replaces the label of edge id.
func (s *Store) SetEdgeLabel(id, label string) error {
	var err error
	s.mutate(OpEdgeLabel, func(g *graph.Graph) bool {
		for i := range g.Edges {
			if g.Edges[i].ID == id {
				if g.Edges[i].Label == label {
					return false
				}
				g.Edges[i].Label = label
				return true
			}
		}
		err = errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", id)
		return false
	})
	return err
}

// Replace swaps the entire graph for a copy of next.
func (s *Store) Replace(next graph.Graph) {
	next = next.Clone()
	s.mutate(OpReplace, func(g *graph.Graph) bool {
		*g = next
		return true
	})
}

// Clear empties both collections.
func (s *Store) Clear() {
	s.mutate(OpClear, func(g *graph.Graph) bool {
		*g = graph.Graph{Nodes: []graph.Node{}, Edges: []graph.Edge{}}
		return true
	})
}

// mutate runs fn under the lock and, when it reports a change, bumps the
// revision and notifies listeners before the next mutation starts.
func (s *Store) mutate(op Op, fn func(g *graph.Graph) bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !fn(&s.g) {
		s.mu.Unlock()
		return
	}
	s.rev++
	ev := Event{Revision: s.rev, Op: op, Graph: s.g.Clone()}
	s.mu.Unlock()

	for _, sub := range s.listeners {
		sub.fn(ev)
	}
}
