package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Accessors
// =============================================================================

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// IsEmpty reports whether the graph has neither nodes nor edges.
func (g *Graph) IsEmpty() bool { return len(g.Nodes) == 0 && len(g.Edges) == 0 }

// Dangling returns the edges whose source or target is not a node of g.
func (g *Graph) Dangling() []Edge {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	var out []Edge
	for _, e := range g.Edges {
		_, src := ids[e.Source]
		_, dst := ids[e.Target]
		if !src || !dst {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy. Nil collections become empty slices.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	for i, e := range g.Edges {
		out.Edges[i] = e.clone()
	}
	return out
}

// normalize replaces nil collections with empty ones so that encoded
// documents always carry both arrays.
func (g *Graph) normalize() {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal encodes g as compact JSON.
func Marshal(g Graph) ([]byte, error) {
	g.normalize()
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return data, nil
}

// MarshalIndent encodes g as JSON indented with two spaces.
func MarshalIndent(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes g as pretty-printed JSON to w.
func Write(w io.Writer, g Graph) error {
	g.normalize()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// WriteFile writes g to path as pretty-printed JSON.
func WriteFile(path string, g Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, g)
}

// ErrNotObject is returned when a document's top-level value is not a JSON
// object. A literal null would otherwise decode to the empty graph.
var ErrNotObject = errors.New("document is not a JSON object")

// Unmarshal decodes a JSON document. Missing "nodes" or "edges" keys yield
// empty collections.
func Unmarshal(data []byte) (Graph, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '{' {
		return Graph{}, fmt.Errorf("decode graph: %w", ErrNotObject)
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	g.normalize()
	return g, nil
}

// Read decodes a JSON document from r. The whole input must be a single
// JSON value; trailing garbage is an error.
func Read(r io.Reader) (Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Graph{}, fmt.Errorf("read graph: %w", err)
	}
	return Unmarshal(data)
}

// ReadFile decodes the JSON document stored at path.
func ReadFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	return Unmarshal(data)
}
