// Package graph defines the node-link document edited by graphedit.
//
// This package is the single source of truth for the wire format shared by
// the local auto-save blob, exported files and imported files. All three use
// the same shape:
//
//	{
//	  "nodes": [{"id": "1", "type": "circular", "position": {"x": 0, "y": 0}, "data": {"label": "New Node"}}],
//	  "edges": [{"id": "edge-1", "source": "1", "target": "2", "label": "New Connection", "type": "straight"}]
//	}
//
// # Core Types
//
//   - [Graph]: ordered nodes and edges (order only affects z-order)
//   - [Node]: a circular node with a position and an editable label
//   - [Edge]: a labelled connection between two node handles
//
// # Serialization
//
//	g, err := graph.Read(r)         // io.Reader → Graph
//	err = graph.Write(w, g)         // Graph → pretty-printed JSON
//	data, err := graph.Marshal(g)   // Graph → compact JSON
//
// Missing "nodes" or "edges" keys decode to empty collections. Encoded
// documents always carry both arrays, never null.
//
// # Concurrency
//
// Graph values are plain data. Use [Graph.Clone] before handing a graph to
// another goroutine that may mutate it.
package graph
