// Package pkg provides the libraries behind graphedit, a node-link graph
// editor.
//
// # Overview
//
// A graph is an ordered list of circular nodes and labelled edges. Every
// user action becomes a single atomic update of that graph, and every
// committed update is saved to a pluggable key-value backend once the
// initial load has finished.
//
//  1. [graph] - Document types and the JSON wire format
//  2. [store] - The authoritative graph with change batches and events
//  3. [ids] - Monotonic node and edge id allocation
//  4. [connect] - Edge synthesis from proposed connections
//  5. [labeledit] - Inline node label editing and the edge label prompt
//  6. [deletion] - Cascading deletion of nodes and their edges
//  7. [persist] - Auto-save, load, export and import
//  8. [editor] - The coordinator tying the components together
//
// Supporting packages:
//
//   - [kv] - Storage backends (file, memory, Redis, MongoDB, Badger)
//   - [errors] - Code-based errors with user-facing messages
//   - [observability] - Metric and tracing hooks
//   - [render/nodelink] - Graphviz DOT and SVG rendering
//   - [buildinfo] - Version information set at build time
//
// # Architecture
//
//	canvas / HTTP / terminal
//	         ↓
//	    [editor] (one action at a time)
//	         ↓
//	    [store] ──event──→ [persist] ──→ [kv]
//
// # Quick Start
//
//	ed := editor.New(kv.NewMemory())
//	_ = ed.Open(ctx)
//	a, _ := ed.AddNode(graph.Position{X: 0, Y: 0})
//	b, _ := ed.AddNode(graph.Position{X: 200, Y: 0})
//	_, _ = ed.Connect(connect.Connection{Source: a.ID, Target: b.ID})
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/graph
// [store]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/store
// [ids]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/ids
// [connect]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/connect
// [labeledit]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/labeledit
// [deletion]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/deletion
// [persist]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/persist
// [editor]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/editor
// [kv]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/kv
// [errors]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/observability
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/render/nodelink
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/graphedit/pkg/buildinfo
package pkg
