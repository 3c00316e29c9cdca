// Package store holds the canonical node and edge collections of a graph.
//
// # Ownership
//
// A [Store] is the only owner of the live graph. Readers get deep copies
// through [Store.Snapshot]; writers go through the mutation methods below,
// each of which is one atomic update followed by exactly one [Event]:
//
//   - [Store.ApplyNodeChanges], [Store.ApplyEdgeChanges]: change batches
//     produced by a single canvas interaction (drag, selection, removal)
//   - [Store.Apply]: a node batch and an edge batch applied together
//   - [Store.AddNode], [Store.AddEdge]: append one element
//   - [Store.SetNodeLabel], [Store.SetEdgeLabel]: explicit label commands
//   - [Store.Replace], [Store.Clear]: swap or empty the whole graph
//
// A batch is validated before anything is applied, so a malformed batch
// leaves the graph untouched. Changes naming unknown ids are skipped.
//
// The store never checks edge endpoints; cascade deletion lives in package
// deletion.
//
// # Subscribers
//
// [Store.Subscribe] registers a listener that is called synchronously after
// every mutation that changed the graph, in mutation order. Listeners may
// read the store but must not mutate it.
package store
