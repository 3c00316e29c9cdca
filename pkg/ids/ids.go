// Package ids allocates node and edge identifiers.
//
// An [Allocator] owns two independent monotonic counters. Node ids are the
// bare decimal counter ("1", "2", ...); edge ids are "edge-" followed by the
// counter ("edge-1", ...). Counters only move backwards through
// [Allocator.Reseed], which the editor calls when a loaded or imported graph
// replaces the current one. Deleting or clearing never rewinds them.
//
// Reseeding computes each counter as the highest numeric component found in
// the new collection plus one:
//
//	a.Reseed(g)          // nodes "3", "7", "x" → next node id "8"
//	                     // edges "edge-2", "custom" → next edge id "edge-3"
//
// Ids whose numeric component cannot be parsed count as 0.
package ids

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/matzehuels/graphedit/pkg/graph"
)

// EdgePrefix is prepended to the edge counter.
const EdgePrefix = "edge-"

// Allocator hands out unique node and edge ids. It is safe for concurrent use.
type Allocator struct {
	mu   sync.Mutex
	node int
	edge int
}

// New returns an allocator whose first ids are "1" and "edge-1".
func New() *Allocator {
	return &Allocator{node: 1, edge: 1}
}

// NextNodeID returns the current node counter as an id and advances it.
func (a *Allocator) NextNodeID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := strconv.Itoa(a.node)
	a.node++
	return id
}

// NextEdgeID returns the current edge counter as an id and advances it.
func (a *Allocator) NextEdgeID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := EdgePrefix + strconv.Itoa(a.edge)
	a.edge++
	return id
}

// Peek returns the counters that the next allocations will use.
func (a *Allocator) Peek() (node, edge int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.node, a.edge
}

// Reseed recomputes both counters from g.
func (a *Allocator) Reseed(g graph.Graph) {
	maxNode := 0
	for _, n := range g.Nodes {
		maxNode = max(maxNode, NodeNumber(n.ID))
	}
	maxEdge := 0
	for _, e := range g.Edges {
		maxEdge = max(maxEdge, EdgeNumber(e.ID))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.node = maxNode + 1
	a.edge = maxEdge + 1
}

// NodeNumber returns the numeric component of a node id: the run of decimal
// digits at its start, after optional leading whitespace. "12", "12abc" and
// " 12" all yield 12; "abc" and "" yield 0.
func NodeNumber(id string) int {
	i := 0
	for i < len(id) && (id[i] == ' ' || id[i] == '\t') {
		i++
	}
	j := i
	for j < len(id) && id[j] >= '0' && id[j] <= '9' {
		j++
	}
	return parseDigits(id[i:j])
}

var edgeNumberRe = regexp.MustCompile(EdgePrefix + `(\d+)`)

// EdgeNumber returns the digits following "edge-" in an edge id, or 0.
func EdgeNumber(id string) int {
	m := edgeNumberRe.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	return parseDigits(m[1])
}

// parseDigits converts a run of decimal digits, treating empty or
// overflowing input as 0.
func parseDigits(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
