// Package editor coordinates the graph editing components.
//
// An [Editor] owns a graph store, the id allocator, the connection builder,
// the deletion coordinator, the label editors and the persistence adapter.
// Every user action is a method on Editor and results in at most one
// atomic store update. Actions are serialized so that the editor behaves
// like a single-threaded event loop even when driven from several
// goroutines (HTTP handlers, the terminal UI).
//
// Typical use:
//
//	ed := editor.New(kvStore, editor.WithLogger(logger))
//	if err := ed.Open(ctx); err != nil { ... }
//	n, _ := ed.AddNode(graph.Position{X: 100, Y: 80})
package editor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/connect"
	"github.com/matzehuels/graphedit/pkg/deletion"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/ids"
	"github.com/matzehuels/graphedit/pkg/kv"
	"github.com/matzehuels/graphedit/pkg/labeledit"
	"github.com/matzehuels/graphedit/pkg/observability"
	"github.com/matzehuels/graphedit/pkg/persist"
	"github.com/matzehuels/graphedit/pkg/store"
)

// Editor is the entry point for all editing actions.
type Editor struct {
	mu sync.Mutex

	store    *store.Store
	ids      *ids.Allocator
	builder  *connect.Builder
	deleter  *deletion.Coordinator
	labels   *labeledit.Session
	prompt   *labeledit.EdgePrompt
	persist  *persist.Adapter
	logger   *log.Logger
	storeKey string

	detach []func()
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger used by the editor and its persistence layer.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStorageKey overrides the auto-save storage key.
func WithStorageKey(key string) Option {
	return func(e *Editor) { e.storeKey = key }
}

// New returns an editor with an empty graph, auto-saving to s once
// [Editor.Open] has run.
func New(s kv.Store, opts ...Option) *Editor {
	e := &Editor{
		store:  store.New(),
		ids:    ids.New(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.builder = connect.NewBuilder(e.ids, e.store)
	e.deleter = deletion.NewCoordinator(e.store)
	e.labels = labeledit.NewSession(e.store)
	e.prompt = labeledit.NewEdgePrompt(e.store)
	e.persist = persist.New(s,
		persist.WithKey(e.storeKey),
		persist.WithLogger(e.logger.WithPrefix("persist")),
	)

	e.detach = append(e.detach,
		e.store.Subscribe(func(ev store.Event) {
			observability.Editor().OnMutation(context.Background(), string(ev.Op), ev.Graph.NodeCount(), ev.Graph.EdgeCount())
			e.logger.Debug("graph updated", "op", ev.Op, "rev", ev.Revision, "nodes", ev.Graph.NodeCount(), "edges", ev.Graph.EdgeCount())
		}),
		e.persist.Attach(e.store),
	)
	return e
}

// Open runs the initial load. A stored graph with at least one node
// replaces the empty graph and reseeds the id counters. Load failures are
// logged and leave the graph empty; auto-save is enabled either way.
func (e *Editor) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok, err := e.persist.Load(ctx)
	if err != nil {
		e.logger.Warn("starting with an empty graph", "error", errors.UserMessage(err))
	}
	if ok {
		e.store.Replace(g)
		e.ids.Reseed(g)
	}
	return nil
}

// Loaded reports whether the initial load has completed.
func (e *Editor) Loaded() bool { return e.persist.Loaded() }

// Close detaches all listeners. The storage backend is owned by the caller.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, fn := range e.detach {
		fn()
	}
	e.detach = nil
	return nil
}

// Snapshot returns a copy of the current graph and its revision.
func (e *Editor) Snapshot() (graph.Graph, uint64) {
	return e.store.Snapshot(), e.store.Revision()
}

// Subscribe registers fn for every store event.
func (e *Editor) Subscribe(fn store.Listener) (unsubscribe func()) {
	return e.store.Subscribe(fn)
}

// =============================================================================
// Toolbar actions
// =============================================================================

// AddNode adds a circular node with the default label at pos, normally the
// viewport center.
func (e *Editor) AddNode(pos graph.Position) (graph.Node, error) {
	return e.AddLabeledNode(pos, graph.DefaultNodeLabel)
}

// AddLabeledNode adds a circular node with the given label.
func (e *Editor) AddLabeledNode(pos graph.Position, label string) (graph.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := graph.Node{
		ID:       e.ids.NextNodeID(),
		Kind:     graph.KindCircular,
		Position: pos,
		Data:     graph.NodeData{Label: label},
	}
	if err := e.store.AddNode(n); err != nil {
		return graph.Node{}, err
	}
	return n, nil
}

// Clear empties the graph and removes the persisted blob. The id counters
// keep running. Clearing an empty graph succeeds.
func (e *Editor) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.labels.Cancel()
	_ = e.prompt.Cancel()
	e.store.Clear()
	if err := e.persist.Remove(ctx); err != nil {
		e.logger.Warn("graph cleared but saved copy could not be removed", "error", err)
	}
	return nil
}

// Export writes the current graph to w as indented JSON.
func (e *Editor) Export(ctx context.Context, w io.Writer) error {
	g := e.store.Snapshot()
	cw := &countingWriter{w: w}
	if err := e.persist.Export(cw, g); err != nil {
		return err
	}
	observability.Editor().OnExport(ctx, cw.n)
	e.logger.Debug("exported graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "bytes", cw.n)
	return nil
}

// Import reads a document from r and, if it parses, replaces the graph in
// one update and reseeds the id counters. On failure the graph is left
// untouched and the returned error carries a user-facing message. Reading
// happens outside the action lock; only one import may read at a time.
func (e *Editor) Import(ctx context.Context, r io.Reader) (graph.Graph, error) {
	start := time.Now()
	g, err := e.persist.Import(r)
	if err != nil {
		observability.Editor().OnImport(ctx, 0, 0, time.Since(start), err)
		return graph.Graph{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.labels.Cancel()
	_ = e.prompt.Cancel()
	e.store.Replace(g)
	e.ids.Reseed(g)
	observability.Editor().OnImport(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)
	e.logger.Info("imported graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// =============================================================================
// Canvas input
// =============================================================================

// Connect turns a proposed connection into a new edge.
func (e *Editor) Connect(c connect.Connection) (graph.Edge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Connect(c)
}

// ApplyNodeChanges applies a node change batch. Removals cascade to the
// edges of the removed nodes within the same update.
func (e *Editor) ApplyNodeChanges(batch []store.NodeChange) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.prune()
	return e.deleter.ApplyNodeChanges(batch)
}

// ApplyEdgeChanges applies an edge change batch.
func (e *Editor) ApplyEdgeChanges(batch []store.EdgeChange) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.prune()
	return e.store.ApplyEdgeChanges(batch)
}

// HandleKey processes a key press. The Delete key removes the selection
// and everything attached to it. handled is false for any other key.
func (e *Editor) HandleKey(ctx context.Context, key string) (plan deletion.Plan, handled bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	plan, handled, err = e.deleter.HandleKey(key)
	if handled && err == nil && !plan.IsEmpty() {
		e.prune()
		observability.Editor().OnDelete(ctx, len(plan.NodeIDs), len(plan.EdgeIDs))
	}
	return plan, handled, err
}

// prune closes the inline editor and the edge prompt when their target was
// removed. Callers hold e.mu.
func (e *Editor) prune() {
	if e.labels.Prune() {
		e.logger.Debug("label edit dropped, node removed")
	}
	if e.prompt.Prune() {
		e.logger.Debug("edge prompt closed, edge removed")
	}
}

// =============================================================================
// Label editing
// =============================================================================

// BeginEdit opens the inline editor of nodeID and returns the seeded
// buffer. Any other node still being edited is committed first.
func (e *Editor) BeginEdit(nodeID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels.Begin(nodeID)
}

// EditInput replaces the edit buffer of nodeID.
func (e *Editor) EditInput(nodeID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels.Input(nodeID, text)
}

// CommitEdit handles Enter: the buffer becomes the committed label.
func (e *Editor) CommitEdit(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels.Enter(nodeID)
}

// BlurEdit handles loss of focus, which commits like Enter.
func (e *Editor) BlurEdit(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels.Blur(nodeID)
}

// CancelEdit handles Escape: the buffer is discarded.
func (e *Editor) CancelEdit(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels.Escape(nodeID)
}

// EditState describes the inline editor.
type EditState struct {
	NodeID  string `json:"nodeId,omitempty"`
	Buffer  string `json:"buffer"`
	Editing bool   `json:"editing"`
}

// ActiveEdit returns the node currently being edited, if any.
func (e *Editor) ActiveEdit() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, buf, ok := e.labels.Active()
	return EditState{NodeID: id, Buffer: buf, Editing: ok}
}

// DisplayLabel returns the text shown for nodeID: the buffer while
// editing, otherwise the committed label or the placeholder.
func (e *Editor) DisplayLabel(nodeID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels.Display(nodeID)
}

// OpenEdgePrompt opens the label prompt of edgeID and returns the seed.
func (e *Editor) OpenEdgePrompt(edgeID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompt.Open(edgeID)
}

// CommitEdgePromptFor sets the label of edgeID if the prompt is open for
// that edge. The check and the commit happen in one action.
func (e *Editor) CommitEdgePromptFor(edgeID, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompt.CommitFor(edgeID, value)
}

// CancelEdgePromptFor closes the prompt without changes if it is open for
// edgeID.
func (e *Editor) CancelEdgePromptFor(edgeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompt.CancelFor(edgeID)
}

// PendingEdgePrompt returns the edge the prompt is open for.
func (e *Editor) PendingEdgePrompt() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompt.Pending()
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
