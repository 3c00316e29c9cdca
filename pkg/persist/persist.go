// Package persist connects a graph store to durable storage.
//
// Two channels are provided. Auto-persistence writes every store change to
// a [kv.Store] under a fixed key, but only after the initial [Adapter.Load]
// has resolved; this gate keeps an empty start-up graph from overwriting
// stored data. Export and import exchange the same JSON document with the
// user through an io.Writer or io.Reader.
package persist

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/kv"
	"github.com/matzehuels/graphedit/pkg/observability"
	"github.com/matzehuels/graphedit/pkg/store"
)

// DefaultKey is the storage key of the auto-saved graph.
const DefaultKey = "graph-editor-data"

// ImportFailedMessage is shown to the user when an import is rejected.
const ImportFailedMessage = "Failed to import graph. Please check the file format."

// Adapter owns the load gate and both persistence channels.
type Adapter struct {
	kv     kv.Store
	key    string
	logger *log.Logger

	loaded    atomic.Bool
	importing atomic.Bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an adapter over s with the load gate closed.
func New(s kv.Store, opts ...Option) *Adapter {
	a := &Adapter{kv: s, key: DefaultKey, logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// Loaded reports whether the load gate is open.
func (a *Adapter) Loaded() bool { return a.loaded.Load() }

// Load reads the stored graph. ok is true only when a parseable graph with
// at least one node was found. Read and parse failures are logged and
// returned, but never keep the gate closed: after Load returns, every
// subsequent change is auto-saved.
func (a *Adapter) Load(ctx context.Context) (g graph.Graph, ok bool, err error) {
	start := time.Now()
	defer func() {
		a.loaded.Store(true)
		observability.Storage().OnLoad(ctx, ok, g.NodeCount(), time.Since(start), err)
	}()

	var (
		data  []byte
		found bool
	)
	err = kv.RetryWithBackoff(ctx, func() error {
		var rerr error
		data, found, rerr = a.kv.Get(ctx, a.key)
		return rerr
	})
	if err != nil {
		a.logger.Error("failed to read saved graph", "key", a.key, "error", err)
		return graph.Graph{}, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", a.key)
	}
	if !found {
		a.logger.Debug("no saved graph", "key", a.key)
		return graph.Graph{}, false, nil
	}

	g, err = graph.Unmarshal(data)
	if err != nil {
		a.logger.Error("failed to load saved graph", "key", a.key, "error", err)
		return graph.Graph{}, false, errors.Wrap(errors.ErrCodeLoadParse, err, "saved graph is corrupt")
	}
	if g.NodeCount() == 0 {
		a.logger.Debug("saved graph is empty", "key", a.key)
		return graph.Graph{}, false, nil
	}
	a.logger.Info("loaded saved graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, true, nil
}

// Save writes g under the storage key. It does nothing while the load gate
// is closed.
func (a *Adapter) Save(ctx context.Context, g graph.Graph) error {
	if !a.Loaded() {
		return nil
	}
	start := time.Now()
	data, err := graph.Marshal(g)
	if err == nil {
		err = a.kv.Set(ctx, a.key, data)
	}
	observability.Storage().OnSave(ctx, len(data), time.Since(start), err)
	if err != nil {
		a.logger.Error("failed to save graph", "key", a.key, "error", err)
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", a.key)
	}
	return nil
}

// Attach auto-saves every change of s. Write failures are logged and
// otherwise ignored. The returned function detaches the adapter.
func (a *Adapter) Attach(s *store.Store) (detach func()) {
	return s.Subscribe(func(ev store.Event) {
		_ = a.Save(context.Background(), ev.Graph)
	})
}

// Remove deletes the persisted graph.
func (a *Adapter) Remove(ctx context.Context) error {
	err := a.kv.Delete(ctx, a.key)
	observability.Storage().OnRemove(ctx, err)
	if err != nil {
		a.logger.Error("failed to remove saved graph", "key", a.key, "error", err)
		return errors.Wrap(errors.ErrCodeStorage, err, "remove %s", a.key)
	}
	return nil
}

// Export writes g to w as indented JSON.
func (a *Adapter) Export(w io.Writer, g graph.Graph) error {
	return graph.Write(w, g)
}

// Import reads a graph document from r. On failure the error carries
// [ImportFailedMessage] as its user message and nothing is returned for the
// caller to apply. A second call while one is still reading fails with
// IMPORT_IN_FLIGHT.
func (a *Adapter) Import(r io.Reader) (graph.Graph, error) {
	if !a.importing.CompareAndSwap(false, true) {
		return graph.Graph{}, errors.New(errors.ErrCodeImportInFlight, "an import is already in progress")
	}
	defer a.importing.Store(false)

	g, err := Decode(r)
	if err != nil {
		a.logger.Error("error importing graph", "error", err)
		return graph.Graph{}, err
	}
	return g, nil
}

// Decode parses an imported document. Missing "nodes" or "edges" keys are
// defaulted to empty collections.
func Decode(r io.Reader) (graph.Graph, error) {
	g, err := graph.Read(r)
	if err != nil {
		return graph.Graph{}, errors.Wrap(errors.ErrCodeImportParse, err, ImportFailedMessage)
	}
	return g, nil
}
