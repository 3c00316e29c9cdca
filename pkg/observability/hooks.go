// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph mutations, persistence, and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(metrics)
//	    observability.SetStorageHooks(metrics)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Storage().OnSave(ctx, len(data), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the graph editor.
type EditorHooks interface {
	// OnMutation records one atomic store update.
	OnMutation(ctx context.Context, op string, nodeCount, edgeCount int)

	// OnDelete records a cascading deletion.
	OnDelete(ctx context.Context, nodes, edges int)

	// OnImport records an import attempt.
	OnImport(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error)

	// OnExport records an export.
	OnExport(ctx context.Context, size int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from the auto-persistence channel.
type StorageHooks interface {
	// OnLoad records the initial load attempt.
	OnLoad(ctx context.Context, found bool, nodeCount int, duration time.Duration, err error)

	// OnSave records an auto-save write.
	OnSave(ctx context.Context, size int, duration time.Duration, err error)

	// OnRemove records removal of the persisted blob.
	OnRemove(ctx context.Context, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnStream records a websocket subscriber joining (delta 1) or leaving (delta -1).
	OnStream(ctx context.Context, delta int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, int, int)             {}
func (NoopEditorHooks) OnDelete(context.Context, int, int)                       {}
func (NoopEditorHooks) OnImport(context.Context, int, int, time.Duration, error) {}
func (NoopEditorHooks) OnExport(context.Context, int)                            {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnLoad(context.Context, bool, int, time.Duration, error) {}
func (NoopStorageHooks) OnSave(context.Context, int, time.Duration, error)       {}
func (NoopStorageHooks) OnRemove(context.Context, error)                         {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnStream(context.Context, int)                                  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks  EditorHooks  = NoopEditorHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
// This should be called once at application startup.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	storageHooks = NoopStorageHooks{}
	httpHooks = NoopHTTPHooks{}
}
