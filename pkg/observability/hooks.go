// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about editor operations, storage access and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The server registers a Prometheus collector; the CLI leaves the no-op
// defaults in place.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(collector)
//	    observability.SetStorageHooks(collector)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	data, ok, err := kv.Get(ctx, key)
//	observability.Storage().OnRead(ctx, "file", ok, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from node and edge operations.
type EditorHooks interface {
	// OnOperation records one editor command. op is the command name
	// ("add", "paste", "connect", ...), nodeType the affected node type
	// if any. err is non-nil when the command failed.
	OnOperation(ctx context.Context, op, nodeType string, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from the key-value backends.
type StorageHooks interface {
	// OnRead records a key lookup.
	OnRead(ctx context.Context, backend string, hit bool, duration time.Duration, err error)

	// OnWrite records a key write.
	OnWrite(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnDelete records a key removal.
	OnDelete(ctx context.Context, backend string, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnOperation(context.Context, string, string, error) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnRead(context.Context, string, bool, time.Duration, error) {}
func (NoopStorageHooks) OnWrite(context.Context, string, int, time.Duration, error) {}
func (NoopStorageHooks) OnDelete(context.Context, string, time.Duration, error)     {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

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
// This should be called once at application startup before any store is opened.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
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
