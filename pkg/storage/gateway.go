package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Store keys.
const (
	// NamespaceKey holds every saved document as {name: document}.
	NamespaceKey = "mindmaps"

	// ClipboardKey holds the JSON-encoded data of the last copied node.
	ClipboardKey = "mindmap-copied-node"
)

var errClipboardUnsupported = errors.New("system clipboard unsupported on this platform")

// Gateway persists named mind maps and the clipboard slot on top of a KV.
//
// Every method reports failure through its return value only; details go
// to the logger. A Gateway is safe for concurrent use, and each method is
// one atomic read-modify-write from the point of view of other callers of
// the same Gateway.
type Gateway struct {
	kv     KV
	logger *log.Logger
	mirror ClipboardMirror
	mu     sync.Mutex
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for diagnostic output.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClipboardMirror mirrors clipboard writes to m.
func WithClipboardMirror(m ClipboardMirror) Option {
	return func(g *Gateway) { g.mirror = m }
}

// NewGateway creates a gateway over kv.
func NewGateway(kv KV, opts ...Option) *Gateway {
	g := &Gateway{kv: kv, logger: log.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Close closes the underlying KV.
func (g *Gateway) Close() error {
	return g.kv.Close()
}

// =============================================================================
// Documents
// =============================================================================

// SaveMindMap stores nodes and edges under name, replacing any document of
// the same name.
func (g *Gateway) SaveMindMap(ctx context.Context, name string, nodes []*mindmap.Node, edges []*mindmap.Edge) bool {
	return g.SaveDocument(ctx, &mindmap.Document{Name: name, Nodes: nodes, Edges: edges})
}

// SaveDocument stores doc under doc.Name, including its id counter.
func (g *Gateway) SaveDocument(ctx context.Context, doc *mindmap.Document) bool {
	if err := mcerrors.ValidateDocumentName(doc.Name); err != nil {
		g.logger.Error("Error saving mind map", "err", err)
		return false
	}

	entry, err := json.Marshal(doc)
	if err != nil {
		g.logger.Error("Error saving mind map", "name", doc.Name, "err", err)
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	all, err := g.readNamespace(ctx)
	if err != nil {
		// Refuse to overwrite a namespace we could not read.
		g.logger.Error("Error saving mind map", "name", doc.Name, "err", err)
		return false
	}
	all[doc.Name] = entry
	if err := g.writeNamespace(ctx, all); err != nil {
		g.logger.Error("Error saving mind map", "name", doc.Name, "err", err)
		return false
	}
	g.logger.Debug("saved mind map", "name", doc.Name, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return true
}

// LoadMindMap returns the document stored under name.
func (g *Gateway) LoadMindMap(ctx context.Context, name string) (*mindmap.Document, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	all, err := g.readNamespace(ctx)
	if err != nil {
		g.logger.Error("Error loading mind map", "name", name, "err", err)
		return nil, false
	}
	entry, ok := all[name]
	if !ok {
		return nil, false
	}

	var doc mindmap.Document
	if err := json.Unmarshal(entry, &doc); err != nil {
		g.logger.Error("Error loading mind map", "name", name,
			"err", mcerrors.Wrap(mcerrors.ErrCodeStorageCorrupt, err, "decode %q", name))
		return nil, false
	}
	if err := checkEntries(&doc); err != nil {
		g.logger.Error("Error loading mind map", "name", name, "err", err)
		return nil, false
	}
	doc.Name = name
	return &doc, true
}

// checkEntries rejects documents holding null nodes or edges, which decode
// without error but cannot be edited.
func checkEntries(doc *mindmap.Document) error {
	for i, n := range doc.Nodes {
		if n == nil {
			return mcerrors.New(mcerrors.ErrCodeStorageCorrupt, "node %d is null", i)
		}
	}
	for i, e := range doc.Edges {
		if e == nil {
			return mcerrors.New(mcerrors.ErrCodeStorageCorrupt, "edge %d is null", i)
		}
	}
	return nil
}

// GetAllMindMaps returns the names of all saved documents, sorted.
func (g *Gateway) GetAllMindMaps(ctx context.Context) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	all, err := g.readNamespace(ctx)
	if err != nil {
		g.logger.Error("Error getting all mind maps", "err", err)
		return []string{}
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteMindMap removes the document stored under name. It returns false
// if there is no such document.
func (g *Gateway) DeleteMindMap(ctx context.Context, name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	all, err := g.readNamespace(ctx)
	if err != nil {
		g.logger.Error("Error deleting mind map", "name", name, "err", err)
		return false
	}
	if _, ok := all[name]; !ok {
		return false
	}
	delete(all, name)
	if err := g.writeNamespace(ctx, all); err != nil {
		g.logger.Error("Error deleting mind map", "name", name, "err", err)
		return false
	}
	return true
}

// readNamespace returns the name-to-document map. A missing namespace is
// an empty map.
func (g *Gateway) readNamespace(ctx context.Context) (map[string]json.RawMessage, error) {
	data, ok, err := g.kv.Get(ctx, NamespaceKey)
	if err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeStorageUnavailable, err, "read %s", NamespaceKey)
	}
	all := make(map[string]json.RawMessage)
	if !ok || len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeStorageCorrupt, err, "parse %s", NamespaceKey)
	}
	if all == nil {
		all = make(map[string]json.RawMessage)
	}
	return all, nil
}

func (g *Gateway) writeNamespace(ctx context.Context, all map[string]json.RawMessage) error {
	data, err := json.Marshal(all)
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode %s", NamespaceKey)
	}
	if err := g.kv.Set(ctx, NamespaceKey, data); err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeStorageUnavailable, err, "write %s", NamespaceKey)
	}
	return nil
}

// =============================================================================
// Clipboard Slot
// =============================================================================

// ReadClipboard returns the raw clipboard slot. The content is not
// validated here; parsing failures belong to the paste operation.
func (g *Gateway) ReadClipboard(ctx context.Context) ([]byte, bool) {
	data, ok, err := g.kv.Get(ctx, ClipboardKey)
	if err != nil {
		g.logger.Error("Error reading clipboard", "err", err)
		return nil, false
	}
	if !ok || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// WriteClipboard replaces the clipboard slot with data.
func (g *Gateway) WriteClipboard(ctx context.Context, data []byte) bool {
	if err := g.kv.Set(ctx, ClipboardKey, data); err != nil {
		g.logger.Error("Error writing clipboard", "err", err)
		return false
	}
	if g.mirror != nil {
		if err := g.mirror.WriteClipboard(string(data)); err != nil {
			g.logger.Debug("system clipboard mirror failed", "err", err)
		}
	}
	return true
}
