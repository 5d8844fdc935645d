package editor

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
	"github.com/matzehuels/mindcanvas/pkg/observability"
)

// ErrClosed is returned by every operation after [Editor.Close].
var ErrClosed = errors.New("editor closed")

// Operation names reported to the editor observability hooks.
const (
	OpAdd       = "add"
	OpUpdate    = "update"
	OpMove      = "move"
	OpDelete    = "delete"
	OpCopy      = "copy"
	OpPaste     = "paste"
	OpDuplicate = "duplicate"
	OpConnect   = "connect"
	OpEdge      = "update_edge"
)

// Editor is the mutation surface of one open document.
//
// All methods are safe for concurrent use. Each call moves the document
// from its pre-state to its post-state under one lock, so no caller ever
// observes an intermediate state. Deleting a node also deletes the edges
// attached to it.
type Editor struct {
	mu     sync.Mutex
	doc    *mindmap.Document
	clip   Clipboard
	notify notify.Notifier
	logger *log.Logger
	now    func() time.Time
	rand   *rand.Rand
	edges  EdgeSelection
	closed bool
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithNotifier routes user-facing events to n.
func WithNotifier(n notify.Notifier) EditorOption {
	return func(e *Editor) { e.notify = notify.OrNop(n) }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *log.Logger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source for timeline defaults.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

// WithRand sets the random source for node placement.
func WithRand(r *rand.Rand) EditorOption {
	return func(e *Editor) { e.rand = r }
}

// New creates an editor that owns doc. The caller must not modify doc
// afterwards; use [Editor.Document] to read it.
func New(doc *mindmap.Document, clip Clipboard, opts ...EditorOption) *Editor {
	if doc == nil {
		doc = mindmap.InitialDocument()
	}
	e := &Editor{
		doc:    doc,
		clip:   clip,
		notify: notify.Nop,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) options() Options {
	return Options{Now: e.now, Rand: e.rand, NextID: e.doc.NextNodeID}
}

func (e *Editor) record(ctx context.Context, op, nodeType string, err error) {
	observability.Editor().OnOperation(ctx, op, nodeType, err)
}

// fail logs err and emits msg as an error event.
func (e *Editor) fail(ctx context.Context, op string, err error, msg string) {
	e.logger.Error(msg, "err", err)
	e.notify.Notify(notify.Failed("%s", msg))
	e.record(ctx, op, "", err)
}

// =============================================================================
// Reads
// =============================================================================

// Document returns a deep copy of the current document.
func (e *Editor) Document() *mindmap.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Node returns a copy of node id.
func (e *Editor) Node(id string) (*mindmap.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, n := mindmap.FindNode(e.doc.Nodes, id)
	if n == nil {
		return nil, false
	}
	return n.Clone(), true
}

// Selected returns copies of the selected nodes.
func (e *Editor) Selected() []*mindmap.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*mindmap.Node
	for _, n := range mindmap.SelectedNodes(e.doc.Nodes) {
		out = append(out, n.Clone())
	}
	return out
}

// Name returns the document name.
func (e *Editor) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Name
}

// Rename sets the document name, typically after its first save.
func (e *Editor) Rename(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Name = name
}

// Close detaches the editor from its document. Later calls fail with
// ErrClosed.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// =============================================================================
// Node Commands
// =============================================================================

// AddNode adds a node of nodeType and emits an added event.
func (e *Editor) AddNode(ctx context.Context, nodeType string, ov Overrides) (*mindmap.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	nodes, n, err := AddNode(e.doc.Nodes, nodeType, ov, e.options())
	if err != nil {
		e.record(ctx, OpAdd, nodeType, err)
		return nil, err
	}
	if n == nil {
		return nil, mcerrors.New(mcerrors.ErrCodeMissingInput, "node type is required")
	}
	e.doc.Nodes = nodes
	e.logger.Debug("added node", "id", n.ID, "type", nodeType)
	e.notify.Notify(notify.Added(nodeType, n.ID))
	e.record(ctx, OpAdd, nodeType, nil)
	return n.Clone(), nil
}

// UpdateNodeData merges patch into node id. Unknown ids are ignored.
func (e *Editor) UpdateNodeData(ctx context.Context, id string, patch mindmap.Patch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	nodes, err := UpdateNodeData(e.doc.Nodes, id, patch)
	if err != nil {
		e.record(ctx, OpUpdate, "", err)
		return err
	}
	e.doc.Nodes = nodes
	e.record(ctx, OpUpdate, "", nil)
	return nil
}

// MoveNode sets the position of node id. Unknown ids are ignored.
func (e *Editor) MoveNode(ctx context.Context, id string, pos mindmap.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.doc.Nodes = MoveNode(e.doc.Nodes, id, pos)
	e.record(ctx, OpMove, "", nil)
	return nil
}

// DeleteNode removes node id and its edges. It returns false for an
// unknown id.
func (e *Editor) DeleteNode(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}

	nodes, n := DeleteNode(e.doc.Nodes, id)
	if n == nil {
		return false
	}
	e.doc.Nodes = nodes
	before := len(e.doc.Edges)
	e.doc.Edges = RemoveIncidentEdges(e.doc.Edges, id)
	if removed := before - len(e.doc.Edges); removed > 0 {
		e.logger.Debug("removed incident edges", "node", id, "count", removed)
	}
	if e.edges.Selected() != "" {
		if _, sel := mindmap.FindEdge(e.doc.Edges, e.edges.Selected()); sel == nil {
			e.edges.Clear()
		}
	}
	e.notify.Notify(notify.Deleted(n.Data.NodeType, id))
	e.record(ctx, OpDelete, n.Data.NodeType, nil)
	return true
}

// CopyNode writes the data of node id to the clipboard. It returns false
// for an unknown id or a failed write.
func (e *Editor) CopyNode(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}

	n, err := CopyNode(ctx, e.doc.Nodes, id, e.clip)
	if err != nil {
		e.fail(ctx, OpCopy, err, "Failed to copy node")
		return false
	}
	if n == nil {
		return false
	}
	e.notify.Notify(notify.Copied(n.Data.NodeType, id))
	e.record(ctx, OpCopy, n.Data.NodeType, nil)
	return true
}

// PasteNode applies the clipboard to node targetID, or adds a new node
// when targetID is empty or unknown. An empty clipboard returns a nil node
// and no event. A malformed clipboard emits an error event and returns a
// MalformedClipboard error.
func (e *Editor) PasteNode(ctx context.Context, targetID string) (*mindmap.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	_, target := mindmap.FindNode(e.doc.Nodes, targetID)
	nodes, n, err := PasteNode(ctx, e.doc.Nodes, targetID, e.clip, e.options())
	if err != nil {
		e.fail(ctx, OpPaste, err, "Failed to paste node data")
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	e.doc.Nodes = nodes
	if target != nil {
		e.notify.Notify(notify.Pasted(n.Data.NodeType, n.ID))
	} else {
		e.notify.Notify(notify.Added(n.Data.NodeType, n.ID))
		e.notify.Notify(notify.PastedAsNew(n.Data.NodeType, n.ID))
	}
	e.record(ctx, OpPaste, n.Data.NodeType, nil)
	return n.Clone(), nil
}

// DuplicateNode adds a copy of node id offset by (50,50). An unknown id
// returns a nil node.
func (e *Editor) DuplicateNode(ctx context.Context, id string) (*mindmap.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	nodes, n, err := DuplicateNode(e.doc.Nodes, id, e.options())
	if err != nil {
		e.fail(ctx, OpDuplicate, err, "Failed to duplicate node")
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	e.doc.Nodes = nodes
	e.notify.Notify(notify.Duplicated(n.Data.NodeType, n.ID))
	e.record(ctx, OpDuplicate, n.Data.NodeType, nil)
	return n.Clone(), nil
}

// SelectNode makes id the only selected node. An empty id clears the
// selection.
func (e *Editor) SelectNode(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.doc.Nodes = SelectNode(e.doc.Nodes, id)
}

// SetSelected adds node id to or removes it from the selection.
func (e *Editor) SetSelected(id string, selected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.doc.Nodes = SetSelected(e.doc.Nodes, id, selected)
}

// =============================================================================
// Edge Commands
// =============================================================================

// Connect adds an edge between two existing nodes.
func (e *Editor) Connect(ctx context.Context, req ConnectRequest) (*mindmap.Edge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	for _, id := range []string{req.Source, req.Target} {
		if _, n := mindmap.FindNode(e.doc.Nodes, id); n == nil {
			err := mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", id)
			e.record(ctx, OpConnect, "", err)
			return nil, err
		}
	}
	edges, edge := Connect(e.doc.Edges, req)
	e.doc.Edges = edges
	e.record(ctx, OpConnect, "", nil)
	return edge.Clone(), nil
}

// UpdateEdge merges patch into edge id. Unknown ids are ignored.
func (e *Editor) UpdateEdge(ctx context.Context, id string, patch mindmap.Patch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	edges, err := UpdateEdge(e.doc.Edges, id, patch)
	e.record(ctx, OpEdge, "", err)
	if err != nil {
		return err
	}
	e.doc.Edges = edges
	return nil
}

// SelectEdge toggles the edge selection and returns the selected id.
func (e *Editor) SelectEdge(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ""
	}
	sel := e.edges.Toggle(id)
	e.doc.Edges = e.edges.Mark(e.doc.Edges)
	return sel
}
