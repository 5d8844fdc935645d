// Package workspace coordinates the lifecycle of named mind maps: creating,
// loading, saving and deleting them through the storage gateway, and
// owning the editor and key handler of the open document.
//
// Every lifecycle call reports its outcome as a [notify.Event]. A
// declined name prompt is a cancellation: the call returns an error that
// satisfies [errors.IsCancellation] and emits nothing.
//
// [errors.IsCancellation]: github.com/matzehuels/mindcanvas/pkg/errors.IsCancellation
package workspace

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/keys"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
)

// Messages shown to the user.
const (
	msgExportUnsaved = "Please save your mind map before exporting"
	msgSaveFailed    = "Failed to save mind map"
	msgCreateFailed  = "Failed to create new mind map"
	msgDeleteFailed  = "Failed to delete mind map"
)

// Store is the persistence the workspace depends on. *storage.Gateway
// implements it.
type Store interface {
	editor.Clipboard
	SaveDocument(ctx context.Context, doc *mindmap.Document) bool
	LoadMindMap(ctx context.Context, name string) (*mindmap.Document, bool)
	GetAllMindMaps(ctx context.Context) []string
	DeleteMindMap(ctx context.Context, name string) bool
}

// Prompter asks the user for a document name. Declining returns an error
// with code MISSING_INPUT.
type Prompter interface {
	PromptName(ctx context.Context, title string) (string, error)
}

// PrompterFunc adapts a function to [Prompter].
type PrompterFunc func(ctx context.Context, title string) (string, error)

// PromptName calls f.
func (f PrompterFunc) PromptName(ctx context.Context, title string) (string, error) {
	return f(ctx, title)
}

// declining is the default prompter: it always declines.
var declining = PrompterFunc(func(context.Context, string) (string, error) {
	return "", mcerrors.New(mcerrors.ErrCodeMissingInput, "no name provided")
})

// Workspace owns the open document. It is safe for concurrent use.
type Workspace struct {
	mu      sync.Mutex
	store   Store
	prompt  Prompter
	notify  notify.Notifier
	logger  *log.Logger
	edOpts  []editor.EditorOption
	editor  *editor.Editor
	handler *keys.Handler
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithPrompter sets the name prompt used by CreateNew and SaveCurrent.
func WithPrompter(p Prompter) Option {
	return func(w *Workspace) {
		if p != nil {
			w.prompt = p
		}
	}
}

// WithNotifier routes lifecycle and editor events to n.
func WithNotifier(n notify.Notifier) Option {
	return func(w *Workspace) { w.notify = notify.OrNop(n) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithEditorOptions passes extra options to every editor the workspace
// creates.
func WithEditorOptions(opts ...editor.EditorOption) Option {
	return func(w *Workspace) { w.edOpts = append(w.edOpts, opts...) }
}

// New creates a workspace holding the initial unnamed document.
func New(store Store, opts ...Option) *Workspace {
	w := &Workspace{
		store:  store,
		prompt: declining,
		notify: notify.Nop,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.install(mindmap.InitialDocument())
	return w
}

// install replaces the open document, tearing down the previous editor and
// key handler. Callers hold w.mu.
func (w *Workspace) install(doc *mindmap.Document) {
	if w.handler != nil {
		w.handler.Close()
	}
	if w.editor != nil {
		w.editor.Close()
	}
	opts := append([]editor.EditorOption{
		editor.WithNotifier(w.notify),
		editor.WithLogger(w.logger),
	}, w.edOpts...)
	w.editor = editor.New(doc, w.store, opts...)
	w.handler = keys.NewHandler(w.editor)
}

func (w *Workspace) failed(err error, format string, args ...any) error {
	ev := notify.Failed(format, args...)
	w.notify.Notify(ev)
	w.logger.Debug(ev.Description, "err", err)
	return err
}

// =============================================================================
// Accessors
// =============================================================================

// Editor returns the editor of the open document. It is replaced on every
// document switch.
func (w *Workspace) Editor() *editor.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor
}

// Keys returns the key handler of the open document.
func (w *Workspace) Keys() *keys.Handler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handler
}

// Current returns a copy of the open document.
func (w *Workspace) Current() *mindmap.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor.Document()
}

// Close tears down the editor and key handler.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler.Close()
	w.editor.Close()
}

// =============================================================================
// Lifecycle
// =============================================================================

// CreateNew prompts for a name and opens a fresh document under it.
func (w *Workspace) CreateNew(ctx context.Context) error {
	name, err := w.prompt.PromptName(ctx, "Enter a name for your mind map")
	if err != nil {
		return err
	}
	return w.Create(ctx, name)
}

// Create stores a fresh document named name and opens it. When the store
// refuses the document the open one is kept.
func (w *Workspace) Create(ctx context.Context, name string) error {
	if err := mcerrors.ValidateDocumentName(name); err != nil {
		if mcerrors.IsCancellation(err) {
			return err
		}
		return w.failed(err, "%s", mcerrors.UserMessage(err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	doc := mindmap.InitialDocument()
	doc.Name = name
	if !w.store.SaveDocument(ctx, doc) {
		return w.failed(mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "create %q", name), msgCreateFailed)
	}
	w.install(doc)
	w.notify.Notify(notify.Created(name))
	w.logger.Debug("created mind map", "name", name)
	return nil
}

// Load opens the stored document name.
func (w *Workspace) Load(ctx context.Context, name string) error {
	doc, ok := w.store.LoadMindMap(ctx, name)
	if !ok {
		return w.failed(mcerrors.New(mcerrors.ErrCodeNotFound, "mind map %q not found", name),
			"Mind map %q not found", name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.install(doc)
	w.notify.Notify(notify.Loaded(name))
	return nil
}

// Save stores nodes and edges under name, replacing any document of that
// name. Saving the open document under a new name renames it.
func (w *Workspace) Save(ctx context.Context, name string, nodes []*mindmap.Node, edges []*mindmap.Edge) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cur := w.editor.Document()
	doc := &mindmap.Document{Name: name, Nodes: nodes, Edges: edges, Seq: cur.Seq}
	return w.save(ctx, doc)
}

// SaveCurrent stores the open document, prompting for a name when it has
// none.
func (w *Workspace) SaveCurrent(ctx context.Context) error {
	doc := w.Current()
	if doc.Name == "" {
		name, err := w.prompt.PromptName(ctx, "Enter a name for your mind map")
		if err != nil {
			return err
		}
		doc.Name = name
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.save(ctx, doc)
}

// save persists doc and makes its name current. Callers hold w.mu.
func (w *Workspace) save(ctx context.Context, doc *mindmap.Document) error {
	if err := mcerrors.ValidateDocumentName(doc.Name); err != nil {
		if mcerrors.IsCancellation(err) {
			return err
		}
		return w.failed(err, "%s", mcerrors.UserMessage(err))
	}
	if !w.store.SaveDocument(ctx, doc) {
		return w.failed(mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "save %q", doc.Name), msgSaveFailed)
	}
	w.editor.Rename(doc.Name)
	w.notify.Notify(notify.Saved(doc.Name))
	return nil
}

// Delete removes the stored document name. Deleting the open document
// resets the workspace to the initial unnamed document.
func (w *Workspace) Delete(ctx context.Context, name string) error {
	if !slices.Contains(w.store.GetAllMindMaps(ctx), name) {
		return w.failed(mcerrors.New(mcerrors.ErrCodeNotFound, "mind map %q not found", name),
			"Mind map %q not found", name)
	}
	if !w.store.DeleteMindMap(ctx, name) {
		return w.failed(mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "delete %q", name), msgDeleteFailed)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editor.Name() == name {
		w.install(mindmap.InitialDocument())
	}
	w.notify.Notify(notify.Removed(name))
	return nil
}

// List returns the names of all stored documents, sorted.
func (w *Workspace) List(ctx context.Context) []string {
	return w.store.GetAllMindMaps(ctx)
}

// Export returns the stored version of the open document for the export
// view. The open document must have been saved.
func (w *Workspace) Export(ctx context.Context) (*mindmap.Document, error) {
	name := w.Current().Name
	if name == "" {
		return nil, w.failed(mcerrors.New(mcerrors.ErrCodeInvalidInput, "document has no name"), msgExportUnsaved)
	}
	doc, ok := w.store.LoadMindMap(ctx, name)
	if !ok {
		return nil, w.failed(mcerrors.New(mcerrors.ErrCodeNotFound, "mind map %q not found", name),
			"Mind map %q not found", name)
	}
	return doc, nil
}
