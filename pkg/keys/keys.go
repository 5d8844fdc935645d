// Package keys dispatches keyboard shortcuts to the editor of one open
// document.
//
// A [Handler] is created when a document is opened and closed when the
// document is switched, so shortcuts never reach a stale editor:
//
//	h := keys.NewHandler(ed)
//	defer h.Close()
//	res := h.HandleKey(ctx, keys.ParseKey(msg.String()), keys.FocusCanvas)
//
// The bindings are:
//
//	ctrl+c            copy the selected node (exactly one must be selected)
//	ctrl+v            paste into the selected node, or as a new node
//	delete, backspace delete the selected node
//	ctrl+d            duplicate the selected node
//
// While a text input has focus every shortcut is suppressed.
package keys

import (
	"context"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Key is one key press.
type Key struct {
	Ctrl bool
	Name string
}

// String renders k the way bubbletea does, e.g. "ctrl+c".
func (k Key) String() string {
	if k.Ctrl {
		return "ctrl+" + k.Name
	}
	return k.Name
}

// ParseKey parses a bubbletea key string such as "ctrl+v" or "backspace".
func ParseKey(s string) Key {
	s = strings.ToLower(strings.TrimSpace(s))
	if name, ok := strings.CutPrefix(s, "ctrl+"); ok {
		return Key{Ctrl: true, Name: name}
	}
	return Key{Name: s}
}

// FromKeyMsg converts a bubbletea key message.
func FromKeyMsg(msg tea.KeyMsg) Key {
	return ParseKey(msg.String())
}

// Focus says which control currently owns the keyboard.
type Focus int

const (
	// FocusCanvas means no text input is focused; shortcuts apply.
	FocusCanvas Focus = iota
	// FocusTextInput means a label or field editor is focused.
	FocusTextInput
)

// Action names the command a key press triggered.
type Action string

const (
	ActionNone      Action = ""
	ActionCopy      Action = "copy"
	ActionPaste     Action = "paste"
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
)

// Result reports how a key press was handled.
type Result struct {
	// Handled is true when the key triggered an editor command.
	Handled bool

	// PreventDefault is true when the host must not apply its own
	// binding for the key.
	PreventDefault bool

	Action Action
}

// Commands is the editor surface the handler drives.
type Commands interface {
	Selected() []*mindmap.Node
	CopyNode(ctx context.Context, id string) bool
	PasteNode(ctx context.Context, targetID string) (*mindmap.Node, error)
	DeleteNode(ctx context.Context, id string) bool
	DuplicateNode(ctx context.Context, id string) (*mindmap.Node, error)
}

// Handler routes shortcuts to one editor. It is safe for concurrent use.
type Handler struct {
	mu  sync.Mutex
	cmd Commands
}

// NewHandler registers a handler for cmd.
func NewHandler(cmd Commands) *Handler {
	return &Handler{cmd: cmd}
}

// Close unregisters the handler. Later key presses are ignored.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmd = nil
}

// Active reports whether the handler is still registered.
func (h *Handler) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cmd != nil
}

// HandleKey dispatches k.
func (h *Handler) HandleKey(ctx context.Context, k Key, focus Focus) Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil || focus == FocusTextInput {
		return Result{}
	}

	switch {
	case k.Ctrl && k.Name == "c":
		sel := h.cmd.Selected()
		if len(sel) != 1 {
			return Result{}
		}
		return Result{Handled: h.cmd.CopyNode(ctx, sel[0].ID), Action: ActionCopy}

	case k.Ctrl && k.Name == "v":
		target := ""
		if sel := h.cmd.Selected(); len(sel) > 0 {
			target = sel[0].ID
		}
		n, err := h.cmd.PasteNode(ctx, target)
		return Result{Handled: err == nil && n != nil, Action: ActionPaste}

	case !k.Ctrl && (k.Name == "delete" || k.Name == "backspace"):
		sel := h.cmd.Selected()
		if len(sel) == 0 {
			return Result{}
		}
		return Result{Handled: h.cmd.DeleteNode(ctx, sel[0].ID), Action: ActionDelete}

	case k.Ctrl && k.Name == "d":
		res := Result{PreventDefault: true, Action: ActionDuplicate}
		if sel := h.cmd.Selected(); len(sel) > 0 {
			n, err := h.cmd.DuplicateNode(ctx, sel[0].ID)
			res.Handled = err == nil && n != nil
		}
		return res
	}
	return Result{}
}

// HandleDuplicateRequest duplicates node id on behalf of a context menu.
// It shares the editor call with the ctrl+d binding.
func (h *Handler) HandleDuplicateRequest(ctx context.Context, id string) Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil {
		return Result{}
	}
	n, err := h.cmd.DuplicateNode(ctx, id)
	return Result{Handled: err == nil && n != nil, Action: ActionDuplicate}
}
