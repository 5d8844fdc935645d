package keys

import (
	"bytes"
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
	"github.com/matzehuels/mindcanvas/pkg/storage"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"ctrl+c", Key{Ctrl: true, Name: "c"}},
		{"CTRL+V", Key{Ctrl: true, Name: "v"}},
		{"delete", Key{Name: "delete"}},
		{"backspace", Key{Name: "backspace"}},
		{" a ", Key{Name: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseKey(tt.in); got != tt.want {
				t.Errorf("ParseKey(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}

	if got := FromKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlD}); got != (Key{Ctrl: true, Name: "d"}) {
		t.Errorf("FromKeyMsg(ctrl+d) = %+v", got)
	}
	if got := FromKeyMsg(tea.KeyMsg{Type: tea.KeyBackspace}); got.Name != "backspace" {
		t.Errorf("FromKeyMsg(backspace) = %+v", got)
	}
	if s := (Key{Ctrl: true, Name: "v"}).String(); s != "ctrl+v" {
		t.Errorf("String() = %q", s)
	}
}

func newFixture(t *testing.T) (*Handler, *editor.Editor, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	logger := log.New(&bytes.Buffer{})
	gw := storage.NewGateway(storage.NewMemoryKV(), storage.WithLogger(logger))
	ed := editor.New(mindmap.InitialDocument(), gw, editor.WithNotifier(rec), editor.WithLogger(logger))
	return NewHandler(ed), ed, rec
}

func ctrl(name string) Key { return Key{Ctrl: true, Name: name} }

func TestHandleKeyNoSelection(t *testing.T) {
	ctx := context.Background()
	h, ed, _ := newFixture(t)

	for _, k := range []Key{ctrl("c"), {Name: "delete"}, {Name: "backspace"}} {
		if res := h.HandleKey(ctx, k, FocusCanvas); res.Handled {
			t.Errorf("%s without selection handled", k)
		}
	}
	if len(ed.Document().Nodes) != 1 {
		t.Error("document changed")
	}

	res := h.HandleKey(ctx, ctrl("d"), FocusCanvas)
	if res.Handled || !res.PreventDefault {
		t.Errorf("ctrl+d without selection = %+v, want suppressed default only", res)
	}
}

func TestHandleKeyCopyPaste(t *testing.T) {
	ctx := context.Background()
	h, ed, rec := newFixture(t)
	ed.SelectNode("1")

	if res := h.HandleKey(ctx, ctrl("c"), FocusCanvas); !res.Handled || res.Action != ActionCopy {
		t.Fatalf("ctrl+c = %+v", res)
	}
	if ev, _ := rec.Last(); ev.Kind != notify.KindCopied {
		t.Errorf("event = %+v", ev)
	}

	// Paste with a selection merges into the selected node.
	if res := h.HandleKey(ctx, ctrl("v"), FocusCanvas); !res.Handled {
		t.Fatalf("ctrl+v = %+v", res)
	}
	if n := len(ed.Document().Nodes); n != 1 {
		t.Errorf("paste into selection added a node, have %d", n)
	}

	// Without a selection it adds a new node.
	ed.SelectNode("")
	if res := h.HandleKey(ctx, ctrl("v"), FocusCanvas); !res.Handled {
		t.Fatalf("ctrl+v = %+v", res)
	}
	if n := len(ed.Document().Nodes); n != 2 {
		t.Errorf("nodes = %d, want 2", n)
	}
}

func TestHandleKeyCopyNeedsExactlyOne(t *testing.T) {
	ctx := context.Background()
	h, ed, _ := newFixture(t)
	n, _ := ed.AddNode(ctx, mindmap.TypeTopic, editor.Overrides{})
	ed.SelectNode("1")
	ed.SetSelected(n.ID, true)

	if res := h.HandleKey(ctx, ctrl("c"), FocusCanvas); res.Handled {
		t.Error("copy with two selected nodes should do nothing")
	}
}

func TestHandleKeyDeleteAndDuplicate(t *testing.T) {
	ctx := context.Background()
	h, ed, _ := newFixture(t)
	ed.SelectNode("1")

	res := h.HandleKey(ctx, ctrl("d"), FocusCanvas)
	if !res.Handled || !res.PreventDefault {
		t.Fatalf("ctrl+d = %+v", res)
	}
	if n := len(ed.Document().Nodes); n != 2 {
		t.Fatalf("nodes = %d, want 2", n)
	}

	for _, name := range []string{"delete", "backspace"} {
		ed.SelectNode(ed.Document().Nodes[0].ID)
		if res := h.HandleKey(ctx, Key{Name: name}, FocusCanvas); !res.Handled || res.Action != ActionDelete {
			t.Errorf("%s = %+v", name, res)
		}
	}
	if n := len(ed.Document().Nodes); n != 0 {
		t.Errorf("nodes = %d, want 0", n)
	}
}

func TestHandleKeyTextFocusSuppresses(t *testing.T) {
	ctx := context.Background()
	h, ed, rec := newFixture(t)
	ed.SelectNode("1")

	for _, k := range []Key{ctrl("c"), ctrl("v"), ctrl("d"), {Name: "delete"}, {Name: "backspace"}} {
		if res := h.HandleKey(ctx, k, FocusTextInput); res != (Result{}) {
			t.Errorf("%s in text input = %+v", k, res)
		}
	}
	if len(rec.Events()) != 0 || len(ed.Document().Nodes) != 1 {
		t.Error("suppressed keys must not reach the editor")
	}
}

func TestHandleDuplicateRequestConverges(t *testing.T) {
	ctx := context.Background()

	viaKey, edKey, _ := newFixture(t)
	edKey.SelectNode("1")
	viaKey.HandleKey(ctx, ctrl("d"), FocusCanvas)

	viaMenu, edMenu, _ := newFixture(t)
	if res := viaMenu.HandleDuplicateRequest(ctx, "1"); !res.Handled {
		t.Fatalf("HandleDuplicateRequest = %+v", res)
	}

	a, b := edKey.Document().Nodes[1], edMenu.Document().Nodes[1]
	if a.ID != b.ID || a.Position != b.Position || !a.Data.Equal(b.Data) {
		t.Errorf("key and menu duplicates differ:\n %+v\n %+v", a, b)
	}
}

func TestHandlerClose(t *testing.T) {
	ctx := context.Background()
	h, ed, _ := newFixture(t)
	ed.SelectNode("1")
	h.Close()

	if h.Active() {
		t.Error("handler still active after Close")
	}
	if res := h.HandleKey(ctx, Key{Name: "delete"}, FocusCanvas); res.Handled {
		t.Error("closed handler handled a key")
	}
	if res := h.HandleDuplicateRequest(ctx, "1"); res.Handled {
		t.Error("closed handler handled a duplicate request")
	}
	if len(ed.Document().Nodes) != 1 {
		t.Error("closed handler reached the editor")
	}
}
