package workspace

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/keys"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
	"github.com/matzehuels/mindcanvas/pkg/storage"
)

type fixture struct {
	ws    *Workspace
	gw    *storage.Gateway
	rec   *notify.Recorder
	names []string // answers for the prompt; "" declines
}

func newFixture(t *testing.T, answers ...string) *fixture {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	f := &fixture{
		gw:    storage.NewGateway(storage.NewMemoryKV(), storage.WithLogger(logger)),
		rec:   &notify.Recorder{},
		names: answers,
	}
	prompt := PrompterFunc(func(context.Context, string) (string, error) {
		if len(f.names) == 0 || f.names[0] == "" {
			return "", mcerrors.New(mcerrors.ErrCodeMissingInput, "declined")
		}
		name := f.names[0]
		f.names = f.names[1:]
		return name, nil
	})
	f.ws = New(f.gw, WithPrompter(prompt), WithNotifier(f.rec), WithLogger(logger))
	t.Cleanup(f.ws.Close)
	return f
}

func (f *fixture) lastEvent(t *testing.T) notify.Event {
	t.Helper()
	ev, ok := f.rec.Last()
	if !ok {
		t.Fatal("no event emitted")
	}
	return ev
}

func TestNewWorkspaceStartsWithInitialDocument(t *testing.T) {
	f := newFixture(t)
	doc := f.ws.Current()
	if doc.Name != "" || len(doc.Nodes) != 1 || doc.Nodes[0].Data.Label != "Main Idea" {
		t.Errorf("Current = %+v", doc)
	}
}

func TestExamPrepScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "Exam Prep")

	if err := f.ws.CreateNew(ctx); err != nil {
		t.Fatal(err)
	}
	if ev := f.lastEvent(t); ev.Kind != notify.KindCreated {
		t.Errorf("event = %+v", ev)
	}

	ed := f.ws.Editor()
	n, err := ed.AddNode(ctx, mindmap.TypeChecklist, editor.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	items := n.Data.ChecklistItems
	wantPrio := []mindmap.Priority{mindmap.PriorityHigh, mindmap.PriorityMedium, mindmap.PriorityLow}
	if len(items) != 3 {
		t.Fatalf("items = %v", items)
	}
	for i, it := range items {
		if it.Priority != wantPrio[i] || it.IsChecked {
			t.Errorf("item %d = %+v", i, it)
		}
	}

	toggled := mindmap.ToggleChecklistItem(items, items[1].ID)
	if err := ed.UpdateNodeData(ctx, n.ID, mindmap.Patch{"checklistItems": toggled}); err != nil {
		t.Fatal(err)
	}
	if err := f.ws.SaveCurrent(ctx); err != nil {
		t.Fatal(err)
	}

	// Switch away and back so the document really comes from the store.
	if err := f.ws.Create(ctx, "Scratch"); err != nil {
		t.Fatal(err)
	}
	if err := f.ws.Load(ctx, "Exam Prep"); err != nil {
		t.Fatal(err)
	}
	got, ok := f.ws.Editor().Node(n.ID)
	if !ok {
		t.Fatal("checklist node missing after load")
	}
	checked := []bool{false, true, false}
	for i, it := range got.Data.ChecklistItems {
		if it.IsChecked != checked[i] {
			t.Errorf("item %d checked = %v, want %v", i+1, it.IsChecked, checked[i])
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.ws.Editor()
	a, _ := ed.AddNode(ctx, mindmap.TypeTimeline, editor.Overrides{})
	_, _ = ed.Connect(ctx, editor.ConnectRequest{Source: "1", Target: a.ID})
	doc := ed.Document()

	if err := f.ws.Save(ctx, "Plan", doc.Nodes, doc.Edges); err != nil {
		t.Fatal(err)
	}
	if ev := f.lastEvent(t); ev.Kind != notify.KindSaved {
		t.Errorf("event = %+v", ev)
	}
	if f.ws.Current().Name != "Plan" {
		t.Error("save should name the open document")
	}

	loaded, ok := f.gw.LoadMindMap(ctx, "Plan")
	if !ok {
		t.Fatal("document not stored")
	}
	if !reflect.DeepEqual(loaded.Nodes, doc.Nodes) || !reflect.DeepEqual(loaded.Edges, doc.Edges) {
		t.Error("loaded document differs from the saved one")
	}
	if loaded.Seq != doc.Seq {
		t.Errorf("Seq = %d, want %d", loaded.Seq, doc.Seq)
	}

	// Saving again overwrites.
	if err := f.ws.Save(ctx, "Plan", doc.Nodes[:1], nil); err != nil {
		t.Fatal(err)
	}
	loaded, _ = f.gw.LoadMindMap(ctx, "Plan")
	if len(loaded.Nodes) != 1 || len(loaded.Edges) != 0 {
		t.Errorf("overwrite failed: %d nodes, %d edges", len(loaded.Nodes), len(loaded.Edges))
	}
}

func TestSaveCurrentPromptDeclined(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.ws.SaveCurrent(ctx)
	if !mcerrors.IsCancellation(err) {
		t.Fatalf("err = %v, want cancellation", err)
	}
	if len(f.rec.Events()) != 0 {
		t.Errorf("declined prompt emitted %v", f.rec.Events())
	}
	if names := f.ws.List(ctx); len(names) != 0 {
		t.Errorf("names = %v", names)
	}
}

func TestCreateNewDeclined(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := f.ws.Editor()

	if err := f.ws.CreateNew(ctx); !mcerrors.IsCancellation(err) {
		t.Fatalf("err = %v", err)
	}
	if f.ws.Editor() != before || len(f.rec.Events()) != 0 {
		t.Error("declined create must leave the workspace untouched")
	}
}

func TestLoadMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.ws.Load(ctx, "ghost")
	if !mcerrors.Is(err, mcerrors.ErrCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
	if ev := f.lastEvent(t); !ev.IsError() {
		t.Errorf("event = %+v", ev)
	}
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "Notes")
	_ = f.ws.SaveCurrent(ctx)

	if err := f.ws.Delete(ctx, "Notes"); err != nil {
		t.Fatal(err)
	}
	err := f.ws.Delete(ctx, "Notes")
	if !mcerrors.Is(err, mcerrors.ErrCodeNotFound) {
		t.Errorf("second delete err = %v, want NOT_FOUND", err)
	}
	if ev := f.lastEvent(t); !ev.IsError() {
		t.Errorf("event = %+v", ev)
	}
	if _, ok := f.gw.LoadMindMap(ctx, "Notes"); ok {
		t.Error("first delete was reversed")
	}
}

func TestDeleteCurrentResets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "Current")
	ed := f.ws.Editor()
	_, _ = ed.AddNode(ctx, mindmap.TypeTopic, editor.Overrides{})
	_ = f.ws.SaveCurrent(ctx)
	oldKeys := f.ws.Keys()

	if err := f.ws.Delete(ctx, "Current"); err != nil {
		t.Fatal(err)
	}
	doc := f.ws.Current()
	want := mindmap.InitialDocument()
	if doc.Name != "" || !reflect.DeepEqual(doc.Nodes, want.Nodes) || len(doc.Edges) != 0 {
		t.Errorf("document not reset: %+v", doc)
	}
	if oldKeys.Active() {
		t.Error("old key handler still registered after reset")
	}
	if _, err := ed.AddNode(ctx, mindmap.TypeTopic, editor.Overrides{}); err == nil {
		t.Error("old editor still accepts commands")
	}
}

func TestDeleteOtherKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc := f.ws.Current()
	_ = f.ws.Save(ctx, "Other", doc.Nodes, doc.Edges)
	_ = f.ws.Create(ctx, "Mine")

	if err := f.ws.Delete(ctx, "Other"); err != nil {
		t.Fatal(err)
	}
	if f.ws.Current().Name != "Mine" {
		t.Error("deleting another document changed the open one")
	}
}

func TestListAfterDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc := f.ws.Current()
	_ = f.ws.Save(ctx, "A", doc.Nodes, doc.Edges)
	_ = f.ws.Save(ctx, "B", doc.Nodes, doc.Edges)
	_ = f.ws.Delete(ctx, "A")

	if names := f.ws.List(ctx); !reflect.DeepEqual(names, []string{"B"}) {
		t.Errorf("List = %v, want [B]", names)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ws.Export(ctx)
	if err == nil {
		t.Fatal("export of an unsaved document should fail")
	}
	if ev := f.lastEvent(t); ev.Description != "Please save your mind map before exporting" {
		t.Errorf("event = %+v", ev)
	}

	doc := f.ws.Current()
	_ = f.ws.Save(ctx, "Ready", doc.Nodes, doc.Edges)
	got, err := f.ws.Export(ctx)
	if err != nil || got.Name != "Ready" {
		t.Errorf("Export = %+v, %v", got, err)
	}
}

func TestCreateStoresDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.ws.Create(ctx, "X"); err != nil {
		t.Fatal(err)
	}
	if ev := f.lastEvent(t); ev.Kind != notify.KindCreated {
		t.Errorf("event = %+v", ev)
	}
	if names := f.ws.List(ctx); !reflect.DeepEqual(names, []string{"X"}) {
		t.Errorf("List = %v, want [X]", names)
	}
	got, err := f.ws.Export(ctx)
	if err != nil {
		t.Fatalf("Export after Create: %v", err)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].Data.Label != "Main Idea" {
		t.Errorf("stored = %+v", got)
	}
}

func TestCreateStoreFailureKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Close()
	rec := &notify.Recorder{}
	ws := New(storage.NewGateway(kv, storage.WithLogger(log.New(&bytes.Buffer{}))),
		WithNotifier(rec), WithLogger(log.New(&bytes.Buffer{})))
	t.Cleanup(ws.Close)
	before := ws.Editor()

	err := ws.Create(ctx, "X")
	if !mcerrors.Is(err, mcerrors.ErrCodeStorageUnavailable) {
		t.Errorf("err = %v", err)
	}
	ev, _ := rec.Last()
	if !ev.IsError() || ev.Description != "Failed to create new mind map" {
		t.Errorf("event = %+v", ev)
	}
	if ws.Editor() != before || ws.Current().Name != "" {
		t.Error("failed create switched documents")
	}
}

func TestLoadNullNodeFails(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, storage.NamespaceKey, []byte(`{"bad":{"nodes":[null],"edges":[]}}`))
	rec := &notify.Recorder{}
	ws := New(storage.NewGateway(kv, storage.WithLogger(log.New(&bytes.Buffer{}))),
		WithNotifier(rec), WithLogger(log.New(&bytes.Buffer{})))
	t.Cleanup(ws.Close)

	if err := ws.Load(ctx, "bad"); !mcerrors.Is(err, mcerrors.ErrCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
	if !ws.Editor().DeleteNode(ctx, "1") {
		t.Error("editor unusable after failed load")
	}
}

func TestCreateInvalidName(t *testing.T) {
	f := newFixture(t)
	err := f.ws.Create(context.Background(), "bad\x00name")
	if !mcerrors.Is(err, mcerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
	if ev := f.lastEvent(t); !ev.IsError() {
		t.Errorf("event = %+v", ev)
	}
}

func TestKeysFollowDocumentSwitch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.ws.Keys()
	_ = f.ws.Create(ctx, "Next")

	if first.Active() {
		t.Error("previous handler should be closed")
	}
	h := f.ws.Keys()
	f.ws.Editor().SelectNode("1")
	if res := h.HandleKey(ctx, keys.Key{Ctrl: true, Name: "d"}, keys.FocusCanvas); !res.Handled {
		t.Errorf("new handler did not reach the new editor: %+v", res)
	}
}
