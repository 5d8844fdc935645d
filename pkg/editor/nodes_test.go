package editor

import (
	"context"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

var testNow = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Now:  func() time.Time { return testNow },
		Rand: rand.New(rand.NewPCG(1, 2)),
	}
}

// memClipboard is an in-memory clipboard slot.
type memClipboard struct {
	data    []byte
	ok      bool
	failing bool
}

func (c *memClipboard) ReadClipboard(context.Context) ([]byte, bool) {
	if c.failing {
		return nil, false
	}
	return c.data, c.ok
}

func (c *memClipboard) WriteClipboard(_ context.Context, data []byte) bool {
	if c.failing {
		return false
	}
	c.data, c.ok = data, true
	return true
}

func seedNodes(t *testing.T, types ...string) []*mindmap.Node {
	t.Helper()
	nodes := mindmap.InitialDocument().Nodes
	opts := testOptions()
	for _, typ := range types {
		var err error
		nodes, _, err = AddNode(nodes, typ, Overrides{}, opts)
		if err != nil {
			t.Fatalf("AddNode(%s): %v", typ, err)
		}
	}
	return nodes
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		nodeType string
		kind     mindmap.RenderKind
		label    string
	}{
		{mindmap.TypeTopic, mindmap.KindBase, "Topic"},
		{mindmap.TypeChecklist, mindmap.KindChecklist, "Study Checklist"},
		{mindmap.TypeTimeline, mindmap.KindTimeline, "Study Timeline"},
		{mindmap.TypeCircle, mindmap.KindCircle, "Circle"},
		{"mystery", mindmap.KindBase, "Mystery"},
	}
	for _, tt := range tests {
		t.Run(tt.nodeType, func(t *testing.T) {
			nodes := mindmap.InitialDocument().Nodes
			out, n, err := AddNode(nodes, tt.nodeType, Overrides{}, testOptions())
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != 2 || out[1] != n {
				t.Fatalf("node not appended: %v", out)
			}
			if out[0] != nodes[0] {
				t.Error("existing node lost its identity")
			}
			if n.ID != "2" {
				t.Errorf("ID = %q, want 2", n.ID)
			}
			if n.Type != tt.kind {
				t.Errorf("Type = %s, want %s", n.Type, tt.kind)
			}
			if n.Data.Label != tt.label || n.Data.NodeType != tt.nodeType {
				t.Errorf("Data = %+v", n.Data.Base)
			}
			if n.Data.BackgroundColor != "white" || n.Data.StrokeStyle != mindmap.StrokeSolid || n.Data.FontSize != mindmap.FontXS {
				t.Errorf("common defaults missing: %+v", n.Data.Base)
			}
			p := n.Position
			if p.X < 0 || p.X >= 500 || p.Y < 0 || p.Y >= 500 {
				t.Errorf("Position = %v, want within [0,500)", p)
			}
		})
	}
}

func TestAddNodeOverrides(t *testing.T) {
	pos := mindmap.Position{X: 10, Y: 20}
	_, n, err := AddNode(nil, mindmap.TypeChecklist, Overrides{
		Data:     mindmap.Patch{"label": "Week 1", "backgroundColor": "#fef3c7", "nodeType": "topic"},
		Position: &pos,
	}, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if n.Position != pos {
		t.Errorf("Position = %v, want %v", n.Position, pos)
	}
	if n.Data.Label != "Week 1" || n.Data.BackgroundColor != "#fef3c7" {
		t.Errorf("overrides not applied: %+v", n.Data.Base)
	}
	if n.Data.NodeType != mindmap.TypeChecklist {
		t.Errorf("NodeType = %s, overrides must not change it", n.Data.NodeType)
	}
	if len(n.Data.ChecklistItems) != 3 {
		t.Errorf("variant defaults missing: %v", n.Data.ChecklistItems)
	}
}

func TestAddNodeEmptyType(t *testing.T) {
	nodes := seedNodes(t)
	out, n, err := AddNode(nodes, "", Overrides{}, testOptions())
	if err != nil || n != nil {
		t.Fatalf("AddNode(\"\") = %v, %v", n, err)
	}
	if !reflect.DeepEqual(out, nodes) {
		t.Error("empty type must return input unchanged")
	}
}

func TestAddNodeInvalidOverride(t *testing.T) {
	_, _, err := AddNode(nil, mindmap.TypeTopic, Overrides{Data: mindmap.Patch{"label": 42}}, testOptions())
	if !mcerrors.Is(err, mcerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestAddThenDeleteRestores(t *testing.T) {
	for _, typ := range []string{mindmap.TypeTopic, mindmap.TypeResource, mindmap.TypeTriangle} {
		t.Run(typ, func(t *testing.T) {
			nodes := seedNodes(t, mindmap.TypeTopic)
			added, n, err := AddNode(nodes, typ, Overrides{}, testOptions())
			if err != nil {
				t.Fatal(err)
			}
			restored, removed := DeleteNode(added, n.ID)
			if removed != n {
				t.Error("DeleteNode returned the wrong node")
			}
			if !reflect.DeepEqual(restored, nodes) {
				t.Error("add then delete did not restore the collection")
			}
		})
	}
}

func TestDeleteNodeUnknown(t *testing.T) {
	nodes := seedNodes(t, mindmap.TypeTopic)
	out, n := DeleteNode(nodes, "99")
	if n != nil || !reflect.DeepEqual(out, nodes) {
		t.Error("unknown id should be a no-op")
	}
}

func TestUpdateNodeData(t *testing.T) {
	nodes := seedNodes(t, mindmap.TypeTopic, mindmap.TypeSubtopic)

	t.Run("merge", func(t *testing.T) {
		out, err := UpdateNodeData(nodes, "2", mindmap.Patch{"label": "Renamed", "isChecked": true})
		if err != nil {
			t.Fatal(err)
		}
		if out[0] != nodes[0] || out[2] != nodes[2] {
			t.Error("unaffected nodes must keep identity")
		}
		if out[1] == nodes[1] {
			t.Error("affected node must be a new value")
		}
		if out[1].Data.Label != "Renamed" || !out[1].Data.IsChecked {
			t.Errorf("patch not applied: %+v", out[1].Data.Base)
		}
		if out[1].Data.BackgroundColor != "white" {
			t.Error("shallow merge dropped untouched fields")
		}
		if nodes[1].Data.Label != "Topic" {
			t.Error("input was mutated")
		}
	})

	t.Run("empty patch", func(t *testing.T) {
		out, err := UpdateNodeData(nodes, "2", mindmap.Patch{})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(out, nodes) {
			t.Error("empty patch must be value-equal to input")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		out, err := UpdateNodeData(nodes, "nope", mindmap.Patch{"label": "x"})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(out, nodes) {
			t.Error("unknown id must be a no-op")
		}
	})

	t.Run("nodeType is immutable", func(t *testing.T) {
		out, _ := UpdateNodeData(nodes, "2", mindmap.Patch{"nodeType": "checklist"})
		if out[1].Data.NodeType != mindmap.TypeTopic {
			t.Errorf("NodeType = %s", out[1].Data.NodeType)
		}
	})

	t.Run("unknown keys preserved", func(t *testing.T) {
		out, _ := UpdateNodeData(nodes, "2", mindmap.Patch{"customFlag": "on"})
		out, _ = UpdateNodeData(out, "2", mindmap.Patch{"label": "again"})
		if string(out[1].Data.Extra["customFlag"]) != `"on"` {
			t.Errorf("Extra = %v", out[1].Data.Extra)
		}
	})
}

func TestMoveNode(t *testing.T) {
	nodes := seedNodes(t, mindmap.TypeTopic)
	out := MoveNode(nodes, "2", mindmap.Position{X: 1, Y: 2})
	if out[1].Position != (mindmap.Position{X: 1, Y: 2}) || out[0] != nodes[0] {
		t.Errorf("MoveNode = %+v", out[1])
	}
	if same := MoveNode(nodes, "nope", mindmap.Position{}); !reflect.DeepEqual(same, nodes) {
		t.Error("unknown id must be a no-op")
	}
}

func TestCopyPasteNode(t *testing.T) {
	ctx := context.Background()
	nodes := seedNodes(t, mindmap.TypeChecklist)
	nodes, _ = UpdateNodeData(nodes, "2", mindmap.Patch{"label": "Exam tasks", "rotation": 15})
	clip := &memClipboard{}

	src, err := CopyNode(ctx, nodes, "2", clip)
	if err != nil || src == nil {
		t.Fatalf("CopyNode = %v, %v", src, err)
	}

	t.Run("as new node", func(t *testing.T) {
		opts := testOptions()
		opts.Rand = rand.New(rand.NewPCG(7, 11))
		out, n, err := PasteNode(ctx, nodes, "", clip, opts)
		if err != nil || n == nil {
			t.Fatalf("PasteNode = %v, %v", n, err)
		}
		if len(out) != len(nodes)+1 || n.ID != "3" {
			t.Fatalf("expected a new node with id 3, got %s", n.ID)
		}
		if !n.Data.Equal(src.Data) {
			t.Errorf("pasted data differs:\n got  %+v\n want %+v", n.Data, src.Data)
		}
		if n.Type != mindmap.KindChecklist {
			t.Errorf("Type = %s", n.Type)
		}
		if n.Position == src.Position {
			t.Error("pasted position should be independent of the source")
		}
	})

	t.Run("into target", func(t *testing.T) {
		out, n, err := PasteNode(ctx, nodes, "1", clip, testOptions())
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != len(nodes) || n != out[0] {
			t.Fatal("paste into target must not add a node")
		}
		if n.Data.Label != "Exam tasks" || n.Data.Rotation != 15 {
			t.Errorf("clipboard not merged: %+v", n.Data.Base)
		}
		if n.Data.NodeType != mindmap.TypeTitle {
			t.Errorf("target nodeType changed to %s", n.Data.NodeType)
		}
		if _, ok := n.Data.Extra["checklistItems"]; !ok {
			t.Error("foreign variant keys should be kept in Extra")
		}
	})

	t.Run("unknown target adds", func(t *testing.T) {
		out, n, _ := PasteNode(ctx, nodes, "42", clip, testOptions())
		if n == nil || len(out) != len(nodes)+1 {
			t.Error("unknown target should fall back to adding a node")
		}
	})
}

func TestPasteNodeClipboardStates(t *testing.T) {
	ctx := context.Background()
	nodes := seedNodes(t, mindmap.TypeTopic)

	tests := []struct {
		name      string
		clip      *memClipboard
		wantType  string
		malformed bool
		noop      bool
	}{
		{name: "empty", clip: &memClipboard{}, noop: true},
		{name: "null", clip: &memClipboard{data: []byte("null"), ok: true}, noop: true},
		{name: "not json", clip: &memClipboard{data: []byte("{oops"), ok: true}, malformed: true},
		{name: "array", clip: &memClipboard{data: []byte("[1,2]"), ok: true}, malformed: true},
		{name: "bad field", clip: &memClipboard{data: []byte(`{"label":7}`), ok: true}, malformed: true},
		{name: "bad nodeType", clip: &memClipboard{data: []byte(`{"nodeType":1}`), ok: true}, malformed: true},
		{name: "no nodeType", clip: &memClipboard{data: []byte(`{"label":"Loose"}`), ok: true}, wantType: mindmap.TypeTopic},
		{name: "store failure", clip: &memClipboard{failing: true}, noop: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n, err := PasteNode(ctx, nodes, "", tt.clip, testOptions())
			switch {
			case tt.malformed:
				if !mcerrors.Is(err, mcerrors.ErrCodeMalformedClipboard) {
					t.Errorf("err = %v, want MALFORMED_CLIPBOARD", err)
				}
				if !reflect.DeepEqual(out, nodes) {
					t.Error("malformed clipboard must not change nodes")
				}
			case tt.noop:
				if err != nil || n != nil || !reflect.DeepEqual(out, nodes) {
					t.Errorf("expected no-op, got %v, %v", n, err)
				}
			default:
				if err != nil || n == nil {
					t.Fatalf("PasteNode = %v, %v", n, err)
				}
				if n.Data.NodeType != tt.wantType {
					t.Errorf("NodeType = %s, want %s", n.Data.NodeType, tt.wantType)
				}
			}
		})
	}
}

func TestCopyNodeEdgeCases(t *testing.T) {
	ctx := context.Background()
	nodes := seedNodes(t)

	clip := &memClipboard{}
	if n, err := CopyNode(ctx, nodes, "missing", clip); n != nil || err != nil || clip.ok {
		t.Error("unknown id must not touch the clipboard")
	}
	if _, err := CopyNode(ctx, nodes, "1", &memClipboard{failing: true}); !mcerrors.Is(err, mcerrors.ErrCodeStorageUnavailable) {
		t.Errorf("err = %v, want STORAGE_UNAVAILABLE", err)
	}
}

func TestDuplicateNode(t *testing.T) {
	for _, typ := range []string{mindmap.TypeTopic, mindmap.TypeTimeline, mindmap.TypeResource, mindmap.TypeSquare} {
		t.Run(typ, func(t *testing.T) {
			nodes := seedNodes(t, typ)
			src := nodes[1]
			out, n, err := DuplicateNode(nodes, src.ID, testOptions())
			if err != nil || n == nil {
				t.Fatalf("DuplicateNode = %v, %v", n, err)
			}
			if len(out) != 3 || n.ID == src.ID {
				t.Fatalf("duplicate id = %s", n.ID)
			}
			if !n.Data.Equal(src.Data) {
				t.Errorf("duplicate data differs:\n got  %+v\n want %+v", n.Data, src.Data)
			}
			want := mindmap.Position{X: src.Position.X + 50, Y: src.Position.Y + 50}
			if n.Position != want {
				t.Errorf("Position = %v, want %v", n.Position, want)
			}
			if n.Type != src.Type {
				t.Errorf("Type = %s, want %s", n.Type, src.Type)
			}
		})
	}

	nodes := seedNodes(t)
	if out, n, _ := DuplicateNode(nodes, "9", testOptions()); n != nil || !reflect.DeepEqual(out, nodes) {
		t.Error("unknown id must be a no-op")
	}
}

func TestSelectNode(t *testing.T) {
	nodes := seedNodes(t, mindmap.TypeTopic, mindmap.TypeTopic)

	out := SelectNode(nodes, "2")
	if sel := mindmap.SelectedNodes(out); len(sel) != 1 || sel[0].ID != "2" {
		t.Fatalf("selected = %v", sel)
	}
	if out[0] != nodes[0] || out[2] != nodes[2] {
		t.Error("unchanged nodes must keep identity")
	}

	out = SetSelected(out, "3", true)
	if len(mindmap.SelectedNodes(out)) != 2 {
		t.Error("SetSelected should extend the selection")
	}
	out = SelectNode(out, "")
	if len(mindmap.SelectedNodes(out)) != 0 {
		t.Error("empty id should clear the selection")
	}
}

func TestNodeIDsAreNotReused(t *testing.T) {
	doc := mindmap.InitialDocument()
	opts := testOptions()
	opts.NextID = doc.NextNodeID

	doc.Nodes, _, _ = AddNode(doc.Nodes, mindmap.TypeTopic, Overrides{}, opts)
	doc.Nodes, _, _ = AddNode(doc.Nodes, mindmap.TypeTopic, Overrides{}, opts)
	doc.Nodes, _ = DeleteNode(doc.Nodes, "2")
	_, n, _ := AddNode(doc.Nodes, mindmap.TypeTopic, Overrides{}, opts)
	if n.ID != "4" {
		t.Errorf("ID = %s, want 4", n.ID)
	}
}
