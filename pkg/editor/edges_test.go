package editor

import (
	"reflect"
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

func TestConnect(t *testing.T) {
	edges, e := Connect(nil, ConnectRequest{Source: "1", Target: "2", SourceHandle: "b"})
	if len(edges) != 1 || edges[0] != e {
		t.Fatalf("edges = %v", edges)
	}
	if e.ID == "" {
		t.Error("edge id is empty")
	}
	if e.Type != mindmap.HintSmoothstep || !e.Animated {
		t.Errorf("Type = %s, Animated = %v", e.Type, e.Animated)
	}
	if e.MarkerEnd == nil || e.MarkerEnd.Type != mindmap.MarkerArrowClosed || e.MarkerStart != nil {
		t.Errorf("markers = %+v / %+v", e.MarkerStart, e.MarkerEnd)
	}
	want := mindmap.EdgeData{
		StrokeStyle: mindmap.StrokeSolid,
		StrokeWidth: 1,
		StrokeColor: "#000000",
		ArrowEnd:    true,
		PathStyle:   mindmap.PathSmoothstep,
	}
	if !reflect.DeepEqual(e.Data, want) {
		t.Errorf("Data = %+v, want %+v", e.Data, want)
	}
	if e.SourceHandle != "b" {
		t.Errorf("SourceHandle = %q", e.SourceHandle)
	}

	// Self-loops and repeats are allowed and get distinct ids.
	edges, loop := Connect(edges, ConnectRequest{Source: "1", Target: "1"})
	edges, again := Connect(edges, ConnectRequest{Source: "1", Target: "2"})
	if len(edges) != 3 || loop.ID == e.ID || again.ID == e.ID {
		t.Error("expected three edges with distinct ids")
	}
}

func TestUpdateEdgePathStyle(t *testing.T) {
	tests := []struct {
		style mindmap.PathStyle
		want  mindmap.RenderHint
	}{
		{mindmap.PathStraight, mindmap.HintDefault},
		{mindmap.PathCurved, mindmap.HintBezier},
		{mindmap.PathStep, mindmap.HintStep},
		{mindmap.PathSmoothstep, mindmap.HintSmoothstep},
		{mindmap.PathLoopback, mindmap.HintBezier},
		{mindmap.PathZigzag, mindmap.HintStep},
		{mindmap.PathWavy, mindmap.HintBezier},
	}
	edges, e := Connect(nil, ConnectRequest{Source: "1", Target: "2"})
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			out, err := UpdateEdge(edges, e.ID, mindmap.Patch{"pathStyle": tt.style})
			if err != nil {
				t.Fatal(err)
			}
			if out[0].Type != tt.want {
				t.Errorf("Type = %s, want %s", out[0].Type, tt.want)
			}
			if out[0].Data.PathStyle != tt.style {
				t.Errorf("stated pathStyle lost: %s", out[0].Data.PathStyle)
			}
		})
	}
}

func TestUpdateEdgeStrokeStyle(t *testing.T) {
	tests := []struct {
		style mindmap.StrokeStyle
		dash  string
	}{
		{mindmap.StrokeSolid, ""},
		{mindmap.StrokeDashed, "5,5"},
		{mindmap.StrokeDotted, "1,5"},
	}
	edges, e := Connect(nil, ConnectRequest{Source: "1", Target: "2"})
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			out, err := UpdateEdge(edges, e.ID, mindmap.Patch{"strokeStyle": tt.style, "strokeColor": "#ff0000", "strokeWidth": 3})
			if err != nil {
				t.Fatal(err)
			}
			s := out[0].Style
			if s == nil || s.StrokeDasharray != tt.dash || s.Stroke != "#ff0000" || s.StrokeWidth != 3 {
				t.Errorf("Style = %+v", s)
			}
		})
	}
}

func TestUpdateEdgeMarkers(t *testing.T) {
	edges, e := Connect(nil, ConnectRequest{Source: "1", Target: "2"})
	out, _ := UpdateEdge(edges, e.ID, mindmap.Patch{"arrowStart": true, "arrowEnd": false, "label": "depends on"})
	got := out[0]
	if got.MarkerStart == nil || got.MarkerEnd != nil {
		t.Errorf("markers = %+v / %+v", got.MarkerStart, got.MarkerEnd)
	}
	if got.Data.Label != "depends on" {
		t.Errorf("Label = %q", got.Data.Label)
	}
	if edges[0].MarkerEnd == nil {
		t.Error("input edge was mutated")
	}
}

func TestUpdateEdgeUnknown(t *testing.T) {
	edges, _ := Connect(nil, ConnectRequest{Source: "1", Target: "2"})
	out, err := UpdateEdge(edges, "nope", mindmap.Patch{"pathStyle": "step"})
	if err != nil || !reflect.DeepEqual(out, edges) {
		t.Error("unknown id must be a no-op")
	}
}

func TestRemoveIncidentEdges(t *testing.T) {
	var edges []*mindmap.Edge
	edges, _ = Connect(edges, ConnectRequest{Source: "1", Target: "2"})
	edges, _ = Connect(edges, ConnectRequest{Source: "2", Target: "3"})
	edges, keep := Connect(edges, ConnectRequest{Source: "1", Target: "3"})

	out := RemoveIncidentEdges(edges, "2")
	if len(out) != 1 || out[0] != keep {
		t.Errorf("out = %v", out)
	}
	if len(edges) != 3 {
		t.Error("input was modified")
	}
	if same := RemoveIncidentEdges(edges, "9"); len(same) != 3 {
		t.Error("no incident edges should be a no-op")
	}
}

func TestEdgeSelection(t *testing.T) {
	var s EdgeSelection
	if got := s.Toggle("a"); got != "a" {
		t.Errorf("Toggle(a) = %q", got)
	}
	if got := s.Toggle("b"); got != "b" {
		t.Errorf("Toggle(b) = %q, selection should move", got)
	}
	if got := s.Toggle("b"); got != "" {
		t.Errorf("second Toggle(b) = %q, want cleared", got)
	}

	var edges []*mindmap.Edge
	edges, a := Connect(edges, ConnectRequest{Source: "1", Target: "2"})
	edges, b := Connect(edges, ConnectRequest{Source: "2", Target: "1"})
	s.Toggle(b.ID)
	marked := s.Mark(edges)
	if marked[0] != a || !marked[1].Selected {
		t.Error("only the selected edge should change")
	}
	s.Clear()
	if cleared := s.Mark(marked); cleared[1].Selected {
		t.Error("Clear should unmark the edge")
	}
}
