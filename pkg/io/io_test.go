package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

func sampleDoc() *mindmap.Document {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	doc := mindmap.InitialDocument()
	doc.Name = "Exam Prep"

	list := mindmap.NewNodeData(mindmap.TypeChecklist, now)
	timeline := mindmap.NewNodeData(mindmap.TypeTimeline, now)
	timeline.Content = &mindmap.Content{Title: "Plan", Links: []mindmap.Link{{URL: "https://go.dev", Label: "Go"}}}
	doc.Nodes = append(doc.Nodes,
		&mindmap.Node{ID: "2", Type: mindmap.KindChecklist, Position: mindmap.Position{X: 10.5, Y: 20}, Data: list},
		&mindmap.Node{ID: "3", Type: mindmap.KindTimeline, Position: mindmap.Position{X: 300, Y: 40}, Data: timeline},
	)
	doc.Seq = 3

	e := &mindmap.Edge{ID: "e1", Source: "1", Target: "2", Animated: true, Data: mindmap.DefaultEdgeData()}
	e.Data.StrokeStyle = mindmap.StrokeDashed
	e.Apply()
	doc.Edges = []*mindmap.Edge{e}
	return doc
}

func TestJSONRoundTrip(t *testing.T) {
	doc := sampleDoc()
	var buf bytes.Buffer
	if err := WriteJSON(doc, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, doc)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	doc := sampleDoc()
	var buf bytes.Buffer
	if err := WriteYAML(doc, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "nodeType: checklist") {
		t.Errorf("expected block YAML, got:\n%s", out)
	}

	got, err := ReadYAML(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 3 || len(got.Edges) != 1 || got.Seq != 3 {
		t.Fatalf("got %d nodes, %d edges, seq %d", len(got.Nodes), len(got.Edges), got.Seq)
	}
	for i := range doc.Nodes {
		if !got.Nodes[i].Data.Equal(doc.Nodes[i].Data) {
			t.Errorf("node %s data differs after YAML round trip", doc.Nodes[i].ID)
		}
		if got.Nodes[i].Position != doc.Nodes[i].Position {
			t.Errorf("node %s position = %v", doc.Nodes[i].ID, got.Nodes[i].Position)
		}
	}
	if got.Edges[0].Style.StrokeDasharray != "5,5" {
		t.Errorf("edge style = %+v", got.Edges[0].Style)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDoc()

	jsonPath := filepath.Join(dir, "doc.json")
	if err := ExportJSON(doc, jsonPath); err != nil {
		t.Fatal(err)
	}
	if got, err := ImportJSON(jsonPath); err != nil || got.Name != doc.Name {
		t.Errorf("ImportJSON = %v, %v", got, err)
	}

	yamlPath := filepath.Join(dir, "doc.yaml")
	if err := ExportYAML(doc, yamlPath); err != nil {
		t.Fatal(err)
	}
	if got, err := ImportYAML(yamlPath); err != nil || len(got.Nodes) != 3 {
		t.Errorf("ImportYAML = %v, %v", got, err)
	}

	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReadJSONValidation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code mcerrors.Code
	}{
		{"malformed", `{"nodes": [`, mcerrors.ErrCodeInvalidFormat},
		{"duplicate node", `{"nodes":[{"id":"1","data":{}},{"id":"1","data":{}}]}`, mcerrors.ErrCodeInvalidInput},
		{"empty node id", `{"nodes":[{"id":"","data":{}}]}`, mcerrors.ErrCodeInvalidInput},
		{"null node", `{"nodes":[null]}`, mcerrors.ErrCodeInvalidInput},
		{"duplicate edge", `{"nodes":[],"edges":[{"id":"e","data":{}},{"id":"e","data":{}}]}`, mcerrors.ErrCodeInvalidInput},
		{"bad name", `{"name":"a\u0007b","nodes":[]}`, mcerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !mcerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadJSONRecomputesEdgeType(t *testing.T) {
	in := `{"name":"x","nodes":[{"id":"1","data":{"nodeType":"topic"}}],
		"edges":[{"id":"e","source":"1","target":"1","type":"default","data":{"pathStyle":"wavy","arrowStart":true}}]}`
	doc, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	e := doc.Edges[0]
	if e.Type != mindmap.HintBezier || e.MarkerStart == nil || e.MarkerEnd != nil {
		t.Errorf("edge = %+v", e)
	}
	if doc.Seq != 1 {
		t.Errorf("Seq = %d, want 1", doc.Seq)
	}
}
