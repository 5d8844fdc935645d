package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// DOTOptions configures DOT generation.
type DOTOptions struct {
	// Pinned adds pos="x,y!" to every node so layouts that honour fixed
	// positions (neato, fdp) keep the canvas arrangement. dot ignores it.
	Pinned bool
}

// shapes maps a render kind to a Graphviz node shape.
var shapes = map[mindmap.RenderKind]string{
	mindmap.KindBase:      "box",
	mindmap.KindSection:   "box",
	mindmap.KindChecklist: "note",
	mindmap.KindTimeline:  "cds",
	mindmap.KindResource:  "folder",
	mindmap.KindCircle:    "circle",
	mindmap.KindRectangle: "box",
	mindmap.KindSquare:    "square",
	mindmap.KindTriangle:  "triangle",
}

// DOT converts a view to Graphviz DOT source. The result can be rendered
// with [SVG] or saved for external Graphviz tools.
func DOT(v *View, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=normal];\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range v.Nodes {
		attrs := nodeAttrs(n)
		if opts.Pinned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%g,%g!\"", n.Position.X, -n.Position.Y))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Label returns the text drawn for a node. Checklists show their progress.
func Label(n *mindmap.Node) string {
	d := n.Data
	label := d.Label
	if d.NodeType == mindmap.TypeChecklist && len(d.ChecklistItems) > 0 {
		label = fmt.Sprintf("%s\n%d%% done", label, mindmap.ChecklistProgress(d.ChecklistItems))
	}
	if d.HasCheckbox {
		box := "[ ] "
		if d.IsChecked {
			box = "[x] "
		}
		label = box + label
	}
	return label
}

func nodeAttrs(n *mindmap.Node) []string {
	d := n.Data
	shape, ok := shapes[n.Type]
	if !ok {
		shape = shapes[mindmap.KindBase]
	}

	style := []string{"filled"}
	if n.Type == mindmap.KindBase || n.Type == mindmap.KindSection {
		style = append(style, "rounded")
	}
	if s := lineStyle(d.StrokeStyle); s != "" {
		style = append(style, s)
	}

	attrs := []string{
		"label=" + quote(Label(n)),
		"shape=" + shape,
		"style=" + quote(strings.Join(style, ",")),
	}
	if d.BackgroundColor != "" {
		attrs = append(attrs, "fillcolor="+quote(d.BackgroundColor))
	}
	if d.StrokeColor != "" {
		attrs = append(attrs, "color="+quote(d.StrokeColor))
	}
	if d.StrokeWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%g", d.StrokeWidth))
	}
	if d.HasContent() {
		attrs = append(attrs, "tooltip="+quote(d.Content.Description))
	}
	return attrs
}

func edgeAttrs(e *mindmap.Edge) []string {
	d := e.Data
	var attrs []string
	switch {
	case d.ArrowStart && d.ArrowEnd:
		attrs = append(attrs, "dir=both")
	case d.ArrowStart:
		attrs = append(attrs, "dir=back")
	case d.ArrowEnd:
		attrs = append(attrs, "dir=forward")
	default:
		attrs = append(attrs, "dir=none")
	}
	if d.Label != "" {
		attrs = append(attrs, "label="+quote(d.Label))
	}
	if d.StrokeColor != "" {
		attrs = append(attrs, "color="+quote(d.StrokeColor))
	}
	if d.StrokeWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%g", d.StrokeWidth))
	}
	if s := lineStyle(d.StrokeStyle); s != "" {
		attrs = append(attrs, "style="+s)
	}
	return attrs
}

func lineStyle(s mindmap.StrokeStyle) string {
	switch s {
	case mindmap.StrokeDashed:
		return "dashed"
	case mindmap.StrokeDotted:
		return "dotted"
	default:
		return ""
	}
}

// quote writes s as a DOT string literal. Unlike %q it leaves non-ASCII
// text alone, which Graphviz reads as UTF-8.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
