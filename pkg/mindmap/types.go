package mindmap

import (
	"encoding/json"
	"strconv"
)

// =============================================================================
// Enumerations
// =============================================================================

// RenderKind selects which renderer draws a node.
type RenderKind string

// Render kinds.
const (
	KindBase      RenderKind = "base"
	KindSection   RenderKind = "section"
	KindChecklist RenderKind = "checklist"
	KindTimeline  RenderKind = "timeline"
	KindResource  RenderKind = "resource"
	KindCircle    RenderKind = "circle"
	KindRectangle RenderKind = "rectangle"
	KindSquare    RenderKind = "square"
	KindTriangle  RenderKind = "triangle"
)

// Node types. The set is open: unknown types render as [KindBase].
const (
	TypeTitle     = "title"
	TypeTopic     = "topic"
	TypeSubtopic  = "subtopic"
	TypeParagraph = "paragraph"
	TypeSection   = "section"
	TypeChecklist = "checklist"
	TypeTimeline  = "timeline"
	TypeResource  = "resource"
	TypeCircle    = "circle"
	TypeRectangle = "rectangle"
	TypeSquare    = "square"
	TypeTriangle  = "triangle"
)

// StrokeStyle is the line style of a node border or edge.
type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

// FontSize is a relative label size.
type FontSize string

const (
	FontXS FontSize = "xs"
	FontS  FontSize = "s"
	FontM  FontSize = "m"
	FontL  FontSize = "l"
	FontXL FontSize = "xl"
)

// TextAlign is the horizontal label alignment.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// LegendPosition places a node legend.
type LegendPosition string

const (
	LegendLeftTop     LegendPosition = "left-top"
	LegendLeftCenter  LegendPosition = "left-center"
	LegendLeftBottom  LegendPosition = "left-bottom"
	LegendRightTop    LegendPosition = "right-top"
	LegendRightCenter LegendPosition = "right-center"
	LegendRightBottom LegendPosition = "right-bottom"
)

// LegendPositions lists all legend positions in display order.
var LegendPositions = []LegendPosition{
	LegendLeftTop, LegendLeftCenter, LegendLeftBottom,
	LegendRightTop, LegendRightCenter, LegendRightBottom,
}

// =============================================================================
// Document
// =============================================================================

// Document is a named mind map. An empty Name marks an unsaved document.
type Document struct {
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	// Seq is the last node id handed out by NextNodeID. It is persisted
	// with the document so ids stay unique across deletions and reloads.
	Seq int `json:"seq,omitempty"`
}

// UnmarshalJSON decodes a document. Documents saved without a counter
// resume from their highest numeric node id.
func (d *Document) UnmarshalJSON(b []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = Document(p)
	if d.Nodes == nil {
		d.Nodes = []*Node{}
	}
	if d.Edges == nil {
		d.Edges = []*Edge{}
	}
	if m := maxNumericID(d.Nodes); m > d.Seq {
		d.Seq = m
	}
	return nil
}

// NextNodeID allocates a node id that is unused in the document.
func (d *Document) NextNodeID() string {
	if m := maxNumericID(d.Nodes); m > d.Seq {
		d.Seq = m
	}
	d.Seq++
	return strconv.Itoa(d.Seq)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Name:  d.Name,
		Nodes: make([]*Node, len(d.Nodes)),
		Edges: make([]*Edge, len(d.Edges)),
		Seq:   d.Seq,
	}
	for i, n := range d.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range d.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

func maxNumericID(nodes []*Node) int {
	m := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if v, err := strconv.Atoi(n.ID); err == nil && v > m {
			m = v
		}
	}
	return m
}

// =============================================================================
// Node
// =============================================================================

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset returns p moved by (dx, dy).
func (p Position) Offset(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Node is a positioned, typed element of a mind map.
type Node struct {
	ID       string     `json:"id"`
	Type     RenderKind `json:"type"`
	Position Position   `json:"position"`
	Data     NodeData   `json:"data"`
	Selected bool       `json:"selected,omitempty"`
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Data = n.Data.Clone()
	return &c
}

// FindNode returns the index and node with the given id, or (-1, nil).
func FindNode(nodes []*Node, id string) (int, *Node) {
	for i, n := range nodes {
		if n.ID == id {
			return i, n
		}
	}
	return -1, nil
}

// SelectedNodes returns the nodes currently marked selected.
func SelectedNodes(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Selected {
			out = append(out, n)
		}
	}
	return out
}
