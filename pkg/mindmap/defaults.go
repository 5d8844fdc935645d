package mindmap

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultLabel is the label of the initial title node.
	DefaultLabel = "Main Idea"

	// Common style defaults applied to every new node.
	DefaultBackgroundColor = "white"
	DefaultStrokeColor     = "black"
	DefaultStrokeWidth     = 1.0
	DefaultOpacity         = 1.0
)

// RenderKindOf maps a nodeType to the renderer that draws it. Types without
// a dedicated renderer, including unknown and empty ones, use [KindBase].
func RenderKindOf(nodeType string) RenderKind {
	switch nodeType {
	case TypeSection:
		return KindSection
	case TypeChecklist:
		return KindChecklist
	case TypeTimeline:
		return KindTimeline
	case TypeResource:
		return KindResource
	case TypeCircle:
		return KindCircle
	case TypeRectangle:
		return KindRectangle
	case TypeSquare:
		return KindSquare
	case TypeTriangle:
		return KindTriangle
	default:
		return KindBase
	}
}

var defaultLabels = map[string]string{
	TypeTitle:     "Title",
	TypeTopic:     "Topic",
	TypeSubtopic:  "Sub Topic",
	TypeParagraph: "Paragraph",
	TypeSection:   "Section",
	TypeChecklist: "Study Checklist",
	TypeTimeline:  "Study Timeline",
	TypeResource:  "Study Resources",
}

// DefaultLabelOf returns the label a new node of nodeType starts with.
// Unknown types get the type name with its first letter upper-cased.
func DefaultLabelOf(nodeType string) string {
	if l, ok := defaultLabels[nodeType]; ok {
		return l
	}
	r, size := utf8.DecodeRuneInString(nodeType)
	if r == utf8.RuneError {
		return nodeType
	}
	return string(unicode.ToUpper(r)) + nodeType[size:]
}

// CommonDefaults returns the data every new node of nodeType starts with,
// before variant defaults and overrides are applied.
func CommonDefaults(nodeType string) NodeData {
	return NodeData{Base: Base{
		Label:           DefaultLabelOf(nodeType),
		NodeType:        nodeType,
		BackgroundColor: DefaultBackgroundColor,
		StrokeColor:     DefaultStrokeColor,
		StrokeWidth:     DefaultStrokeWidth,
		StrokeStyle:     StrokeSolid,
		FontSize:        FontXS,
		TextAlign:       AlignCenter,
		Opacity:         DefaultOpacity,
	}}
}

// DefaultVariantDataOf returns the starter payload for checklist, timeline
// and resource nodes. Only the variant fields (and NodeType) are set; other
// types return data with no variant fields. Timeline dates are derived
// from now.
func DefaultVariantDataOf(nodeType string, now time.Time) NodeData {
	d := NodeData{Base: Base{NodeType: nodeType}}
	switch nodeType {
	case TypeChecklist:
		d.ChecklistItems = []ChecklistItem{
			{ID: "1", Text: "Read chapter 1", Priority: PriorityHigh},
			{ID: "2", Text: "Complete practice problems", Priority: PriorityMedium},
			{ID: "3", Text: "Review notes", Priority: PriorityLow},
		}
	case TypeTimeline:
		nextWeek := now.Add(7 * 24 * time.Hour)
		d.StartDate = FormatDate(now)
		d.EndDate = FormatDate(nextWeek)
		d.TimelineEvents = []TimelineEvent{
			{ID: "1", Title: "Start studying", Date: FormatDate(now), IsMilestone: true},
			{ID: "2", Title: "Complete first review", Date: FormatDate(now.Add(3 * 24 * time.Hour))},
			{ID: "3", Title: "Exam day", Date: FormatDate(nextWeek), IsMilestone: true},
		}
	case TypeResource:
		d.Resources = []Resource{
			{ID: "1", Title: "Course Textbook", URL: "https://example.com/textbook", Type: ResourcePDF, Rating: 5, Tags: []string{"essential", "reference"}},
			{ID: "2", Title: "Tutorial Video", URL: "https://example.com/video", Type: ResourceVideo, Rating: 4, Tags: []string{"helpful"}},
		}
	}
	return d
}

// NewNodeData composes common defaults and variant defaults for nodeType.
func NewNodeData(nodeType string, now time.Time) NodeData {
	d := CommonDefaults(nodeType)
	v := DefaultVariantDataOf(nodeType, now)
	d.ChecklistItems = v.ChecklistItems
	d.TimelineEvents = v.TimelineEvents
	d.StartDate = v.StartDate
	d.EndDate = v.EndDate
	d.Resources = v.Resources
	return d
}

// InitialDocument returns the canonical empty document: one title node
// labelled "Main Idea" and no edges.
func InitialDocument() *Document {
	d := CommonDefaults(TypeTitle)
	d.Label = DefaultLabel
	return &Document{
		Nodes: []*Node{{
			ID:       "1",
			Type:     KindBase,
			Position: Position{X: 400, Y: 200},
			Data:     d,
		}},
		Edges: []*Edge{},
		Seq:   1,
	}
}

// =============================================================================
// Shape Styling
// =============================================================================

// DefaultShadow returns the shadow applied when shadows are switched on.
func DefaultShadow() Shadow {
	return Shadow{Enabled: true, Color: "rgba(0,0,0,0.3)", Blur: 5, OffsetX: 3, OffsetY: 3}
}

// DefaultGlow returns the glow applied when glow is switched on.
func DefaultGlow() Glow {
	return Glow{Enabled: true, Color: "#9b87f5", Blur: 8}
}

// ToggleShadow returns the shadow after flipping it on or off, keeping any
// customised color and offsets.
func ToggleShadow(s *Shadow) Shadow {
	if s == nil {
		return DefaultShadow()
	}
	out := *s
	out.Enabled = !s.Enabled
	return out
}

// ToggleGlow returns the glow after flipping it on or off.
func ToggleGlow(g *Glow) Glow {
	if g == nil {
		return DefaultGlow()
	}
	out := *g
	out.Enabled = !g.Enabled
	return out
}

// LayerForward returns the z-index one layer above z.
func LayerForward(z int) int { return z + 1 }

// LayerBackward returns the z-index one layer below z.
func LayerBackward(z int) int { return z - 1 }

// =============================================================================
// Content
// =============================================================================

// AddLink returns content with a link appended. Empty labels fall back to
// the URL.
func AddLink(c *Content, url, label string) Content {
	var out Content
	if c != nil {
		out = *c
	}
	if strings.TrimSpace(label) == "" {
		label = url
	}
	out.Links = append(append([]Link(nil), out.Links...), Link{URL: url, Label: label})
	return out
}

// RemoveLink returns content without the link at index i.
func RemoveLink(c *Content, i int) Content {
	if c == nil {
		return Content{}
	}
	out := *c
	if i < 0 || i >= len(c.Links) {
		return out
	}
	out.Links = append(append([]Link(nil), c.Links[:i]...), c.Links[i+1:]...)
	return out
}
