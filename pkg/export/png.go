package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/mindcanvas/pkg/fonts"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// PNGOptions configures raster export.
type PNGOptions struct {
	// Scale multiplies every canvas coordinate. Zero means 1.
	Scale float64
	// Padding is the margin around the drawing in canvas units.
	Padding float64
	// Font is the family used for labels. Empty means mono.
	Font fonts.Family
	// FontSize is the label size in points before scaling. Zero means 14.
	FontSize float64
}

func (o PNGOptions) withDefaults() PNGOptions {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Padding <= 0 {
		o.Padding = 40
	}
	if o.Font == "" {
		o.Font = fonts.Mono
	}
	if o.FontSize <= 0 {
		o.FontSize = 14
	}
	return o
}

// Size is a node's footprint on the canvas.
type Size struct{ W, H float64 }

// SizeOf returns the drawn size of a node. Positions are the top-left
// corner, so the node covers [X, X+W] x [Y, Y+H].
func SizeOf(n *mindmap.Node) Size {
	d := n.Data
	switch n.Type {
	case mindmap.KindCircle, mindmap.KindSquare, mindmap.KindTriangle:
		return Size{100, 100}
	case mindmap.KindRectangle:
		return Size{160, 100}
	case mindmap.KindSection:
		return Size{300, 200}
	case mindmap.KindChecklist:
		return Size{220, 50 + 22*float64(len(d.ChecklistItems))}
	case mindmap.KindTimeline:
		return Size{260, 50 + 22*float64(len(d.TimelineEvents))}
	case mindmap.KindResource:
		return Size{240, 50 + 22*float64(len(d.Resources))}
	default:
		return Size{150, 50}
	}
}

// PNG draws the view at its canvas positions and writes a PNG image to w.
// Unlike [SVG] it keeps the arrangement the user made.
func PNG(w io.Writer, v *View, opts PNGOptions) error {
	opts = opts.withDefaults()
	face, err := fonts.Face(opts.Font, opts.FontSize*opts.Scale)
	if err != nil {
		return err
	}

	minX, minY, maxX, maxY := v.Bounds()
	for _, n := range v.Nodes {
		s := SizeOf(n)
		maxX = max(maxX, n.Position.X+s.W)
		maxY = max(maxY, n.Position.Y+s.H)
	}
	originX, originY := minX-opts.Padding, minY-opts.Padding
	width := int(math.Ceil((maxX - originX + opts.Padding) * opts.Scale))
	height := int(math.Ceil((maxY - originY + opts.Padding) * opts.Scale))

	dc := gg.NewContext(max(width, 1), max(height, 1))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(face)
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-originX, -originY)

	nodes := make(map[string]*mindmap.Node, len(v.Nodes))
	for _, n := range v.Nodes {
		nodes[n.ID] = n
	}
	for _, e := range v.Edges {
		drawEdge(dc, e, nodes[e.Source], nodes[e.Target])
	}
	for _, n := range v.Nodes {
		drawNode(dc, n)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func center(n *mindmap.Node) (float64, float64) {
	s := SizeOf(n)
	return n.Position.X + s.W/2, n.Position.Y + s.H/2
}

// borderPoint returns where the ray from n's center towards (tx, ty)
// leaves n's bounding box.
func borderPoint(n *mindmap.Node, tx, ty float64) (float64, float64) {
	cx, cy := center(n)
	s := SizeOf(n)
	dx, dy := tx-cx, ty-cy
	if dx == 0 && dy == 0 {
		return cx, cy
	}
	t := math.Inf(1)
	if dx != 0 {
		t = min(t, (s.W/2)/math.Abs(dx))
	}
	if dy != 0 {
		t = min(t, (s.H/2)/math.Abs(dy))
	}
	return cx + dx*t, cy + dy*t
}

func drawEdge(dc *gg.Context, e *mindmap.Edge, from, to *mindmap.Node) {
	d := e.Data
	tx, ty := center(to)
	fx, fy := center(from)
	x1, y1 := borderPoint(from, tx, ty)
	x2, y2 := borderPoint(to, fx, fy)

	dc.SetColor(parseColor(d.StrokeColor, color.Black))
	dc.SetLineWidth(max(d.StrokeWidth, 1))
	setDash(dc, d.StrokeStyle)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	dc.SetDash()

	if d.ArrowEnd {
		drawArrow(dc, x1, y1, x2, y2)
	}
	if d.ArrowStart {
		drawArrow(dc, x2, y2, x1, y1)
	}
	if d.Label != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(d.Label, (x1+x2)/2, (y1+y2)/2-6, 0.5, 0.5)
	}
}

// drawArrow fills a closed arrowhead pointing from (fx, fy) at (tx, ty).
func drawArrow(dc *gg.Context, fx, fy, tx, ty float64) {
	const size = 10
	angle := math.Atan2(ty-fy, tx-fx)
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-size*math.Cos(angle-math.Pi/6), ty-size*math.Sin(angle-math.Pi/6))
	dc.LineTo(tx-size*math.Cos(angle+math.Pi/6), ty-size*math.Sin(angle+math.Pi/6))
	dc.ClosePath()
	dc.Fill()
}

func drawNode(dc *gg.Context, n *mindmap.Node) {
	d := n.Data
	s := SizeOf(n)
	x, y := n.Position.X, n.Position.Y

	shape := func() {
		switch n.Type {
		case mindmap.KindCircle:
			dc.DrawCircle(x+s.W/2, y+s.H/2, s.W/2)
		case mindmap.KindTriangle:
			dc.MoveTo(x+s.W/2, y)
			dc.LineTo(x+s.W, y+s.H)
			dc.LineTo(x, y+s.H)
			dc.ClosePath()
		case mindmap.KindSquare, mindmap.KindRectangle:
			dc.DrawRectangle(x, y, s.W, s.H)
		default:
			dc.DrawRoundedRectangle(x, y, s.W, s.H, 6)
		}
	}

	if d.Shadow != nil && d.Shadow.Enabled {
		dc.Push()
		dc.Translate(d.Shadow.OffsetX, d.Shadow.OffsetY)
		shape()
		dc.SetColor(parseColor(d.Shadow.Color, color.Gray{Y: 128}))
		dc.Fill()
		dc.Pop()
	}

	shape()
	dc.SetColor(withOpacity(parseColor(d.BackgroundColor, color.White), d.Opacity))
	dc.FillPreserve()
	dc.SetColor(parseColor(d.StrokeColor, color.Black))
	dc.SetLineWidth(max(d.StrokeWidth, 1))
	setDash(dc, d.StrokeStyle)
	dc.Stroke()
	dc.SetDash()

	if d.Legend != nil && d.Legend.Enabled {
		dc.SetColor(parseColor(d.Legend.Color, color.Black))
		lx := x - 10
		if strings.HasPrefix(string(d.Legend.Position), "right") {
			lx = x + s.W + 4
		}
		dc.DrawRectangle(lx, y+4, 6, 6)
		dc.Fill()
	}

	dc.SetColor(color.Black)
	lines := bodyLines(n)
	if len(lines) == 0 {
		dc.DrawStringAnchored(Label(n), x+s.W/2, y+s.H/2, 0.5, 0.5)
		return
	}
	dc.DrawStringAnchored(d.Label, x+s.W/2, y+18, 0.5, 0.5)
	for i, line := range lines {
		dc.DrawString(line, x+10, y+46+22*float64(i))
	}
}

// bodyLines returns the per-item lines of list-like nodes.
func bodyLines(n *mindmap.Node) []string {
	d := n.Data
	var lines []string
	switch n.Type {
	case mindmap.KindChecklist:
		for _, it := range d.ChecklistItems {
			box := "[ ]"
			if it.IsChecked {
				box = "[x]"
			}
			lines = append(lines, fmt.Sprintf("%s %s", box, it.Text))
		}
	case mindmap.KindTimeline:
		for _, ev := range mindmap.SortedEvents(d.TimelineEvents) {
			mark := "-"
			if ev.IsMilestone {
				mark = "*"
			}
			date := ev.Date
			if t, err := mindmap.ParseDate(ev.Date); err == nil {
				date = t.Format("Jan 2")
			}
			lines = append(lines, fmt.Sprintf("%s %s %s", mark, date, ev.Title))
		}
	case mindmap.KindResource:
		for _, r := range d.Resources {
			lines = append(lines, fmt.Sprintf("%s %s", r.Title, strings.Repeat("*", max(r.Rating, 0))))
		}
	}
	return lines
}

func setDash(dc *gg.Context, s mindmap.StrokeStyle) {
	switch s {
	case mindmap.StrokeDashed:
		dc.SetDash(5, 5)
	case mindmap.StrokeDotted:
		dc.SetDash(1, 5)
	default:
		dc.SetDash()
	}
}

// parseColor reads a CSS color: #rgb, #rrggbb, or a named color.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.Transparent
	}
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return fallback
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// withOpacity scales c's alpha by opacity. Zero opacity means unset.
func withOpacity(c color.Color, opacity float64) color.Color {
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	r, g, b, a := c.RGBA()
	f := func(v uint32) uint8 { return uint8(float64(v>>8) * opacity) }
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: f(a)}
}
