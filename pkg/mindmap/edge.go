package mindmap

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"
)

// PathStyle is the user-facing edge routing style.
type PathStyle string

const (
	PathStraight   PathStyle = "straight"
	PathCurved     PathStyle = "curved"
	PathStep       PathStyle = "step"
	PathSmoothstep PathStyle = "smoothstep"
	PathLoopback   PathStyle = "loopback"
	PathZigzag     PathStyle = "zigzag"
	PathWavy       PathStyle = "wavy"
)

// RenderHint is the routing the diagram engine understands. Several path
// styles share one hint.
type RenderHint string

const (
	HintDefault    RenderHint = "default"
	HintBezier     RenderHint = "bezier"
	HintStep       RenderHint = "step"
	HintSmoothstep RenderHint = "smoothstep"
)

// MarkerArrowClosed is the closed arrowhead marker type.
const MarkerArrowClosed = "arrowclosed"

// Edge defaults.
const (
	DefaultEdgeColor = "#000000"
	DefaultEdgeWidth = 1.0
)

var pathHints = map[PathStyle]RenderHint{
	PathStraight:   HintDefault,
	PathCurved:     HintBezier,
	PathStep:       HintStep,
	PathSmoothstep: HintSmoothstep,
	PathLoopback:   HintBezier,
	PathZigzag:     HintStep,
	PathWavy:       HintBezier,
}

// HintOf maps a path style to its rendering hint. Unknown styles route as
// smoothstep.
func HintOf(p PathStyle) RenderHint {
	if h, ok := pathHints[p]; ok {
		return h
	}
	return HintSmoothstep
}

// DashArrayOf maps a stroke style to an SVG dash pattern. Solid lines have
// none.
func DashArrayOf(s StrokeStyle) string {
	switch s {
	case StrokeDashed:
		return "5,5"
	case StrokeDotted:
		return "1,5"
	default:
		return ""
	}
}

// Marker is an arrowhead at one end of an edge.
type Marker struct {
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
}

// EdgeStyle holds presentation fields derived from [EdgeData].
type EdgeStyle struct {
	Stroke          string  `json:"stroke,omitempty"`
	StrokeWidth     float64 `json:"strokeWidth,omitempty"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty"`
}

// EdgeData is the user-editable part of an edge.
type EdgeData struct {
	Label       string      `json:"label,omitempty"`
	ArrowStart  bool        `json:"arrowStart,omitempty"`
	ArrowEnd    bool        `json:"arrowEnd,omitempty"`
	PathStyle   PathStyle   `json:"pathStyle,omitempty"`
	StrokeStyle StrokeStyle `json:"strokeStyle,omitempty"`
	StrokeColor string      `json:"strokeColor,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`

	// Extra holds unknown keys, preserved verbatim.
	Extra map[string]json.RawMessage `json:"-"`
}

var edgeDataKeys = jsonKeys(reflect.TypeOf(EdgeData{}))

type edgeDataFields EdgeData

// MarshalJSON writes the known fields and the extra keys as one object.
func (d EdgeData) MarshalJSON() ([]byte, error) {
	fields, err := d.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (d *EdgeData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return d.decode(raw)
}

func (d EdgeData) fields() (map[string]json.RawMessage, error) {
	b, err := json.Marshal(edgeDataFields(d))
	if err != nil {
		return nil, err
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(known)+len(d.Extra))
	maps.Copy(out, d.Extra)
	maps.Copy(out, known)
	return out, nil
}

func (d *EdgeData) decode(raw map[string]json.RawMessage) error {
	known := make(map[string]json.RawMessage, len(raw))
	var extra map[string]json.RawMessage
	for k, v := range raw {
		if edgeDataKeys[k] {
			known[k] = v
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = slices.Clone(v)
	}
	b, err := json.Marshal(known)
	if err != nil {
		return err
	}
	var f edgeDataFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = EdgeData(f)
	d.Extra = extra
	return nil
}

// Merge returns a copy of d with patch shallow-merged over it.
func (d EdgeData) Merge(patch Patch) (EdgeData, error) {
	fields, err := d.fields()
	if err != nil {
		return EdgeData{}, err
	}
	for k, v := range patch {
		if v == nil {
			delete(fields, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return EdgeData{}, err
		}
		fields[k] = raw
	}
	var out EdgeData
	if err := out.decode(fields); err != nil {
		return EdgeData{}, err
	}
	return out, nil
}

// DefaultEdgeData returns the data of a freshly connected edge.
func DefaultEdgeData() EdgeData {
	return EdgeData{
		StrokeStyle: StrokeSolid,
		StrokeWidth: DefaultEdgeWidth,
		StrokeColor: DefaultEdgeColor,
		ArrowEnd:    true,
		PathStyle:   PathSmoothstep,
	}
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Target       string     `json:"target"`
	SourceHandle string     `json:"sourceHandle,omitempty"`
	TargetHandle string     `json:"targetHandle,omitempty"`
	Type         RenderHint `json:"type"`
	Animated     bool       `json:"animated,omitempty"`
	Data         EdgeData   `json:"data"`
	MarkerStart  *Marker    `json:"markerStart,omitempty"`
	MarkerEnd    *Marker    `json:"markerEnd,omitempty"`
	Style        *EdgeStyle `json:"style,omitempty"`
	Selected     bool       `json:"selected,omitempty"`
}

// Apply recomputes the presentation fields from e.Data: the rendering hint
// from the path style, markers from the arrow flags, and the stroke style.
func (e *Edge) Apply() {
	e.Type = HintOf(e.Data.PathStyle)

	e.MarkerStart = nil
	if e.Data.ArrowStart {
		e.MarkerStart = &Marker{Type: MarkerArrowClosed}
	}
	e.MarkerEnd = nil
	if e.Data.ArrowEnd {
		e.MarkerEnd = &Marker{Type: MarkerArrowClosed}
	}

	e.Style = &EdgeStyle{
		Stroke:          e.Data.StrokeColor,
		StrokeWidth:     e.Data.StrokeWidth,
		StrokeDasharray: DashArrayOf(e.Data.StrokeStyle),
	}
}

// Clone returns a deep copy of e.
func (e *Edge) Clone() *Edge {
	c := *e
	if e.MarkerStart != nil {
		m := *e.MarkerStart
		c.MarkerStart = &m
	}
	if e.MarkerEnd != nil {
		m := *e.MarkerEnd
		c.MarkerEnd = &m
	}
	if e.Style != nil {
		s := *e.Style
		c.Style = &s
	}
	if e.Data.Extra != nil {
		c.Data.Extra = make(map[string]json.RawMessage, len(e.Data.Extra))
		for k, v := range e.Data.Extra {
			c.Data.Extra[k] = slices.Clone(v)
		}
	}
	return &c
}

// FindEdge returns the index and edge with the given id, or (-1, nil).
func FindEdge(edges []*Edge, id string) (int, *Edge) {
	for i, e := range edges {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

// Incident reports whether e starts or ends at nodeID.
func (e *Edge) Incident(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
