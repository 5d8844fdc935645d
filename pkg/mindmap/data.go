package mindmap

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// JSON keys with special handling.
const (
	keyNodeType       = "nodeType"
	keyChecklistItems = "checklistItems"
	keyTimelineEvents = "timelineEvents"
	keyStartDate      = "startDate"
	keyEndDate        = "endDate"
	keyResources      = "resources"
)

// =============================================================================
// Common Fields
// =============================================================================

// Link is a labelled URL attached to node content.
type Link struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Content is the inspectable detail of a node shown in the export view.
type Content struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Links       []Link `json:"links,omitempty"`
}

// Legend is a small colored marker drawn beside a node.
type Legend struct {
	Enabled  bool           `json:"enabled"`
	Position LegendPosition `json:"position"`
	Color    string         `json:"color"`
}

// Shadow is a drop shadow behind a shape node.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Glow is an outer glow around a shape node.
type Glow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
}

// Base holds the fields shared by every node type.
type Base struct {
	Label           string      `json:"label"`
	NodeType        string      `json:"nodeType"`
	BackgroundColor string      `json:"backgroundColor"`
	StrokeColor     string      `json:"strokeColor"`
	StrokeWidth     float64     `json:"strokeWidth"`
	StrokeStyle     StrokeStyle `json:"strokeStyle"`
	FontFamily      string      `json:"fontFamily,omitempty"`
	FontSize        FontSize    `json:"fontSize"`
	TextAlign       TextAlign   `json:"textAlign"`
	Opacity         float64     `json:"opacity"`
	Content         *Content    `json:"content,omitempty"`
	Legend          *Legend     `json:"legend,omitempty"`
	HasCheckbox     bool        `json:"hasCheckbox"`
	IsChecked       bool        `json:"isChecked"`

	// Shape styling
	Rotation    float64 `json:"rotation,omitempty"`
	AspectRatio *bool   `json:"aspectRatio,omitempty"`
	Shadow      *Shadow `json:"shadow,omitempty"`
	Glow        *Glow   `json:"glow,omitempty"`
	ZIndex      int     `json:"zIndex,omitempty"`
}

// KeepsAspectRatio reports whether the shape is locked to 1:1.
// Shapes are locked unless aspectRatio is explicitly false.
func (b Base) KeepsAspectRatio() bool {
	return b.AspectRatio == nil || *b.AspectRatio
}

// HasContent reports whether the node has inspectable content.
func (b Base) HasContent() bool {
	c := b.Content
	return c != nil && (c.Title != "" || c.Description != "" || len(c.Links) > 0)
}

// baseKeys is the set of JSON keys owned by Base.
var baseKeys = jsonKeys(reflect.TypeOf(Base{}))

func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

// =============================================================================
// NodeData
// =============================================================================

// NodeData is the payload of a node: common fields, the variant fields of
// its nodeType, and any keys this version does not know about.
type NodeData struct {
	Base

	// checklist
	ChecklistItems []ChecklistItem

	// timeline
	TimelineEvents []TimelineEvent
	StartDate      string
	EndDate        string

	// resource
	Resources []Resource

	// Extra holds unknown keys and variant keys that do not match the
	// nodeType, preserved verbatim.
	Extra map[string]json.RawMessage
}

// Patch is a partial update keyed by JSON field name. A nil value removes
// the key.
type Patch map[string]any

// MarshalJSON flattens the common fields, the variant fields of the
// node's type and the extra keys into one object.
func (d NodeData) MarshalJSON() ([]byte, error) {
	fields, err := d.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes a flat node-data object.
func (d *NodeData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return d.decode(raw)
}

func (d NodeData) fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(baseKeys)+len(d.Extra)+3)
	maps.Copy(out, d.Extra)

	b, err := json.Marshal(d.Base)
	if err != nil {
		return nil, err
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(b, &base); err != nil {
		return nil, err
	}
	maps.Copy(out, base)

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	switch d.NodeType {
	case TypeChecklist:
		err = put(keyChecklistItems, d.ChecklistItems)
	case TypeTimeline:
		if err = put(keyTimelineEvents, d.TimelineEvents); err == nil {
			if err = put(keyStartDate, d.StartDate); err == nil {
				err = put(keyEndDate, d.EndDate)
			}
		}
	case TypeResource:
		err = put(keyResources, d.Resources)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *NodeData) decode(raw map[string]json.RawMessage) error {
	*d = NodeData{}

	base := make(map[string]json.RawMessage, len(baseKeys))
	for k, v := range raw {
		if baseKeys[k] {
			base[k] = v
		}
	}
	b, err := json.Marshal(base)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &d.Base); err != nil {
		return err
	}

	variant := variantKeys(d.NodeType)
	for k, v := range raw {
		if baseKeys[k] {
			continue
		}
		if !variant[k] {
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[k] = slices.Clone(v)
			continue
		}
		var target any
		switch k {
		case keyChecklistItems:
			target = &d.ChecklistItems
		case keyTimelineEvents:
			target = &d.TimelineEvents
		case keyStartDate:
			target = &d.StartDate
		case keyEndDate:
			target = &d.EndDate
		case keyResources:
			target = &d.Resources
		}
		if err := json.Unmarshal(v, target); err != nil {
			return err
		}
	}
	return nil
}

func variantKeys(nodeType string) map[string]bool {
	switch nodeType {
	case TypeChecklist:
		return map[string]bool{keyChecklistItems: true}
	case TypeTimeline:
		return map[string]bool{keyTimelineEvents: true, keyStartDate: true, keyEndDate: true}
	case TypeResource:
		return map[string]bool{keyResources: true}
	}
	return nil
}

// Merge returns a copy of d with patch shallow-merged over it. Top-level
// keys in patch replace the corresponding fields wholesale. The nodeType
// of d is never changed; it is only taken from patch when d has none.
func (d NodeData) Merge(patch Patch) (NodeData, error) {
	if len(patch) == 0 {
		return d.Clone(), nil
	}
	fields, err := d.fields()
	if err != nil {
		return NodeData{}, err
	}
	for k, v := range patch {
		if k == keyNodeType && d.NodeType != "" {
			continue
		}
		if v == nil {
			delete(fields, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return NodeData{}, err
		}
		fields[k] = raw
	}
	var out NodeData
	if err := out.decode(fields); err != nil {
		return NodeData{}, err
	}
	return out, nil
}

// Patch returns the fields of d as a patch, suitable for merging d over
// another node's data.
func (d NodeData) Patch() (Patch, error) {
	fields, err := d.fields()
	if err != nil {
		return nil, err
	}
	p := make(Patch, len(fields))
	for k, v := range fields {
		p[k] = v
	}
	return p, nil
}

// Equal reports whether d and o encode to the same JSON.
func (d NodeData) Equal(o NodeData) bool {
	a, err1 := json.Marshal(d)
	b, err2 := json.Marshal(o)
	return err1 == nil && err2 == nil && bytes.Equal(a, b)
}

// Clone returns a deep copy of d.
func (d NodeData) Clone() NodeData {
	c := d
	if d.Content != nil {
		content := *d.Content
		content.Links = slices.Clone(d.Content.Links)
		c.Content = &content
	}
	if d.Legend != nil {
		legend := *d.Legend
		c.Legend = &legend
	}
	if d.AspectRatio != nil {
		v := *d.AspectRatio
		c.AspectRatio = &v
	}
	if d.Shadow != nil {
		shadow := *d.Shadow
		c.Shadow = &shadow
	}
	if d.Glow != nil {
		glow := *d.Glow
		c.Glow = &glow
	}
	c.ChecklistItems = slices.Clone(d.ChecklistItems)
	c.TimelineEvents = slices.Clone(d.TimelineEvents)
	if d.Resources != nil {
		c.Resources = make([]Resource, len(d.Resources))
		for i, r := range d.Resources {
			r.Tags = slices.Clone(r.Tags)
			c.Resources[i] = r
		}
	}
	if d.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			c.Extra[k] = slices.Clone(v)
		}
	}
	return c
}
