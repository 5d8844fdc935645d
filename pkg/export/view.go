package export

import (
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// View is a read-only snapshot of a document prepared for rendering.
type View struct {
	Name  string
	Nodes []*mindmap.Node
	Edges []*mindmap.Edge

	dropped []string
	index   map[string]*mindmap.Node
}

// Detail is what a viewer sees after selecting a node with content.
type Detail struct {
	NodeID      string         `json:"nodeId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Links       []mindmap.Link `json:"links,omitempty"`
}

// NewView copies doc into a View. Selection flags are cleared, and edges
// whose source or target is not a node of the document are left out.
func NewView(doc *mindmap.Document) *View {
	c := doc.Clone()
	v := &View{
		Name:  c.Name,
		Nodes: c.Nodes,
		Edges: make([]*mindmap.Edge, 0, len(c.Edges)),
		index: make(map[string]*mindmap.Node, len(c.Nodes)),
	}
	for _, n := range v.Nodes {
		n.Selected = false
		v.index[n.ID] = n
	}
	for _, e := range c.Edges {
		if v.index[e.Source] == nil || v.index[e.Target] == nil {
			v.dropped = append(v.dropped, e.ID)
			continue
		}
		e.Selected = false
		v.Edges = append(v.Edges, e)
	}
	return v
}

// Dropped returns the ids of edges left out because an endpoint is missing.
func (v *View) Dropped() []string {
	return v.dropped
}

// Node returns the node with the given id.
func (v *View) Node(id string) (*mindmap.Node, bool) {
	n, ok := v.index[id]
	return n, ok
}

// Inspect returns the detail of a node. Nodes without content have none,
// and selecting them shows nothing. The title falls back to the node label.
func (v *View) Inspect(id string) (Detail, bool) {
	n, ok := v.index[id]
	if !ok || !n.Data.HasContent() {
		return Detail{}, false
	}
	c := n.Data.Content
	d := Detail{
		NodeID:      n.ID,
		Title:       c.Title,
		Description: c.Description,
		Links:       c.Links,
	}
	if d.Title == "" {
		d.Title = n.Data.Label
	}
	return d, true
}

// Bounds returns the smallest rectangle containing every node position.
// An empty view has zero bounds.
func (v *View) Bounds() (minX, minY, maxX, maxY float64) {
	for i, n := range v.Nodes {
		p := n.Position
		if i == 0 {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			continue
		}
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
