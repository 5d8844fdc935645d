// Package editor implements node and edge operations over an in-memory
// mind map.
//
// The package has two layers. The functions in this file and edges.go are
// pure: they take a node or edge slice and return a new slice, leaving
// unaffected elements pointer-identical so callers can detect changes
// cheaply. [Editor] wraps those functions for one open document, adding
// locking, the clipboard, notifications and observability.
//
// # Node operations
//
//	nodes, n, err := editor.AddNode(nodes, mindmap.TypeChecklist, editor.Overrides{}, opts)
//	nodes, err = editor.UpdateNodeData(nodes, n.ID, mindmap.Patch{"label": "Week 1"})
//	nodes, _ = editor.DeleteNode(nodes, n.ID)
//
// Node ids come from [Options.NextID]. An [Editor] wires it to the
// document's persisted counter so ids are never reused after deletions.
package editor

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"slices"
	"time"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// canvasExtent bounds random placement of new nodes on both axes.
const canvasExtent = 500

// duplicateOffset is how far a duplicate is moved from its source.
const duplicateOffset = 50

// Options controls the non-deterministic inputs of node creation.
type Options struct {
	// Now stamps timeline defaults. Defaults to time.Now.
	Now func() time.Time

	// Rand picks random positions. Defaults to the global source.
	Rand *rand.Rand

	// NextID allocates node ids. Defaults to one past the highest
	// numeric id in the slice.
	NextID func() string
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) randomPosition() mindmap.Position {
	if o.Rand != nil {
		return mindmap.Position{X: o.Rand.Float64() * canvasExtent, Y: o.Rand.Float64() * canvasExtent}
	}
	return mindmap.Position{X: rand.Float64() * canvasExtent, Y: rand.Float64() * canvasExtent}
}

func (o Options) nextID(nodes []*mindmap.Node) string {
	if o.NextID != nil {
		return o.NextID()
	}
	return (&mindmap.Document{Nodes: nodes}).NextNodeID()
}

// Overrides customizes a new node.
type Overrides struct {
	// Data is merged over the type defaults.
	Data mindmap.Patch

	// Position places the node. Nil means a random point on the canvas.
	Position *mindmap.Position
}

// Clipboard is the single-slot store behind copy and paste.
type Clipboard interface {
	ReadClipboard(ctx context.Context) ([]byte, bool)
	WriteClipboard(ctx context.Context, data []byte) bool
}

// =============================================================================
// Node Operations
// =============================================================================

// AddNode appends a node of nodeType. Its data is the common defaults, then
// the variant defaults, then ov.Data. An empty nodeType is a no-op that
// returns nodes unchanged and a nil node.
func AddNode(nodes []*mindmap.Node, nodeType string, ov Overrides, opts Options) ([]*mindmap.Node, *mindmap.Node, error) {
	if nodeType == "" {
		return nodes, nil, nil
	}

	data, err := mindmap.NewNodeData(nodeType, opts.now()).Merge(ov.Data)
	if err != nil {
		return nodes, nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "invalid %s node data", nodeType)
	}

	pos := opts.randomPosition()
	if ov.Position != nil {
		pos = *ov.Position
	}

	n := &mindmap.Node{
		ID:       opts.nextID(nodes),
		Type:     mindmap.RenderKindOf(nodeType),
		Position: pos,
		Data:     data,
	}
	return append(slices.Clip(nodes), n), n, nil
}

// UpdateNodeData shallow-merges patch into the data of node id. The updated
// node is a new value; every other node keeps its identity. An unknown id
// returns nodes unchanged.
func UpdateNodeData(nodes []*mindmap.Node, id string, patch mindmap.Patch) ([]*mindmap.Node, error) {
	i, n := mindmap.FindNode(nodes, id)
	if n == nil {
		return nodes, nil
	}
	data, err := n.Data.Merge(patch)
	if err != nil {
		return nodes, mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "invalid data for node %s", id)
	}
	return replaceNode(nodes, i, func(c *mindmap.Node) { c.Data = data }), nil
}

// MoveNode sets the position of node id. An unknown id returns nodes
// unchanged.
func MoveNode(nodes []*mindmap.Node, id string, pos mindmap.Position) []*mindmap.Node {
	i, n := mindmap.FindNode(nodes, id)
	if n == nil || n.Position == pos {
		return nodes
	}
	return replaceNode(nodes, i, func(c *mindmap.Node) { c.Position = pos })
}

// DeleteNode removes node id and returns it. Edges are not touched. An
// unknown id returns nodes unchanged and a nil node.
func DeleteNode(nodes []*mindmap.Node, id string) ([]*mindmap.Node, *mindmap.Node) {
	i, n := mindmap.FindNode(nodes, id)
	if n == nil {
		return nodes, nil
	}
	out := make([]*mindmap.Node, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...), n
}

// CopyNode writes the data of node id to the clipboard and returns the
// node. An unknown id returns a nil node without touching the clipboard.
func CopyNode(ctx context.Context, nodes []*mindmap.Node, id string, clip Clipboard) (*mindmap.Node, error) {
	_, n := mindmap.FindNode(nodes, id)
	if n == nil {
		return nil, nil
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode node %s", id)
	}
	if !clip.WriteClipboard(ctx, data) {
		return nil, mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "clipboard write failed")
	}
	return n, nil
}

// PasteNode applies the clipboard to the document.
//
// When targetID names an existing node the clipboard data is merged into
// it and the target keeps its nodeType. Otherwise a new node is added with
// the clipboard's nodeType (topic when absent) and the whole payload as
// overrides. An empty clipboard is a no-op. A payload that does not parse
// returns a MalformedClipboard error and leaves nodes unchanged.
func PasteNode(ctx context.Context, nodes []*mindmap.Node, targetID string, clip Clipboard, opts Options) ([]*mindmap.Node, *mindmap.Node, error) {
	raw, ok := clip.ReadClipboard(ctx)
	if !ok {
		return nodes, nil, nil
	}
	patch, nodeType, err := parseClipboard(raw)
	if err != nil {
		return nodes, nil, err
	}
	if patch == nil {
		return nodes, nil, nil
	}

	if targetID != "" {
		if i, target := mindmap.FindNode(nodes, targetID); target != nil {
			data, err := target.Data.Merge(patch)
			if err != nil {
				return nodes, nil, mcerrors.Wrap(mcerrors.ErrCodeMalformedClipboard, err, "clipboard data does not fit node %s", targetID)
			}
			out := replaceNode(nodes, i, func(c *mindmap.Node) { c.Data = data })
			return out, out[i], nil
		}
	}

	out, n, err := AddNode(nodes, nodeType, Overrides{Data: patch}, opts)
	if err != nil {
		return nodes, nil, mcerrors.Wrap(mcerrors.ErrCodeMalformedClipboard, err, "clipboard data does not form a node")
	}
	return out, n, nil
}

// parseClipboard decodes a clipboard payload into a patch. A JSON null
// yields a nil patch.
func parseClipboard(raw []byte) (mindmap.Patch, string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", mcerrors.Wrap(mcerrors.ErrCodeMalformedClipboard, err, "clipboard is not node data")
	}
	if fields == nil {
		return nil, "", nil
	}

	nodeType := mindmap.TypeTopic
	if v, ok := fields["nodeType"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, "", mcerrors.Wrap(mcerrors.ErrCodeMalformedClipboard, err, "clipboard nodeType is not a string")
		}
		if s != "" {
			nodeType = s
		}
	}

	patch := make(mindmap.Patch, len(fields))
	for k, v := range fields {
		patch[k] = v
	}
	return patch, nodeType, nil
}

// DuplicateNode adds a copy of node id with identical data, offset from
// the source. An unknown id returns nodes unchanged and a nil node.
func DuplicateNode(nodes []*mindmap.Node, id string, opts Options) ([]*mindmap.Node, *mindmap.Node, error) {
	_, src := mindmap.FindNode(nodes, id)
	if src == nil {
		return nodes, nil, nil
	}
	patch, err := src.Data.Patch()
	if err != nil {
		return nodes, nil, mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode node %s", id)
	}
	pos := src.Position.Offset(duplicateOffset, duplicateOffset)
	return AddNode(nodes, src.Data.NodeType, Overrides{Data: patch, Position: &pos}, opts)
}

// SelectNode marks node id as the only selected node. An empty id clears
// the selection. Nodes whose flag does not change keep their identity.
func SelectNode(nodes []*mindmap.Node, id string) []*mindmap.Node {
	out := nodes
	for i, n := range nodes {
		want := n.ID == id
		if n.Selected == want {
			continue
		}
		out = replaceNode(out, i, func(c *mindmap.Node) { c.Selected = want })
	}
	return out
}

// SetSelected adds node id to or removes it from the selection.
func SetSelected(nodes []*mindmap.Node, id string, selected bool) []*mindmap.Node {
	i, n := mindmap.FindNode(nodes, id)
	if n == nil || n.Selected == selected {
		return nodes
	}
	return replaceNode(nodes, i, func(c *mindmap.Node) { c.Selected = selected })
}

// replaceNode returns a copy of nodes where element i is a modified clone.
func replaceNode(nodes []*mindmap.Node, i int, fn func(*mindmap.Node)) []*mindmap.Node {
	out := slices.Clone(nodes)
	c := nodes[i].Clone()
	fn(c)
	out[i] = c
	return out
}
