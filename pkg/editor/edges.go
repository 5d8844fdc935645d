package editor

import (
	"slices"

	"github.com/google/uuid"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// ConnectRequest is a connection reported by the canvas. Handles are
// optional. Self-loops and repeated connections are allowed.
type ConnectRequest struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// =============================================================================
// Edge Operations
// =============================================================================

// Connect appends a new animated smoothstep edge with a closed end arrow
// and default stroke. Every edge gets a fresh uuid.
func Connect(edges []*mindmap.Edge, req ConnectRequest) ([]*mindmap.Edge, *mindmap.Edge) {
	e := &mindmap.Edge{
		ID:           uuid.NewString(),
		Source:       req.Source,
		Target:       req.Target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
		Animated:     true,
		Data:         mindmap.DefaultEdgeData(),
	}
	e.Apply()
	return append(slices.Clip(edges), e), e
}

// UpdateEdge shallow-merges patch into the data of edge id and recomputes
// its rendering hint, markers and stroke style. An unknown id returns
// edges unchanged.
func UpdateEdge(edges []*mindmap.Edge, id string, patch mindmap.Patch) ([]*mindmap.Edge, error) {
	i, e := mindmap.FindEdge(edges, id)
	if e == nil {
		return edges, nil
	}
	data, err := e.Data.Merge(patch)
	if err != nil {
		return edges, mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "invalid data for edge %s", id)
	}
	c := e.Clone()
	c.Data = data
	c.Apply()

	out := slices.Clone(edges)
	out[i] = c
	return out, nil
}

// RemoveIncidentEdges drops every edge touching nodeID.
func RemoveIncidentEdges(edges []*mindmap.Edge, nodeID string) []*mindmap.Edge {
	if !slices.ContainsFunc(edges, func(e *mindmap.Edge) bool { return e.Incident(nodeID) }) {
		return edges
	}
	return slices.DeleteFunc(slices.Clone(edges), func(e *mindmap.Edge) bool { return e.Incident(nodeID) })
}

// EdgeSelection holds at most one selected edge id.
type EdgeSelection struct {
	id string
}

// Toggle selects id, or clears the selection when id is already selected.
// It returns the selected id afterwards.
func (s *EdgeSelection) Toggle(id string) string {
	if s.id == id {
		s.id = ""
	} else {
		s.id = id
	}
	return s.id
}

// Selected returns the selected edge id, or "".
func (s *EdgeSelection) Selected() string { return s.id }

// Clear drops the selection.
func (s *EdgeSelection) Clear() { s.id = "" }

// Mark returns edges with only the selected edge flagged. Edges whose
// flag does not change keep their identity.
func (s *EdgeSelection) Mark(edges []*mindmap.Edge) []*mindmap.Edge {
	out := edges
	cloned := false
	for i, e := range edges {
		want := s.id != "" && e.ID == s.id
		if e.Selected == want {
			continue
		}
		if !cloned {
			out = slices.Clone(edges)
			cloned = true
		}
		c := e.Clone()
		c.Selected = want
		out[i] = c
	}
	return out
}
