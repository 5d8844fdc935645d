package server

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mindcanvas/pkg/buildinfo"
	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/export"
	mcio "github.com/matzehuels/mindcanvas/pkg/io"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
)

// =============================================================================
// Request Bodies
// =============================================================================

type saveRequest struct {
	Nodes []*mindmap.Node `json:"nodes" validate:"dive,required"`
	Edges []*mindmap.Edge `json:"edges" validate:"dive,required"`
}

type addNodeRequest struct {
	NodeType string            `json:"nodeType" validate:"required,max=64"`
	Data     mindmap.Patch     `json:"data"`
	Position *mindmap.Position `json:"position"`
}

type updateNodeRequest struct {
	Data     mindmap.Patch     `json:"data" validate:"required_without=Position"`
	Position *mindmap.Position `json:"position"`
}

type pasteRequest struct {
	Target string `json:"target" validate:"max=256"`
}

type connectRequest struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

type updateEdgeRequest struct {
	Data mindmap.Patch `json:"data" validate:"required"`
}

// =============================================================================
// Documents
// =============================================================================

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) listMindMaps(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, http.StatusOK, s.gw.GetAllMindMaps(r.Context()), nil)
}

func (s *Server) getMindMap(w http.ResponseWriter, r *http.Request) {
	doc, err := s.load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.writeResult(w, http.StatusOK, doc, nil)
}

func (s *Server) putMindMap(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req saveRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	doc := &mindmap.Document{Name: name, Nodes: req.Nodes, Edges: req.Edges}
	if doc.Nodes == nil {
		doc.Nodes = []*mindmap.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []*mindmap.Edge{}
	}
	if err := mcerrors.ValidateDocumentName(name); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	if err := mcio.Validate(doc); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	for _, e := range doc.Edges {
		e.Apply()
	}

	unlock := s.lock(name)
	defer unlock()
	if !s.gw.SaveDocument(r.Context(), doc) {
		s.writeError(w, r, mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "failed to save mind map %q", name), nil)
		return
	}
	s.writeResult(w, http.StatusOK, doc, []notify.Event{notify.Saved(name)})
}

func (s *Server) deleteMindMap(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	unlock := s.lock(name)
	defer unlock()

	if !s.gw.DeleteMindMap(r.Context(), name) {
		s.writeError(w, r, mcerrors.New(mcerrors.ErrCodeNotFound, "mind map %q not found", name), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportMindMap(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	doc, err := s.load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(r.Context(), &buf, doc, format, export.Options{}); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.run(w, r, http.StatusCreated, func(ss *session) (any, error) {
		return ss.ed.AddNode(r.Context(), req.NodeType, editor.Overrides{Data: req.Data, Position: req.Position})
	})
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateNodeRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.run(w, r, http.StatusOK, func(ss *session) (any, error) {
		if _, ok := ss.ed.Node(id); !ok {
			return nil, nodeNotFound(id)
		}
		if req.Data != nil {
			if err := ss.ed.UpdateNodeData(r.Context(), id, req.Data); err != nil {
				return nil, err
			}
		}
		if req.Position != nil {
			if err := ss.ed.MoveNode(r.Context(), id, *req.Position); err != nil {
				return nil, err
			}
		}
		n, _ := ss.ed.Node(id)
		return n, nil
	})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.run(w, r, http.StatusOK, func(ss *session) (any, error) {
		if !ss.ed.DeleteNode(r.Context(), id) {
			return nil, nodeNotFound(id)
		}
		return nil, nil
	})
}

func (s *Server) copyNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.run(w, r, http.StatusOK, func(ss *session) (any, error) {
		n, ok := ss.ed.Node(id)
		if !ok {
			return nil, nodeNotFound(id)
		}
		if !ss.ed.CopyNode(r.Context(), id) {
			return nil, mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "failed to copy node %q", id)
		}
		return n.Data, nil
	})
}

func (s *Server) duplicateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.run(w, r, http.StatusCreated, func(ss *session) (any, error) {
		n, err := ss.ed.DuplicateNode(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, nodeNotFound(id)
		}
		return n, nil
	})
}

func (s *Server) pasteNode(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := s.decode(r, &req, true); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.run(w, r, http.StatusOK, func(ss *session) (any, error) {
		n, err := ss.ed.PasteNode(r.Context(), req.Target)
		if err != nil || n == nil {
			return nil, err
		}
		return n, nil
	})
}

func (s *Server) nodeDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	d, ok := export.NewView(doc).Inspect(id)
	if !ok {
		s.writeError(w, r, mcerrors.New(mcerrors.ErrCodeNotFound, "node %q has no content", id), nil)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(export.Markdown(d)))
		return
	}
	s.writeResult(w, http.StatusOK, d, nil)
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.run(w, r, http.StatusCreated, func(ss *session) (any, error) {
		return ss.ed.Connect(r.Context(), editor.ConnectRequest{
			Source:       req.Source,
			Target:       req.Target,
			SourceHandle: req.SourceHandle,
			TargetHandle: req.TargetHandle,
		})
	})
}

func (s *Server) updateEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateEdgeRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.run(w, r, http.StatusOK, func(ss *session) (any, error) {
		if _, e := mindmap.FindEdge(ss.ed.Document().Edges, id); e == nil {
			return nil, mcerrors.New(mcerrors.ErrCodeNotFound, "edge %q not found", id)
		}
		if err := ss.ed.UpdateEdge(r.Context(), id, req.Data); err != nil {
			return nil, err
		}
		_, e := mindmap.FindEdge(ss.ed.Document().Edges, id)
		return e, nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

// run executes fn in an edit session for the {name} URL parameter and
// writes its result or error.
func (s *Server) run(w http.ResponseWriter, r *http.Request, status int, fn func(*session) (any, error)) {
	result, events, err := s.edit(r.Context(), chi.URLParam(r, "name"), fn)
	if err != nil {
		s.writeError(w, r, err, events)
		return
	}
	s.writeResult(w, status, result, events)
}

func nodeNotFound(id string) error {
	return mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", id)
}
