package server

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphedit/pkg/connect"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/render/nodelink"
	"github.com/matzehuels/graphedit/pkg/store"
)

// graphResponse is a snapshot with its revision.
type graphResponse struct {
	Revision uint64      `json:"revision"`
	Graph    graph.Graph `json:"graph"`
}

func (s *Server) writeGraph(w http.ResponseWriter, status int) {
	g, rev := s.editor.Snapshot()
	writeJSON(w, status, graphResponse{Revision: rev, Graph: g})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.writeGraph(w, http.StatusOK)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	g, _ := s.editor.Snapshot()
	opts := nodelink.Options{UsePositions: r.URL.Query().Get("layout") != "auto"}
	svg, err := nodelink.Render(r.Context(), g, opts)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render preview"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// =============================================================================
// Toolbar and canvas
// =============================================================================

type addNodeRequest struct {
	Position graph.Position `json:"position"`
	Label    *string        `json:"label,omitempty"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	label := graph.DefaultNodeLabel
	if req.Label != nil {
		label = *req.Label
	}
	n, err := s.editor.AddLabeledNode(req.Position, label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleNodeChanges(w http.ResponseWriter, r *http.Request) {
	var batch []store.NodeChange
	if err := decode(r, &batch); err != nil {
		writeError(w, err)
		return
	}
	if err := s.editor.ApplyNodeChanges(batch); err != nil {
		writeError(w, err)
		return
	}
	s.writeGraph(w, http.StatusOK)
}

func (s *Server) handleEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var batch []store.EdgeChange
	if err := decode(r, &batch); err != nil {
		writeError(w, err)
		return
	}
	if err := s.editor.ApplyEdgeChanges(batch); err != nil {
		writeError(w, err)
		return
	}
	s.writeGraph(w, http.StatusOK)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var c connect.Connection
	if err := decode(r, &c); err != nil {
		writeError(w, err)
		return
	}
	e, err := s.editor.Connect(c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

type keyRequest struct {
	Key string `json:"key"`
}

type keyResponse struct {
	Handled bool     `json:"handled"`
	Nodes   []string `json:"removedNodes"`
	Edges   []string `json:"removedEdges"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	plan, handled, err := s.editor.HandleKey(r.Context(), req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := keyResponse{Handled: handled, Nodes: plan.NodeIDs, Edges: plan.EdgeIDs}
	if resp.Nodes == nil {
		resp.Nodes = []string{}
	}
	if resp.Edges == nil {
		resp.Edges = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.writeGraph(w, http.StatusOK)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := graph.ExportFilename
	if q := r.URL.Query().Get("filename"); q != "" {
		if err := errors.ValidateExportFilename(q); err != nil {
			writeError(w, err)
			return
		}
		name = q
	}

	var buf bytes.Buffer
	if err := s.editor.Export(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "multipart import needs a \"file\" field"))
			return
		}
		defer f.Close()
		body = f
	}

	if _, err := s.editor.Import(r.Context(), body); err != nil {
		writeError(w, err)
		return
	}
	s.writeGraph(w, http.StatusOK)
}

// =============================================================================
// Label editing
// =============================================================================

type editRequest struct {
	Text string `json:"text"`
}

type editResponse struct {
	NodeID  string `json:"nodeId"`
	Editing bool   `json:"editing"`
	Buffer  string `json:"buffer"`
	Display string `json:"display"`
}

func (s *Server) writeEdit(w http.ResponseWriter, nodeID string) {
	st := s.editor.ActiveEdit()
	resp := editResponse{NodeID: nodeID, Display: s.editor.DisplayLabel(nodeID)}
	if st.Editing && st.NodeID == nodeID {
		resp.Editing, resp.Buffer = true, st.Buffer
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditState(w http.ResponseWriter, r *http.Request) {
	s.writeEdit(w, chi.URLParam(r, "id"))
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.editor.BeginEdit(id); err != nil {
		writeError(w, err)
		return
	}
	s.writeEdit(w, id)
}

func (s *Server) handleEditInput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req editRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.editor.EditInput(id, req.Text); err != nil {
		writeError(w, err)
		return
	}
	s.writeEdit(w, id)
}

func (s *Server) finishEdit(w http.ResponseWriter, r *http.Request, fn func(string) error) {
	id := chi.URLParam(r, "id")
	if err := fn(id); err != nil {
		writeError(w, err)
		return
	}
	s.writeEdit(w, id)
}

func (s *Server) handleCommitEdit(w http.ResponseWriter, r *http.Request) {
	s.finishEdit(w, r, s.editor.CommitEdit)
}

func (s *Server) handleBlurEdit(w http.ResponseWriter, r *http.Request) {
	s.finishEdit(w, r, s.editor.BlurEdit)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.finishEdit(w, r, s.editor.CancelEdit)
}

type promptResponse struct {
	EdgeID string `json:"edgeId"`
	Value  string `json:"value"`
}

func (s *Server) handleOpenPrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	seed, err := s.editor.OpenEdgePrompt(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{EdgeID: id, Value: seed})
}

func (s *Server) handleCommitPrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req editRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.editor.CommitEdgePromptFor(id, req.Text); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{EdgeID: id, Value: req.Text})
}

func (s *Server) handleCancelPrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.editor.CancelEdgePromptFor(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// routeLabel is used for logging when chi has not matched a route.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return fmt.Sprintf("unmatched %s", r.Method)
}
