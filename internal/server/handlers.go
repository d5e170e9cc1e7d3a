package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/explorer"
	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/metadata"
	"github.com/matzehuels/deptree/pkg/render"
	"github.com/matzehuels/deptree/pkg/session"
	"github.com/matzehuels/deptree/pkg/tree"
	"github.com/matzehuels/deptree/pkg/viewport"
)

// Frame size used when a request does not give one.
const (
	defaultFrameWidth  = 800
	defaultFrameHeight = 600
)

// =============================================================================
// Request and response bodies
// =============================================================================

type createRequest struct {
	// Tree is a nested tree document, a node-link graph, or a JSON string
	// holding YAML.
	Tree       json.RawMessage `json:"tree"`
	Format     tree.Format     `json:"format,omitempty"`
	Root       string          `json:"root,omitempty"`
	Source     string          `json:"source,omitempty"`
	ExpandRoot *bool           `json:"expand_root,omitempty"`
	Expanded   []string        `json:"expanded,omitempty"`
}

type sessionView struct {
	ID        string           `json:"id"`
	Source    string           `json:"source,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Nodes     int              `json:"nodes"`
	Selected  string           `json:"selected,omitempty"`
	Expanded  tree.ExpandedSet `json:"expanded"`
	Viewport  viewport.State   `json:"viewport"`
	Percent   int              `json:"zoom_percent"`
	Layout    *layout.Result   `json:"layout,omitempty"`
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type pointerRequest struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type zoomRequest struct {
	Step string   `json:"step,omitempty"`
	Zoom *float64 `json:"zoom,omitempty"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
}

type fitRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type clickResponse struct {
	Hit      bool             `json:"hit"`
	NodeID   string           `json:"node_id,omitempty"`
	Expanded bool             `json:"expanded"`
	Details  []metadata.Field `json:"details,omitempty"`
	Viewport viewport.State   `json:"viewport"`
}

type toggleResponse struct {
	NodeID   string `json:"node_id"`
	Expanded bool   `json:"expanded"`
}

// =============================================================================
// Session lifecycle
// =============================================================================

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if len(req.Tree) == 0 {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "request has no tree"))
		return
	}

	doc := []byte(req.Tree)
	var text string
	if json.Unmarshal(req.Tree, &text) == nil {
		doc = []byte(text)
	}
	t, err := tree.Decode(bytes.NewReader(doc), req.Format, req.Root)
	if err != nil {
		respondError(w, err)
		return
	}

	expandRoot := s.cfg.Explore.ExpandRoot
	if req.ExpandRoot != nil {
		expandRoot = *req.ExpandRoot
	}
	ex, err := explorer.New(t,
		explorer.WithLayoutOptions(s.cfg.Layout),
		explorer.WithLimits(s.cfg.Viewport),
		explorer.WithMemo(s.memo),
		explorer.WithLogger(s.logger.With("tree", t.Root().ID)),
		explorer.WithExpandRoot(expandRoot),
		explorer.WithExpanded(req.Expanded...),
	)
	if err != nil {
		respondError(w, err)
		return
	}

	sess := s.sessions.Create(ex, req.Source)
	s.logger.Info("session created", "id", sess.ID, "root", t.Root().ID, "nodes", t.Len())
	s.respondSession(w, http.StatusCreated, sess, true)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondSession(w, http.StatusOK, sess, true)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := s.sessions.Get(id); err != nil {
		respondError(w, err)
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Layout and frames
// =============================================================================

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var res layout.Result
	_ = sess.Do(func(ex *explorer.Explorer) error {
		res = ex.Layout()
		return nil
	})
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	width, err := dimension(r, "w", defaultFrameWidth)
	if err != nil {
		respondError(w, err)
		return
	}
	height, err := dimension(r, "h", defaultFrameHeight)
	if err != nil {
		respondError(w, err)
		return
	}

	svg := render.NewSVGSurface()
	err = sess.Do(func(ex *explorer.Explorer) error {
		return ex.Render(svg, render.Frame{Width: width, Height: height})
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(svg.Bytes())
}

// =============================================================================
// Interaction
// =============================================================================

func (s *Server) click(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pointRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var resp clickResponse
	var node *tree.Node
	_ = sess.Do(func(ex *explorer.Explorer) error {
		resp.NodeID, resp.Hit = ex.Click(req.X, req.Y)
		if resp.Hit {
			resp.Expanded = ex.Expanded().Contains(resp.NodeID)
			node, _ = ex.Tree().Node(resp.NodeID)
		}
		resp.Viewport = ex.Viewport()
		return nil
	})

	if node != nil {
		details, err := metadata.Panel(r.Context(), s.lookup, node)
		if err != nil {
			s.logger.Warn("metadata lookup failed", "node", node.ID, "err", err)
		}
		resp.Details = details
	}
	respondJSON(w, http.StatusOK, resp)
}

// pointer feeds one pointer event into the session's gesture handling. A
// down/up pair within the click slop toggles the node under the pointer; a
// larger movement pans.
func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pointerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	err := sess.Do(func(ex *explorer.Explorer) error {
		switch req.Kind {
		case "down":
			ex.PointerDown(req.X, req.Y)
		case "move":
			ex.PointerMove(req.X, req.Y)
		case "up":
			ex.PointerUp(req.X, req.Y)
		case "cancel":
			ex.PointerCancel()
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown pointer event %q", req.Kind)
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, false)
}

func (s *Server) pan(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req panRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	_ = sess.Do(func(ex *explorer.Explorer) error {
		ex.Pan(req.DX, req.DY)
		return nil
	})
	s.respondSession(w, http.StatusOK, sess, false)
}

func (s *Server) zoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req zoomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := sess.Do(func(ex *explorer.Explorer) error {
		switch {
		case req.Zoom != nil:
			ex.ZoomAt(*req.Zoom, req.X, req.Y)
		case req.Step == "in":
			ex.ZoomIn()
		case req.Step == "out":
			ex.ZoomOut()
		case req.Step == "reset":
			ex.ResetView()
		default:
			return errors.New(errors.ErrCodeInvalidInput, "zoom needs a zoom level or a step of in, out or reset")
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, false)
}

func (s *Server) fit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req := fitRequest{Width: defaultFrameWidth, Height: defaultFrameHeight}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "fit needs a positive width and height"))
		return
	}
	_ = sess.Do(func(ex *explorer.Explorer) error {
		ex.Fit(req.Width, req.Height)
		return nil
	})
	s.respondSession(w, http.StatusOK, sess, false)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "nodeID")

	var resp toggleResponse
	err := sess.Do(func(ex *explorer.Explorer) error {
		if !ex.Toggle(id) {
			return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
		}
		resp = toggleResponse{NodeID: id, Expanded: ex.Expanded().Contains(id)}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) respondSession(w http.ResponseWriter, status int, sess *session.Session, withLayout bool) {
	view := sessionView{
		ID:        sess.ID,
		Source:    sess.Source,
		CreatedAt: sess.CreatedAt,
	}
	_ = sess.Do(func(ex *explorer.Explorer) error {
		view.Nodes = ex.Tree().Len()
		view.Selected = ex.Selection()
		view.Expanded = ex.Expanded()
		view.Viewport = ex.Viewport()
		view.Percent = view.Viewport.Percent()
		if withLayout {
			res := ex.Layout()
			view.Layout = &res
		}
		return nil
	})
	respondJSON(w, status, view)
}

func dimension(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number, got %q", key, raw)
	}
	return v, nil
}
