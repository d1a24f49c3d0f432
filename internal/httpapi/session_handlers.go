package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/placefinder/internal/typeahead"
	"github.com/sells-group/placefinder/pkg/geocode"
)

type boundsRequest struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x" validate:"gtefield=MinX"`
	MaxY float64 `json:"max_y" validate:"gtefield=MinY"`
}

type createSessionRequest struct {
	Bounds boundsRequest `json:"bounds"`
}

type inputRequest struct {
	Text string `json:"text" validate:"max=256"`
}

type selectRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type pointerRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind" validate:"omitempty,oneof=mouse touch"`
}

type sessionResponse struct {
	ID    string          `json:"id"`
	State typeahead.State `json:"state"`
	Value Value           `json:"value"`
}

type selectResponse struct {
	Option geocode.Option `json:"option"`
}

func newSessionResponse(sess *Session) sessionResponse {
	return sessionResponse{ID: sess.ID, State: sess.fetcher.State(), Value: sess.Value()}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	b := req.Bounds
	sess, err := s.sessions.Create(typeahead.NewBounds(b.MinX, b.MinY, b.MaxX, b.MaxY))
	if errors.Is(err, ErrTooManySessions) {
		writeError(w, http.StatusServiceUnavailable, "too many sessions")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create session")
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess.fetcher.Input(req.Text)
	writeJSON(w, http.StatusAccepted, newSessionResponse(sess))
}

func (s *Server) handleSessionSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !s.decode(w, r, &req) {
		return
	}
	opt, err := sess.fetcher.Select(*req.Index)
	switch {
	case errors.Is(err, typeahead.ErrNoSuggestion):
		writeError(w, http.StatusConflict, "no suggestion at index")
		return
	case errors.Is(err, typeahead.ErrClosed):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "select suggestion")
		return
	}
	writeJSON(w, http.StatusOK, selectResponse{Option: opt})
}

func (s *Server) handleSessionPointer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pointerRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind := typeahead.Mouse
	if req.Kind == "touch" {
		kind = typeahead.Touch
	}
	sess.bus.Publish(typeahead.PointerEvent{X: req.X, Y: req.Y, Kind: kind})
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}
