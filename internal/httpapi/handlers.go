package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/placefinder/internal/location"
	"github.com/sells-group/placefinder/pkg/geocode"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type suggestResponse struct {
	Query     string           `json:"query"`
	Options   []geocode.Option `json:"options"`
	NoResults bool             `json:"no_results"`
}

// handleSuggest performs one undebounced lookup. Provider failures degrade to
// an empty list.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := s.geocoder.Suggest(r.Context(), q)
	if err != nil {
		zap.L().Warn("httpapi: suggest failed", zap.String("query", q), zap.Error(err))
		results = nil
	}

	opts := geocode.FormatAll(results)
	if opts == nil {
		opts = []geocode.Option{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Query: q, Options: opts, NoResults: len(opts) == 0})
}

type classifyResponse struct {
	Location string `json:"location"`
	location.Decision
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	values, ok := r.URL.Query()["location"]
	if !ok {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}
	out := make([]classifyResponse, 0, len(values))
	for _, v := range values {
		out = append(out, classifyResponse{Location: v, Decision: s.classifier.Explain(v)})
	}
	if len(out) == 1 {
		writeJSON(w, http.StatusOK, out[0])
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type groupRequest struct {
	Locations []string `json:"locations" validate:"required,max=10000"`
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Group(req.Locations))
}

func (s *Server) handleCatalogGroup(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusNotImplemented, "catalog not configured")
		return
	}
	locations, err := s.catalog.Locations(r.Context())
	if err != nil {
		zap.L().Error("httpapi: read catalog", zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Group(locations))
}
