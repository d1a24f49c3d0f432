// Package httpapi exposes suggestion lookup, location classification and
// typeahead sessions over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/sells-group/placefinder/internal/catalog"
	"github.com/sells-group/placefinder/internal/location"
	"github.com/sells-group/placefinder/pkg/geocode"
)

// Server holds the handler dependencies.
type Server struct {
	geocoder    geocode.Client
	classifier  *location.Classifier
	catalog     catalog.Source
	sessions    *Sessions
	corsOrigins []string
	validate    *validator.Validate
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCatalog enables GET /v1/locations/grouped.
func WithCatalog(src catalog.Source) ServerOption {
	return func(s *Server) {
		s.catalog = src
	}
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *location.Classifier) ServerOption {
	return func(s *Server) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// NewServer creates a Server. sessions may be nil to disable the session routes.
func NewServer(gc geocode.Client, sessions *Sessions, opts ...ServerOption) *Server {
	s := &Server{
		geocoder:    gc,
		classifier:  location.Default(),
		sessions:    sessions,
		corsOrigins: []string{"*"},
		validate:    validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/suggest", s.handleSuggest)
		r.Get("/classify", s.handleClassify)
		r.Get("/locations/grouped", s.handleCatalogGroup)
		r.Post("/locations/group", s.handleGroup)

		if s.sessions != nil {
			r.Post("/sessions", s.handleCreateSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/input", s.handleSessionInput)
				r.Post("/select", s.handleSessionSelect)
				r.Post("/pointer", s.handleSessionPointer)
			})
		}
	})

	return r
}
