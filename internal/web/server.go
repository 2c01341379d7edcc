// Package web exposes the study engine over a JSON API. It is deliberately
// thin: handlers read a snapshot from the store, call the pure scheduler and
// selection functions, and persist the result.
package web

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/wordmill/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	db           *storage.DB
	router       chi.Router
	validate     *validator.Validate
	reposDir     string
	defaultQuota int

	// reviewMu serializes read -> Update -> SaveReview so two concurrent
	// reviews can never compute diverging states from the same snapshot.
	reviewMu sync.Mutex
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, reposDir string, defaultQuota int) *Server {
	s := &Server{
		db:           db,
		validate:     validator.New(),
		reposDir:     reposDir,
		defaultQuota: defaultQuota,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/study/next", s.handleNextWord)
		r.Post("/study/review", s.handleReview)
		r.Get("/stats", s.handleStats)

		r.Get("/plan", s.handleGetPlan)
		r.Put("/plan", s.handlePutPlan)

		r.Get("/sources", s.handleListSources)
		r.Post("/sources", s.handleAddSource)
		r.Delete("/sources/{sourceID}", s.handleDeleteSource)
		r.Post("/sync", s.handleSync)
	})

	s.router = r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
