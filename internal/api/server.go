package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pbaille/toolcat/internal/catalog"
	"github.com/pbaille/toolcat/internal/config"
	"github.com/pbaille/toolcat/internal/domain"
	"github.com/pbaille/toolcat/internal/filter"
	"github.com/pbaille/toolcat/internal/forms"
)

// Server handles HTTP requests for the catalog API
type Server struct {
	catalog *catalog.Service
	vocab   *config.Vocabulary
	metrics *Metrics
	addr    string
}

// New creates a new API server. The metrics should be the ones the
// catalog service reports its submissions to; nil creates a fresh set.
func New(svc *catalog.Service, vocab *config.Vocabulary, m *Metrics, addr string) *Server {
	if m == nil {
		m = NewMetrics()
	}
	return &Server{catalog: svc, vocab: vocab, metrics: m, addr: addr}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)
	r.Use(s.metrics.instrument)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/tools", s.listTools)
		api.Post("/tools", s.addTool)
		api.Get("/tools/{id}", s.getTool)
		api.Get("/tools/{id}/reviews", s.listReviews)
		api.Post("/tools/{id}/reviews", s.addReview)

		api.Post("/subscriptions", s.subscribe)
		api.Post("/queries", s.addQuery)
		api.Get("/vocabulary", s.vocabulary)
	})

	return r
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Starting server on %s", s.addr)
	return srv.ListenAndServe()
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListToolsResponse is the filtered catalog together with the facets
// needed to refine it
type ListToolsResponse struct {
	Entries []domain.Entry `json:"entries"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
	State   string         `json:"state"`
	Facets  []filter.Facet `json:"facets"`
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	state := filter.ParseQuery(r.URL.Query())

	entries, err := s.catalog.LoadEntries(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := filter.Apply(entries, state)
	writeJSON(w, http.StatusOK, ListToolsResponse{
		Entries: result,
		Count:   len(result),
		Total:   len(entries),
		State:   state.Query().Encode(),
		Facets:  filter.Facets(entries, state, s.vocab.ByDimension()),
	})
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) addTool(w http.ResponseWriter, r *http.Request) {
	var sub forms.EntrySubmission
	if !decode(w, r, &sub) {
		return
	}

	entry, err := s.catalog.SubmitEntry(r.Context(), sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	thread, err := s.catalog.Reviews(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if thread == nil {
		thread = catalog.Thread{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tool_id": id,
		"reviews": thread,
	})
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request) {
	var in forms.ReviewInput
	if !decode(w, r, &in) {
		return
	}
	in.ToolID = chi.URLParam(r, "id")

	review, err := s.catalog.SubmitReview(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var in forms.SubscriptionInput
	if !decode(w, r, &in) {
		return
	}

	sub, err := s.catalog.Subscribe(r.Context(), in)
	if errors.Is(err, domain.ErrConflict) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_subscribed"})
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":       "subscribed",
		"subscription": sub,
	})
}

func (s *Server) addQuery(w http.ResponseWriter, r *http.Request) {
	var q forms.QuerySubmission
	if !decode(w, r, &q) {
		return
	}

	stored, err := s.catalog.SubmitQuery(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) vocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.vocab)
}

// maxBodyBytes bounds the size of a submitted form
const maxBodyBytes = 64 << 10

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps catalog errors onto HTTP statuses. Store failures
// are logged and reported without their details.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var se *domain.StoreError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": ve.Error(),
			"field": ve.Field,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.As(err, &se):
		log.Printf("store error: %v", err)
		writeError(w, http.StatusBadGateway, "catalog store unavailable")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
