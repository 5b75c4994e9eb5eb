package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/five82/worldwise/internal/cities"
)

// Repository is the storage the handlers depend on.
type Repository interface {
	List(ctx context.Context) ([]cities.City, error)
	Get(ctx context.Context, id cities.ID) (cities.City, error)
	Insert(ctx context.Context, draft cities.Draft) (cities.City, error)
	Delete(ctx context.Context, id cities.ID) error
}

var _ Repository = (*Repo)(nil)

const maxBodyBytes = 1 << 20

// Server serves the /cities resource.
type Server struct {
	repo   Repository
	logger *slog.Logger
}

// NewServer builds a Server. A nil logger falls back to slog.Default.
func NewServer(repo Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{repo: repo, logger: logger}
}

// Routes returns the HTTP handler with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler())

	r.Route("/cities", func(r chi.Router) {
		r.Get("/", s.listCities)
		r.Post("/", s.createCity)
		r.Get("/{id}", s.getCity)
		r.Delete("/{id}", s.deleteCity)
	})
	return r
}

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	city, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, cities.ErrNotFound) {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (s *Server) createCity(w http.ResponseWriter, r *http.Request) {
	var draft cities.Draft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	city, err := s.repo.Insert(r.Context(), draft)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, city)
}

func (s *Server) deleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := s.repo.Delete(r.Context(), id)
	if errors.Is(err, cities.ErrNotFound) {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// pathID parses the {id} segment. Ids that cannot exist are reported as
// not found, the way json-server does.
func pathID(w http.ResponseWriter, r *http.Request) (cities.ID, bool) {
	id, err := cities.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "city not found")
		return 0, false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		"error", err,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
