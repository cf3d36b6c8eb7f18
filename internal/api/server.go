package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tokenLauncher/internal/launch"
	"tokenLauncher/internal/metrics"
	"tokenLauncher/internal/model"
	"tokenLauncher/internal/storage"
)

const maxBodyBytes = 1 << 20

// Config controls the HTTP surface.
type Config struct {
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int
}

// Server serves the launch API.
type Server struct {
	launcher launch.Launcher
	store    storage.TokenStore
	metrics  *metrics.Metrics
	logger   *zap.Logger
	limiter  *ipLimiter
	origins  []string
	now      func() time.Time
}

// NewServer builds a Server. m may be nil.
func NewServer(cfg Config, launcher launch.Launcher, store storage.TokenStore, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		launcher: launcher,
		store:    store,
		metrics:  m,
		logger:   logger,
		limiter:  newIPLimiter(cfg.RateLimit, cfg.RateBurst, 0),
		origins:  origins,
		now:      time.Now,
	}
}

// Routes returns the router with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.With(s.rateLimit).Post("/launch-token", s.handleLaunch)
	r.Get("/tokens/{id}", s.handleGetToken)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var req model.LaunchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, msgValidation)
		return
	}

	result, err := s.launcher.Launch(r.Context(), req)
	if err != nil {
		writeLaunchErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, launchResponse{
		Success:      true,
		Message:      msgLaunched,
		TokenAddress: result.TokenAddress,
	})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, msgInvalidTokenID)
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, msgTokenNotFound)
		return
	}

	record, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgTokenNotFound)
			return
		}
		s.logger.Error("get token failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool               `json:"success"`
		Data    *model.TokenRecord `json:"data"`
	}{Success: true, Data: record})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
