// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/pkg/logger"
)

const defaultMaxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ModelsProvider
	StatsProvider

	// Submit runs one assessment. raw holds field text keyed by feature.
	Submit(ctx context.Context, modelID string, raw map[string]string) (service.Assessment, error)
}

// ModelsProvider exposes the model registry and its forms.
type ModelsProvider interface {
	Models() []registry.ModelSpec
	Form(id string) (service.Form, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	aboutHandler       *AboutHandler
	modelsHandler      *ModelsHandler
	assessmentsHandler *AssessmentsHandler

	corsOrigins []string
	logger      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps submission bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.assessmentsHandler.maxBody = n
		}
	}
}

// WithCORSOrigins sets the origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
			s.assessmentsHandler.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		aboutHandler:       NewAboutHandler(deps),
		modelsHandler:      NewModelsHandler(deps),
		assessmentsHandler: NewAssessmentsHandler(deps),
		corsOrigins:        []string{"*"},
		logger:             logger.Discard(),
	}
	s.assessmentsHandler.logger = s.logger
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a chi router with the shared middleware stack and every API
// route attached. Other surfaces mount onto the same router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)
	s.Register(r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/about", s.aboutHandler.HandleAbout)

	r.Route("/v1/models", func(r chi.Router) {
		r.Get("/", s.modelsHandler.HandleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.modelsHandler.HandleGet)
			r.Post("/assessments", s.assessmentsHandler.HandlePost)
		})
	})
}

type errorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
