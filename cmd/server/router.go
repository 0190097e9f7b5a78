package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judgeproxy/internal/config"
	"github.com/coderunr/judgeproxy/internal/handler"
	"github.com/coderunr/judgeproxy/internal/job"
	"github.com/coderunr/judgeproxy/internal/judge"
	"github.com/coderunr/judgeproxy/internal/language"
	"github.com/coderunr/judgeproxy/internal/metrics"
	"github.com/coderunr/judgeproxy/internal/middleware"
)

// setup wires the judge client, job manager and handlers into a router
func setup(cfg *config.Config, logger *logrus.Logger) (http.Handler, error) {
	m := metrics.New()

	client, err := judge.NewClient(cfg, logger, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create judge client: %w", err)
	}

	languages := language.Default()

	jobManager, err := job.NewManager(cfg, client, languages, m, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job manager: %w", err)
	}

	h := handler.NewHandler(jobManager, languages, logger)
	return newRouter(cfg, h, m, logger), nil
}

func newRouter(cfg *config.Config, h *handler.Handler, m *metrics.Metrics, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.BodyLimit(cfg.RequestBodyLimit))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.JSON)
			r.Use(chiMiddleware.Timeout(cfg.ExecuteTimeout))
			r.Post("/execute", h.ExecuteCode)
		})

		// WebSocket route (no JSON middleware)
		r.HandleFunc("/connect", h.HandleWebSocket)

		r.Get("/languages", h.GetLanguages)
	})

	r.Get("/", h.GetVersion)
	r.Get("/health", h.Health)

	if cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}
