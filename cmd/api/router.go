package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/crm-followup/internal/infra/http/handlers"
	"github.com/xavierca1/crm-followup/internal/infra/http/middleware"
)

type routerConfig struct {
	APIToken         string
	CORSOrigins      []string
	WebhookRateLimit int // por minuto por IP; 0 desliga
}

type routes struct {
	Health    *handlers.HealthHandler
	Webhook   *handlers.WebhookHandler
	Clients   *handlers.ClientHandler
	Actions   *handlers.ActionHandler
	Dashboard *handlers.DashboardHandler
	Scheduler *handlers.SchedulerHandler
}

func newRouter(cfg routerConfig, h routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.Health.Handle)
	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.APIToken))

		webhook := r.With()
		if cfg.WebhookRateLimit > 0 {
			webhook = r.With(httprate.LimitByIP(cfg.WebhookRateLimit, time.Minute))
		}
		webhook.Post("/webhook", h.Webhook.Handle)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.Clients.List)
			r.Post("/", h.Clients.Create)
			r.Get("/{id}", h.Clients.Get)
			r.Patch("/{id}", h.Clients.Patch)
			r.Get("/{id}/actions", h.Clients.ListActions)
		})

		r.Get("/actions/stale", h.Actions.ListStale)
		r.Patch("/actions/{id}", h.Actions.Resolve)

		r.Get("/dashboard/summary", h.Dashboard.Summary)

		r.Get("/scheduler/status", h.Scheduler.Status)
		r.Post("/scheduler/run", h.Scheduler.Run)
	})

	return r
}
