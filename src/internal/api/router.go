package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// PrivateOnly rejects clients outside private subnets.
	PrivateOnly bool
	// Metrics is mounted at MetricsPath when not nil.
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(serviceMgr ServiceManager, configHasher *config.ConfigHasher, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(Recovery)
	r.Use(Logger)
	if opts.PrivateOnly {
		r.Use(PrivateSubnetOnly)
	}

	h := NewHandler(serviceMgr, configHasher)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(CORS)
		r.Use(JSONContentType)

		r.Get("/snapshot", h.GetSnapshot)
		r.Post("/refresh", h.Refresh)
		r.Get("/presence", h.GetPresence)
		r.Get("/switches", h.GetSwitches)

		r.Get("/actions", h.GetActions)
		r.Post("/actions/{name}", h.RunAction)
		r.Post("/control", h.Control)

		r.Get("/status", h.GetStatus)
		r.Post("/service", h.ControlService)
		r.Get("/health", h.CheckHealth)
	})

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		r.Method(http.MethodGet, path, opts.Metrics)
	}

	registerPprof(r)

	return r
}
