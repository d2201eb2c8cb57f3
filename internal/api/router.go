package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/openuptime/uptimer/internal/aggregator"
	"github.com/openuptime/uptimer/internal/config"
	"github.com/openuptime/uptimer/internal/store"
	"github.com/openuptime/uptimer/internal/websocket"
)

// NewRouter assembles the read-only public surface: the status
// snapshot and its per-monitor detail views, paginated incidents and
// maintenance windows, Prometheus metrics, and the live websocket
// feed. There is no admin CRUD surface here — monitor, channel,
// incident, and maintenance-window authoring happen in the
// collaborator layer upstream of the core.
func NewRouter(cfg *config.Config, st *store.Store, cache *aggregator.Cache, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(SecurityHeadersMiddleware(cfg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := NewRateLimiter(rate.Limit(10), 30)
	r.Use(RateLimitMiddleware(limiter))

	r.Get("/status", HandleStatus(cache))
	r.Get("/monitors/{id}/latency", HandleMonitorLatency(st))
	r.Get("/monitors/{id}/uptime", HandleMonitorUptime(st))
	r.Get("/monitors/{id}/outages", HandleMonitorOutages(st))
	r.Get("/analytics/uptime", HandleAnalyticsUptime(st))
	r.Get("/incidents", HandleIncidents(st))
	r.Get("/maintenance-windows", HandleMaintenanceWindows(st))

	r.Get("/metrics", HandlePrometheusMetrics(cache))

	r.Get("/ws", hub.HandleWebSocket)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
