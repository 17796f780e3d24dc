package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/credencelab/credence/internal/api/handlers"
	mw "github.com/credencelab/credence/internal/api/middleware"
	"github.com/credencelab/credence/internal/buildconfig"
	"github.com/credencelab/credence/internal/config"
	"github.com/credencelab/credence/internal/domain"
	"github.com/credencelab/credence/internal/engine"
	"github.com/credencelab/credence/internal/metrics"
	"github.com/credencelab/credence/internal/service"
	"github.com/credencelab/credence/internal/store"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Monitor   *service.ConvergenceMonitor
	startTime time.Time
}

func NewApp(logger *zap.Logger) *App {
	eng := engine.New()
	collector := metrics.NewPromCollector()
	epistemicSvc := service.NewEpistemicService(eng, logger, collector)

	monitor := service.NewConvergenceMonitor(epistemicSvc, logger)
	monitor.SetInterval(config.ConvergenceScanInterval())
	monitor.SetThreshold(config.ConvergenceThreshold())

	// Handlers
	truthHandler := handlers.NewTruthHandler(epistemicSvc)
	opportunityHandler := handlers.NewOpportunityHandler(epistemicSvc)
	dependencyHandler := handlers.NewDependencyHandler(epistemicSvc)
	auditHandler := handlers.NewAuditHandler(epistemicSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Monitor:   monitor,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(mw.HTTPMetrics(collector))                                    // Collect request metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health (no auth)
	r.Get("/health", app.healthHandler(epistemicSvc))

	// Prometheus exposition (no auth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))

	// Build info (no auth)
	r.Get("/version", versionHandler)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		if key := config.APIKey(); key != "" {
			r.Use(mw.APIKeyAuth(key))
		} else {
			logger.Warn("API_KEY not set, /v1 routes are unauthenticated")
		}

		// Truth vectors
		r.Route("/truths", func(r chi.Router) {
			r.Post("/", truthHandler.Create)
			r.Route("/{hash}", func(r chi.Router) {
				r.Get("/", truthHandler.GetByHash)
				r.Post("/corroborate", truthHandler.Corroborate)
				r.Post("/contradict", truthHandler.FlagContradiction)
			})
		})

		// Opportunities
		r.Route("/opportunities", func(r chi.Router) {
			r.Post("/validate", opportunityHandler.Validate)
			r.Get("/consensus", opportunityHandler.Consensus)
		})

		// Dependency graph
		r.Route("/dependencies", func(r chi.Router) {
			r.Post("/", dependencyHandler.Create)
			r.Get("/{source}/upstream", dependencyHandler.Upstream)
		})
		r.Get("/independence", dependencyHandler.Independence)
		r.Get("/convergences", dependencyHandler.Convergences)
		r.Post("/integrations", dependencyHandler.Integrate)

		// Audit trail
		r.Get("/audit", auditHandler.List)
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage lifecycle themselves.
func NewRouter(logger *zap.Logger) *chi.Mux {
	return NewApp(logger).Router
}

func (app *App) healthHandler(svc *service.EpistemicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := svc.Stats(r.Context())
		uptime := time.Since(app.startTime)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"goroutines":     runtime.NumGoroutine(),
			"engine":         stats,
		})
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildconfig.VersionInfo())
}

// Ensure implementations satisfy interfaces at compile time.
var (
	_ domain.TruthStore = (*store.TruthStore)(nil)
	_ metrics.Collector = (*metrics.PromCollector)(nil)
	_ metrics.Collector = (*metrics.NoopCollector)(nil)
)
