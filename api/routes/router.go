package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartonq/cartonq-backend/api/controllers"
	"github.com/cartonq/cartonq-backend/api/middleware"
	"github.com/cartonq/cartonq-backend/internal/pdf"
	"github.com/cartonq/cartonq-backend/pkg/config"
	"github.com/cartonq/cartonq-backend/pkg/logger"
	"github.com/cartonq/cartonq-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Cfg  *config.Config
	Logg *logger.Logger

	QuoteService  controllers.QuoteService
	ArtifactStore *pdf.Store

	// Readiness dependencies, in reporting order.
	Readiness []controllers.NamedPinger

	// RedisClient backs the quote rate limiter; nil disables throttling.
	RedisClient *redis.Client

	// MetricsRegistry backs the /metrics endpoint; nil disables it.
	MetricsRegistry *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Cfg
	logg := params.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Readiness...))
	})

	if params.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	quotePolicy := middleware.NewRateLimitPolicy(
		"quote",
		cfg.RateLimit.QuoteWindow,
		cfg.RateLimit.QuoteIPLimit,
	)
	var limiter middleware.RateLimiterStore
	if params.RedisClient != nil {
		limiter = params.RedisClient
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(quotePolicy, limiter, logg)).
			Post("/quote", controllers.CreateQuote(params.QuoteService, logg))
	})

	r.Get("/pdf/{leadID}.pdf", controllers.ServeQuotePDF(params.ArtifactStore, logg))

	return r
}
