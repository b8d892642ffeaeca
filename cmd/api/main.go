package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cartonq/cartonq-backend/api/controllers"
	"github.com/cartonq/cartonq-backend/api/routes"
	"github.com/cartonq/cartonq-backend/internal/catalog"
	"github.com/cartonq/cartonq-backend/internal/llm"
	"github.com/cartonq/cartonq-backend/internal/notify"
	"github.com/cartonq/cartonq-backend/internal/pdf"
	"github.com/cartonq/cartonq-backend/internal/pricing"
	"github.com/cartonq/cartonq-backend/internal/quote"
	"github.com/cartonq/cartonq-backend/pkg/config"
	"github.com/cartonq/cartonq-backend/pkg/db"
	"github.com/cartonq/cartonq-backend/pkg/logger"
	"github.com/cartonq/cartonq-backend/pkg/metrics"
	"github.com/cartonq/cartonq-backend/pkg/migrate"
	"github.com/cartonq/cartonq-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var (
		backend   catalog.Backend
		readiness []controllers.NamedPinger
	)
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}

		backend, err = catalog.NewPostgresBackend(dbClient.DB())
		if err != nil {
			logg.Error(ctx, "failed to create catalog backend", err)
			os.Exit(1)
		}
	case config.CatalogSourceSheets:
		backend, err = catalog.NewSheetsBackend(ctx, cfg.Catalog, logg)
		if err != nil {
			logg.Error(ctx, "failed to create catalog backend", err)
			os.Exit(1)
		}
	}
	readiness = append(readiness, controllers.NamedPinger{Name: "catalog", Pinger: backend})

	lookupSvc, err := pricing.NewService(backend, pricing.Policy(cfg.Catalog.Policy), cfg.Catalog.Timeout)
	if err != nil {
		logg.Error(ctx, "failed to create pricing service", err)
		os.Exit(1)
	}

	generator, err := llm.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		logg.Error(ctx, "failed to create generator", err)
		os.Exit(1)
	}

	store, err := pdf.NewStore(cfg.PDF.Dir, cfg.App.BaseURL)
	if err != nil {
		logg.Error(ctx, "failed to create pdf store", err)
		os.Exit(1)
	}
	renderer, err := pdf.NewRenderer(store, cfg.PDF)
	if err != nil {
		logg.Error(ctx, "failed to create pdf renderer", err)
		os.Exit(1)
	}

	var notifier quote.Notifier
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram)
		if err != nil {
			logg.Error(ctx, "failed to create telegram notifier", err)
			os.Exit(1)
		}
		notifier = tg
	} else {
		logg.Warn(ctx, "telegram delivery not configured, quotes will not be forwarded")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		readiness = append(readiness, controllers.NamedPinger{Name: "redis", Pinger: redisClient})
	} else {
		logg.Warn(ctx, "redis not configured, quote rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	quoteSvc, err := quote.NewService(quote.ServiceParams{
		Lookup:        lookupSvc,
		Generator:     generator,
		Renderer:      renderer,
		Notifier:      notifier,
		Metrics:       pipelineMetrics,
		Logger:        logg,
		HashSalt:      cfg.Quote.HashSalt,
		ValidDays:     cfg.Quote.ValidDays,
		NotifyTimeout: cfg.Quote.NotifyTimeout,
		Branding: quote.Branding{
			CompanyName: "CartonQ",
			ContactInfo: "sales@cartonq.example",
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to create quote service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Cfg:             cfg,
		Logg:            logg,
		QuoteService:    quoteSvc,
		ArtifactStore:   store,
		Readiness:       readiness,
		RedisClient:     redisClient,
		MetricsRegistry: registry,
	})

	addr := ":" + cfg.App.Port
	startCtx := logg.WithFields(ctx, map[string]any{
		"addr":           addr,
		"env":            cfg.App.Env,
		"catalog_source": cfg.Catalog.Source,
		"lookup_policy":  cfg.Catalog.Policy,
	})
	logg.Info(startCtx, "starting CartonQ API")

	if err := http.ListenAndServe(addr, router); err != nil {
		logg.Error(ctx, "server stopped", err)
		os.Exit(1)
	}
}
