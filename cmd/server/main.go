// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activitystore "aims/internal/activity/store"
	"aims/internal/audit"
	"aims/internal/iati/handler"
	iatimetrics "aims/internal/iati/metrics"
	"aims/internal/iati/service"
	"aims/internal/importlog"
	"aims/internal/platform/config"
	"aims/internal/platform/httpserver"
	"aims/internal/platform/logger"
	platformredis "aims/internal/platform/redis"
	"aims/internal/registry"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	var gateway activitystore.Gateway
	var logs importlog.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pg := activitystore.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("migrate activity schema", "error", err)
			os.Exit(1)
		}
		logStore := importlog.NewPostgres(db)
		if err := logStore.Migrate(ctx); err != nil {
			log.Error("migrate import log schema", "error", err)
			os.Exit(1)
		}
		gateway = pg
		logs = logStore
	} else {
		log.Warn("AIMS_DATABASE_URL not set; using in-memory storage")
		gateway = activitystore.NewMemory()
		logs = importlog.NewMemory()
	}

	var auditStore audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(ctx, cfg.Kafka.Brokers,
			audit.WithTopic(cfg.Kafka.AuditTopic),
			audit.WithLogger(log),
		)
		if err != nil {
			log.Error("connect audit kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		inbox := make(chan audit.Event, 256)
		worker := audit.NewWorker(kafkaStore, inbox)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit worker stopped", "error", err)
			}
		}()
		auditStore = audit.NewInboxStore(inbox)
	} else {
		auditStore = audit.NewMemoryStore()
	}
	publisher := audit.NewPublisher(auditStore)

	var cache registry.Cache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = registry.NewRedisCache(redisClient.Client, cfg.Registry.CacheTTL)
	} else {
		cache = registry.NewMemoryCache(cfg.Registry.CacheTTL)
	}
	orgs := registry.New(
		registry.NewClient(registry.WithBaseURL(cfg.Registry.BaseURL)),
		cache,
		registry.WithLogger(log),
		registry.WithSaver(gateway),
	)

	pipeline := service.New(gateway,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(iatimetrics.New()),
		service.WithImportLog(logs),
	)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.New(pipeline, gateway, log,
		handler.WithOrgResolver(orgs),
		handler.WithImportLog(logs),
		handler.WithAdminToken(cfg.AdminToken),
	)
	h.Register(router)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting aims import service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
