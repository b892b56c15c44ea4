package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/examprep/backend/internal/api"
	"github.com/examprep/backend/internal/cache"
	"github.com/examprep/backend/internal/event"
	"github.com/examprep/backend/internal/infrastructure/config"
	"github.com/examprep/backend/internal/metrics"
	"github.com/examprep/backend/internal/selection"
	"github.com/examprep/backend/internal/service"
	"github.com/examprep/backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// backend is the wired persistence side shared by every subcommand.
type backend struct {
	db      *store.SQLStore
	corpus  service.QuestionCorpus
	cache   service.ExamInvalidator
	cleanup func()
}

// openBackend opens the SQL store and, when REDIS_ADDR is set, puts the
// question cache in front of it. An unreachable Redis disables caching.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	db, err := store.OpenSQL(ctx, store.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	b := &backend{db: db, corpus: db, cleanup: func() { db.Close() }}

	if cfg.RedisAddr == "" {
		return b, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, question cache disabled", "addr", cfg.RedisAddr, "error", err)
		rdb.Close()
		return b, nil
	}
	qc := cache.New(rdb, db, cfg.CacheTTL, logger)
	b.corpus, b.cache = qc, qc
	b.cleanup = func() {
		rdb.Close()
		db.Close()
	}
	logger.Info("question cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	return b, nil
}

// openPublisher connects to RabbitMQ when AMQP_URL is set.
func openPublisher(cfg *config.Config, logger *slog.Logger) event.Publisher {
	if cfg.AMQPURL == "" {
		return event.Nop{}
	}
	p, err := event.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, session events disabled", "error", err)
		return event.Nop{}
	}
	return p
}

func runServe(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	logger := newLogger(os.Stdout)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// ── Dependencies ────────────────────────────────────────────────
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.cleanup()

	publisher := openPublisher(cfg, logger)
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sessions := service.NewSessionService(service.Dependencies{
		Sessions:      b.db,
		Questions:     b.corpus,
		Catalog:       b.db,
		Selector:      selection.NewSeeded(cfg.RandomSeed),
		Events:        publisher,
		Metrics:       m,
		Logger:        logger,
		LookupWorkers: cfg.LookupWorkers,
	})
	library := service.NewLibraryService(b.db, b.corpus, b.cache, logger)
	handler := api.NewHandler(sessions, library, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := b.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler(reg))

	api.RegisterRoutes(mux, handler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger, m)(api.CORS(api.ParseOrigins(cfg.CORSOrigins))(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress, "db_driver", cfg.DBDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
