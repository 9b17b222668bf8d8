// Command mybook-server starts the mybook HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/and161185/mybook/internal/config"
	"github.com/and161185/mybook/internal/content"
	"github.com/and161185/mybook/internal/events"
	"github.com/and161185/mybook/internal/metrics"
	"github.com/and161185/mybook/internal/migrate"
	"github.com/and161185/mybook/internal/repository/postgres"
	httpserver "github.com/and161185/mybook/internal/server/http"
	"github.com/and161185/mybook/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

// main loads configuration, runs migrations, and serves HTTP until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("duplicates", string(cfg.Duplicates)),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Migrate {
		if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Events
	var pub publisher
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	} else {
		pub = events.NewLogPublisher(logger)
		logger.Warn("no kafka brokers configured, purchase events are only logged")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("close publisher", zap.Error(err))
		}
	}()

	if cfg.GatewayKey == "" {
		logger.Warn("no gateway key configured, identity headers are trusted as-is")
	}

	// Services
	repo := postgres.NewEntitlementRepo(db)
	books := content.NewClient(cfg.BooksURL, cfg.BooksTimeout, m)
	purchaseSvc := service.NewPurchaseService(repo, pub, cfg.Duplicates, logger, m)
	querySvc := service.NewQueryService(repo)
	readerSvc := service.NewReaderService(querySvc, books)

	gin.SetMode(gin.ReleaseMode)
	app := httpserver.New(purchaseSvc, querySvc, readerSvc, httpserver.Options{
		GatewayKey: []byte(cfg.GatewayKey),
		Health:     db,
		Gatherer:   reg,
		Metrics:    m,
		Log:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
