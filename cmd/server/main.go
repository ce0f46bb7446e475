package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/cache"
	"github.com/egannguyen/sales-orders/internal/config"
	"github.com/egannguyen/sales-orders/internal/database"
	delivery "github.com/egannguyen/sales-orders/internal/delivery/http"
	"github.com/egannguyen/sales-orders/internal/messaging"
	"github.com/egannguyen/sales-orders/internal/messaging/kafka"
	"github.com/egannguyen/sales-orders/internal/messaging/watermill"
	"github.com/egannguyen/sales-orders/internal/repository/postgres"
	"github.com/egannguyen/sales-orders/internal/service"
)

// broker is a publisher that can also feed the report cache consumer.
type broker interface {
	messaging.Publisher
	messaging.Subscriber
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    cfg.DBQueryTimeout,
		Hooks: []database.Hook{database.NewLogHook(database.LogHookConfig{
			Logger:             logger,
			SlowQueryThreshold: 200 * time.Millisecond,
		})},
	})
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// --- Broker ---
	b, err := newBroker(cfg, logger)
	if err != nil {
		return err
	}
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if b != nil {
		defer b.Close()
		publisher = b
	}

	// --- Report cache ---
	var reportCache service.ReportCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		reportCache = cache.NewReportCache(rdb, cfg.ReportCacheTTL)
		slog.Info("Report cache enabled", "addr", cfg.RedisAddr)
	}

	// --- Services ---
	store := postgres.NewStore(db)
	repos := store.Repositories()
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	reports := service.NewReportService(repos.Reports, reportCache)

	h := delivery.NewHandler(delivery.Services{
		Users:    service.NewUserService(repos.Users, tokens),
		Products: service.NewProductService(repos.Products),
		Clients:  service.NewClientService(repos.Clients),
		Orders:   service.NewOrderService(repos, store, publisher, cfg.OrderEventsTopic, service.WithReportInvalidation(reports)),
		Reports:  reports,
	}, tokens)

	// Consumer: order events -> report cache invalidation
	if b != nil && reportCache != nil {
		go b.Consume(ctx, cfg.OrderEventsTopic, cfg.ConsumerGroup, reports.HandleOrderEvent)
		slog.Info("Order event consumer started", "topic", cfg.OrderEventsTopic, "broker", cfg.Broker)
	}

	// --- HTTP API ---
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	slog.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newBroker returns nil when publication is disabled.
func newBroker(cfg *config.Config, logger *slog.Logger) (broker, error) {
	switch cfg.Broker {
	case config.BrokerMemory:
		return watermill.NewInMemoryBroker(logger), nil
	case config.BrokerKafka:
		return kafka.NewBroker(cfg.KafkaBrokers), nil
	case config.BrokerWatermillKafka:
		b, err := watermill.NewKafkaBroker(cfg.KafkaBrokers, cfg.ConsumerGroup, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init watermill kafka broker: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
