package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/config"
	"github.com/vladislavdragonenkov/sales/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/sales/internal/health"
	"github.com/vladislavdragonenkov/sales/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
	"github.com/vladislavdragonenkov/sales/internal/service/catalog"
	"github.com/vladislavdragonenkov/sales/internal/service/orders"
	"github.com/vladislavdragonenkov/sales/internal/service/outbox"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
	"github.com/vladislavdragonenkov/sales/internal/storage/postgres"
	"github.com/vladislavdragonenkov/sales/internal/transport/rest"
	"github.com/vladislavdragonenkov/sales/internal/version"
)

type repositories struct {
	clients  domain.ClientRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
}

// Run собирает зависимости и держит сервис до отмены ctx.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := log.WithField("component", "app")

	repos, store, err := buildRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()
	}

	// Kafka опционален: без брокера события копятся в outbox как pending.
	var producer *kafka.Producer
	var publisher domain.OutboxPublisher
	var dlqPublisher domain.OutboxPublisher
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			}
		}()
		publisher = kafka.NewOutboxPublisher(producer, cfg.Kafka.Topic)
		dlqPublisher = kafka.NewOutboxPublisher(producer, cfg.Kafka.DLQTopic)
		logger.WithField("brokers", cfg.Kafka.Brokers).Info("kafka producer initialized")
	}

	orderMetrics := metrics.NewOrderMetrics()
	catalogSvc := catalog.NewService(repos.clients, repos.products, orderMetrics, logger)
	ordersSvc := orders.NewService(repos.clients, repos.orders, orderMetrics, logger)
	server := rest.NewServer(catalogSvc, ordersSvc, logger)

	healthHandler := healthcheck.NewHandler(version.String())
	if store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewFuncChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.Metrics.Addr, logger, healthHandler)

	var wg sync.WaitGroup
	if publisher != nil {
		worker := outbox.NewWorker(repos.outbox, publisher,
			outbox.WithLogger(logger.WithField("component", "outbox_worker")),
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.Outbox.PollInterval),
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithMaxAttempts(cfg.Outbox.MaxAttempts),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.HTTP.Addr)
		errCh <- server.Listen(cfg.HTTP.Addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		if err := server.Shutdown(); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
		shutdownHTTP(metricsSrv, logger)
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		wg.Wait()
		return err
	}
}

// buildRepositories выбирает хранилище по конфигурации. Для postgres
// дополнительно применяются все невыполненные миграции.
func buildRepositories(ctx context.Context, cfg *config.Config) (repositories, *postgres.Store, error) {
	switch cfg.Storage {
	case "memory":
		clients := memory.NewClientRepository()
		products := memory.NewProductRepository()
		outboxRepo := memory.NewOutboxRepository()
		return repositories{
			clients:  clients,
			products: products,
			orders:   memory.NewOrderRepository(clients, products, outboxRepo),
			outbox:   outboxRepo,
		}, nil, nil
	case "postgres":
		store, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return repositories{}, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return repositories{
			clients:  postgres.NewClientRepository(store),
			products: postgres.NewProductRepository(store),
			orders:   postgres.NewOrderRepository(store),
			outbox:   postgres.NewOutboxRepository(store),
		}, store, nil
	default:
		return repositories{}, nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}

// startMetricsServer поднимает отдельный HTTP-сервер с /metrics и health-пробами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()
	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
