package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	platformlogging "github.com/char1ks/pizzas/platform/logging"
	platformobservability "github.com/char1ks/pizzas/platform/observability"
	platformshutdown "github.com/char1ks/pizzas/platform/shutdown"
	httpapi "github.com/char1ks/pizzas/services/order/internal/api/http"
	"github.com/char1ks/pizzas/services/order/internal/client/catalog"
	"github.com/char1ks/pizzas/services/order/internal/config"
	eventkafka "github.com/char1ks/pizzas/services/order/internal/event/kafka"
	"github.com/char1ks/pizzas/services/order/internal/repository/postgres"
	"github.com/char1ks/pizzas/services/order/internal/service"
)

// App содержит все зависимости для запуска и корректного shutdown Order Service
type App struct {
	logger          *zap.Logger
	httpServer      *http.Server
	paymentConsumer *eventkafka.PaymentEventsConsumer
	outboxDispatch  *eventkafka.OutboxDispatcher
	shutdownMgr     *platformshutdown.Manager
	wg              sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Order Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "order",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Order service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.Duration("processing_interval", cfg.ProcessingInterval),
		zap.Int("batch_size", cfg.BatchSize),
	)

	// Инициализируем OpenTelemetry
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.OTELEnabled,
		OTLPEndpoint:          cfg.OTELEndpoint,
		SamplingRatio:         cfg.OTELSamplingRatio,
		ServiceName:           "order",
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		return nil, err
	}

	// Подключаемся к PostgreSQL
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("PostgreSQL connection established")

	// Применяем миграции
	logger.Info("Applying database migrations")
	db, err := goose.OpenDBWithDriver("pgx", cfg.DatabaseURL)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		pool.Close()
		return nil, err
	}
	migrationsDir := filepath.Join(wd, "migrations")

	if err := goose.Up(db, migrationsDir); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Database migrations applied successfully")

	// Функция readiness для health check
	readiness := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx) == nil
	}
	readiness()
	logger.Info("Readiness check enabled")

	// Создаём PostgreSQL репозиторий
	orderRepo := postgres.NewRepository(pool)

	// HTTP клиент каталога
	menuClient := catalog.NewClient(logger, cfg.CatalogURL)

	// Service слой
	orderService := service.NewOrderService(logger, orderRepo, menuClient)

	// HTTP handler и роутер
	handler := httpapi.NewHandler(logger, orderService)
	router := httpapi.NewRouter(handler, readiness, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Consumer событий оплаты
	paymentConsumer := eventkafka.NewPaymentEventsConsumer(
		logger,
		cfg.Kafka.Brokers,
		events.GroupOrderService,
		events.TopicPaymentEvents,
		orderService,
		cfg.ConsumerMaxAttempts,
		cfg.ConsumerBackoffBase,
	)

	// Outbox dispatcher
	outboxDispatch := eventkafka.NewOutboxDispatcher(
		logger,
		orderRepo,
		cfg.Kafka,
		cfg.BatchSize,
		cfg.ProcessingInterval,
		cfg.MaxRetries,
		cfg.OutboxRetention,
	)

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции (выполняются в обратном порядке)
	shutdownMgr.Add("otel", otelShutdown)
	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	shutdownMgr.Add("outbox_dispatcher", func(ctx context.Context) error {
		return outboxDispatch.Close()
	})
	shutdownMgr.Add("kafka_payment_consumer", func(ctx context.Context) error {
		return paymentConsumer.Close()
	})
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:          logger,
		httpServer:      httpServer,
		paymentConsumer: paymentConsumer,
		outboxDispatch:  outboxDispatch,
		shutdownMgr:     shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Order service", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.paymentConsumer.Start(ctx); err != nil {
			a.logger.Error("kafka payment consumer error", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.outboxDispatch.Start(ctx); err != nil && err != context.Canceled {
			a.logger.Error("outbox dispatcher error", zap.Error(err))
		}
	}()

	a.logger.Info("Outbox dispatcher and Kafka consumer started")

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	cancel()
	a.wg.Wait()

	a.logger.Info("Order service stopped")
	return nil
}
