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
	httpapi "github.com/char1ks/pizzas/services/payment/internal/api/http"
	"github.com/char1ks/pizzas/services/payment/internal/breaker"
	"github.com/char1ks/pizzas/services/payment/internal/client/provider"
	"github.com/char1ks/pizzas/services/payment/internal/config"
	eventkafka "github.com/char1ks/pizzas/services/payment/internal/event/kafka"
	"github.com/char1ks/pizzas/services/payment/internal/repository/postgres"
	"github.com/char1ks/pizzas/services/payment/internal/service"
)

// App содержит все зависимости для запуска и корректного shutdown Payment Service
type App struct {
	logger        *zap.Logger
	httpServer    *http.Server
	orderConsumer *eventkafka.OrderEventsConsumer
	shutdownMgr   *platformshutdown.Manager
	wg            sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Payment Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "payment",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Payment service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.String("payment_mock_url", cfg.PaymentMockURL),
		zap.Int("max_retries", cfg.PaymentMaxRetries),
	)

	// Инициализируем OpenTelemetry
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.OTELEnabled,
		OTLPEndpoint:          cfg.OTELEndpoint,
		SamplingRatio:         cfg.OTELSamplingRatio,
		ServiceName:           "payment",
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

	paymentRepo := postgres.NewRepository(pool)

	// Circuit breaker вокруг провайдера
	cb := breaker.New(logger, breaker.Config{
		FailureThreshold: cfg.CBFailureThreshold,
		SuccessThreshold: cfg.CBSuccessThreshold,
		Timeout:          cfg.CBTimeout,
	})

	// HTTP клиент платёжного провайдера
	providerClient := provider.NewClient(logger, cfg.PaymentMockURL, cfg.PaymentTimeout)

	// Publisher терминальных событий платежа
	publisher := eventkafka.NewPublisher(logger, cfg.Kafka)

	// Service слой
	paymentService := service.NewPaymentService(
		logger,
		paymentRepo,
		providerClient,
		publisher,
		cb,
		cfg.PaymentMaxRetries,
		cfg.PaymentRetryDelay,
	)

	// HTTP handler и роутер
	handler := httpapi.NewHandler(logger, paymentService)
	router := httpapi.NewRouter(handler, readiness, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Consumer событий заказов
	orderConsumer := eventkafka.NewOrderEventsConsumer(
		logger,
		cfg.Kafka.Brokers,
		events.GroupPaymentService,
		events.TopicOrderEvents,
		paymentService,
		cfg.ConsumerMaxAttempts,
		cfg.ConsumerBackoffBase,
	)

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции (выполняются в обратном порядке)
	shutdownMgr.Add("otel", otelShutdown)
	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	shutdownMgr.Add("kafka_publisher", func(ctx context.Context) error {
		return publisher.Close()
	})
	shutdownMgr.Add("kafka_order_consumer", func(ctx context.Context) error {
		return orderConsumer.Close()
	})
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:        logger,
		httpServer:    httpServer,
		orderConsumer: orderConsumer,
		shutdownMgr:   shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Payment service", zap.String("addr", a.httpServer.Addr))
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
		if err := a.orderConsumer.Start(ctx); err != nil {
			a.logger.Error("kafka order consumer error", zap.Error(err))
		}
	}()

	a.logger.Info("Kafka consumer started")

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	cancel()
	a.wg.Wait()

	a.logger.Info("Payment service stopped")
	return nil
}
