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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	platformlogging "github.com/char1ks/pizzas/platform/logging"
	platformobservability "github.com/char1ks/pizzas/platform/observability"
	platformshutdown "github.com/char1ks/pizzas/platform/shutdown"
	httpapi "github.com/char1ks/pizzas/services/notification/internal/api/http"
	"github.com/char1ks/pizzas/services/notification/internal/channel"
	"github.com/char1ks/pizzas/services/notification/internal/config"
	eventkafka "github.com/char1ks/pizzas/services/notification/internal/event/kafka"
	"github.com/char1ks/pizzas/services/notification/internal/ratelimit"
	"github.com/char1ks/pizzas/services/notification/internal/repository"
	"github.com/char1ks/pizzas/services/notification/internal/repository/postgres"
	"github.com/char1ks/pizzas/services/notification/internal/service"
	"github.com/char1ks/pizzas/services/notification/internal/templates"
)

// App содержит все зависимости для запуска и корректного shutdown Notification Service
type App struct {
	logger         *zap.Logger
	httpServer     *http.Server
	eventsConsumer *eventkafka.EventsConsumer
	shutdownMgr    *platformshutdown.Manager
	wg             sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Notification Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "notification",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Notification service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.Bool("email_enabled", cfg.EmailEnabled),
		zap.Bool("sms_enabled", cfg.SMSEnabled),
		zap.Bool("push_enabled", cfg.PushEnabled),
		zap.Bool("webhook_enabled", cfg.WebhookEnabled),
	)

	// Инициализируем OpenTelemetry
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.OTELEnabled,
		OTLPEndpoint:          cfg.OTELEndpoint,
		SamplingRatio:         cfg.OTELSamplingRatio,
		ServiceName:           "notification",
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

	notificationRepo := postgres.NewRepository(pool)

	// Rate limiter: Redis если задан адрес, иначе in-memory
	var (
		limiter     ratelimit.Limiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory rate limiter",
				zap.Error(err),
				zap.String("redis_addr", cfg.RedisAddr),
			)
			_ = redisClient.Close()
			redisClient = nil
			limiter = ratelimit.NewMemoryLimiter(cfg.MaxNotificationsPerMinute)
		} else {
			logger.Info("Redis rate limiter enabled", zap.String("redis_addr", cfg.RedisAddr))
			limiter = ratelimit.NewRedisLimiter(logger, redisClient, cfg.MaxNotificationsPerMinute)
		}
	} else {
		logger.Info("In-memory rate limiter enabled")
		limiter = ratelimit.NewMemoryLimiter(cfg.MaxNotificationsPerMinute)
	}

	// Каналы доставки
	senders := map[string]channel.Sender{
		repository.ChannelEmail:   channel.NewMockSender(logger, repository.ChannelEmail),
		repository.ChannelSMS:     channel.NewMockSender(logger, repository.ChannelSMS),
		repository.ChannelPush:    channel.NewMockSender(logger, repository.ChannelPush),
		repository.ChannelWebhook: channel.NewWebhookSender(logger),
	}
	enabled := map[string]bool{
		repository.ChannelEmail:   cfg.EmailEnabled,
		repository.ChannelSMS:     cfg.SMSEnabled,
		repository.ChannelPush:    cfg.PushEnabled,
		repository.ChannelWebhook: cfg.WebhookEnabled,
	}

	renderer := templates.NewRenderer(logger)

	// Service слой
	notificationService := service.NewNotificationService(
		logger,
		notificationRepo,
		renderer,
		senders,
		enabled,
		limiter,
	)

	// HTTP handler и роутер
	handler := httpapi.NewHandler(logger, notificationService)
	router := httpapi.NewRouter(handler, readiness, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Consumer событий заказов и платежей
	eventsConsumer := eventkafka.NewEventsConsumer(
		logger,
		cfg.Kafka.Brokers,
		events.GroupNotificationService,
		[]string{events.TopicOrderEvents, events.TopicPaymentEvents},
		notificationService,
		cfg.ConsumerMaxAttempts,
		cfg.ConsumerBackoffBase,
	)

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции (выполняются в обратном порядке)
	shutdownMgr.Add("otel", otelShutdown)
	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	if redisClient != nil {
		shutdownMgr.Add("redis_client", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	shutdownMgr.Add("kafka_events_consumer", func(ctx context.Context) error {
		return eventsConsumer.Close()
	})
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:         logger,
		httpServer:     httpServer,
		eventsConsumer: eventsConsumer,
		shutdownMgr:    shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Notification service", zap.String("addr", a.httpServer.Addr))
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
		if err := a.eventsConsumer.Start(ctx); err != nil {
			a.logger.Error("kafka events consumer error", zap.Error(err))
		}
	}()

	a.logger.Info("Kafka consumers started")

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	cancel()
	a.wg.Wait()

	a.logger.Info("Notification service stopped")
	return nil
}
