package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	platformkafka "github.com/char1ks/pizzas/platform/kafka"
	"github.com/char1ks/pizzas/services/order/internal/repository"
)

const (
	publishBackoffBase = 1 * time.Second
	publishBackoffMax  = 30 * time.Second

	// Период удаления обработанных событий старше retention
	outboxGCInterval = 1 * time.Hour
)

// OutboxDispatcher публикует события из таблицы outbox_events в Kafka.
// Заказ и событие записываются одной транзакцией (transactional outbox),
// dispatcher асинхронно доставляет события и отмечает их обработанными.
type OutboxDispatcher struct {
	logger     *zap.Logger
	repo       repository.OrderRepository
	writer     *kafka.Writer
	batchSize  int
	interval   time.Duration
	maxRetries int
	retention  time.Duration
	gcInterval time.Duration
}

// NewOutboxDispatcher создаёт новый outbox dispatcher.
// batchSize — сколько событий обрабатывается за цикл,
// interval — период опроса таблицы,
// maxRetries — число попыток публикации одного события,
// retention — сколько хранить обработанные события до удаления.
func NewOutboxDispatcher(
	logger *zap.Logger,
	repo repository.OrderRepository,
	kafkaCfg platformkafka.Config,
	batchSize int,
	interval time.Duration,
	maxRetries int,
	retention time.Duration,
) *OutboxDispatcher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(kafkaCfg.Brokers...),
		Balancer: &kafka.LeastBytes{},
		// Подтверждение от всех реплик: потеря события outbox ломает сагу
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
		MaxAttempts:  kafkaCfg.Retries,
	}

	return &OutboxDispatcher{
		logger:     logger,
		repo:       repo,
		writer:     writer,
		batchSize:  batchSize,
		interval:   interval,
		maxRetries: maxRetries,
		retention:  retention,
		gcInterval: outboxGCInterval,
	}
}

// Start запускает цикл обработки. Блокируется до отмены контекста.
// Обработанные события старше retention удаляются на старте
// и далее каждые gcInterval.
func (d *OutboxDispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting outbox dispatcher",
		zap.Int("batch_size", d.batchSize),
		zap.Duration("interval", d.interval),
		zap.Int("max_retries", d.maxRetries),
		zap.Duration("retention", d.retention),
		zap.Duration("gc_interval", d.gcInterval),
	)

	d.cleanupProcessed(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	gcTicker := time.NewTicker(d.gcInterval)
	defer gcTicker.Stop()

	// Обрабатываем сразу при старте, не дожидаясь первого тика
	if err := d.processBatch(ctx); err != nil {
		d.logger.Error("failed to process initial batch", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher context cancelled, stopping")
			return nil
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil {
				d.logger.Error("failed to process batch", zap.Error(err))
			}
		case <-gcTicker.C:
			d.cleanupProcessed(ctx)
		}
	}
}

// cleanupProcessed удаляет обработанные события старше retention.
// Ошибка удаления не останавливает dispatcher, только логируется.
func (d *OutboxDispatcher) cleanupProcessed(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if deleted, err := d.repo.CleanupProcessedOutboxEvents(ctx, d.retention); err != nil {
		d.logger.Error("failed to cleanup processed outbox events", zap.Error(err))
	} else if deleted > 0 {
		d.logger.Info("cleaned up old processed outbox events", zap.Int64("deleted", deleted))
	}
}

// processBatch обрабатывает батч pending событий в порядке создания
func (d *OutboxDispatcher) processBatch(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	pending, err := d.repo.GetPendingOutboxEvents(ctx, d.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	d.logger.Debug("processing outbox batch", zap.Int("count", len(pending)))

	processed := 0
	for _, event := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := d.processEvent(ctx, event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("failed to process outbox event",
				zap.Error(err),
				zap.Int64("event_id", event.ID),
				zap.String("event_type", event.EventType),
			)
			// Продолжаем обработку следующих событий,
			// неудачное останется pending и повторится в следующем цикле
			continue
		}
		processed++
	}

	if processed > 0 {
		d.logger.Info("processed outbox events", zap.Int("count", processed))
	}
	return nil
}

// processEvent публикует одно событие с retry и отмечает его обработанным.
// Backoff экспоненциальный: 1s, 2s, 4s... с потолком 30s.
func (d *OutboxDispatcher) processEvent(ctx context.Context, event repository.OutboxEvent) error {
	topic := events.TopicFor(event.EventType)
	var lastErr error

	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		msg := kafka.Message{
			Topic: topic,
			Key:   []byte(event.AggregateID), // order_id: события заказа в одной партиции
			Value: event.Payload,
		}

		err := d.writer.WriteMessages(ctx, msg)
		if err == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if markErr := d.repo.MarkOutboxEventProcessed(ctx, event.ID); markErr != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Событие опубликовано, но не отмечено: следующий цикл
				// опубликует его повторно (at-least-once, консьюмеры идемпотентны)
				d.logger.Error("failed to mark outbox event processed",
					zap.Error(markErr),
					zap.Int64("event_id", event.ID),
				)
				return markErr
			}

			d.logger.Info("outbox event published",
				zap.Int64("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", topic),
				zap.String("aggregate_id", event.AggregateID),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		lastErr = err
		d.logger.Warn("failed to publish outbox event",
			zap.Error(err),
			zap.Int64("event_id", event.ID),
			zap.String("topic", topic),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", d.maxRetries),
		)

		if attempt < d.maxRetries {
			backoff := publishBackoffBase * time.Duration(1<<uint(attempt-1))
			if backoff > publishBackoffMax {
				backoff = publishBackoffMax
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return fmt.Errorf("failed to publish event after %d attempts: %w", d.maxRetries, lastErr)
}

// Close закрывает Kafka writer
func (d *OutboxDispatcher) Close() error {
	d.logger.Info("closing outbox dispatcher")
	return d.writer.Close()
}
