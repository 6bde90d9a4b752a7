package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/notification/internal/service"
)

// EventsConsumer слушает топики заказов и платежей и порождает
// уведомления на каждое событие, для которого есть шаблон.
// На каждый топик заводится отдельный reader, все в одной группе.
type EventsConsumer struct {
	logger      *zap.Logger
	readers     []*kafka.Reader
	service     *service.NotificationService
	maxAttempts int
	backoffBase time.Duration
}

// NewEventsConsumer создаёт consumer с reader-ом на каждый топик
func NewEventsConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID string,
	topics []string,
	svc *service.NotificationService,
	maxAttempts int,
	backoffBase time.Duration,
) *EventsConsumer {

	// Safety defaults на случай кривого env/config
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = 1 * time.Second
	}

	readers := make([]*kafka.Reader, 0, len(topics))
	for _, topic := range topics {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10MB
		}))
	}

	return &EventsConsumer{
		logger:      logger,
		readers:     readers,
		service:     svc,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Start запускает цикл чтения для каждого топика и блокируется
// до отмены контекста. At-least-once: FetchMessage + CommitMessages
// после успешной обработки.
func (c *EventsConsumer) Start(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, reader := range c.readers {
		wg.Add(1)
		go func(reader *kafka.Reader) {
			defer wg.Done()
			c.consume(ctx, reader)
		}(reader)
	}

	wg.Wait()
	return nil
}

func (c *EventsConsumer) consume(ctx context.Context, reader *kafka.Reader) {
	c.logger.Info("starting kafka consumer",
		zap.String("topic", reader.Config().Topic),
		zap.String("group_id", reader.Config().GroupID),
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping",
					zap.String("topic", reader.Config().Topic),
				)
				return
			}
			c.logger.Error("failed to fetch message from kafka",
				zap.Error(err),
				zap.String("topic", reader.Config().Topic),
			)
			continue
		}

		shouldCommit := c.processMessage(ctx, m)

		if shouldCommit {
			if err := reader.CommitMessages(ctx, m); err != nil {
				c.logger.Error("failed to commit message offset",
					zap.Error(err),
					zap.String("topic", m.Topic),
					zap.Int("partition", m.Partition),
					zap.Int64("offset", m.Offset),
				)
				continue
			}
		}
	}
}

// processMessage обрабатывает одно сообщение.
// Возвращает true, если нужно закоммитить offset.
func (c *EventsConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	event, err := events.Decode(m.Value)
	if err != nil {
		c.logger.Error("failed to decode event",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		// Коммитим poison pill, чтобы не зациклиться
		return true
	}

	c.logger.Info("received event",
		zap.String("event_type", event.Type()),
		zap.String("order_id", event.Key()),
		zap.String("topic", m.Topic),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	if !c.handleWithRetry(ctx, event) {
		// После исчерпания retry не коммитим offset. Повторная доставка
		// гарантирована только до следующего успешного commit в этой
		// партиции: более поздний commit сдвинет offset группы дальше
		c.logger.Error("failed to process event after all retries",
			zap.String("event_type", event.Type()),
			zap.String("order_id", event.Key()),
			zap.Int64("offset", m.Offset),
		)
		return false
	}

	return true
}

// handleWithRetry обрабатывает событие с retry на инфраструктурных ошибках
func (c *EventsConsumer) handleWithRetry(ctx context.Context, event events.Event) bool {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying event processing",
				zap.String("event_type", event.Type()),
				zap.String("order_id", event.Key()),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff):
			}
		}

		err := c.service.HandleEvent(ctx, event)
		if err == nil {
			return true
		}

		lastErr = err
		c.logger.Warn("failed to handle event",
			zap.Error(err),
			zap.String("event_type", event.Type()),
			zap.String("order_id", event.Key()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	c.logger.Error("exhausted all retry attempts",
		zap.Error(lastErr),
		zap.String("event_type", event.Type()),
		zap.String("order_id", event.Key()),
		zap.Int("max_attempts", c.maxAttempts),
	)

	return false
}

// Close закрывает все Kafka reader-ы
func (c *EventsConsumer) Close() error {
	c.logger.Info("closing kafka consumers")
	var firstErr error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
