package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/payment/internal/service"
)

// OrderEventsConsumer слушает топик order-events и запускает
// исполнение платежа на каждый OrderCreated
type OrderEventsConsumer struct {
	logger      *zap.Logger
	reader      *kafka.Reader
	service     *service.PaymentService
	maxAttempts int
	backoffBase time.Duration
}

// NewOrderEventsConsumer создаёт новый consumer событий заказов
func NewOrderEventsConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID, topic string,
	svc *service.PaymentService,
	maxAttempts int,
	backoffBase time.Duration,
) *OrderEventsConsumer {

	// Safety defaults на случай кривого env/config
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = 1 * time.Second
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &OrderEventsConsumer{
		logger:      logger,
		reader:      reader,
		service:     svc,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Start запускает consumer. At-least-once: FetchMessage + CommitMessages
// после успешной обработки. Повторная доставка OrderCreated безопасна,
// идемпотентный gate платежа вернёт существующую запись.
func (c *OrderEventsConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		shouldCommit := c.processMessage(ctx, m)

		if shouldCommit {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
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
func (c *OrderEventsConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	event, err := events.Decode(m.Value)
	if err != nil {
		c.logger.Error("failed to decode order event",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		// Коммитим poison pill, чтобы не зациклиться
		return true
	}

	orderCreated, ok := event.(events.OrderCreated)
	if !ok {
		// OrderStatusChanged и прочие события в том же топике платежу не нужны
		c.logger.Debug("skipping event of irrelevant type",
			zap.String("event_type", event.Type()),
			zap.Int64("offset", m.Offset),
		)
		return true
	}

	c.logger.Info("received OrderCreated event",
		zap.String("order_id", orderCreated.OrderID),
		zap.Int64("total_amount", orderCreated.TotalAmount),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	if !c.handleWithRetry(ctx, orderCreated) {
		// После исчерпания retry не коммитим offset. Повторная доставка
		// гарантирована только до следующего успешного commit в этой
		// партиции: более поздний commit сдвинет offset группы дальше
		c.logger.Error("failed to process OrderCreated after all retries",
			zap.String("order_id", orderCreated.OrderID),
			zap.Int64("offset", m.Offset),
		)
		return false
	}

	return true
}

// handleWithRetry запускает платёж с retry на инфраструктурных ошибках
func (c *OrderEventsConsumer) handleWithRetry(ctx context.Context, event events.OrderCreated) bool {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying OrderCreated processing",
				zap.String("order_id", event.OrderID),
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

		_, err := c.service.ProcessOrder(ctx, event.OrderID, event.TotalAmount, event.PaymentMethod)
		if err == nil {
			return true
		}

		lastErr = err
		c.logger.Warn("failed to process OrderCreated",
			zap.Error(err),
			zap.String("order_id", event.OrderID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	c.logger.Error("exhausted all retry attempts",
		zap.Error(lastErr),
		zap.String("order_id", event.OrderID),
		zap.Int("max_attempts", c.maxAttempts),
	)

	return false
}

// Close закрывает Kafka reader
func (c *OrderEventsConsumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
