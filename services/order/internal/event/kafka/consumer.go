package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/order/internal/service"
)

// PaymentEventsConsumer обрабатывает события оплаты (OrderPaid, PaymentFailed)
// из топика payment-events и продвигает сагу заказа
type PaymentEventsConsumer struct {
	logger      *zap.Logger
	reader      *kafka.Reader
	service     *service.OrderService
	maxAttempts int
	backoffBase time.Duration
}

// NewPaymentEventsConsumer создаёт новый consumer событий оплаты
func NewPaymentEventsConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID, topic string,
	svc *service.OrderService,
	maxAttempts int,
	backoffBase time.Duration,
) *PaymentEventsConsumer {

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

	return &PaymentEventsConsumer{
		logger:      logger,
		reader:      reader,
		service:     svc,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Start запускает consumer и начинает обработку сообщений.
// Использует at-least-once семантику: FetchMessage + CommitMessages
// после успешной обработки.
func (c *PaymentEventsConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		// FetchMessage вместо ReadMessage для ручного контроля commit
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

		// Коммитим offset только после успешной обработки
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

			c.logger.Debug("message offset committed",
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka.
// Возвращает true, если нужно закоммитить offset.
func (c *PaymentEventsConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	event, err := events.Decode(m.Value)
	if err != nil {
		c.logger.Error("failed to decode payment event",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		// Коммитим poison pill, чтобы не зациклиться
		return true
	}

	switch event.(type) {
	case events.OrderPaid, events.PaymentFailed:
		// обрабатываем ниже
	default:
		// События других типов (например, свои же OrderStatusChanged
		// при переиспользовании топика) пропускаем
		c.logger.Debug("skipping event of irrelevant type",
			zap.String("event_type", event.Type()),
			zap.Int64("offset", m.Offset),
		)
		return true
	}

	c.logger.Info("received payment event",
		zap.String("event_type", event.Type()),
		zap.String("order_id", event.Key()),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	success := c.handleWithRetry(ctx, event)
	if !success {
		// После исчерпания retry не коммитим offset. Повторная доставка
		// гарантирована только до следующего успешного commit в этой
		// партиции: более поздний commit сдвинет offset группы дальше
		c.logger.Error("failed to handle payment event after all retries",
			zap.String("event_type", event.Type()),
			zap.String("order_id", event.Key()),
			zap.Int64("offset", m.Offset),
		)
		return false
	}

	return true
}

// handleWithRetry обрабатывает событие с retry логикой.
// Возвращает true при успешной обработке, false при исчерпании попыток.
func (c *PaymentEventsConsumer) handleWithRetry(ctx context.Context, event events.Event) bool {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Backoff: 1s, 2s, 4s (экспоненциально)
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying payment event",
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

		var err error
		switch e := event.(type) {
		case events.OrderPaid:
			err = c.service.HandleOrderPaid(ctx, e)
		case events.PaymentFailed:
			err = c.service.HandlePaymentFailed(ctx, e)
		}
		if err == nil {
			if attempt > 1 {
				c.logger.Info("payment event processed successfully after retry",
					zap.String("order_id", event.Key()),
					zap.Int("attempt", attempt),
				)
			}
			return true
		}

		lastErr = err
		c.logger.Warn("failed to handle payment event",
			zap.Error(err),
			zap.String("order_id", event.Key()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	c.logger.Error("exhausted all retry attempts",
		zap.Error(lastErr),
		zap.String("order_id", event.Key()),
		zap.Int("max_attempts", c.maxAttempts),
	)

	return false
}

// Close закрывает Kafka reader
func (c *PaymentEventsConsumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
