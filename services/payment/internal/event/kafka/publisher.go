package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	platformkafka "github.com/char1ks/pizzas/platform/kafka"
)

// Publisher публикует терминальные события платежа в payment-events.
// В отличие от order-сервиса payment публикует напрямую, без outbox:
// исход платежа уже зафиксирован в БД, а повторная доставка события
// идемпотентно обрабатывается потребителями.
type Publisher struct {
	logger *zap.Logger
	writer *kafka.Writer
}

// NewPublisher создаёт Kafka publisher событий платежей
func NewPublisher(logger *zap.Logger, kafkaCfg platformkafka.Config) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkaCfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
		MaxAttempts:  kafkaCfg.Retries,
	}

	return &Publisher{
		logger: logger,
		writer: writer,
	}
}

// Publish сериализует событие и пишет его в топик по типу события.
// Ключ сообщения - order_id, чтобы события одного заказа попадали
// в одну партицию и сохраняли порядок.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type(), err)
	}

	topic := events.TopicFor(event.Type())

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.Key()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write event %s to %s: %w", event.Type(), topic, err)
	}

	p.logger.Info("event published",
		zap.String("event_type", event.Type()),
		zap.String("topic", topic),
		zap.String("key", event.Key()),
	)
	return nil
}

// Close закрывает Kafka writer
func (p *Publisher) Close() error {
	p.logger.Info("closing kafka publisher")
	return p.writer.Close()
}
