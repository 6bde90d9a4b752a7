package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	platformkafka "github.com/char1ks/pizzas/platform/kafka"
)

func TestNewPublisher_WriterFromConfig(t *testing.T) {
	p := NewPublisher(zap.NewNop(), platformkafka.Config{
		Brokers: []string{"localhost:19092"},
		Retries: 3,
	})
	defer p.Close()

	require.Equal(t, 3, p.writer.MaxAttempts)
	require.Equal(t, kafka.RequireAll, p.writer.RequiredAcks)
}
