package service

import (
	"context"

	"github.com/char1ks/pizzas/events"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentProvider --dir=. --output=./mocks --outpkg=mocks

// PaymentProvider - внешний платёжный провайдер.
// Process возвращает ID транзакции или ошибку отказа/транспорта.
type PaymentProvider interface {
	Process(ctx context.Context, orderID string, amount int64) (string, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=EventPublisher --dir=. --output=./mocks --outpkg=mocks

// EventPublisher публикует события платежей в лог
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
