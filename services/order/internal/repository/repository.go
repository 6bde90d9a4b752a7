package repository

import (
	"context"
	"errors"
	"time"
)

// Статусы заказа. Переходы между ними односторонние:
// PENDING -> PROCESSING -> PAID -> COMPLETED, и PENDING/PROCESSING -> FAILED.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusPaid       = "PAID"
	StatusFailed     = "FAILED"
	StatusCompleted  = "COMPLETED"
)

// Order представляет доменную модель заказа.
// Денежные суммы хранятся в копейках.
type Order struct {
	ID              string
	UserID          string
	Status          string
	Total           int64
	DeliveryAddress string
	PaymentMethod   string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem представляет позицию заказа
type OrderItem struct {
	PizzaID   string
	PizzaName string
	Price     int64
	Quantity  int
	Subtotal  int64
}

// OutboxEvent представляет строку таблицы outbox_events.
// Payload — готовое к публикации JSON-тело события.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	Processed   bool
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// SagaState представляет состояние саги заказа
type SagaState struct {
	OrderID            string
	CurrentStep        string
	StepsCompleted     []string
	CompensationNeeded bool
	UpdatedAt          time.Time
}

// ListFilter содержит фильтры для выборки заказов
type ListFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderRepository --dir=. --output=./mocks --outpkg=mocks

// OrderRepository определяет интерфейс для работы с хранилищем заказов.
// Service слой зависит от этого интерфейса, а не от конкретной реализации.
type OrderRepository interface {
	// CreateWithOutbox атомарно сохраняет заказ, его позиции, начальное
	// состояние саги и событие OrderCreated в outbox (одна транзакция)
	CreateWithOutbox(ctx context.Context, order Order, eventPayload []byte) error

	// GetByID получает заказ вместе с позициями.
	// Возвращает ErrNotFound, если заказ не найден.
	GetByID(ctx context.Context, id string) (Order, error)

	// List возвращает заказы по фильтру, отсортированные по created_at DESC
	List(ctx context.Context, filter ListFilter) ([]Order, error)

	// UpdateStatusWithOutbox атомарно меняет статус заказа и кладёт событие
	// OrderStatusChanged в outbox. Переход разрешён только из статусов
	// allowedFrom: для прочих возвращает ErrInvalidTransition.
	// Возвращает прежний статус заказа.
	UpdateStatusWithOutbox(ctx context.Context, orderID, newStatus string, allowedFrom []string, eventPayload []byte) (string, error)

	// GetSagaState возвращает состояние саги заказа
	GetSagaState(ctx context.Context, orderID string) (SagaState, error)

	// AdvanceSagaStep переводит сагу на следующий шаг и дописывает его
	// в steps_completed
	AdvanceSagaStep(ctx context.Context, orderID, step string) error

	// MarkSagaCompensation помечает сагу как требующую компенсации
	MarkSagaCompensation(ctx context.Context, orderID, step string) error

	// GetPendingOutboxEvents возвращает необработанные события outbox
	// в порядке создания (created_at ASC, id ASC)
	GetPendingOutboxEvents(ctx context.Context, limit int) ([]OutboxEvent, error)

	// MarkOutboxEventProcessed отмечает событие outbox как опубликованное
	MarkOutboxEventProcessed(ctx context.Context, id int64) error

	// CleanupProcessedOutboxEvents удаляет обработанные события старше
	// retention. Возвращает количество удалённых строк.
	CleanupProcessedOutboxEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// ErrNotFound возвращается, когда заказ не найден в хранилище
var ErrNotFound = errors.New("order not found")

// ErrInvalidTransition возвращается при попытке недопустимого перехода статуса
// (например, COMPLETED для заказа в статусе PENDING)
var ErrInvalidTransition = errors.New("invalid status transition")
