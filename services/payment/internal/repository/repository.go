package repository

import (
	"context"
	"errors"
	"time"
)

// Статусы платежа
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusCancelled  = "CANCELLED"
)

// Статусы попытки оплаты
const (
	AttemptPending = "PENDING"
	AttemptSuccess = "SUCCESS"
	AttemptFailed  = "FAILED"
)

// ErrNotFound возвращается когда платёж не найден
var ErrNotFound = errors.New("payment not found")

// ErrAlreadyExists возвращается при вставке платежа для заказа,
// по которому платёж уже создан. Уникальный индекс по order_id
// сериализует конкурентных создателей.
var ErrAlreadyExists = errors.New("payment already exists")

// Payment - доменная модель платежа
type Payment struct {
	ID             string
	OrderID        string
	Amount         int64
	PaymentMethod  string
	Status         string
	IdempotencyKey string
	TransactionID  string
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PaymentAttempt - одна попытка вызова провайдера
type PaymentAttempt struct {
	ID            int64
	PaymentID     string
	AttemptNumber int
	Status        string
	ErrorMessage  string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentRepository --dir=. --output=./mocks --outpkg=mocks

// PaymentRepository описывает хранилище платежей
type PaymentRepository interface {
	// Create вставляет платёж в статусе PENDING.
	// Возвращает ErrAlreadyExists, если платёж по этому order_id уже есть.
	Create(ctx context.Context, payment Payment) error
	// GetByID возвращает платёж по ID
	GetByID(ctx context.Context, id string) (Payment, error)
	// GetByOrderID возвращает платёж по ID заказа
	GetByOrderID(ctx context.Context, orderID string) (Payment, error)
	// UpdateStatus переводит платёж в новый статус.
	// transactionID и failureReason записываются если непустые.
	UpdateStatus(ctx context.Context, id, status, transactionID, failureReason string) error
	// CreateAttempt вставляет попытку со следующим плотным attempt_number
	// и статусом PENDING, возвращает созданную строку
	CreateAttempt(ctx context.Context, paymentID string) (PaymentAttempt, error)
	// CompleteAttempt завершает попытку статусом SUCCESS или FAILED
	CompleteAttempt(ctx context.Context, attemptID int64, status, errorMessage string) error
	// ListAttempts возвращает попытки платежа по возрастанию attempt_number
	ListAttempts(ctx context.Context, paymentID string) ([]PaymentAttempt, error)
}
