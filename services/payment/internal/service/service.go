package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/payment/internal/breaker"
	"github.com/char1ks/pizzas/services/payment/internal/repository"
)

const (
	serviceName    = "payment-service"
	serviceVersion = "1.0.0"

	retryBackoffCap = 30 * time.Second
)

// ErrValidation возвращается при некорректных входных данных запроса
var ErrValidation = errors.New("validation error")

// errBreakerOpen - отказ без вызова провайдера и без строки попытки
var errBreakerOpen = errors.New("circuit breaker is open")

// PaymentService исполняет платёж: идемпотентная вставка, ограниченные
// ретраи с backoff, circuit breaker вокруг провайдера и публикация
// терминального события в payment-events
type PaymentService struct {
	logger     *zap.Logger
	repo       repository.PaymentRepository
	provider   PaymentProvider
	publisher  EventPublisher
	breaker    *breaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

// NewPaymentService создаёт новый экземпляр PaymentService
func NewPaymentService(
	logger *zap.Logger,
	repo repository.PaymentRepository,
	paymentProvider PaymentProvider,
	publisher EventPublisher,
	cb *breaker.CircuitBreaker,
	maxRetries int,
	retryDelay time.Duration,
) *PaymentService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &PaymentService{
		logger:     logger,
		repo:       repo,
		provider:   paymentProvider,
		publisher:  publisher,
		breaker:    cb,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// IdempotencyKey детерминированно выводит ключ из параметров платежа
func IdempotencyKey(orderID string, amount int64, paymentMethod string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", orderID, amount, paymentMethod)))
	return hex.EncodeToString(sum[:])
}

// ProcessOrder выполняет платёж для заказа от начала до конца.
// Повторный вызов для того же заказа возвращает существующий платёж
// без обращения к провайдеру: уникальный индекс по order_id вместе с
// предварительной проверкой закрывают гонку конкурентных вызовов.
func (s *PaymentService) ProcessOrder(ctx context.Context, orderID string, amount int64, paymentMethod string) (repository.Payment, error) {
	if orderID == "" {
		return repository.Payment{}, fmt.Errorf("%w: order_id is required", ErrValidation)
	}
	if amount <= 0 {
		return repository.Payment{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if paymentMethod == "" {
		paymentMethod = "card"
	}

	// Идемпотентный gate: платёж по заказу уже существует
	existing, err := s.repo.GetByOrderID(ctx, orderID)
	if err == nil {
		s.logger.Info("payment already exists for order, skipping",
			zap.String("order_id", orderID),
			zap.String("payment_id", existing.ID),
			zap.String("status", existing.Status),
		)
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return repository.Payment{}, fmt.Errorf("check existing payment: %w", err)
	}

	payment := repository.Payment{
		ID:             "payment_" + uuid.New().String(),
		OrderID:        orderID,
		Amount:         amount,
		PaymentMethod:  paymentMethod,
		Status:         repository.StatusPending,
		IdempotencyKey: IdempotencyKey(orderID, amount, paymentMethod),
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Конкурент успел первым, возвращаем его платёж
			return s.repo.GetByOrderID(ctx, orderID)
		}
		return repository.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	s.logger.Info("payment created",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", orderID),
		zap.Int64("amount", amount),
	)

	return s.execute(ctx, payment)
}

// execute гоняет цикл попыток и завершает платёж терминальным статусом
func (s *PaymentService) execute(ctx context.Context, payment repository.Payment) (repository.Payment, error) {
	if err := s.repo.UpdateStatus(ctx, payment.ID, repository.StatusProcessing, "", ""); err != nil {
		return repository.Payment{}, fmt.Errorf("mark payment processing: %w", err)
	}
	payment.Status = repository.StatusProcessing

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if attempt > 1 {
			delay := s.backoff(attempt)
			s.logger.Info("retrying payment",
				zap.String("payment_id", payment.ID),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return repository.Payment{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		transactionID, err := s.attempt(ctx, payment)
		if err == nil {
			return s.complete(ctx, payment, transactionID)
		}
		lastErr = err

		s.logger.Warn("payment attempt failed",
			zap.String("payment_id", payment.ID),
			zap.String("order_id", payment.OrderID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return s.fail(ctx, payment, lastErr)
}

// attempt выполняет одну попытку вызова провайдера.
// Отказ breaker-а не создаёт строку попытки и не двигает его счётчики:
// провайдер не вызывался, исхода нет.
func (s *PaymentService) attempt(ctx context.Context, payment repository.Payment) (string, error) {
	if !s.breaker.Allow() {
		return "", errBreakerOpen
	}

	attemptRow, err := s.repo.CreateAttempt(ctx, payment.ID)
	if err != nil {
		return "", err
	}

	transactionID, err := s.provider.Process(ctx, payment.OrderID, payment.Amount)
	if err != nil {
		s.breaker.RecordFailure()
		if completeErr := s.repo.CompleteAttempt(ctx, attemptRow.ID, repository.AttemptFailed, err.Error()); completeErr != nil {
			s.logger.Error("failed to complete payment attempt",
				zap.Int64("attempt_id", attemptRow.ID),
				zap.Error(completeErr),
			)
		}
		return "", err
	}

	s.breaker.RecordSuccess()
	if err := s.repo.CompleteAttempt(ctx, attemptRow.ID, repository.AttemptSuccess, ""); err != nil {
		s.logger.Error("failed to complete payment attempt",
			zap.Int64("attempt_id", attemptRow.ID),
			zap.Error(err),
		)
	}
	return transactionID, nil
}

func (s *PaymentService) complete(ctx context.Context, payment repository.Payment, transactionID string) (repository.Payment, error) {
	if err := s.repo.UpdateStatus(ctx, payment.ID, repository.StatusCompleted, transactionID, ""); err != nil {
		return repository.Payment{}, fmt.Errorf("mark payment completed: %w", err)
	}
	payment.Status = repository.StatusCompleted
	payment.TransactionID = transactionID

	event := events.OrderPaid{
		Meta:          events.Meta{EventType: events.TypeOrderPaid},
		PaymentID:     payment.ID,
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
	}
	event.Enrich(serviceName, serviceVersion)

	if err := s.publisher.Publish(ctx, event); err != nil {
		// Платёж завершён, но событие не ушло. Логируем громко:
		// сага заказа не продвинется без ручного вмешательства.
		s.logger.Error("payment completed but OrderPaid publish failed",
			zap.String("payment_id", payment.ID),
			zap.String("order_id", payment.OrderID),
			zap.Error(err),
		)
		return payment, fmt.Errorf("publish OrderPaid: %w", err)
	}

	s.logger.Info("payment completed",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("transaction_id", transactionID),
	)
	return payment, nil
}

func (s *PaymentService) fail(ctx context.Context, payment repository.Payment, lastErr error) (repository.Payment, error) {
	failureReason := "Payment processing failed"
	if lastErr != nil {
		failureReason = lastErr.Error()
	}

	if err := s.repo.UpdateStatus(ctx, payment.ID, repository.StatusFailed, "", failureReason); err != nil {
		return repository.Payment{}, fmt.Errorf("mark payment failed: %w", err)
	}
	payment.Status = repository.StatusFailed
	payment.FailureReason = failureReason

	event := events.PaymentFailed{
		Meta:          events.Meta{EventType: events.TypePaymentFailed},
		PaymentID:     payment.ID,
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		FailureReason: failureReason,
	}
	event.Enrich(serviceName, serviceVersion)

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("payment failed and PaymentFailed publish failed",
			zap.String("payment_id", payment.ID),
			zap.String("order_id", payment.OrderID),
			zap.Error(err),
		)
		return payment, fmt.Errorf("publish PaymentFailed: %w", err)
	}

	s.logger.Warn("payment failed after all attempts",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("failure_reason", failureReason),
	)
	return payment, nil
}

// backoff считает задержку перед attempt-й попыткой: base ×2 с капом
func (s *PaymentService) backoff(attempt int) time.Duration {
	delay := s.retryDelay * time.Duration(1<<uint(attempt-2))
	if delay > retryBackoffCap {
		delay = retryBackoffCap
	}
	return delay
}

// GetPayment возвращает платёж с попытками
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (repository.Payment, []repository.PaymentAttempt, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return repository.Payment{}, nil, err
	}
	attempts, err := s.repo.ListAttempts(ctx, paymentID)
	if err != nil {
		return repository.Payment{}, nil, err
	}
	return payment, attempts, nil
}

// GetPaymentByOrder возвращает платёж по ID заказа
func (s *PaymentService) GetPaymentByOrder(ctx context.Context, orderID string) (repository.Payment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// BreakerSnapshot возвращает состояние circuit breaker
func (s *PaymentService) BreakerSnapshot() breaker.Snapshot {
	return s.breaker.Snapshot()
}
