package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/payment/internal/breaker"
	"github.com/char1ks/pizzas/services/payment/internal/repository"
	repoMocks "github.com/char1ks/pizzas/services/payment/internal/repository/mocks"
	"github.com/char1ks/pizzas/services/payment/internal/service"
	"github.com/char1ks/pizzas/services/payment/internal/service/mocks"
)

type fixture struct {
	svc       *service.PaymentService
	repo      *repoMocks.PaymentRepository
	provider  *mocks.PaymentProvider
	publisher *mocks.EventPublisher
	breaker   *breaker.CircuitBreaker
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := repoMocks.NewPaymentRepository(t)
	paymentProvider := mocks.NewPaymentProvider(t)
	publisher := mocks.NewEventPublisher(t)
	cb := breaker.New(zap.NewNop(), breaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 3,
		Timeout:          60 * time.Second,
	})

	// Миллисекундный backoff, чтобы ретраи не тормозили тесты
	svc := service.NewPaymentService(zap.NewNop(), repo, paymentProvider, publisher, cb, 3, time.Millisecond)
	return fixture{svc: svc, repo: repo, provider: paymentProvider, publisher: publisher, breaker: cb}
}

func expectPaymentCreation(f fixture) {
	f.repo.On("GetByOrderID", mock.Anything, "order_1").
		Return(repository.Payment{}, repository.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p repository.Payment) bool {
		return p.OrderID == "order_1" &&
			p.Amount == 59900 &&
			p.IdempotencyKey == service.IdempotencyKey("order_1", 59900, "card")
	})).Return(nil).Once()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusProcessing, "", "").
		Return(nil).Once()
}

func TestProcessOrder_SuccessFirstAttempt(t *testing.T) {
	f := newFixture(t)
	expectPaymentCreation(f)

	f.repo.On("CreateAttempt", mock.Anything, mock.Anything).
		Return(repository.PaymentAttempt{ID: 1, AttemptNumber: 1}, nil).Once()
	f.provider.On("Process", mock.Anything, "order_1", int64(59900)).
		Return("txn_succ_abc", nil).Once()
	f.repo.On("CompleteAttempt", mock.Anything, int64(1), repository.AttemptSuccess, "").
		Return(nil).Once()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusCompleted, "txn_succ_abc", "").
		Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(event events.Event) bool {
		paid, ok := event.(events.OrderPaid)
		return ok && paid.OrderID == "order_1" && paid.Amount == 59900 && paid.EventID != ""
	})).Return(nil).Once()

	payment, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "card")

	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, payment.Status)
	assert.Equal(t, "txn_succ_abc", payment.TransactionID)
	assert.Contains(t, payment.ID, "payment_")
}

func TestProcessOrder_IdempotentWhenPaymentExists(t *testing.T) {
	f := newFixture(t)

	existing := repository.Payment{ID: "payment_1", OrderID: "order_1", Status: repository.StatusCompleted}
	f.repo.On("GetByOrderID", mock.Anything, "order_1").Return(existing, nil).Once()

	payment, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "card")

	require.NoError(t, err)
	assert.Equal(t, existing, payment)
	f.provider.AssertNotCalled(t, "Process")
	f.repo.AssertNotCalled(t, "Create")
}

func TestProcessOrder_ConcurrentCreatorLosesRace(t *testing.T) {
	f := newFixture(t)

	winner := repository.Payment{ID: "payment_1", OrderID: "order_1", Status: repository.StatusProcessing}
	f.repo.On("GetByOrderID", mock.Anything, "order_1").
		Return(repository.Payment{}, repository.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.Anything).
		Return(repository.ErrAlreadyExists).Once()
	f.repo.On("GetByOrderID", mock.Anything, "order_1").
		Return(winner, nil).Once()

	payment, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "card")

	require.NoError(t, err)
	assert.Equal(t, winner, payment)
	f.provider.AssertNotCalled(t, "Process")
}

func TestProcessOrder_FailsAfterAllAttempts(t *testing.T) {
	f := newFixture(t)
	expectPaymentCreation(f)

	providerErr := errors.New("payment provider rejected: Card declined by bank (status 400)")
	for i := int64(1); i <= 3; i++ {
		f.repo.On("CreateAttempt", mock.Anything, mock.Anything).
			Return(repository.PaymentAttempt{ID: i, AttemptNumber: int(i)}, nil).Once()
		f.provider.On("Process", mock.Anything, "order_1", int64(59900)).
			Return("", providerErr).Once()
		f.repo.On("CompleteAttempt", mock.Anything, i, repository.AttemptFailed, providerErr.Error()).
			Return(nil).Once()
	}

	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusFailed, "", providerErr.Error()).
		Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(event events.Event) bool {
		failed, ok := event.(events.PaymentFailed)
		return ok && failed.OrderID == "order_1" && failed.FailureReason == providerErr.Error()
	})).Return(nil).Once()

	payment, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "card")

	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, payment.Status)
	assert.Equal(t, providerErr.Error(), payment.FailureReason)
}

func TestProcessOrder_SucceedsOnThirdAttempt(t *testing.T) {
	f := newFixture(t)
	expectPaymentCreation(f)

	providerErr := errors.New("connection reset")
	for i := int64(1); i <= 2; i++ {
		f.repo.On("CreateAttempt", mock.Anything, mock.Anything).
			Return(repository.PaymentAttempt{ID: i, AttemptNumber: int(i)}, nil).Once()
		f.provider.On("Process", mock.Anything, "order_1", int64(59900)).
			Return("", providerErr).Once()
		f.repo.On("CompleteAttempt", mock.Anything, i, repository.AttemptFailed, providerErr.Error()).
			Return(nil).Once()
	}

	f.repo.On("CreateAttempt", mock.Anything, mock.Anything).
		Return(repository.PaymentAttempt{ID: 3, AttemptNumber: 3}, nil).Once()
	f.provider.On("Process", mock.Anything, "order_1", int64(59900)).
		Return("txn_succ_late", nil).Once()
	f.repo.On("CompleteAttempt", mock.Anything, int64(3), repository.AttemptSuccess, "").
		Return(nil).Once()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusCompleted, "txn_succ_late", "").
		Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.OrderPaid")).
		Return(nil).Once()

	payment, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "card")

	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, payment.Status)
}

func TestProcessOrder_BreakerOpenSkipsProvider(t *testing.T) {
	f := newFixture(t)
	expectPaymentCreation(f)

	// Открываем breaker заранее: 5 последовательных ошибок
	for i := 0; i < 5; i++ {
		f.breaker.RecordFailure()
	}
	require.Equal(t, breaker.StateOpen, f.breaker.Snapshot().State)

	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusFailed, "",
		"circuit breaker is open").Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.PaymentFailed")).
		Return(nil).Once()

	payment, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "card")

	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, payment.Status)
	// Провайдер не вызывался и строки попыток не создавались
	f.provider.AssertNotCalled(t, "Process")
	f.repo.AssertNotCalled(t, "CreateAttempt")
}

func TestProcessOrder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
		amount  int64
	}{
		{name: "empty order id", orderID: "", amount: 59900},
		{name: "zero amount", orderID: "order_1", amount: 0},
		{name: "negative amount", orderID: "order_1", amount: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.ProcessOrder(context.Background(), tt.orderID, tt.amount, "card")

			require.ErrorIs(t, err, service.ErrValidation)
			f.repo.AssertNotCalled(t, "Create")
		})
	}
}

func TestProcessOrder_DefaultPaymentMethod(t *testing.T) {
	f := newFixture(t)

	f.repo.On("GetByOrderID", mock.Anything, "order_1").
		Return(repository.Payment{}, repository.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p repository.Payment) bool {
		return p.PaymentMethod == "card"
	})).Return(nil).Once()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusProcessing, "", "").
		Return(nil).Once()
	f.repo.On("CreateAttempt", mock.Anything, mock.Anything).
		Return(repository.PaymentAttempt{ID: 1, AttemptNumber: 1}, nil).Once()
	f.provider.On("Process", mock.Anything, "order_1", int64(59900)).
		Return("txn_succ_abc", nil).Once()
	f.repo.On("CompleteAttempt", mock.Anything, int64(1), repository.AttemptSuccess, "").
		Return(nil).Once()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, repository.StatusCompleted, "txn_succ_abc", "").
		Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.OrderPaid")).
		Return(nil).Once()

	_, err := f.svc.ProcessOrder(context.Background(), "order_1", 59900, "")

	require.NoError(t, err)
}

func TestGetPayment_WithAttempts(t *testing.T) {
	f := newFixture(t)

	payment := repository.Payment{ID: "payment_1", OrderID: "order_1", Status: repository.StatusCompleted}
	attempts := []repository.PaymentAttempt{
		{ID: 1, PaymentID: "payment_1", AttemptNumber: 1, Status: repository.AttemptFailed},
		{ID: 2, PaymentID: "payment_1", AttemptNumber: 2, Status: repository.AttemptSuccess},
	}
	f.repo.On("GetByID", mock.Anything, "payment_1").Return(payment, nil).Once()
	f.repo.On("ListAttempts", mock.Anything, "payment_1").Return(attempts, nil).Once()

	gotPayment, gotAttempts, err := f.svc.GetPayment(context.Background(), "payment_1")

	require.NoError(t, err)
	assert.Equal(t, payment, gotPayment)
	assert.Equal(t, attempts, gotAttempts)
}

func TestGetPayment_NotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.On("GetByID", mock.Anything, "missing").
		Return(repository.Payment{}, repository.ErrNotFound).Once()

	_, _, err := f.svc.GetPayment(context.Background(), "missing")

	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIdempotencyKey_Deterministic(t *testing.T) {
	first := service.IdempotencyKey("order_1", 59900, "card")
	second := service.IdempotencyKey("order_1", 59900, "card")
	other := service.IdempotencyKey("order_2", 59900, "card")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64) // hex от SHA-256
}
