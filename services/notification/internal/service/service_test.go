package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/notification/internal/channel"
	channelmocks "github.com/char1ks/pizzas/services/notification/internal/channel/mocks"
	"github.com/char1ks/pizzas/services/notification/internal/ratelimit"
	"github.com/char1ks/pizzas/services/notification/internal/repository"
	repomocks "github.com/char1ks/pizzas/services/notification/internal/repository/mocks"
	"github.com/char1ks/pizzas/services/notification/internal/service"
	"github.com/char1ks/pizzas/services/notification/internal/templates"
)

type fixture struct {
	svc   *service.NotificationService
	repo  *repomocks.NotificationRepository
	email *channelmocks.Sender
	push  *channelmocks.Sender
}

// newFixture собирает сервис с mock-репозиторием и mock-каналами EMAIL/PUSH.
// enabled=nil включает оба канала.
func newFixture(t *testing.T, limiter ratelimit.Limiter, enabled map[string]bool) fixture {
	t.Helper()

	repo := repomocks.NewNotificationRepository(t)
	email := channelmocks.NewSender(t)
	push := channelmocks.NewSender(t)

	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(100)
	}
	if enabled == nil {
		enabled = map[string]bool{
			repository.ChannelEmail: true,
			repository.ChannelPush:  true,
		}
	}

	svc := service.NewNotificationService(
		zap.NewNop(),
		repo,
		templates.NewRenderer(zap.NewNop()),
		map[string]channel.Sender{
			repository.ChannelEmail: email,
			repository.ChannelPush:  push,
		},
		enabled,
		limiter,
	)

	return fixture{svc: svc, repo: repo, email: email, push: push}
}

func testNotification(channels ...string) repository.Notification {
	return repository.Notification{
		ID:       "notif_test",
		UserID:   "user_1",
		OrderID:  "order_1",
		Subject:  "Payment Successful",
		Message:  "Payment of $599.00 for order #order_1 was successful.",
		Channels: channels,
		Priority: "normal",
		Status:   repository.StatusPending,
	}
}

func TestDeliver_AllChannelsSent(t *testing.T) {
	f := newFixture(t, nil, nil)
	n := testNotification(repository.ChannelEmail, repository.ChannelPush)

	f.email.On("Send", mock.Anything, n, mock.Anything).Return(nil)
	f.push.On("Send", mock.Anything, n, mock.Anything).Return(nil)
	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelEmail, repository.AttemptSent, "").Return(nil)
	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelPush, repository.AttemptSent, "").Return(nil)
	f.repo.On("UpdateStatus", mock.Anything, n.ID, repository.StatusSent, "").Return(nil)

	err := f.svc.Deliver(context.Background(), n)
	require.NoError(t, err)
}

func TestDeliver_PartialDeliveryIsSent(t *testing.T) {
	f := newFixture(t, nil, nil)
	n := testNotification(repository.ChannelEmail, repository.ChannelPush)

	f.email.On("Send", mock.Anything, n, mock.Anything).Return(errors.New("smtp unavailable"))
	f.push.On("Send", mock.Anything, n, mock.Anything).Return(nil)
	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelEmail, repository.AttemptFailed, "smtp unavailable").Return(nil)
	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelPush, repository.AttemptSent, "").Return(nil)
	f.repo.On("UpdateStatus", mock.Anything, n.ID, repository.StatusSent, "").Return(nil)

	err := f.svc.Deliver(context.Background(), n)
	require.NoError(t, err)
}

func TestDeliver_AllChannelsFailed(t *testing.T) {
	f := newFixture(t, nil, nil)
	n := testNotification(repository.ChannelEmail, repository.ChannelPush)

	f.email.On("Send", mock.Anything, n, mock.Anything).Return(errors.New("smtp unavailable"))
	f.push.On("Send", mock.Anything, n, mock.Anything).Return(errors.New("push gateway down"))
	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelEmail, repository.AttemptFailed, "smtp unavailable").Return(nil)
	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelPush, repository.AttemptFailed, "push gateway down").Return(nil)
	f.repo.On("UpdateStatus", mock.Anything, n.ID, repository.StatusFailed, "All delivery channels failed").Return(nil)

	err := f.svc.Deliver(context.Background(), n)
	require.NoError(t, err)
}

func TestDeliver_DisabledChannel(t *testing.T) {
	f := newFixture(t, nil, map[string]bool{
		repository.ChannelEmail: false,
		repository.ChannelPush:  true,
	})
	n := testNotification(repository.ChannelEmail)

	f.repo.On("RecordDeliveryAttempt", mock.Anything, n.ID, repository.ChannelEmail, repository.AttemptFailed, "channel disabled or unknown").Return(nil)
	f.repo.On("UpdateStatus", mock.Anything, n.ID, repository.StatusFailed, "All delivery channels failed").Return(nil)

	err := f.svc.Deliver(context.Background(), n)
	require.NoError(t, err)

	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliver_RateLimitExceeded(t *testing.T) {
	// Лимит 0: первый же вызов Allow возвращает false
	f := newFixture(t, ratelimit.NewMemoryLimiter(0), nil)
	n := testNotification(repository.ChannelEmail, repository.ChannelPush)

	f.repo.On("UpdateStatus", mock.Anything, n.ID, repository.StatusFailed, "Rate limit exceeded").Return(nil)

	err := f.svc.Deliver(context.Background(), n)
	require.NoError(t, err)

	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "RecordDeliveryAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// eventFixture отключает все каналы: фоновая доставка уведомления
// не мешает проверкам самого HandleEvent
func eventFixture(t *testing.T) fixture {
	f := newFixture(t, nil, map[string]bool{})
	f.repo.On("RecordDeliveryAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func TestHandleEvent_OrderPaid(t *testing.T) {
	f := eventFixture(t)

	f.repo.On("GetTemplate", mock.Anything, events.TypeOrderPaid).Return(repository.Template{
		Type:            events.TypeOrderPaid,
		TitleTemplate:   "Payment Successful",
		MessageTemplate: "Payment of ${{.amount}} for order #{{.order_id}} was successful. Your pizza is being prepared!",
	}, nil)

	var created repository.Notification
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n repository.Notification) bool {
		created = n
		return strings.HasPrefix(n.ID, "notif_")
	})).Return(nil)

	err := f.svc.HandleEvent(context.Background(), events.OrderPaid{
		PaymentID:     "payment_1",
		OrderID:       "order_1",
		Amount:        59900,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, "anonymous", created.UserID)
	assert.Equal(t, "order_1", created.OrderID)
	assert.Equal(t, "Payment Successful", created.Subject)
	assert.Equal(t, "Payment of $599.00 for order #order_1 was successful. Your pizza is being prepared!", created.Message)
	assert.Equal(t, events.TypeOrderPaid, created.TemplateType)
	assert.Equal(t, []string{repository.ChannelEmail, repository.ChannelPush}, created.Channels)
	assert.Equal(t, repository.StatusPending, created.Status)
}

func TestHandleEvent_OrderCreated(t *testing.T) {
	f := eventFixture(t)

	f.repo.On("GetTemplate", mock.Anything, events.TypeOrderCreated).Return(repository.Template{
		Type:            events.TypeOrderCreated,
		TitleTemplate:   "Pizza Order Confirmed",
		MessageTemplate: "Your pizza order #{{.orderId}} has been confirmed. Total: ${{.totalAmount}}.",
	}, nil)

	var created repository.Notification
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n repository.Notification) bool {
		created = n
		return true
	})).Return(nil)

	err := f.svc.HandleEvent(context.Background(), events.OrderCreated{
		OrderID:     "order_2",
		UserID:      "user_42",
		TotalAmount: 129800,
		ItemsCount:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, "user_42", created.UserID)
	assert.Equal(t, "Your pizza order #order_2 has been confirmed. Total: $1298.00.", created.Message)
}

func TestHandleEvent_PaymentFailed(t *testing.T) {
	f := eventFixture(t)

	f.repo.On("GetTemplate", mock.Anything, events.TypePaymentFailed).Return(repository.Template{
		Type:            events.TypePaymentFailed,
		TitleTemplate:   "Payment Failed",
		MessageTemplate: "Payment for order #{{.order_id}} failed: {{.failure_reason}}. Please try again or contact support.",
	}, nil)

	var created repository.Notification
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n repository.Notification) bool {
		created = n
		return true
	})).Return(nil)

	err := f.svc.HandleEvent(context.Background(), events.PaymentFailed{
		PaymentID:     "payment_9",
		OrderID:       "order_9",
		Amount:        59900,
		FailureReason: "Insufficient funds",
	})
	require.NoError(t, err)

	assert.Equal(t, "Payment for order #order_9 failed: Insufficient funds. Please try again or contact support.", created.Message)
}

func TestHandleEvent_ReplayedEventNotDuplicated(t *testing.T) {
	f := eventFixture(t)

	f.repo.On("GetTemplate", mock.Anything, events.TypeOrderPaid).Return(repository.Template{
		Type:            events.TypeOrderPaid,
		TitleTemplate:   "Payment Successful",
		MessageTemplate: "Payment of ${{.amount}} for order #{{.order_id}} was successful.",
	}, nil)

	var created repository.Notification
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n repository.Notification) bool {
		created = n
		return true
	})).Return(nil).Once()
	// БД отвергает вторую вставку уникальным индексом по event_id
	f.repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEvent).Once()

	paid := events.OrderPaid{
		Meta:          events.Meta{EventID: "evt_1"},
		PaymentID:     "payment_1",
		OrderID:       "order_1",
		Amount:        59900,
		PaymentMethod: "card",
	}

	// Первая доставка создаёт уведомление с event_id из конверта
	require.NoError(t, f.svc.HandleEvent(context.Background(), paid))
	assert.Equal(t, "evt_1", created.EventID)

	// Повторная доставка того же события: не ошибка (offset коммитится)
	// и второе уведомление не создаётся
	require.NoError(t, f.svc.HandleEvent(context.Background(), paid))
	f.repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestHandleEvent_TemplateMissingDropsEvent(t *testing.T) {
	f := eventFixture(t)

	f.repo.On("GetTemplate", mock.Anything, events.TypeOrderPaid).Return(repository.Template{}, repository.ErrTemplateNotFound)

	err := f.svc.HandleEvent(context.Background(), events.OrderPaid{OrderID: "order_1"})
	require.NoError(t, err)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleEvent_BrokenTemplateUsesFallback(t *testing.T) {
	f := eventFixture(t)

	// Шаблон ссылается на несуществующее поле
	f.repo.On("GetTemplate", mock.Anything, events.TypeOrderPaid).Return(repository.Template{
		Type:            events.TypeOrderPaid,
		TitleTemplate:   "Payment Successful",
		MessageTemplate: "Payment of ${{.nonexistent}} was successful.",
	}, nil)

	var created repository.Notification
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n repository.Notification) bool {
		created = n
		return true
	})).Return(nil)

	err := f.svc.HandleEvent(context.Background(), events.OrderPaid{OrderID: "order_1"})
	require.NoError(t, err)

	assert.Equal(t, "Payment Successful", created.Subject)
	assert.Equal(t, "Payment for order #order_1 was successful.", created.Message)
}

func TestHandleEvent_MissingOrderIDSkipped(t *testing.T) {
	f := eventFixture(t)

	err := f.svc.HandleEvent(context.Background(), events.OrderPaid{PaymentID: "payment_1"})
	require.NoError(t, err)

	f.repo.AssertNotCalled(t, "GetTemplate", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleEvent_IrrelevantEventSkipped(t *testing.T) {
	f := eventFixture(t)

	err := f.svc.HandleEvent(context.Background(), events.OrderStatusChanged{
		OrderID:   "order_1",
		NewStatus: "PAID",
	})
	require.NoError(t, err)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleEvent_RepositoryError(t *testing.T) {
	f := eventFixture(t)

	f.repo.On("GetTemplate", mock.Anything, events.TypeOrderPaid).Return(repository.Template{
		Type:            events.TypeOrderPaid,
		TitleTemplate:   "Payment Successful",
		MessageTemplate: "ok",
	}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := f.svc.HandleEvent(context.Background(), events.OrderPaid{OrderID: "order_1"})
	require.Error(t, err)
}

func TestSend_Success(t *testing.T) {
	f := eventFixture(t)

	var created repository.Notification
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n repository.Notification) bool {
		created = n
		return strings.HasPrefix(n.ID, "notif_")
	})).Return(nil)

	n, err := f.svc.Send(context.Background(), service.SendRequest{
		UserID:  "user_1",
		Message: "Custom message",
	})
	require.NoError(t, err)

	assert.Equal(t, repository.StatusPending, n.Status)
	assert.Equal(t, "Pizza Order Notification", created.Subject)
	assert.Equal(t, []string{repository.ChannelEmail}, created.Channels)
	assert.Equal(t, "normal", created.Priority)
}

func TestSend_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  service.SendRequest
	}{
		{
			name: "missing user id",
			req:  service.SendRequest{Message: "hello"},
		},
		{
			name: "missing message",
			req:  service.SendRequest{UserID: "user_1"},
		},
		{
			name: "invalid channel",
			req:  service.SendRequest{UserID: "user_1", Message: "hello", Channels: []string{"PIGEON"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)

			_, err := f.svc.Send(context.Background(), tt.req)
			require.ErrorIs(t, err, service.ErrValidation)

			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
