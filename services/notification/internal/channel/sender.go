package channel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/services/notification/internal/repository"
)

// Contact содержит контактные данные пользователя для всех каналов
type Contact struct {
	Email       string
	Phone       string
	DeviceToken string
	WebhookURL  string
}

// ContactForUser возвращает контактные данные пользователя.
// Внешнего профиля пользователей в системе нет, данные детерминированно
// выводятся из userID.
func ContactForUser(userID string) Contact {
	return Contact{
		Email:       userID + "@example.com",
		Phone:       "+1234567890",
		DeviceToken: "device_token_" + userID,
		WebhookURL:  "https://example.com/webhook",
	}
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Sender --dir=. --output=./mocks --outpkg=mocks

// Sender определяет интерфейс отправки уведомления по одному каналу
type Sender interface {
	Send(ctx context.Context, n repository.Notification, contact Contact) error
}

// MockSender имитирует доставку по каналам EMAIL, SMS и PUSH:
// пишет лог и выдерживает паузу, как внешний провайдер
type MockSender struct {
	logger  *zap.Logger
	channel string
	delay   time.Duration
}

// NewMockSender создаёт mock sender для указанного канала
func NewMockSender(logger *zap.Logger, channel string) *MockSender {
	return &MockSender{
		logger:  logger,
		channel: channel,
		delay:   100 * time.Millisecond,
	}
}

// Send логирует отправку и имитирует задержку провайдера
func (s *MockSender) Send(ctx context.Context, n repository.Notification, contact Contact) error {
	var to string
	switch s.channel {
	case repository.ChannelEmail:
		to = contact.Email
	case repository.ChannelSMS:
		to = contact.Phone
	case repository.ChannelPush:
		to = contact.DeviceToken
	}

	// SMS обрезается до стандартной длины сообщения
	s.logger.Info("sending notification",
		zap.String("channel", s.channel),
		zap.String("notification_id", n.ID),
		zap.String("to", to),
		zap.String("subject", n.Subject),
		zap.String("message_preview", truncate(n.Message, 160)),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
	}

	return nil
}

// truncate обрезает строку до указанной длины
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
