package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/services/notification/internal/repository"
)

// WebhookSender доставляет уведомления HTTP POST-ом на webhook пользователя.
// Единственный канал с реальной сетевой доставкой.
type WebhookSender struct {
	logger *zap.Logger
	client *http.Client
}

// NewWebhookSender создаёт webhook sender
func NewWebhookSender(logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// webhookPayload — тело POST-а на webhook
type webhookPayload struct {
	NotificationID string `json:"notificationId"`
	UserID         string `json:"userId"`
	OrderID        string `json:"orderId,omitempty"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	Timestamp      string `json:"timestamp"`
}

// Send отправляет уведомление на webhook URL пользователя
func (s *WebhookSender) Send(ctx context.Context, n repository.Notification, contact Contact) error {
	if contact.WebhookURL == "" {
		return fmt.Errorf("webhook URL is empty for user %s", n.UserID)
	}

	payload := webhookPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		OrderID:        n.OrderID,
		Subject:        n.Subject,
		Message:        n.Message,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, contact.WebhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// При не-2xx читаем тело ответа для диагностики
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	s.logger.Debug("webhook notification delivered",
		zap.String("notification_id", n.ID),
		zap.String("webhook_url", contact.WebhookURL),
	)

	return nil
}
