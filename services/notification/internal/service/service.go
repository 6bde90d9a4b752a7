package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/notification/internal/channel"
	"github.com/char1ks/pizzas/services/notification/internal/ratelimit"
	"github.com/char1ks/pizzas/services/notification/internal/repository"
	"github.com/char1ks/pizzas/services/notification/internal/templates"
)

// ErrValidation возвращается при ошибках валидации входных данных
var ErrValidation = errors.New("validation error")

const (
	defaultSubject  = "Pizza Order Notification"
	defaultPriority = "normal"

	// Сколько времени даём на фоновую доставку по всем каналам
	deliveryTimeout = 2 * time.Minute
)

// Каналы по умолчанию для уведомлений, порождённых событиями
var defaultEventChannels = []string{repository.ChannelEmail, repository.ChannelPush}

// NotificationService содержит бизнес-логику отправки уведомлений
type NotificationService struct {
	logger   *zap.Logger
	repo     repository.NotificationRepository
	renderer *templates.Renderer
	senders  map[string]channel.Sender
	enabled  map[string]bool
	limiter  ratelimit.Limiter
}

// NewNotificationService создаёт новый экземпляр NotificationService.
// senders - реализации каналов доставки, enabled - флаги включения каналов.
func NewNotificationService(
	logger *zap.Logger,
	repo repository.NotificationRepository,
	renderer *templates.Renderer,
	senders map[string]channel.Sender,
	enabled map[string]bool,
	limiter ratelimit.Limiter,
) *NotificationService {
	return &NotificationService{
		logger:   logger,
		repo:     repo,
		renderer: renderer,
		senders:  senders,
		enabled:  enabled,
		limiter:  limiter,
	}
}

// SendRequest - запрос на отправку уведомления через REST API
type SendRequest struct {
	UserID   string
	OrderID  string
	Subject  string
	Message  string
	Channels []string
	Priority string
}

// Send валидирует запрос, сохраняет уведомление со статусом PENDING
// и запускает фоновую доставку по каналам
func (s *NotificationService) Send(ctx context.Context, req SendRequest) (repository.Notification, error) {
	if req.UserID == "" {
		return repository.Notification{}, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if req.Message == "" {
		return repository.Notification{}, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if len(req.Channels) == 0 {
		req.Channels = []string{repository.ChannelEmail}
	}
	for _, ch := range req.Channels {
		if !validChannel(ch) {
			return repository.Notification{}, fmt.Errorf("%w: invalid channel: %s", ErrValidation, ch)
		}
	}
	if req.Subject == "" {
		req.Subject = defaultSubject
	}
	if req.Priority == "" {
		req.Priority = defaultPriority
	}

	n := repository.Notification{
		ID:       "notif_" + uuid.New().String(),
		UserID:   req.UserID,
		OrderID:  req.OrderID,
		Subject:  req.Subject,
		Message:  req.Message,
		Channels: req.Channels,
		Priority: req.Priority,
		Status:   repository.StatusPending,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to create notification record",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
		return repository.Notification{}, err
	}

	s.logger.Info("notification queued for sending",
		zap.String("notification_id", n.ID),
		zap.String("user_id", n.UserID),
		zap.Strings("channels", n.Channels),
		zap.String("priority", n.Priority),
	)

	s.deliverAsync(n)

	return n, nil
}

// HandleEvent порождает уведомление из доменного события.
// Возвращает nil для событий, которые нужно пропустить (нет шаблона,
// нет order_id, событие уже обработано): consumer закоммитит offset
// и не будет ретраить. Идемпотентность повторных доставок обеспечивает
// уникальный индекс по event_id.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	userID, orderID, eventID, data := eventData(event)

	if orderID == "" {
		s.logger.Warn("event missing order id, skipping notification",
			zap.String("event_type", event.Type()),
		)
		return nil
	}

	tmpl, err := s.repo.GetTemplate(ctx, event.Type())
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			s.logger.Warn("no template for event type, dropping event",
				zap.String("event_type", event.Type()),
				zap.String("order_id", orderID),
			)
			return nil
		}
		return err
	}

	subject, message, err := s.renderer.Render(tmpl, data)
	if err != nil {
		// Сломанный или неполный шаблон не должен ронять обработку
		// события, подставляем жёсткий fallback-текст
		s.logger.Warn("template rendering failed, using fallback text",
			zap.Error(err),
			zap.String("event_type", event.Type()),
			zap.String("order_id", orderID),
		)
		subject, message = fallbackText(event.Type(), orderID)
	}

	n := repository.Notification{
		ID:           "notif_" + uuid.New().String(),
		EventID:      eventID,
		UserID:       userID,
		OrderID:      orderID,
		Subject:      subject,
		Message:      message,
		Channels:     defaultEventChannels,
		Priority:     defaultPriority,
		TemplateType: event.Type(),
		Status:       repository.StatusPending,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			// Повторная доставка уже обработанного события:
			// коммитим offset и не создаём второе уведомление
			s.logger.Info("event already processed, skipping",
				zap.String("event_type", event.Type()),
				zap.String("event_id", eventID),
				zap.String("order_id", orderID),
			)
			return nil
		}
		s.logger.Error("failed to save notification",
			zap.Error(err),
			zap.String("event_type", event.Type()),
			zap.String("order_id", orderID),
		)
		return err
	}

	s.logger.Info("notification saved",
		zap.String("notification_id", n.ID),
		zap.String("event_type", event.Type()),
		zap.String("order_id", orderID),
	)

	s.deliverAsync(n)

	return nil
}

// GetNotification возвращает уведомление с попытками доставки
func (s *NotificationService) GetNotification(ctx context.Context, id string) (repository.Notification, []repository.DeliveryAttempt, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Notification{}, nil, err
	}
	attempts, err := s.repo.ListDeliveryAttempts(ctx, id)
	if err != nil {
		return repository.Notification{}, nil, err
	}
	return n, attempts, nil
}

// deliverAsync запускает доставку в фоне с собственным контекстом:
// доставка не должна обрываться вместе с HTTP-запросом или offset-циклом
func (s *NotificationService) deliverAsync(n repository.Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := s.Deliver(ctx, n); err != nil {
			s.logger.Error("notification delivery failed",
				zap.Error(err),
				zap.String("notification_id", n.ID),
			)
		}
	}()
}

// Deliver доставляет уведомление по всем каналам и выставляет
// терминальный статус: SENT если доставлен хотя бы один канал,
// FAILED если не доставлен ни один или превышен rate limit
func (s *NotificationService) Deliver(ctx context.Context, n repository.Notification) error {
	allowed, err := s.limiter.Allow(ctx)
	if err != nil {
		// Недоступный limiter не должен останавливать уведомления
		s.logger.Warn("rate limiter check failed, proceeding",
			zap.Error(err),
			zap.String("notification_id", n.ID),
		)
		allowed = true
	}
	if !allowed {
		s.logger.Warn("notification rejected by rate limit",
			zap.String("notification_id", n.ID),
			zap.String("user_id", n.UserID),
		)
		return s.repo.UpdateStatus(ctx, n.ID, repository.StatusFailed, "Rate limit exceeded")
	}

	contact := channel.ContactForUser(n.UserID)

	var sent, failed int
	for _, ch := range n.Channels {
		if err := s.sendThroughChannel(ctx, n, ch, contact); err != nil {
			failed++
			continue
		}
		sent++
	}

	if sent == 0 {
		return s.repo.UpdateStatus(ctx, n.ID, repository.StatusFailed, "All delivery channels failed")
	}

	if failed > 0 {
		s.logger.Warn("notification delivered partially",
			zap.String("notification_id", n.ID),
			zap.Int("sent", sent),
			zap.Int("failed", failed),
		)
	}

	return s.repo.UpdateStatus(ctx, n.ID, repository.StatusSent, "")
}

// sendThroughChannel отправляет уведомление по одному каналу
// и записывает попытку доставки
func (s *NotificationService) sendThroughChannel(ctx context.Context, n repository.Notification, ch string, contact channel.Contact) error {
	sender, ok := s.senders[ch]
	if !ok || !s.enabled[ch] {
		s.logger.Warn("channel disabled or unknown",
			zap.String("channel", ch),
			zap.String("notification_id", n.ID),
		)
		s.recordAttempt(ctx, n.ID, ch, repository.AttemptFailed, "channel disabled or unknown")
		return fmt.Errorf("channel %s disabled or unknown", ch)
	}

	if err := sender.Send(ctx, n, contact); err != nil {
		s.logger.Error("channel send failed",
			zap.Error(err),
			zap.String("channel", ch),
			zap.String("notification_id", n.ID),
		)
		s.recordAttempt(ctx, n.ID, ch, repository.AttemptFailed, err.Error())
		return err
	}

	s.recordAttempt(ctx, n.ID, ch, repository.AttemptSent, "")
	return nil
}

// recordAttempt сохраняет попытку доставки, ошибка записи только логируется
func (s *NotificationService) recordAttempt(ctx context.Context, notificationID, ch, status, errorMessage string) {
	if err := s.repo.RecordDeliveryAttempt(ctx, notificationID, ch, status, errorMessage); err != nil {
		s.logger.Error("failed to record delivery attempt",
			zap.Error(err),
			zap.String("notification_id", notificationID),
			zap.String("channel", ch),
		)
	}
}

// eventData извлекает из события идентификаторы и данные для шаблона.
// Суммы форматируются заранее: шаблоны подставляют готовые строки.
func eventData(event events.Event) (userID, orderID, eventID string, data map[string]interface{}) {
	switch e := event.(type) {
	case events.OrderCreated:
		userID = e.UserID
		orderID = e.OrderID
		eventID = e.EventID
		data = map[string]interface{}{
			"orderId":       e.OrderID,
			"userId":        e.UserID,
			"totalAmount":   templates.FormatMoney(e.TotalAmount),
			"itemsCount":    e.ItemsCount,
			"paymentMethod": e.PaymentMethod,
		}
	case events.OrderPaid:
		orderID = e.OrderID
		eventID = e.EventID
		data = map[string]interface{}{
			"order_id":       e.OrderID,
			"payment_id":     e.PaymentID,
			"amount":         templates.FormatMoney(e.Amount),
			"payment_method": e.PaymentMethod,
		}
	case events.PaymentFailed:
		orderID = e.OrderID
		eventID = e.EventID
		data = map[string]interface{}{
			"order_id":       e.OrderID,
			"payment_id":     e.PaymentID,
			"amount":         templates.FormatMoney(e.Amount),
			"payment_method": e.PaymentMethod,
			"failure_reason": e.FailureReason,
		}
	}

	// События платежей не переносят пользователя
	if userID == "" {
		userID = "anonymous"
	}

	return userID, orderID, eventID, data
}

// fallbackText возвращает жёсткий текст уведомления,
// когда шаблон не отрендерился
func fallbackText(eventType, orderID string) (subject, message string) {
	switch eventType {
	case events.TypeOrderCreated:
		return "Pizza Order Confirmed", fmt.Sprintf("Your pizza order #%s has been confirmed.", orderID)
	case events.TypeOrderPaid:
		return "Payment Successful", fmt.Sprintf("Payment for order #%s was successful.", orderID)
	case events.TypePaymentFailed:
		return "Payment Failed", fmt.Sprintf("Payment for order #%s failed.", orderID)
	}
	return defaultSubject, fmt.Sprintf("Update for order #%s.", orderID)
}

func validChannel(ch string) bool {
	switch ch {
	case repository.ChannelEmail, repository.ChannelSMS, repository.ChannelPush, repository.ChannelWebhook:
		return true
	}
	return false
}
