package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/platform/observability"
	"github.com/char1ks/pizzas/services/notification/internal/repository"
	"github.com/char1ks/pizzas/services/notification/internal/service"
)

// Handler содержит HTTP-обработчики Notification Service
type Handler struct {
	logger              *zap.Logger
	notificationService *service.NotificationService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, notificationService *service.NotificationService) *Handler {
	return &Handler{
		logger:              logger,
		notificationService: notificationService,
	}
}

// sendNotificationRequest - тело POST /api/v1/notifications
type sendNotificationRequest struct {
	UserID   string   `json:"userId"`
	OrderID  string   `json:"orderId"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
	Channels []string `json:"channels"`
	Priority string   `json:"priority"`
}

// notificationJSON - представление уведомления в ответах API
type notificationJSON struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	OrderID       string        `json:"orderId,omitempty"`
	Subject       string        `json:"subject"`
	Message       string        `json:"message"`
	Channels      []string      `json:"channels"`
	Priority      string        `json:"priority"`
	TemplateType  string        `json:"templateType,omitempty"`
	Status        string        `json:"status"`
	FailureReason string        `json:"failureReason,omitempty"`
	Attempts      []attemptJSON `json:"attempts,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

type attemptJSON struct {
	Channel      string `json:"channel"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	AttemptedAt  string `json:"attemptedAt"`
}

// SendNotification обрабатывает POST /api/v1/notifications.
// Возвращает 202: доставка по каналам выполняется в фоне.
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}

	n, err := h.notificationService.Send(r.Context(), service.SendRequest{
		UserID:   req.UserID,
		OrderID:  req.OrderID,
		Subject:  req.Subject,
		Message:  req.Message,
		Channels: req.Channels,
		Priority: req.Priority,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		log.Error("failed to queue notification", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to queue notification", "")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":        true,
		"notificationId": n.ID,
		"status":         n.Status,
		"channels":       n.Channels,
		"timestamp":      timestamp(),
	})
}

// GetNotification обрабатывает GET /api/v1/notifications/{id}
func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request, notificationID string) {
	log := h.requestLogger(r)

	n, attempts, err := h.notificationService.GetNotification(r.Context(), notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found", "")
			return
		}
		log.Error("failed to get notification", zap.String("notification_id", notificationID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve notification", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"notification": toNotificationJSON(n, attempts),
		"timestamp":    timestamp(),
	})
}

// requestLogger возвращает logger запроса (с trace_id, если middleware его положил)
func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	if l := observability.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return h.logger
}

func toNotificationJSON(n repository.Notification, attempts []repository.DeliveryAttempt) notificationJSON {
	out := notificationJSON{
		ID:            n.ID,
		UserID:        n.UserID,
		OrderID:       n.OrderID,
		Subject:       n.Subject,
		Message:       n.Message,
		Channels:      n.Channels,
		Priority:      n.Priority,
		TemplateType:  n.TemplateType,
		Status:        n.Status,
		FailureReason: n.FailureReason,
		CreatedAt:     n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     n.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, attempt := range attempts {
		out.Attempts = append(out.Attempts, attemptJSON{
			Channel:      attempt.Channel,
			Status:       attempt.Status,
			ErrorMessage: attempt.ErrorMessage,
			AttemptedAt:  attempt.AttemptedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errText, message string) {
	body := map[string]interface{}{
		"success": false,
		"error":   errText,
	}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
