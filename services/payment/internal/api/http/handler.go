package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/platform/observability"
	"github.com/char1ks/pizzas/services/payment/internal/repository"
	"github.com/char1ks/pizzas/services/payment/internal/service"
)

// Handler содержит HTTP-обработчики Payment Service
type Handler struct {
	logger         *zap.Logger
	paymentService *service.PaymentService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, paymentService *service.PaymentService) *Handler {
	return &Handler{
		logger:         logger,
		paymentService: paymentService,
	}
}

// createPaymentRequest — тело POST /api/v1/payments.
// order_id принимается в обоих написаниях, snake_case и camelCase.
type createPaymentRequest struct {
	OrderIDSnake  string `json:"order_id"`
	OrderIDCamel  string `json:"orderId"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
}

func (r createPaymentRequest) orderID() string {
	if r.OrderIDSnake != "" {
		return r.OrderIDSnake
	}
	return r.OrderIDCamel
}

// paymentJSON — представление платежа в ответах API
type paymentJSON struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId"`
	Amount        int64         `json:"amount"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        string        `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	FailureReason string        `json:"failureReason,omitempty"`
	Attempts      []attemptJSON `json:"attempts,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

type attemptJSON struct {
	AttemptNumber int    `json:"attemptNumber"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	StartedAt     string `json:"startedAt"`
	CompletedAt   string `json:"completedAt,omitempty"`
}

// CreatePayment обрабатывает POST /api/v1/payments.
// Возвращает 202: исполнение платежа с ретраями занимает до минуты,
// держать HTTP-соединение всё это время нет смысла. Если платёж по
// заказу уже существует, повторный POST идемпотентно возвращает его.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}

	orderID := req.orderID()
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "Validation error", "order_id is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Validation error", "amount must be positive")
		return
	}

	existing, err := h.paymentService.GetPaymentByOrder(r.Context(), orderID)
	if err == nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"success":   true,
			"paymentId": existing.ID,
			"orderId":   existing.OrderID,
			"status":    existing.Status,
			"message":   "Payment already exists for this order",
			"timestamp": timestamp(),
		})
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Error("failed to check existing payment", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create payment", "")
		return
	}

	// Исполнение уходит в фон с собственным контекстом: жизнь платежа
	// не должна обрываться вместе с HTTP-запросом
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := h.paymentService.ProcessOrder(ctx, orderID, req.Amount, req.PaymentMethod); err != nil {
			h.logger.Error("async payment processing failed",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":   true,
		"orderId":   orderID,
		"status":    repository.StatusPending,
		"message":   "Payment accepted for processing",
		"timestamp": timestamp(),
	})
}

// GetPayment обрабатывает GET /api/v1/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request, paymentID string) {
	log := h.requestLogger(r)

	payment, attempts, err := h.paymentService.GetPayment(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Payment not found", "")
			return
		}
		log.Error("failed to get payment", zap.String("payment_id", paymentID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve payment", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"payment":   toPaymentJSON(payment, attempts),
		"timestamp": timestamp(),
	})
}

// GetPaymentByOrder обрабатывает GET /api/v1/payments/order/{order_id}
func (h *Handler) GetPaymentByOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	log := h.requestLogger(r)

	payment, err := h.paymentService.GetPaymentByOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Payment not found", "")
			return
		}
		log.Error("failed to get payment by order", zap.String("order_id", orderID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve payment", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"payment":   toPaymentJSON(payment, nil),
		"timestamp": timestamp(),
	})
}

// GetBreakerStatus обрабатывает GET /api/v1/payments/circuit-breaker/status
func (h *Handler) GetBreakerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"circuitBreaker": h.paymentService.BreakerSnapshot(),
		"timestamp":      timestamp(),
	})
}

// requestLogger возвращает logger запроса (с trace_id, если middleware его положил)
func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	if l := observability.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return h.logger
}

func toPaymentJSON(payment repository.Payment, attempts []repository.PaymentAttempt) paymentJSON {
	out := paymentJSON{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		FailureReason: payment.FailureReason,
		CreatedAt:     payment.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     payment.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, attempt := range attempts {
		a := attemptJSON{
			AttemptNumber: attempt.AttemptNumber,
			Status:        attempt.Status,
			ErrorMessage:  attempt.ErrorMessage,
			StartedAt:     attempt.StartedAt.UTC().Format(time.RFC3339),
		}
		if attempt.CompletedAt != nil {
			a.CompletedAt = attempt.CompletedAt.UTC().Format(time.RFC3339)
		}
		out.Attempts = append(out.Attempts, a)
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
