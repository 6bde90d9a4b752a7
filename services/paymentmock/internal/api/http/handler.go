package httpapi

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Причины отказа внешнего платёжного провайдера
var failureReasons = []string{
	"Insufficient funds",
	"Card declined by bank",
	"Security validation failed",
	"Transaction limit exceeded",
}

// Handler имитирует внешний платёжный провайдер:
// настраиваемая доля отказов и задержка сети
type Handler struct {
	logger      *zap.Logger
	failureRate float64
	delay       time.Duration
}

// NewHandler создаёт новый mock-обработчик платежей
func NewHandler(logger *zap.Logger, failureRate float64, delay time.Duration) *Handler {
	return &Handler{
		logger:      logger,
		failureRate: failureRate,
		delay:       delay,
	}
}

// ProcessPayment обрабатывает POST /api/v1/payments/process.
// Возвращает 200 при успешном списании и 400 со случайной причиной отказа.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	// Имитируем сетевую задержку провайдера
	select {
	case <-r.Context().Done():
		return
	case <-time.After(h.delay):
	}

	if rand.Float64() < h.failureRate {
		failureReason := failureReasons[rand.Intn(len(failureReasons))]
		h.logger.Warn("payment processing failed (simulated)",
			zap.String("reason", failureReason),
		)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":       false,
			"transactionId": "txn_fail_" + uuid.New().String(),
			"failureReason": failureReason,
			"timestamp":     timestamp(),
		})
		return
	}

	transactionID := "txn_succ_" + uuid.New().String()
	h.logger.Info("payment processing successful (simulated)",
		zap.String("transaction_id", transactionID),
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"transactionId": transactionID,
		"message":       "Payment processed successfully",
		"timestamp":     timestamp(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
