package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/platform/observability"
	"github.com/char1ks/pizzas/services/order/internal/repository"
	"github.com/char1ks/pizzas/services/order/internal/service"
)

// Handler содержит HTTP-обработчики Order Service.
// Зависит от service слоя, но не знает о деталях реализации (Kafka, БД).
type Handler struct {
	logger       *zap.Logger
	orderService *service.OrderService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, orderService *service.OrderService) *Handler {
	return &Handler{
		logger:       logger,
		orderService: orderService,
	}
}

// createOrderRequest — тело POST /api/v1/orders
type createOrderRequest struct {
	UserID          string                   `json:"userId"`
	Items           []createOrderRequestItem `json:"items"`
	DeliveryAddress string                   `json:"deliveryAddress"`
	PaymentMethod   string                   `json:"paymentMethod"`
}

type createOrderRequestItem struct {
	PizzaID  string `json:"pizzaId"`
	Quantity int    `json:"quantity"`
}

// updateStatusRequest — тело PUT /api/v1/orders/{id}/status
type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// orderJSON — представление заказа в ответах API
type orderJSON struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Status          string          `json:"status"`
	Total           int64           `json:"total"`
	DeliveryAddress string          `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []orderItemJSON `json:"items"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

type orderItemJSON struct {
	PizzaID   string `json:"pizzaId"`
	PizzaName string `json:"pizzaName"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// CreateOrder обрабатывает POST /api/v1/orders.
// Возвращает 202 Accepted: оплата и дальнейшие шаги саги асинхронные,
// клиент следит за статусом через GET.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.requestLogger(r)

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid create order payload", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			PizzaID:  item.PizzaID,
			Quantity: item.Quantity,
		})
	}

	result, err := h.orderService.CreateOrder(ctx, service.CreateOrderInput{
		UserID:          req.UserID,
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			log.Warn("order validation failed", zap.Error(err))
			writeError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		log.Error("failed to create order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create order", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":   true,
		"orderId":   result.OrderID,
		"status":    result.Status,
		"total":     result.Total,
		"timestamp": timestamp(),
	})
}

// GetOrder обрабатывает GET /api/v1/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	ctx := r.Context()
	log := h.requestLogger(r)

	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found", "")
			return
		}
		log.Error("failed to get order", zap.String("order_id", orderID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve order", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"order":     toOrderJSON(order),
		"timestamp": timestamp(),
	})
}

// ListOrders обрабатывает GET /api/v1/orders?userId=&status=&limit=&offset=
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.requestLogger(r)

	query := r.URL.Query()
	filter := repository.ListFilter{
		UserID: query.Get("userId"),
		Status: query.Get("status"),
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Validation error", "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Validation error", "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	orders, err := h.orderService.ListOrders(ctx, filter)
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list orders", "")
		return
	}

	list := make([]orderJSON, 0, len(orders))
	for _, order := range orders {
		list = append(list, toOrderJSON(order))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"orders":    list,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
		"timestamp": timestamp(),
	})
}

// UpdateStatus обрабатывает PUT /api/v1/orders/{id}/status (внутренний API)
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	ctx := r.Context()
	log := h.requestLogger(r)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "Validation error", "status is required")
		return
	}

	err := h.orderService.UpdateStatus(ctx, orderID, req.Status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Order not found", "")
		case errors.Is(err, repository.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "Invalid status transition", err.Error())
		default:
			log.Error("failed to update order status",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "Failed to update order status", "")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order status updated",
	})
}

// requestLogger возвращает logger запроса (с trace_id, если middleware его положил)
func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	if l := observability.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return h.logger
}

func toOrderJSON(order repository.Order) orderJSON {
	items := make([]orderItemJSON, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemJSON{
			PizzaID:   item.PizzaID,
			PizzaName: item.PizzaName,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return orderJSON{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		Total:           order.Total,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		Items:           items,
		CreatedAt:       order.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       order.UpdatedAt.UTC().Format(time.RFC3339),
	}
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
