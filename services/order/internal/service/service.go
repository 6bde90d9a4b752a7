package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/events"
	"github.com/char1ks/pizzas/services/order/internal/repository"
)

const (
	serviceName    = "order-service"
	serviceVersion = "1.0.0"
)

// ErrValidation возвращается при некорректных входных данных запроса
var ErrValidation = errors.New("validation error")

// allowedTransitions описывает граф переходов статусов заказа.
// Ключ — целевой статус, значение — статусы, из которых переход разрешён.
// Обратных переходов нет: повторная доставка события не может
// откатить заказ из PAID обратно в PENDING.
var allowedTransitions = map[string][]string{
	repository.StatusProcessing: {repository.StatusPending},
	repository.StatusPaid:       {repository.StatusPending, repository.StatusProcessing},
	repository.StatusFailed:     {repository.StatusPending, repository.StatusProcessing},
	repository.StatusCompleted:  {repository.StatusPaid},
}

// OrderService содержит бизнес-логику работы с заказами:
// создание через transactional outbox и продвижение саги по событиям оплаты
type OrderService struct {
	logger     *zap.Logger
	orderRepo  repository.OrderRepository
	menuClient MenuClient
}

// NewOrderService создаёт новый экземпляр OrderService
func NewOrderService(logger *zap.Logger, orderRepo repository.OrderRepository, menuClient MenuClient) *OrderService {
	return &OrderService{
		logger:     logger,
		orderRepo:  orderRepo,
		menuClient: menuClient,
	}
}

// CreateOrderInput содержит входные данные для создания заказа
type CreateOrderInput struct {
	UserID          string
	Items           []CreateOrderItem
	DeliveryAddress string
	PaymentMethod   string
}

// CreateOrderItem — позиция заказа во входных данных
type CreateOrderItem struct {
	PizzaID  string
	Quantity int
}

// CreateOrderOutput содержит результат создания заказа
type CreateOrderOutput struct {
	OrderID string
	Status  string
	Total   int64
}

// CreateOrder создаёт новый заказ: валидирует позиции через каталог,
// считает сумму и одной транзакцией сохраняет заказ вместе с событием
// OrderCreated в outbox. Публикацией занимается outbox dispatcher.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	if input.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: deliveryAddress is required", ErrValidation)
	}
	if input.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: paymentMethod is required", ErrValidation)
	}

	userID := input.UserID
	if userID == "" {
		userID = "anonymous"
	}

	orderID := "order_" + uuid.New().String()

	// Валидируем позиции через каталог и считаем сумму
	items := make([]repository.OrderItem, 0, len(input.Items))
	var total int64
	for _, item := range input.Items {
		if item.PizzaID == "" {
			return nil, fmt.Errorf("%w: pizzaId is required for each item", ErrValidation)
		}
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		pizza, err := s.menuClient.GetPizza(ctx, item.PizzaID)
		if err != nil {
			if errors.Is(err, ErrPizzaNotFound) {
				return nil, fmt.Errorf("%w: pizza not found: %s", ErrValidation, item.PizzaID)
			}
			return nil, fmt.Errorf("get pizza details for %s: %w", item.PizzaID, err)
		}

		subtotal := pizza.Price * int64(quantity)
		items = append(items, repository.OrderItem{
			PizzaID:   pizza.ID,
			PizzaName: pizza.Name,
			Price:     pizza.Price,
			Quantity:  quantity,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	order := repository.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          repository.StatusPending,
		Total:           total,
		DeliveryAddress: input.DeliveryAddress,
		PaymentMethod:   input.PaymentMethod,
		Items:           items,
	}

	eventPayload, err := s.buildOrderCreatedPayload(order, input.Items)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateWithOutbox(ctx, order, eventPayload); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", orderID),
		zap.String("user_id", userID),
		zap.Int64("total", total),
		zap.Int("items_count", len(items)),
	)

	return &CreateOrderOutput{
		OrderID: orderID,
		Status:  repository.StatusPending,
		Total:   total,
	}, nil
}

// GetOrder получает заказ по ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (repository.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return repository.Order{}, err
	}
	return order, nil
}

// GetSagaState возвращает состояние саги заказа
func (s *OrderService) GetSagaState(ctx context.Context, orderID string) (repository.SagaState, error) {
	return s.orderRepo.GetSagaState(ctx, orderID)
}

// ListOrders возвращает заказы по фильтру.
// Limit по умолчанию 50, максимум 100.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.ListFilter) ([]repository.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.orderRepo.List(ctx, filter)
}

// UpdateStatus переводит заказ в новый статус и кладёт OrderStatusChanged
// в outbox. Допустимы только переходы из allowedTransitions.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus, reason string) error {
	allowedFrom, ok := allowedTransitions[newStatus]
	if !ok {
		return fmt.Errorf("%w: invalid status: %s", ErrValidation, newStatus)
	}

	payload, err := s.buildStatusChangedPayload(orderID, newStatus, reason)
	if err != nil {
		return err
	}

	oldStatus, err := s.orderRepo.UpdateStatusWithOutbox(ctx, orderID, newStatus, allowedFrom, payload)
	if err != nil {
		return err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", newStatus),
		zap.String("reason", reason),
	)
	return nil
}

// HandleOrderPaid обрабатывает событие OrderPaid: переводит заказ в PAID
// и продвигает сагу на шаг payment_processed.
// Повторная доставка события безопасна: заказ уже в PAID, переход
// отвергается guard-ом и обработчик завершается без ошибки.
func (s *OrderService) HandleOrderPaid(ctx context.Context, event events.OrderPaid) error {
	payload, err := s.buildStatusChangedPayload(event.OrderID, repository.StatusPaid, "Payment successful")
	if err != nil {
		return err
	}

	_, err = s.orderRepo.UpdateStatusWithOutbox(ctx, event.OrderID, repository.StatusPaid,
		allowedTransitions[repository.StatusPaid], payload)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			s.logger.Info("order already paid, skipping duplicate event",
				zap.String("order_id", event.OrderID),
				zap.String("event_id", event.EventID),
			)
			return nil
		}
		return fmt.Errorf("mark order paid: %w", err)
	}

	if err := s.orderRepo.AdvanceSagaStep(ctx, event.OrderID, "payment_processed"); err != nil {
		return fmt.Errorf("advance saga step: %w", err)
	}

	s.logger.Info("order marked as PAID",
		zap.String("order_id", event.OrderID),
		zap.String("payment_id", event.PaymentID),
	)
	return nil
}

// HandlePaymentFailed обрабатывает событие PaymentFailed: переводит заказ
// в FAILED и помечает сагу как требующую компенсации
func (s *OrderService) HandlePaymentFailed(ctx context.Context, event events.PaymentFailed) error {
	reason := event.FailureReason
	if reason == "" {
		reason = "Payment processing failed"
	}

	payload, err := s.buildStatusChangedPayload(event.OrderID, repository.StatusFailed, reason)
	if err != nil {
		return err
	}

	_, err = s.orderRepo.UpdateStatusWithOutbox(ctx, event.OrderID, repository.StatusFailed,
		allowedTransitions[repository.StatusFailed], payload)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			s.logger.Info("order already in terminal status, skipping duplicate event",
				zap.String("order_id", event.OrderID),
				zap.String("event_id", event.EventID),
			)
			return nil
		}
		return fmt.Errorf("mark order failed: %w", err)
	}

	if err := s.orderRepo.MarkSagaCompensation(ctx, event.OrderID, "failed"); err != nil {
		return fmt.Errorf("mark saga compensation: %w", err)
	}

	s.logger.Info("order marked as FAILED",
		zap.String("order_id", event.OrderID),
		zap.String("reason", reason),
	)
	return nil
}

func (s *OrderService) buildOrderCreatedPayload(order repository.Order, inputItems []CreateOrderItem) ([]byte, error) {
	// В событие кладём только pizzaId/quantity: полные данные позиций
	// потребитель при необходимости заберёт по API заказа
	simplified := make([]events.OrderItem, 0, len(inputItems))
	for _, item := range inputItems {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		simplified = append(simplified, events.OrderItem{PizzaID: item.PizzaID, Quantity: quantity})
	}

	event := events.OrderCreated{
		Meta:            events.Meta{EventType: events.TypeOrderCreated},
		OrderID:         order.ID,
		UserID:          order.UserID,
		TotalAmount:     order.Total,
		ItemsCount:      len(simplified),
		Items:           simplified,
		PaymentMethod:   order.PaymentMethod,
		DeliveryAddress: order.DeliveryAddress,
	}
	event.Enrich(serviceName, serviceVersion)

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal OrderCreated: %w", err)
	}
	return payload, nil
}

func (s *OrderService) buildStatusChangedPayload(orderID, newStatus, reason string) ([]byte, error) {
	event := events.OrderStatusChanged{
		Meta:      events.Meta{EventType: events.TypeOrderStatusChanged},
		OrderID:   orderID,
		NewStatus: newStatus,
		Reason:    reason,
	}
	event.Enrich(serviceName, serviceVersion)

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal OrderStatusChanged: %w", err)
	}
	return payload, nil
}
