package events

import (
	"time"

	"github.com/google/uuid"
)

// Типы доменных событий пиццерии.
// Имена совпадают со значением поля event_type на проводе.
const (
	TypeOrderCreated       = "OrderCreated"
	TypeOrderStatusChanged = "OrderStatusChanged"
	TypeOrderPaid          = "OrderPaid"
	TypePaymentFailed      = "PaymentFailed"
)

// Meta — конверт события. Поля конверта публикуются плоско,
// рядом с полями payload-а, и заполняются публикующим сервисом.
type Meta struct {
	EventType      string `json:"event_type"`
	EventID        string `json:"event_id,omitempty"`
	ServiceName    string `json:"service_name,omitempty"`
	ServiceVersion string `json:"service_version,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Enrich заполняет недостающие поля конверта перед публикацией:
// event_id, service_name, service_version и timestamp (RFC3339, UTC).
// Уже заполненные поля не перезаписываются, чтобы события из outbox
// сохраняли момент своего создания.
func (m *Meta) Enrich(serviceName, serviceVersion string) {
	if m.EventID == "" {
		m.EventID = uuid.New().String()
	}
	if m.ServiceName == "" {
		m.ServiceName = serviceName
	}
	if m.ServiceVersion == "" {
		m.ServiceVersion = serviceVersion
	}
	if m.Timestamp == "" {
		m.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
}

// Event — запечатанный интерфейс доменного события.
// Key возвращает ID агрегата: он используется как ключ Kafka-сообщения,
// чтобы события одного заказа попадали в одну партицию.
type Event interface {
	Type() string
	Key() string
}

// OrderItem — позиция заказа внутри события OrderCreated
type OrderItem struct {
	PizzaID  string `json:"pizzaId"`
	Quantity int    `json:"quantity"`
}

// OrderCreated публикуется order-сервисом через outbox при создании заказа.
// Поля payload-а в camelCase (исторический формат order-сервиса).
type OrderCreated struct {
	Meta
	OrderID         string      `json:"orderId"`
	UserID          string      `json:"userId"`
	TotalAmount     int64       `json:"totalAmount"`
	ItemsCount      int         `json:"itemsCount"`
	Items           []OrderItem `json:"items"`
	PaymentMethod   string      `json:"paymentMethod"`
	DeliveryAddress string      `json:"deliveryAddress"`
}

func (e OrderCreated) Type() string { return TypeOrderCreated }
func (e OrderCreated) Key() string  { return e.OrderID }

// OrderStatusChanged публикуется order-сервисом при каждой смене статуса заказа
type OrderStatusChanged struct {
	Meta
	OrderID   string `json:"orderId"`
	NewStatus string `json:"newStatus"`
	Reason    string `json:"reason,omitempty"`
}

func (e OrderStatusChanged) Type() string { return TypeOrderStatusChanged }
func (e OrderStatusChanged) Key() string  { return e.OrderID }

// OrderPaid публикуется payment-сервисом после успешного списания.
// Поля payload-а в snake_case (канонический формат payment-сервиса).
type OrderPaid struct {
	Meta
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

func (e OrderPaid) Type() string { return TypeOrderPaid }
func (e OrderPaid) Key() string  { return e.OrderID }

// PaymentFailed публикуется payment-сервисом после исчерпания всех попыток оплаты
type PaymentFailed struct {
	Meta
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	FailureReason string `json:"failure_reason"`
}

func (e PaymentFailed) Type() string { return TypePaymentFailed }
func (e PaymentFailed) Key() string  { return e.OrderID }
