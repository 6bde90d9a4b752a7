package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType возвращается Decode для событий с неизвестным event_type.
// Консьюмеры коммитят такие сообщения без обработки (poison pill не должен
// блокировать партицию).
var ErrUnknownEventType = errors.New("unknown event type")

// Decode разбирает Kafka-сообщение в типизированное событие.
// Исторически сервисы писали ключи payload-а по-разному (orderId и order_id),
// поэтому Decode принимает оба варианта и нормализует их в канонический.
func Decode(data []byte) (Event, error) {
	var head struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if head.EventType == "" {
		return nil, fmt.Errorf("decode event: missing event_type")
	}

	switch head.EventType {
	case TypeOrderCreated:
		return decodeOrderCreated(data)
	case TypeOrderStatusChanged:
		return decodeOrderStatusChanged(data)
	case TypeOrderPaid:
		return decodeOrderPaid(data)
	case TypePaymentFailed:
		return decodePaymentFailed(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, head.EventType)
	}
}

func decodeOrderCreated(data []byte) (Event, error) {
	var wire struct {
		OrderCreated
		OrderIDSnake         string `json:"order_id"`
		UserIDSnake          string `json:"user_id"`
		TotalAmountSnake     int64  `json:"total_amount"`
		PaymentMethodSnake   string `json:"payment_method"`
		DeliveryAddressSnake string `json:"delivery_address"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode OrderCreated: %w", err)
	}
	e := wire.OrderCreated
	e.OrderID = firstNonEmpty(e.OrderID, wire.OrderIDSnake)
	e.UserID = firstNonEmpty(e.UserID, wire.UserIDSnake)
	e.PaymentMethod = firstNonEmpty(e.PaymentMethod, wire.PaymentMethodSnake)
	e.DeliveryAddress = firstNonEmpty(e.DeliveryAddress, wire.DeliveryAddressSnake)
	if e.TotalAmount == 0 {
		e.TotalAmount = wire.TotalAmountSnake
	}
	if e.OrderID == "" {
		return nil, fmt.Errorf("decode OrderCreated: missing order id")
	}
	return e, nil
}

func decodeOrderStatusChanged(data []byte) (Event, error) {
	var wire struct {
		OrderStatusChanged
		OrderIDSnake   string `json:"order_id"`
		NewStatusSnake string `json:"new_status"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode OrderStatusChanged: %w", err)
	}
	e := wire.OrderStatusChanged
	e.OrderID = firstNonEmpty(e.OrderID, wire.OrderIDSnake)
	e.NewStatus = firstNonEmpty(e.NewStatus, wire.NewStatusSnake)
	if e.OrderID == "" {
		return nil, fmt.Errorf("decode OrderStatusChanged: missing order id")
	}
	return e, nil
}

func decodeOrderPaid(data []byte) (Event, error) {
	var wire struct {
		OrderPaid
		OrderIDCamel       string `json:"orderId"`
		PaymentIDCamel     string `json:"paymentId"`
		PaymentMethodCamel string `json:"paymentMethod"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode OrderPaid: %w", err)
	}
	e := wire.OrderPaid
	e.OrderID = firstNonEmpty(e.OrderID, wire.OrderIDCamel)
	e.PaymentID = firstNonEmpty(e.PaymentID, wire.PaymentIDCamel)
	e.PaymentMethod = firstNonEmpty(e.PaymentMethod, wire.PaymentMethodCamel)
	if e.OrderID == "" {
		return nil, fmt.Errorf("decode OrderPaid: missing order id")
	}
	return e, nil
}

func decodePaymentFailed(data []byte) (Event, error) {
	var wire struct {
		PaymentFailed
		OrderIDCamel       string `json:"orderId"`
		PaymentIDCamel     string `json:"paymentId"`
		PaymentMethodCamel string `json:"paymentMethod"`
		FailureReasonCamel string `json:"failureReason"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode PaymentFailed: %w", err)
	}
	e := wire.PaymentFailed
	e.OrderID = firstNonEmpty(e.OrderID, wire.OrderIDCamel)
	e.PaymentID = firstNonEmpty(e.PaymentID, wire.PaymentIDCamel)
	e.PaymentMethod = firstNonEmpty(e.PaymentMethod, wire.PaymentMethodCamel)
	e.FailureReason = firstNonEmpty(e.FailureReason, wire.FailureReasonCamel)
	if e.OrderID == "" {
		return nil, fmt.Errorf("decode PaymentFailed: missing order id")
	}
	return e, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
