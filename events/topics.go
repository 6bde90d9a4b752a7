package events

// Kafka-топики пиццерии
const (
	// TopicOrderEvents — события жизненного цикла заказа (публикует order-сервис)
	TopicOrderEvents = "order-events"
	// TopicPaymentEvents — события оплаты (публикует payment-сервис)
	TopicPaymentEvents = "payment-events"
)

// Consumer group-ы сервисов
const (
	GroupOrderService        = "order-service-group"
	GroupPaymentService      = "payment-service-group"
	GroupNotificationService = "notification-service-group"
)

// TopicFor возвращает топик для указанного типа события.
// Неизвестные типы уходят в order-events: outbox order-сервиса может
// содержать типы, появившиеся раньше, чем это отображение.
func TopicFor(eventType string) string {
	switch eventType {
	case TypeOrderPaid, TypePaymentFailed:
		return TopicPaymentEvents
	case TypeOrderCreated, TypeOrderStatusChanged:
		return TopicOrderEvents
	default:
		return TopicOrderEvents
	}
}
