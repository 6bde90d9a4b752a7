package repository

import (
	"context"
	"errors"
	"time"
)

// Статусы уведомления
const (
	StatusPending   = "PENDING"
	StatusSent      = "SENT"
	StatusFailed    = "FAILED"
	StatusDelivered = "DELIVERED"
)

// Статусы попытки доставки по каналу
const (
	AttemptSent   = "SENT"
	AttemptFailed = "FAILED"
)

// Каналы доставки уведомлений
const (
	ChannelEmail   = "EMAIL"
	ChannelSMS     = "SMS"
	ChannelPush    = "PUSH"
	ChannelWebhook = "WEBHOOK"
)

var (
	// ErrNotFound возвращается, если уведомление не найдено
	ErrNotFound = errors.New("notification not found")
	// ErrTemplateNotFound возвращается, если шаблон для типа события не найден
	ErrTemplateNotFound = errors.New("notification template not found")
	// ErrDuplicateEvent возвращается при вставке уведомления для уже
	// обработанного event_id. Уникальный индекс по event_id сериализует
	// повторные доставки одного события.
	ErrDuplicateEvent = errors.New("event already processed")
)

// Notification представляет уведомление пользователю
type Notification struct {
	ID            string
	EventID       string
	UserID        string
	OrderID       string
	Subject       string
	Message       string
	Channels      []string
	Priority      string
	TemplateType  string
	Status        string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeliveryAttempt представляет попытку доставки уведомления по одному каналу
type DeliveryAttempt struct {
	ID             int64
	NotificationID string
	Channel        string
	Status         string
	ErrorMessage   string
	AttemptedAt    time.Time
}

// Template — шаблон уведомления для типа события (синтаксис text/template)
type Template struct {
	Type            string
	TitleTemplate   string
	MessageTemplate string
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=NotificationRepository --dir=. --output=./mocks --outpkg=mocks

// NotificationRepository определяет интерфейс для работы с хранилищем уведомлений
type NotificationRepository interface {
	// Create сохраняет новое уведомление со статусом PENDING.
	// Возвращает ErrDuplicateEvent, если уведомление с таким event_id уже есть.
	Create(ctx context.Context, n Notification) error
	// GetByID возвращает уведомление по ID или ErrNotFound
	GetByID(ctx context.Context, id string) (Notification, error)
	// UpdateStatus выставляет терминальный статус уведомления.
	// failureReason сохраняется только для непустых значений.
	UpdateStatus(ctx context.Context, id, status, failureReason string) error
	// RecordDeliveryAttempt сохраняет результат попытки доставки по каналу
	RecordDeliveryAttempt(ctx context.Context, notificationID, channel, status, errorMessage string) error
	// ListDeliveryAttempts возвращает попытки доставки уведомления
	ListDeliveryAttempts(ctx context.Context, notificationID string) ([]DeliveryAttempt, error)
	// GetTemplate возвращает шаблон для типа события или ErrTemplateNotFound
	GetTemplate(ctx context.Context, eventType string) (Template, error)
}
