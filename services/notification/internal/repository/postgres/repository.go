package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/char1ks/pizzas/services/notification/internal/repository"
)

// Код ошибки PostgreSQL для нарушения уникального ограничения
const uniqueViolationCode = "23505"

// Repository реализует NotificationRepository используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// Create сохраняет новое уведомление.
// Каналы хранятся как JSONB массив, как их и отдаёт API.
// Нарушение уникального индекса по event_id транслируется в
// ErrDuplicateEvent: повторная доставка события не создаёт дубликат.
func (r *Repository) Create(ctx context.Context, n repository.Notification) error {
	channels, err := json.Marshal(n.Channels)
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO notifications.notifications
		     (id, event_id, user_id, order_id, subject, message, channels, priority, template_type, status)
		 VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''), $10)`,
		n.ID, n.EventID, n.UserID, n.OrderID, n.Subject, n.Message, channels, n.Priority, n.TemplateType, repository.StatusPending)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicateEvent
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetByID возвращает уведомление по ID
func (r *Repository) GetByID(ctx context.Context, id string) (repository.Notification, error) {
	var (
		n             repository.Notification
		eventID       *string
		orderID       *string
		templateType  *string
		failureReason *string
		channels      []byte
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, user_id, order_id, subject, message, channels, priority, template_type,
		        status, failure_reason, created_at, updated_at
		   FROM notifications.notifications
		  WHERE id = $1`,
		id).Scan(&n.ID, &eventID, &n.UserID, &orderID, &n.Subject, &n.Message, &channels, &n.Priority,
		&templateType, &n.Status, &failureReason, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Notification{}, repository.ErrNotFound
		}
		return repository.Notification{}, fmt.Errorf("select notification: %w", err)
	}

	if eventID != nil {
		n.EventID = *eventID
	}
	if orderID != nil {
		n.OrderID = *orderID
	}
	if templateType != nil {
		n.TemplateType = *templateType
	}
	if failureReason != nil {
		n.FailureReason = *failureReason
	}
	if len(channels) > 0 {
		if err := json.Unmarshal(channels, &n.Channels); err != nil {
			return repository.Notification{}, fmt.Errorf("unmarshal channels: %w", err)
		}
	}

	return n, nil
}

// UpdateStatus выставляет статус уведомления
func (r *Repository) UpdateStatus(ctx context.Context, id, status, failureReason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications.notifications
		    SET status = $2,
		        failure_reason = COALESCE(NULLIF($3, ''), failure_reason),
		        updated_at = now()
		  WHERE id = $1`,
		id, status, failureReason)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RecordDeliveryAttempt сохраняет результат попытки доставки по каналу
func (r *Repository) RecordDeliveryAttempt(ctx context.Context, notificationID, channel, status, errorMessage string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications.delivery_attempts (notification_id, channel, status, error_message)
		 VALUES ($1, $2, $3, NULLIF($4, ''))`,
		notificationID, channel, status, errorMessage)
	if err != nil {
		return fmt.Errorf("insert delivery attempt: %w", err)
	}
	return nil
}

// ListDeliveryAttempts возвращает попытки доставки уведомления
func (r *Repository) ListDeliveryAttempts(ctx context.Context, notificationID string) ([]repository.DeliveryAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, notification_id, channel, status, error_message, attempted_at
		   FROM notifications.delivery_attempts
		  WHERE notification_id = $1
		  ORDER BY id ASC`,
		notificationID)
	if err != nil {
		return nil, fmt.Errorf("select delivery attempts: %w", err)
	}
	defer rows.Close()

	var attempts []repository.DeliveryAttempt
	for rows.Next() {
		var (
			a            repository.DeliveryAttempt
			errorMessage *string
		)
		if err := rows.Scan(&a.ID, &a.NotificationID, &a.Channel, &a.Status, &errorMessage, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan delivery attempt: %w", err)
		}
		if errorMessage != nil {
			a.ErrorMessage = *errorMessage
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// GetTemplate возвращает шаблон уведомления для типа события
func (r *Repository) GetTemplate(ctx context.Context, eventType string) (repository.Template, error) {
	var t repository.Template
	err := r.pool.QueryRow(ctx,
		`SELECT type, title_template, message_template
		   FROM notifications.notification_templates
		  WHERE type = $1`,
		eventType).Scan(&t.Type, &t.TitleTemplate, &t.MessageTemplate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Template{}, repository.ErrTemplateNotFound
		}
		return repository.Template{}, fmt.Errorf("select template: %w", err)
	}
	return t, nil
}
