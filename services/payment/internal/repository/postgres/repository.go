package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/char1ks/pizzas/services/payment/internal/repository"
)

// Код ошибки PostgreSQL для нарушения уникального ограничения
const uniqueViolationCode = "23505"

// Repository реализует PaymentRepository используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// Create вставляет платёж в статусе PENDING.
// Нарушение уникального индекса по order_id транслируется в
// ErrAlreadyExists: так конкурентные создатели сериализуются на БД.
func (r *Repository) Create(ctx context.Context, payment repository.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments.payments (id, order_id, amount, payment_method, status, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID, payment.OrderID, payment.Amount, payment.PaymentMethod,
		repository.StatusPending, payment.IdempotencyKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID получает платёж по ID
func (r *Repository) GetByID(ctx context.Context, id string) (repository.Payment, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetByOrderID получает платёж по ID заказа
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (repository.Payment, error) {
	return r.get(ctx, `WHERE order_id = $1`, orderID)
}

func (r *Repository) get(ctx context.Context, where string, arg interface{}) (repository.Payment, error) {
	var p repository.Payment
	var transactionID, failureReason *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, order_id, amount, payment_method, status, idempotency_key,
		        transaction_id, failure_reason, created_at, updated_at
		 FROM payments.payments `+where,
		arg).Scan(&p.ID, &p.OrderID, &p.Amount, &p.PaymentMethod, &p.Status,
		&p.IdempotencyKey, &transactionID, &failureReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Payment{}, repository.ErrNotFound
		}
		return repository.Payment{}, err
	}
	if transactionID != nil {
		p.TransactionID = *transactionID
	}
	if failureReason != nil {
		p.FailureReason = *failureReason
	}
	return p, nil
}

// UpdateStatus переводит платёж в новый статус.
// NULLIF оставляет NULL в колонках при пустых значениях.
func (r *Repository) UpdateStatus(ctx context.Context, id, status, transactionID, failureReason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments.payments
		 SET status = $2,
		     transaction_id = COALESCE(NULLIF($3, ''), transaction_id),
		     failure_reason = NULLIF($4, ''),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		id, status, transactionID, failureReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateAttempt вставляет попытку со следующим attempt_number.
// COALESCE(MAX)+1 внутри INSERT даёт плотную нумерацию без пропусков
// для последовательных попыток одного платежа.
func (r *Repository) CreateAttempt(ctx context.Context, paymentID string) (repository.PaymentAttempt, error) {
	var attempt repository.PaymentAttempt
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments.payment_attempts (payment_id, attempt_number, status)
		 SELECT $1, COALESCE(MAX(attempt_number), 0) + 1, $2
		 FROM payments.payment_attempts
		 WHERE payment_id = $1
		 RETURNING id, payment_id, attempt_number, status, started_at`,
		paymentID, repository.AttemptPending).Scan(
		&attempt.ID, &attempt.PaymentID, &attempt.AttemptNumber, &attempt.Status, &attempt.StartedAt)
	if err != nil {
		return repository.PaymentAttempt{}, fmt.Errorf("insert payment attempt: %w", err)
	}
	return attempt, nil
}

// CompleteAttempt завершает попытку итоговым статусом
func (r *Repository) CompleteAttempt(ctx context.Context, attemptID int64, status, errorMessage string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments.payment_attempts
		 SET status = $2, error_message = NULLIF($3, ''), completed_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		attemptID, status, errorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment attempt %d not found", attemptID)
	}
	return nil
}

// ListAttempts возвращает попытки платежа в порядке выполнения
func (r *Repository) ListAttempts(ctx context.Context, paymentID string) ([]repository.PaymentAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, payment_id, attempt_number, status, error_message, started_at, completed_at
		 FROM payments.payment_attempts
		 WHERE payment_id = $1
		 ORDER BY attempt_number ASC`,
		paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]repository.PaymentAttempt, 0)
	for rows.Next() {
		var attempt repository.PaymentAttempt
		var errorMessage *string
		if err := rows.Scan(&attempt.ID, &attempt.PaymentID, &attempt.AttemptNumber,
			&attempt.Status, &errorMessage, &attempt.StartedAt, &attempt.CompletedAt); err != nil {
			return nil, err
		}
		if errorMessage != nil {
			attempt.ErrorMessage = *errorMessage
		}
		attempts = append(attempts, attempt)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}
