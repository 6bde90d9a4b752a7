package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/char1ks/pizzas/services/order/internal/repository"
)

// Repository реализует OrderRepository используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// CreateWithOutbox атомарно сохраняет заказ, позиции, состояние саги и
// событие OrderCreated. Либо всё записано, либо ничего: это и есть
// transactional outbox.
func (r *Repository) CreateWithOutbox(ctx context.Context, order repository.Order, eventPayload []byte) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO orders.orders (id, user_id, status, total, delivery_address, payment_method)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.UserID, repository.StatusPending, order.Total, order.DeliveryAddress, order.PaymentMethod)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO orders.order_items (order_id, pizza_id, pizza_name, pizza_price, quantity, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, item.PizzaID, item.PizzaName, item.Price, item.Quantity, item.Subtotal)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.PizzaID, err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders.order_saga_state (order_id, current_step, steps_completed)
		 VALUES ($1, 'order_created', ARRAY['order_created'])`,
		order.ID)
	if err != nil {
		return fmt.Errorf("insert saga state: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders.outbox_events (aggregate_id, event_type, event_data)
		 VALUES ($1, $2, $3::jsonb)`,
		order.ID, "OrderCreated", eventPayload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID получает заказ по ID вместе с позициями
func (r *Repository) GetByID(ctx context.Context, id string) (repository.Order, error) {
	var order repository.Order
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, status, total, delivery_address, payment_method, created_at, updated_at
		 FROM orders.orders
		 WHERE id = $1`,
		id).Scan(&order.ID, &order.UserID, &order.Status, &order.Total,
		&order.DeliveryAddress, &order.PaymentMethod, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Order{}, repository.ErrNotFound
		}
		return repository.Order{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT pizza_id, pizza_name, pizza_price, quantity, subtotal
		 FROM orders.order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		id)
	if err != nil {
		return repository.Order{}, err
	}
	defer rows.Close()

	order.Items = make([]repository.OrderItem, 0)
	for rows.Next() {
		var item repository.OrderItem
		if err := rows.Scan(&item.PizzaID, &item.PizzaName, &item.Price, &item.Quantity, &item.Subtotal); err != nil {
			return repository.Order{}, err
		}
		order.Items = append(order.Items, item)
	}
	if err = rows.Err(); err != nil {
		return repository.Order{}, err
	}

	return order, nil
}

// List возвращает заказы по фильтру, новые первыми
func (r *Repository) List(ctx context.Context, filter repository.ListFilter) ([]repository.Order, error) {
	query := `SELECT id, user_id, status, total, delivery_address, payment_method, created_at, updated_at
	          FROM orders.orders WHERE 1=1`
	args := make([]interface{}, 0, 4)

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]repository.Order, 0)
	for rows.Next() {
		var order repository.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.Total,
			&order.DeliveryAddress, &order.PaymentMethod, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatusWithOutbox атомарно меняет статус заказа и кладёт событие
// OrderStatusChanged в outbox. SELECT ... FOR UPDATE держит строку заказа,
// чтобы конкурирующие обработчики событий не затёрли переход друг друга.
func (r *Repository) UpdateStatusWithOutbox(ctx context.Context, orderID, newStatus string, allowedFrom []string, eventPayload []byte) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var currentStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders.orders WHERE id = $1 FOR UPDATE`,
		orderID).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}

	allowed := false
	for _, from := range allowedFrom {
		if currentStatus == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return currentStatus, fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, currentStatus, newStatus)
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders.orders SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		newStatus, orderID)
	if err != nil {
		return currentStatus, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders.outbox_events (aggregate_id, event_type, event_data)
		 VALUES ($1, $2, $3::jsonb)`,
		orderID, "OrderStatusChanged", eventPayload)
	if err != nil {
		return currentStatus, fmt.Errorf("insert outbox event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return currentStatus, err
	}

	return currentStatus, nil
}

// GetSagaState возвращает состояние саги заказа
func (r *Repository) GetSagaState(ctx context.Context, orderID string) (repository.SagaState, error) {
	var state repository.SagaState
	err := r.pool.QueryRow(ctx,
		`SELECT order_id, current_step, steps_completed, compensation_needed, updated_at
		 FROM orders.order_saga_state
		 WHERE order_id = $1`,
		orderID).Scan(&state.OrderID, &state.CurrentStep, &state.StepsCompleted,
		&state.CompensationNeeded, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.SagaState{}, repository.ErrNotFound
		}
		return repository.SagaState{}, err
	}
	return state, nil
}

// AdvanceSagaStep переводит сагу на следующий шаг
func (r *Repository) AdvanceSagaStep(ctx context.Context, orderID, step string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders.order_saga_state
		 SET current_step = $2,
		     steps_completed = array_append(steps_completed, $2),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE order_id = $1`,
		orderID, step)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkSagaCompensation помечает сагу как требующую компенсации
func (r *Repository) MarkSagaCompensation(ctx context.Context, orderID, step string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders.order_saga_state
		 SET current_step = $2,
		     compensation_needed = true,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE order_id = $1`,
		orderID, step)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetPendingOutboxEvents возвращает необработанные события outbox
// в порядке создания, чтобы сохранить порядок публикации
func (r *Repository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, aggregate_id, event_type, event_data, processed, created_at, processed_at
		 FROM orders.outbox_events
		 WHERE processed = false
		 ORDER BY created_at ASC, id ASC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]repository.OutboxEvent, 0)
	for rows.Next() {
		var event repository.OutboxEvent
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload,
			&event.Processed, &event.CreatedAt, &event.ProcessedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// MarkOutboxEventProcessed отмечает событие outbox как опубликованное
func (r *Repository) MarkOutboxEventProcessed(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders.outbox_events
		 SET processed = true, processed_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox event %d not found", id)
	}
	return nil
}

// CleanupProcessedOutboxEvents удаляет обработанные события старше retention
func (r *Repository) CleanupProcessedOutboxEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM orders.outbox_events
		 WHERE processed = true AND processed_at < $1`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
