//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib" //для goose миграций

	"github.com/char1ks/pizzas/services/order/internal/repository"
)

func testPayload(t *testing.T, eventType, orderID string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"event_type": eventType,
		"orderId":    orderID,
	})
	require.NoError(t, err)
	return payload
}

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер через testcontainers
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("pizza"),
		postgres.WithUsername("pizza_user"),
		postgres.WithPassword("pizza_password"),
	)
	require.NoError(t, err)
	defer func() {
		err := postgresContainer.Terminate(ctx)
		require.NoError(t, err)
	}()

	// ConnectionString собирает правильный DSN, включая реальный порт контейнера
	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Открываем *sql.DB через pgx stdlib для goose миграций
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	// Ждём готовности БД через ping с retry
	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, pingErr, "Failed to ping database after retries")

	// Вычисляем путь к migrations относительно текущего файла
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	// Текущий файл: services/order/internal/repository/postgres/repository_integration_test.go
	// Нужно получить: services/order/migrations
	testDir := filepath.Dir(filename)
	repoDir := filepath.Dir(testDir)      // internal/repository
	internalDir := filepath.Dir(repoDir)  // internal
	serviceDir := filepath.Dir(internalDir)
	migrationsDir := filepath.Join(serviceDir, "migrations")

	err = goose.UpContext(ctx, db, migrationsDir)
	require.NoError(t, err, "Failed to run migrations")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)

	t.Run("CreateWithOutbox and GetByID", func(t *testing.T) {
		order := repository.Order{
			ID:              "order-1",
			UserID:          "user-1",
			Status:          repository.StatusPending,
			Total:           2 * 59900,
			DeliveryAddress: "ул. Пушкина, 10",
			PaymentMethod:   "card",
			Items: []repository.OrderItem{
				{PizzaID: "margherita", PizzaName: "Маргарита", Price: 59900, Quantity: 2, Subtotal: 2 * 59900},
			},
		}

		err := repo.CreateWithOutbox(ctx, order, testPayload(t, "OrderCreated", order.ID))
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, "order-1")
		require.NoError(t, err)
		require.Equal(t, order.ID, got.ID)
		require.Equal(t, order.UserID, got.UserID)
		require.Equal(t, repository.StatusPending, got.Status)
		require.Equal(t, order.Total, got.Total)
		require.Len(t, got.Items, 1)
		require.Equal(t, "Маргарита", got.Items[0].PizzaName)
		require.Equal(t, 2, got.Items[0].Quantity)

		// Сага создаётся той же транзакцией
		saga, err := repo.GetSagaState(ctx, "order-1")
		require.NoError(t, err)
		require.Equal(t, "order_created", saga.CurrentStep)
		require.Equal(t, []string{"order_created"}, saga.StepsCompleted)
		require.False(t, saga.CompensationNeeded)

		// Событие лежит в outbox необработанным
		pending, err := repo.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, "order-1", pending[0].AggregateID)
		require.Equal(t, "OrderCreated", pending[0].EventType)
		require.False(t, pending[0].Processed)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.Error(t, err)
		require.True(t, errors.Is(err, repository.ErrNotFound), "Expected ErrNotFound, got: %v", err)
	})

	t.Run("UpdateStatusWithOutbox guards transitions", func(t *testing.T) {
		// PENDING -> PAID разрешён
		oldStatus, err := repo.UpdateStatusWithOutbox(ctx, "order-1", repository.StatusPaid,
			[]string{repository.StatusPending, repository.StatusProcessing},
			testPayload(t, "OrderStatusChanged", "order-1"))
		require.NoError(t, err)
		require.Equal(t, repository.StatusPending, oldStatus)

		got, err := repo.GetByID(ctx, "order-1")
		require.NoError(t, err)
		require.Equal(t, repository.StatusPaid, got.Status)

		// Повторный перевод в PAID отвергается guard-ом
		_, err = repo.UpdateStatusWithOutbox(ctx, "order-1", repository.StatusPaid,
			[]string{repository.StatusPending, repository.StatusProcessing},
			testPayload(t, "OrderStatusChanged", "order-1"))
		require.True(t, errors.Is(err, repository.ErrInvalidTransition), "Expected ErrInvalidTransition, got: %v", err)

		// Guard не оставил лишнего события в outbox
		pending, err := repo.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2) // OrderCreated + один OrderStatusChanged
	})

	t.Run("UpdateStatusWithOutbox_NotFound", func(t *testing.T) {
		_, err := repo.UpdateStatusWithOutbox(ctx, "missing", repository.StatusPaid,
			[]string{repository.StatusPending},
			testPayload(t, "OrderStatusChanged", "missing"))
		require.True(t, errors.Is(err, repository.ErrNotFound), "Expected ErrNotFound, got: %v", err)
	})

	t.Run("Saga advance and compensation", func(t *testing.T) {
		err := repo.AdvanceSagaStep(ctx, "order-1", "payment_processed")
		require.NoError(t, err)

		saga, err := repo.GetSagaState(ctx, "order-1")
		require.NoError(t, err)
		require.Equal(t, "payment_processed", saga.CurrentStep)
		require.Equal(t, []string{"order_created", "payment_processed"}, saga.StepsCompleted)

		err = repo.MarkSagaCompensation(ctx, "order-1", "failed")
		require.NoError(t, err)

		saga, err = repo.GetSagaState(ctx, "order-1")
		require.NoError(t, err)
		require.Equal(t, "failed", saga.CurrentStep)
		require.True(t, saga.CompensationNeeded)
	})

	t.Run("Outbox mark processed and cleanup", func(t *testing.T) {
		pending, err := repo.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.NotEmpty(t, pending)

		// События отдаются в порядке создания
		for i := 1; i < len(pending); i++ {
			require.False(t, pending[i].CreatedAt.Before(pending[i-1].CreatedAt))
		}

		for _, event := range pending {
			err := repo.MarkOutboxEventProcessed(ctx, event.ID)
			require.NoError(t, err)
		}

		pending, err = repo.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.Empty(t, pending)

		// Отрицательный retention сдвигает cutoff в будущее,
		// под удаление попадает всё обработанное
		deleted, err := repo.CleanupProcessedOutboxEvents(ctx, -time.Hour)
		require.NoError(t, err)
		require.Greater(t, deleted, int64(0))
	})

	t.Run("List with filters", func(t *testing.T) {
		order := repository.Order{
			ID:              "order-2",
			UserID:          "user-2",
			Status:          repository.StatusPending,
			Total:           69900,
			DeliveryAddress: "ул. Лермонтова, 5",
			PaymentMethod:   "card",
			Items: []repository.OrderItem{
				{PizzaID: "pepperoni", PizzaName: "Пепперони", Price: 69900, Quantity: 1, Subtotal: 69900},
			},
		}
		require.NoError(t, repo.CreateWithOutbox(ctx, order, testPayload(t, "OrderCreated", order.ID)))

		byUser, err := repo.List(ctx, repository.ListFilter{UserID: "user-2", Limit: 10})
		require.NoError(t, err)
		require.Len(t, byUser, 1)
		require.Equal(t, "order-2", byUser[0].ID)

		byStatus, err := repo.List(ctx, repository.ListFilter{Status: repository.StatusPaid, Limit: 10})
		require.NoError(t, err)
		require.Len(t, byStatus, 1)
		require.Equal(t, "order-1", byStatus[0].ID)

		all, err := repo.List(ctx, repository.ListFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, all, 2)
	})
}
