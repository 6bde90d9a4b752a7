//go:build integration

package postgres

import (
	"context"
	"database/sql"
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

	"github.com/char1ks/pizzas/services/payment/internal/repository"
)

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

	// Текущий файл: services/payment/internal/repository/postgres/repository_integration_test.go
	// Нужно получить: services/payment/migrations
	testDir := filepath.Dir(filename)
	repoDir := filepath.Dir(testDir)     // internal/repository
	internalDir := filepath.Dir(repoDir) // internal
	serviceDir := filepath.Dir(internalDir)
	migrationsDir := filepath.Join(serviceDir, "migrations")

	err = goose.UpContext(ctx, db, migrationsDir)
	require.NoError(t, err, "Failed to run migrations")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)

	t.Run("Create and GetByID", func(t *testing.T) {
		payment := repository.Payment{
			ID:             "payment-1",
			OrderID:        "order-1",
			Amount:         59900,
			PaymentMethod:  "card",
			IdempotencyKey: "key-1",
		}

		require.NoError(t, repo.Create(ctx, payment))

		got, err := repo.GetByID(ctx, "payment-1")
		require.NoError(t, err)
		require.Equal(t, payment.OrderID, got.OrderID)
		require.Equal(t, payment.Amount, got.Amount)
		require.Equal(t, repository.StatusPending, got.Status)
		require.Equal(t, "key-1", got.IdempotencyKey)

		byOrder, err := repo.GetByOrderID(ctx, "order-1")
		require.NoError(t, err)
		require.Equal(t, "payment-1", byOrder.ID)
	})

	t.Run("Create duplicate order rejected", func(t *testing.T) {
		// Уникальный индекс по order_id сериализует конкурентных создателей
		err := repo.Create(ctx, repository.Payment{
			ID:             "payment-dup",
			OrderID:        "order-1",
			Amount:         59900,
			PaymentMethod:  "card",
			IdempotencyKey: "key-dup",
		})
		require.True(t, errors.Is(err, repository.ErrAlreadyExists), "Expected ErrAlreadyExists, got: %v", err)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.True(t, errors.Is(err, repository.ErrNotFound), "Expected ErrNotFound, got: %v", err)
	})

	t.Run("Attempts numbered densely", func(t *testing.T) {
		// Три последовательные попытки получают номера 1, 2, 3 без пропусков
		for want := 1; want <= 3; want++ {
			attempt, err := repo.CreateAttempt(ctx, "payment-1")
			require.NoError(t, err)
			require.Equal(t, want, attempt.AttemptNumber)
			require.Equal(t, repository.AttemptPending, attempt.Status)

			status := repository.AttemptFailed
			errMsg := "provider unavailable"
			if want == 3 {
				status = repository.AttemptSuccess
				errMsg = ""
			}
			require.NoError(t, repo.CompleteAttempt(ctx, attempt.ID, status, errMsg))
		}

		attempts, err := repo.ListAttempts(ctx, "payment-1")
		require.NoError(t, err)
		require.Len(t, attempts, 3)
		for i, attempt := range attempts {
			require.Equal(t, i+1, attempt.AttemptNumber)
			require.NotNil(t, attempt.CompletedAt)
		}
		require.Equal(t, repository.AttemptFailed, attempts[0].Status)
		require.Equal(t, "provider unavailable", attempts[0].ErrorMessage)
		require.Equal(t, repository.AttemptSuccess, attempts[2].Status)
	})

	t.Run("Attempt numbers unique per payment", func(t *testing.T) {
		// Прямой INSERT с занятым номером отвергается ограничением
		// UNIQUE (payment_id, attempt_number)
		_, err := pool.Exec(ctx,
			`INSERT INTO payments.payment_attempts (payment_id, attempt_number, status)
			 VALUES ($1, $2, $3)`,
			"payment-1", 1, repository.AttemptPending)
		require.Error(t, err)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "payment-1", repository.StatusCompleted, "txn_succ_1", "")
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, "payment-1")
		require.NoError(t, err)
		require.Equal(t, repository.StatusCompleted, got.Status)
		require.Equal(t, "txn_succ_1", got.TransactionID)
		require.Empty(t, got.FailureReason)
	})

	t.Run("UpdateStatus_NotFound", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "missing", repository.StatusFailed, "", "Card declined by bank")
		require.True(t, errors.Is(err, repository.ErrNotFound), "Expected ErrNotFound, got: %v", err)
	})
}
