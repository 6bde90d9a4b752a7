package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/char1ks/pizzas/services/catalog/internal/repository"
)

// Repository реализует PizzaRepository используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// List возвращает меню, отсортированное по имени
func (r *Repository) List(ctx context.Context, availableOnly bool) ([]repository.Pizza, error) {
	query := `SELECT id, name, description, price, image_url, ingredients, available, created_at, updated_at
	            FROM catalog.pizzas`
	if availableOnly {
		query += ` WHERE available = true`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select pizzas: %w", err)
	}
	defer rows.Close()

	var pizzas []repository.Pizza
	for rows.Next() {
		p, err := scanPizza(rows)
		if err != nil {
			return nil, err
		}
		pizzas = append(pizzas, p)
	}
	return pizzas, rows.Err()
}

// GetByID возвращает пиццу по ID
func (r *Repository) GetByID(ctx context.Context, id string) (repository.Pizza, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, price, image_url, ingredients, available, created_at, updated_at
		   FROM catalog.pizzas
		  WHERE id = $1`,
		id)

	p, err := scanPizza(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Pizza{}, repository.ErrNotFound
		}
		return repository.Pizza{}, err
	}
	return p, nil
}

// Upsert создаёт пиццу или обновляет существующую по ID
func (r *Repository) Upsert(ctx context.Context, p repository.Pizza) error {
	ingredients, err := json.Marshal(p.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO catalog.pizzas (id, name, description, price, image_url, ingredients, available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		     name        = EXCLUDED.name,
		     description = EXCLUDED.description,
		     price       = EXCLUDED.price,
		     image_url   = EXCLUDED.image_url,
		     ingredients = EXCLUDED.ingredients,
		     available   = EXCLUDED.available,
		     updated_at  = now()`,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, ingredients, p.Available)
	if err != nil {
		return fmt.Errorf("upsert pizza: %w", err)
	}
	return nil
}

func scanPizza(row pgx.Row) (repository.Pizza, error) {
	var (
		p           repository.Pizza
		ingredients []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &ingredients,
		&p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return repository.Pizza{}, err
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &p.Ingredients); err != nil {
			return repository.Pizza{}, fmt.Errorf("unmarshal ingredients: %w", err)
		}
	}
	return p, nil
}
