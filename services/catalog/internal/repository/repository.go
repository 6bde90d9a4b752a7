package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается, если пицца не найдена в каталоге
var ErrNotFound = errors.New("pizza not found")

// Pizza представляет позицию меню
type Pizza struct {
	ID          string
	Name        string
	Description string
	Price       int64
	ImageURL    string
	Ingredients []string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PizzaRepository --dir=. --output=./mocks --outpkg=mocks

// PizzaRepository определяет интерфейс для работы с хранилищем каталога
type PizzaRepository interface {
	// List возвращает меню, отсортированное по имени.
	// availableOnly ограничивает выдачу доступными пиццами.
	List(ctx context.Context, availableOnly bool) ([]Pizza, error)
	// GetByID возвращает пиццу по ID или ErrNotFound
	GetByID(ctx context.Context, id string) (Pizza, error)
	// Upsert создаёт пиццу или обновляет существующую
	Upsert(ctx context.Context, p Pizza) error
}
