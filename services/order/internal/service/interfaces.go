package service

import (
	"context"
	"errors"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=MenuClient --dir=. --output=./mocks --outpkg=mocks

// MenuClient определяет интерфейс для работы с каталогом пицц.
// Использует доменные типы вместо HTTP DTO - это делает service независимым
// от транспорта и позволяет подменять клиент моком в тестах.
type MenuClient interface {
	// GetPizza возвращает пиццу по ID.
	// Возвращает ErrPizzaNotFound, если пиццы нет в каталоге.
	GetPizza(ctx context.Context, pizzaID string) (Pizza, error)
}

// Pizza — позиция каталога. Price в копейках.
type Pizza struct {
	ID    string
	Name  string
	Price int64
}

// ErrPizzaNotFound возвращается MenuClient, когда пицца не найдена в каталоге
var ErrPizzaNotFound = errors.New("pizza not found")
