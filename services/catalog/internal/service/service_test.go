package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/char1ks/pizzas/services/catalog/internal/repository"
	"github.com/char1ks/pizzas/services/catalog/internal/repository/mocks"
	"github.com/char1ks/pizzas/services/catalog/internal/service"
)

func newService(t *testing.T) (*service.CatalogService, *mocks.PizzaRepository) {
	t.Helper()
	repo := mocks.NewPizzaRepository(t)
	return service.NewCatalogService(zap.NewNop(), repo), repo
}

func margherita() repository.Pizza {
	return repository.Pizza{
		ID:          "margherita",
		Name:        "Маргарита",
		Description: "Классическая пицца с томатным соусом, моцареллой и базиликом",
		Price:       59900,
		ImageURL:    "/images/margherita.jpg",
		Ingredients: []string{"томатный соус", "моцарелла", "базилик"},
		Available:   true,
	}
}

func TestMenu_AvailableOnly(t *testing.T) {
	svc, repo := newService(t)

	repo.On("List", mock.Anything, true).Return([]repository.Pizza{margherita()}, nil)

	pizzas, err := svc.Menu(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, pizzas, 1)
	assert.Equal(t, "margherita", pizzas[0].ID)
}

func TestMenu_RepositoryError(t *testing.T) {
	svc, repo := newService(t)

	repo.On("List", mock.Anything, false).Return(nil, errors.New("connection refused"))

	_, err := svc.Menu(context.Background(), false)
	require.Error(t, err)
}

func TestGetPizza_NotFound(t *testing.T) {
	svc, repo := newService(t)

	repo.On("GetByID", mock.Anything, "hawaiian").Return(repository.Pizza{}, repository.ErrNotFound)

	_, err := svc.GetPizza(context.Background(), "hawaiian")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddPizza_Success(t *testing.T) {
	svc, repo := newService(t)

	var saved repository.Pizza
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p repository.Pizza) bool {
		saved = p
		return p.ID == "diavola"
	})).Return(nil)

	err := svc.AddPizza(context.Background(), repository.Pizza{
		ID:          "diavola",
		Name:        "Дьябола",
		Description: "Острая пицца с салями и перцем чили",
		Price:       74900,
		Ingredients: []string{"томатный соус", "салями", "перец чили"},
		Available:   true,
	})
	require.NoError(t, err)

	// image_url подставляется из ID, если не задан
	assert.Equal(t, "/images/diavola.jpg", saved.ImageURL)
}

func TestAddPizza_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		pizza repository.Pizza
	}{
		{
			name:  "missing id",
			pizza: repository.Pizza{Name: "X", Description: "d", Price: 100, Ingredients: []string{"a"}},
		},
		{
			name:  "missing name",
			pizza: repository.Pizza{ID: "x", Description: "d", Price: 100, Ingredients: []string{"a"}},
		},
		{
			name:  "missing description",
			pizza: repository.Pizza{ID: "x", Name: "X", Price: 100, Ingredients: []string{"a"}},
		},
		{
			name:  "non-positive price",
			pizza: repository.Pizza{ID: "x", Name: "X", Description: "d", Price: 0, Ingredients: []string{"a"}},
		},
		{
			name:  "missing ingredients",
			pizza: repository.Pizza{ID: "x", Name: "X", Description: "d", Price: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)

			err := svc.AddPizza(context.Background(), tt.pizza)
			require.ErrorIs(t, err, service.ErrValidation)

			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}
