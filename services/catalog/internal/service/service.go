package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/services/catalog/internal/repository"
)

// ErrValidation возвращается при ошибках валидации входных данных
var ErrValidation = errors.New("validation error")

// CatalogService содержит бизнес-логику каталога пицц
type CatalogService struct {
	logger *zap.Logger
	repo   repository.PizzaRepository
}

// NewCatalogService создаёт новый экземпляр CatalogService
func NewCatalogService(logger *zap.Logger, repo repository.PizzaRepository) *CatalogService {
	return &CatalogService{
		logger: logger,
		repo:   repo,
	}
}

// Menu возвращает меню каталога
func (s *CatalogService) Menu(ctx context.Context, availableOnly bool) ([]repository.Pizza, error) {
	pizzas, err := s.repo.List(ctx, availableOnly)
	if err != nil {
		s.logger.Error("failed to load menu", zap.Error(err))
		return nil, err
	}

	s.logger.Info("menu requested",
		zap.Int("pizza_count", len(pizzas)),
		zap.Bool("available_only", availableOnly),
	)

	return pizzas, nil
}

// GetPizza возвращает пиццу по ID
func (s *CatalogService) GetPizza(ctx context.Context, id string) (repository.Pizza, error) {
	return s.repo.GetByID(ctx, id)
}

// AddPizza валидирует и сохраняет пиццу (админская операция).
// Повторная вставка существующего ID обновляет запись.
func (s *CatalogService) AddPizza(ctx context.Context, p repository.Pizza) error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if len(p.Ingredients) == 0 {
		return fmt.Errorf("%w: ingredients are required", ErrValidation)
	}

	if p.ImageURL == "" {
		p.ImageURL = "/images/" + p.ID + ".jpg"
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		s.logger.Error("failed to add pizza",
			zap.Error(err),
			zap.String("pizza_id", p.ID),
		)
		return err
	}

	s.logger.Info("pizza added to menu",
		zap.String("pizza_id", p.ID),
		zap.String("pizza_name", p.Name),
	)

	return nil
}
