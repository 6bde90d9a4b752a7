package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/services/order/internal/service"
)

// Client — HTTP клиент каталога пицц.
// Реализует service.MenuClient.
type Client struct {
	logger     *zap.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт новый клиент каталога
func NewClient(logger *zap.Logger, baseURL string) *Client {
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type pizzaResponse struct {
	Success bool `json:"success"`
	Pizza   struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Price int64  `json:"price"`
	} `json:"pizza"`
	Error string `json:"error"`
}

// GetPizza возвращает пиццу по ID через GET /api/v1/menu/{id}.
// Возвращает service.ErrPizzaNotFound на 404.
func (c *Client) GetPizza(ctx context.Context, pizzaID string) (service.Pizza, error) {
	url := fmt.Sprintf("%s/api/v1/menu/%s", c.baseURL, pizzaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return service.Pizza{}, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to connect to catalog service",
			zap.Error(err),
			zap.String("pizza_id", pizzaID),
		)
		return service.Pizza{}, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return service.Pizza{}, service.ErrPizzaNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return service.Pizza{}, fmt.Errorf("catalog returned status %d for pizza %s", resp.StatusCode, pizzaID)
	}

	var body pizzaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return service.Pizza{}, fmt.Errorf("decode catalog response: %w", err)
	}
	if !body.Success {
		return service.Pizza{}, fmt.Errorf("catalog error for pizza %s: %s", pizzaID, body.Error)
	}

	return service.Pizza{
		ID:    body.Pizza.ID,
		Name:  body.Pizza.Name,
		Price: body.Pizza.Price,
	}, nil
}
