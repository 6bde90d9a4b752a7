package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/platform/observability"
	"github.com/char1ks/pizzas/services/catalog/internal/repository"
	"github.com/char1ks/pizzas/services/catalog/internal/service"
)

// Handler содержит HTTP-обработчики Catalog Service
type Handler struct {
	logger         *zap.Logger
	catalogService *service.CatalogService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, catalogService *service.CatalogService) *Handler {
	return &Handler{
		logger:         logger,
		catalogService: catalogService,
	}
}

// pizzaJSON - представление пиццы в ответах API.
// Имена полей повторяют колонки каталога.
type pizzaJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	ImageURL    string   `json:"image_url"`
	Ingredients []string `json:"ingredients"`
	Available   bool     `json:"available"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// addPizzaRequest - тело POST /api/v1/menu
type addPizzaRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	ImageURL    string   `json:"image_url"`
	Ingredients []string `json:"ingredients"`
	Available   *bool    `json:"available"`
}

// GetMenu обрабатывает GET /api/v1/menu.
// Параметр available=false выключает фильтр доступности.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	availableOnly := !strings.EqualFold(r.URL.Query().Get("available"), "false")

	pizzas, err := h.catalogService.Menu(r.Context(), availableOnly)
	if err != nil {
		log.Error("failed to get menu", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load menu", "")
		return
	}

	out := make([]pizzaJSON, 0, len(pizzas))
	for _, p := range pizzas {
		out = append(out, toPizzaJSON(p))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"pizzas":    out,
		"total":     len(out),
		"timestamp": timestamp(),
	})
}

// GetPizza обрабатывает GET /api/v1/menu/{id}
func (h *Handler) GetPizza(w http.ResponseWriter, r *http.Request, pizzaID string) {
	log := h.requestLogger(r)

	pizza, err := h.catalogService.GetPizza(r.Context(), pizzaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pizza not found", "")
			return
		}
		log.Error("failed to get pizza", zap.String("pizza_id", pizzaID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load pizza details", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"pizza":     toPizzaJSON(pizza),
		"timestamp": timestamp(),
	})
}

// AddPizza обрабатывает POST /api/v1/menu (админская операция)
func (h *Handler) AddPizza(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req addPizzaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	err := h.catalogService.AddPizza(r.Context(), repository.Pizza{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Ingredients: req.Ingredients,
		Available:   available,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		log.Error("failed to add pizza", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to add pizza", "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Pizza added successfully",
		"pizza_id": req.ID,
	})
}

// requestLogger возвращает logger запроса (с trace_id, если middleware его положил)
func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	if l := observability.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return h.logger
}

func toPizzaJSON(p repository.Pizza) pizzaJSON {
	return pizzaJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Ingredients: p.Ingredients,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errText, message string) {
	body := map[string]interface{}{
		"success": false,
		"error":   errText,
	}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
