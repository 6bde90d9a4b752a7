package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/char1ks/pizzas/platform/health/http"
	platformobservability "github.com/char1ks/pizzas/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер Order Service.
// readiness — функция проверки готовности (ping БД); при false
// health endpoint вернёт 503 Service Unavailable.
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("order", logger))
	}

	router.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", handler.CreateOrder)
		r.Get("/", handler.ListOrders)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetOrder(w, r, chi.URLParam(r, "id"))
		})
		r.Put("/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			handler.UpdateStatus(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
