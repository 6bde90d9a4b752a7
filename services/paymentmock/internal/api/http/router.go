package httpapi

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/char1ks/pizzas/platform/health/http"
	platformobservability "github.com/char1ks/pizzas/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер Payment Mock Service
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("payment-mock", logger))
	}

	router.Post("/api/v1/payments/process", handler.ProcessPayment)

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
