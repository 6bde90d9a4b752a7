package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/char1ks/pizzas/platform/health/http"
	platformobservability "github.com/char1ks/pizzas/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер Payment Service
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("payment", logger))
	}

	router.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", handler.CreatePayment)
		r.Get("/circuit-breaker/status", handler.GetBreakerStatus)
		r.Get("/order/{orderId}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetPaymentByOrder(w, r, chi.URLParam(r, "orderId"))
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetPayment(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
