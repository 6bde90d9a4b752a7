package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/char1ks/pizzas/platform/health/http"
	platformobservability "github.com/char1ks/pizzas/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер Catalog Service
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("catalog", logger))
	}

	router.Route("/api/v1/menu", func(r chi.Router) {
		r.Get("/", handler.GetMenu)
		r.Post("/", handler.AddPizza)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetPizza(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
