package router

import (
	"net/http"

	"green-kart/internal/config"
	"green-kart/internal/handler"
	"green-kart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates the HTTP route tree.
//
// The webhook route is deliberately outside the API-key groups: the
// gateway authenticates with its payload signature, not with our keys.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	webhookHandler *handler.WebhookHandler,
	auth config.AuthConfig,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Post("/payments/webhook", webhookHandler.Receive)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(auth.APIKey, logger))

			r.Get("/products", productHandler.GetAll)
			r.Get("/products/{id}", productHandler.GetByID)

			r.Post("/orders/cod", orderHandler.PlaceCOD)
			r.Post("/orders/online", orderHandler.PlaceOnline)
			r.Get("/orders", orderHandler.ListByOwner)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(auth.AdminAPIKey, logger))

			r.Get("/orders/all", orderHandler.ListAll)
			r.Put("/orders/{id}/mark-paid", orderHandler.MarkPaid)
		})
	})

	return r
}
