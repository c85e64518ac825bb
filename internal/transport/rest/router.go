package rest

import (
	"net/http"

	"modakarina-be/internal/cart"
	"modakarina-be/internal/logger"
	"modakarina-be/internal/middleware"
	"modakarina-be/internal/order"
	"modakarina-be/internal/product"
	"modakarina-be/internal/shipping"
	"modakarina-be/internal/user"

	"github.com/go-chi/chi/v5"
)

type Services struct {
	Users     user.Service
	Products  product.Service
	Carts     cart.Service
	Orders    order.Service
	Estimator shipping.Estimator
}

// NewRouter wires every route onto a chi mux. The auth middleware is
// passive; RequireAuth/RequireAdmin guard the protected subtrees.
func NewRouter(s Services) http.Handler {
	authHandler := NewAuthHandler(s.Users)
	productHandler := NewProductHandler(s.Products)
	cartHandler := NewCartHandler(s.Carts)
	orderHandler := NewOrderHandler(s.Orders)
	shippingHandler := NewShippingHandler(s.Estimator, s.Carts)
	webhookHandler := NewWebhookHandler(s.Orders)

	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Get("/products", productHandler.List)
	r.Get("/products/{id}", productHandler.Get)

	r.Post("/webhook/mercadopago", webhookHandler.MercadoPago)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", authHandler.Me)

		r.Get("/cart", cartHandler.Get)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{productID}", cartHandler.SetQuantity)
		r.Delete("/cart/items/{productID}", cartHandler.RemoveItem)
		r.Delete("/cart", cartHandler.Clear)

		r.Post("/orders", orderHandler.Place)
		r.Get("/orders", orderHandler.List)
		r.Get("/orders/{id}", orderHandler.Get)
		r.Post("/orders/{id}/payment", orderHandler.RetryPayment)

		r.Post("/shipping/quote", shippingHandler.Quote)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Post("/products", productHandler.Create)
		r.Put("/products/{id}", productHandler.Update)
		r.Delete("/products/{id}", productHandler.Deactivate)
		r.Put("/orders/{id}/status", orderHandler.UpdateStatus)
	})

	return r
}
