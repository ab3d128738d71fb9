// Package httpapi serves the storefront over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/shop"
)

type handler struct {
	svc *shop.Service
	log *slog.Logger
}

// NewRouter wires the routes. Middleware order: request ID first so every
// later layer can tag its logs, recovery innermost around the handlers.
func NewRouter(svc *shop.Service, log *slog.Logger, m *metrics.Metrics) http.Handler {
	h := &handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(m.Middleware)
	r.Use(requestLogger(log))
	r.Use(recovery(log))

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Get("/products", h.listProducts)
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Put("/", h.saveCart)
		r.Post("/add", h.addToCart)
		r.Post("/update", h.updateCart)
		r.Delete("/{email}", h.clearCart)
		r.Delete("/{email}/{productId}", h.removeFromCart)
	})

	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.placeOrder)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return r
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
