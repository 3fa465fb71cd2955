package router

import (
	"encoding/json"
	"net/http"

	"decor-shop/internal/auth"
	"decor-shop/internal/handler"
	"decor-shop/internal/middleware"
	"decor-shop/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Health  *handler.HealthHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Tokens *auth.TokenManager

	// Metrics, when set, records per-route request metrics.
	Metrics func(http.Handler) http.Handler

	// MetricsHandler, when set, is served on /metrics.
	MetricsHandler http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Logging wraps Recovery so a recovered panic is still logged as a 500.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	if opts.Metrics != nil {
		r.Use(opts.Metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "Method not supported for this route")
	})

	r.Get("/health", h.Health.Health)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	authenticate := middleware.Authenticate(opts.Tokens, logger)
	adminOnly := middleware.RequireRole(auth.RoleAdmin, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/{id}", h.Product.GetByID)
			r.Get("/{id}/related", h.Product.GetRelated)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/", h.Product.Create)
				r.Put("/{id}", h.Product.Update)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productId}", h.Cart.SetQuantity)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Order.Create)
			r.Get("/", h.Order.List)
			r.Get("/{id}", h.Order.GetByID)
			r.With(adminOnly).Patch("/{id}/status", h.Order.UpdateStatus)
		})
	})

	return r
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: chimiddleware.GetReqID(r.Context()),
	})
}
