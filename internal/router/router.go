package router

import (
	"net/http"

	"decor-store/internal/handler"
	"decor-store/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Shipping *handler.ShippingHandler
	Auth     *handler.AuthHandler
}

// Options configures the middleware stack.
type Options struct {
	CORSAllowedOrigin string
	// Session resolves the session cookie into a principal. Nil disables it.
	Session func(http.Handler) http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.CORSAllowedOrigin))
	if opts.Session != nil {
		r.Use(opts.Session)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.List)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Post("/orders", h.Order.Create)
		r.Get("/orders/{id}", h.Order.GetByID)

		r.Get("/shipping/provinces", h.Shipping.Provinces)
		r.Get("/shipping/cities/{provinceId}", h.Shipping.Cities)
		r.Post("/shipping/cost", h.Shipping.Cost)

		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/auth/user", h.Auth.CurrentUser)
	})

	return otelhttp.NewHandler(r, "decor-store")
}
