package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the surface-level options the router needs.
type RouterConfig struct {
	UploadDir      string
	AllowedOrigins []string
	Middlewares    []func(http.Handler) http.Handler
}

// NewRouter wires the product routes, the health endpoint and static
// serving of uploaded files.
func NewRouter(products *ProductHandler, health *HealthHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	for _, mw := range cfg.Middlewares {
		r.Use(mw)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/product", func(r chi.Router) {
		r.Post("/create", products.Create)
		r.Get("/products", products.List)
		r.Get("/products/{id}", products.GetByID)
		r.Put("/products/{id}", products.Update)
		r.Delete("/products/{id}", products.Delete)
	})

	if health != nil {
		r.Get("/health", health.Check)
	}

	// Uploaded images are readable by URL without authentication.
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get("/uploads/*", files.ServeHTTP)

	return r
}
