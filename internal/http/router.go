package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	Auth       *AuthHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Cart       *CartHandler
	Orders     *OrderHandler
	Contact    *ContactHandler
	Uploads    *UploadHandler
	Verifier   TokenVerifier

	RequestTimeout time.Duration
}

// NewRouter wires the whole HTTP surface. Catalog reads are public;
// everything touching a specific owner sits behind the auth middleware.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	requireAuth := AuthMiddleware(deps.Verifier)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.With(requireAuth).Get("/profile", deps.Auth.GetProfile)
			r.With(requireAuth).Put("/profile", deps.Auth.UpdateProfile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Products.List)
			r.Get("/{productID}", deps.Products.Get)
			r.With(requireAuth).Post("/", deps.Products.Create)
			r.With(requireAuth).Put("/{productID}", deps.Products.Update)
			r.With(requireAuth).Delete("/{productID}", deps.Products.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", deps.Categories.List)
			r.Get("/{categoryID}", deps.Categories.Get)
			r.With(requireAuth).Post("/", deps.Categories.Create)
			r.With(requireAuth).Put("/{categoryID}", deps.Categories.Update)
			r.With(requireAuth).Delete("/{categoryID}", deps.Categories.Delete)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", deps.Cart.GetCart)
			r.Post("/", deps.Cart.AddItem)
			r.Put("/", deps.Cart.ReplaceItems)
			r.Delete("/{productID}", deps.Cart.RemoveItem)
			r.Delete("/", deps.Cart.ClearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", deps.Orders.CreateOrder)
			r.Get("/", deps.Orders.ListOrders)
			r.Get("/{orderID}", deps.Orders.GetOrder)
		})

		r.Post("/contact", deps.Contact.Submit)
		r.With(requireAuth).Post("/uploads", deps.Uploads.Upload)
	})

	return r
}
