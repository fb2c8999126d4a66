package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/service"
	"github.com/yosefkovan/storefront/pkg/health"
	"github.com/yosefkovan/storefront/pkg/middleware"
)

// RouterConfig carries everything the router needs to wire the API.
type RouterConfig struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Carts      *service.CartService
	Orders     *service.OrderService
	Reviews    *service.ReviewService
	Users      *service.UserService
	Stats      *service.StatsService

	ValidateToken middleware.TokenValidator
	Health        *health.Handler
	SessionTTL    time.Duration

	// ImageRoot, when set, is served under /images/ for locally stored
	// product images.
	ImageRoot string

	Logger *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health check endpoints
	r.Get("/healthz", cfg.Health.LivenessHandler())
	r.Get("/readyz", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.ImageRoot != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImageRoot))))
	}

	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	categoryHandler := NewCategoryHandler(cfg.Categories, cfg.Products, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Carts, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Logger)
	authHandler := NewAuthHandler(cfg.Users, cfg.Logger)
	statsHandler := NewStatsHandler(cfg.Stats, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/search", productHandler.SearchProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Get("/{id}/reviews", reviewHandler.ListReviews)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.ValidateToken))
				r.Post("/{id}/reviews", reviewHandler.AddReview)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Get("/{id}", categoryHandler.GetCategory)
			r.Get("/{id}/products", categoryHandler.ListCategoryProducts)
		})

		// Session cart; the cookie identifies the cart, no login needed.
		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Session(cfg.SessionTTL))

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}", cartHandler.UpdateItem)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)
		})

		// Checkout requires both a session cart and an authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.SessionTTL))
			r.Use(middleware.Auth(cfg.ValidateToken))

			r.Post("/checkout", orderHandler.Checkout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.ValidateToken))

			r.Get("/", orderHandler.ListOrders)
			r.Get("/{id}", orderHandler.GetOrder)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/exists", authHandler.Exists)
		})

		// Admin surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.ValidateToken))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/products", productHandler.CreateProduct)
			r.Put("/products/{id}", productHandler.UpdateProduct)
			r.Delete("/products/{id}", productHandler.DeleteProduct)
			r.Post("/products/{id}/image", productHandler.UploadProductImage)

			r.Post("/categories", categoryHandler.CreateCategory)
			r.Put("/categories/{id}", categoryHandler.UpdateCategory)
			r.Delete("/categories/{id}", categoryHandler.DeleteCategory)

			r.Get("/orders", orderHandler.AdminListOrders)
			r.Get("/stats", statsHandler.GetStats)
		})
	})

	return r
}
