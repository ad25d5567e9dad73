package httpserver

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	"storefront/internal/service/identity"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// AuthService is the identity provider as seen by the HTTP layer.
type AuthService interface {
	Signup(ctx context.Context, in identity.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, identity.Token, error)
	Verify(ctx context.Context, token string) (domain.Identity, error)
	SignOut(ctx context.Context, id domain.Identity) error
	Profile(ctx context.Context, id domain.Identity) (*domain.User, error)
}

// CatalogService serves product reads and admin writes.
type CatalogService interface {
	Search(ctx context.Context, query string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, id domain.Identity, form catalog.ProductForm) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.Identity, productID string, form catalog.ProductForm) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.Identity, productID string) error
}

// CartSessions hands out the cart manager of a caller.
type CartSessions interface {
	For(ctx context.Context, id domain.Identity) (*cart.Manager, error)
	Drop(userID string)
}

// Deps are the services the router dispatches to.
type Deps struct {
	Auth        AuthService
	Catalog     CatalogService
	Carts       CartSessions
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.Auth == nil || deps.Catalog == nil || deps.Carts == nil {
		return nil, errors.New("httpserver: auth, catalog and cart dependencies are required")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger, deps.Metrics), cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/")
	api.Use(authenticate(deps.Auth, logger))

	api.POST("/auth/signup", h.signup)
	api.POST("/auth/token", h.token)
	api.POST("/auth/signout", requireAuth(), h.signOut)
	api.GET("/me", requireAuth(), h.me)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	carts := api.Group("/cart", requireAuth())
	carts.GET("", h.getCart)
	carts.DELETE("", h.clearCart)
	carts.POST("/items", h.addCartItem)
	carts.PUT("/items/:id", h.setCartItemQuantity)
	carts.DELETE("/items/:id", h.removeCartItem)
	carts.POST("/checkout", h.checkout)

	admin := api.Group("/admin", requireAuth(), requireAdmin())
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
