package httpserver

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

// Options configures the router beyond its service dependencies.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	// ImageDir is served under /images when set.
	ImageDir string
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret required")
	}
	if deps.ProductSvc == nil || deps.CategorySvc == nil || deps.CartSvc == nil || deps.OrderSvc == nil || deps.AddressSvc == nil {
		return nil, errors.New("all services are required")
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metrics.Middleware())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.ImageDir != "" {
		router.Static("/images", opts.ImageDir)
	}

	h := &handlers{deps: deps, logger: logger}
	identity := identityMiddleware([]byte(opts.JWTSecret))
	api := router.Group("/api")

	public := api.Group("/public")
	public.GET("/categories", h.listCategories)
	public.GET("/categories/:categoryId/products", h.listProductsByCategory)
	public.GET("/products", h.listProducts)
	public.GET("/products/keyword/:keyword", h.searchProducts)

	admin := api.Group("/admin", identity, requireRole(domain.RoleAdmin, domain.RoleSeller))
	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:categoryId", h.updateCategory)
	admin.DELETE("/categories/:categoryId", h.deleteCategory)
	admin.POST("/categories/:categoryId/product", h.createProduct)
	admin.PUT("/products/:productId", h.updateProduct)
	admin.DELETE("/products/:productId", h.deleteProduct)
	admin.PUT("/products/:productId/image", h.updateProductImage)
	admin.GET("/carts", h.listCarts)
	admin.GET("/orders", h.listOrders)
	admin.PUT("/orders/:orderId/status", h.updateOrderStatus)
	admin.GET("/app/analytics", h.analytics)

	user := api.Group("", identity)
	user.POST("/carts/products/:productId/quantity/:quantity", h.addProductToCart)
	user.GET("/carts/users/cart", h.getUserCart)
	user.DELETE("/carts/:cartId/product/:productId", h.deleteProductFromCart)
	user.PUT("/cart/products/:productId/quantity/:operation", h.updateCartQuantity)
	user.POST("/cart/create", h.bulkUpsertCart)
	user.POST("/addresses", h.createAddress)
	user.GET("/addresses", requireRole(domain.RoleAdmin, domain.RoleSeller), h.listAllAddresses)
	user.GET("/addresses/:addressId", h.getAddress)
	user.PUT("/addresses/:addressId", h.updateAddress)
	user.DELETE("/addresses/:addressId", h.deleteAddress)
	user.GET("/user/addresses", h.listAddresses)
	user.GET("/users/addresses", h.listAddresses)
	user.POST("/order/users/payments/:paymentMethod", h.placeOrder)
	user.GET("/users/orders", h.listUserOrders)

	return router, nil
}
