package httpserver

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	productrepo "storefront-api/internal/repository/product"
	cartsvc "storefront-api/internal/service/cart"
	checkoutsvc "storefront-api/internal/service/checkout"
	ordersvc "storefront-api/internal/service/order"
	productsvc "storefront-api/internal/service/product"
	usersvc "storefront-api/internal/service/user"
)

// Deps carries the services the router dispatches to. Narrow interfaces keep
// handlers testable with stubs.
type Deps struct {
	Users      userService
	Products   productService
	Categories categoryService
	Carts      cartService
	Checkout   checkoutService
	Orders     orderService
	Metrics    *metrics.Metrics
}

type userService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
}

type productService interface {
	List(ctx context.Context, f productrepo.ListFilter) (*productsvc.ListResult, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name, slug string) (*domain.Category, error)
}

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.AddItemInput) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, userID string, in checkoutsvc.Input) (*domain.Order, error)
}

type orderService interface {
	List(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, id, userID string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	SetStatus(ctx context.Context, orderID string, in ordersvc.SetStatusInput) (*domain.Order, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps, corsOrigin string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}
	if corsOrigin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{corsOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := authMiddleware(deps.Users)
	admin := adminMiddleware()

	api := router.Group("/api")
	{
		api.POST("/auth/signup", signupHandler(deps.Users))
		api.POST("/auth/login", loginHandler(deps.Users))

		api.GET("/categories", listCategoriesHandler(deps.Categories))
		api.POST("/categories", auth, admin, createCategoryHandler(deps.Categories))

		api.GET("/products", listProductsHandler(deps.Products))
		api.GET("/products/:id", getProductHandler(deps.Products))
		api.POST("/products", auth, admin, createProductHandler(deps.Products))
		api.PUT("/products/:id", auth, admin, updateProductHandler(deps.Products))
		api.DELETE("/products/:id", auth, admin, deleteProductHandler(deps.Products))

		cart := api.Group("/cart", auth)
		{
			cart.GET("", getCartHandler(deps.Carts))
			cart.POST("/items", addCartItemHandler(deps.Carts))
			cart.PUT("/items/:itemID", updateCartItemHandler(deps.Carts))
			cart.DELETE("/items/:itemID", removeCartItemHandler(deps.Carts))
			cart.DELETE("", clearCartHandler(deps.Carts))
		}

		orders := api.Group("/orders", auth)
		{
			orders.GET("", listOrdersHandler(deps.Orders))
			orders.POST("/checkout", checkoutHandler(deps.Checkout))
			orders.GET("/admin/all", admin, listAllOrdersHandler(deps.Orders))
			orders.PUT("/admin/:id/status", admin, setOrderStatusHandler(deps.Orders))
			orders.GET("/:id", getOrderHandler(deps.Orders))
		}
	}

	return router
}
