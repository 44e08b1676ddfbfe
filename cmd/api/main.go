package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpserver"
	"storefront-api/internal/metrics"
	cartrepo "storefront-api/internal/repository/cart"
	categoryrepo "storefront-api/internal/repository/category"
	inventoryrepo "storefront-api/internal/repository/inventory"
	orderrepo "storefront-api/internal/repository/order"
	productrepo "storefront-api/internal/repository/product"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
	cartsvc "storefront-api/internal/service/cart"
	categorysvc "storefront-api/internal/service/category"
	checkoutsvc "storefront-api/internal/service/checkout"
	ordersvc "storefront-api/internal/service/order"
	productsvc "storefront-api/internal/service/product"
	usersvc "storefront-api/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		productRepo = productrepo.NewCacheAside(productRepo, client, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("product cache enabled")
	}

	cartRepo := cartrepo.NewPostgres(dbpool)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	inventoryRepo := inventoryrepo.NewPostgres(logger)
	userRepo := userrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	m := metrics.New(prometheus.DefaultRegisterer)

	userService := usersvc.New(userRepo, tokenRepo)
	productService := productsvc.New(productRepo)
	categoryService := categorysvc.New(categoryRepo)
	cartService := cartsvc.New(cartRepo, productRepo, dbpool)
	orderService := ordersvc.New(orderRepo)
	checkoutService := checkoutsvc.New(db.NewTxRunner(dbpool), cartRepo, productRepo, inventoryRepo, orderRepo, logger, m)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Users:      userService,
		Products:   productService,
		Categories: categoryService,
		Carts:      cartService,
		Checkout:   checkoutService,
		Orders:     orderService,
		Metrics:    m,
	}, cfg.CORSOrigin)
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
