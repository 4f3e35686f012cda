// Package app assembles repositories and services on top of a database pool.
package app

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/imagestore"
	addressrepo "storefront/internal/repository/address"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	addresssvc "storefront/internal/service/address"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/cartsync"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
)

// Services is the wired service graph.
type Services struct {
	Products   *productsvc.Service
	Categories *categorysvc.Service
	Carts      *cartsvc.Service
	Orders     *ordersvc.Service
	Addresses  *addresssvc.Service
}

// Build wires every service. A nil pages falls back to no caching.
func Build(pool *pgxpool.Pool, pages cache.ProductPages, images imagestore.Store, logger *log.Logger) *Services {
	productRepo := productrepo.NewPostgres(pool, logger)
	categoryRepo := categoryrepo.NewPostgres(pool, logger)
	cartRepo := cartrepo.NewPostgres(pool, logger)
	orderRepo := orderrepo.NewPostgres(pool, logger)
	addressRepo := addressrepo.NewPostgres(pool)

	carts := cartsvc.New(cartRepo)
	sync := cartsync.New(cartRepo, carts, logger)
	products := productsvc.New(productRepo, categoryRepo, sync, pages, images, logger)
	categories := categorysvc.New(categoryRepo, products)
	addresses := addresssvc.New(addressRepo)
	orders := ordersvc.New(orderRepo, addresses, products, logger)

	return &Services{
		Products:   products,
		Categories: categories,
		Carts:      carts,
		Orders:     orders,
		Addresses:  addresses,
	}
}

// ProductPages connects the listing cache when Redis is configured and falls
// back to no caching otherwise. The returned func releases the connection.
func ProductPages(ctx context.Context, cfg config.Config, logger *log.Logger) (cache.ProductPages, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewNoop(), func() {}, nil
	}
	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedis(rdb, cfg.ProductCacheTTL, logger), func() { rdb.Close() }, nil
}
