package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/imagestore"
)

func main() {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	pages, closeCache, err := app.ProductPages(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer closeCache()

	images, err := imagestore.New(ctx, cfg.Images)
	if err != nil {
		logger.Fatalf("init image store: %v", err)
	}

	svcs := app.Build(dbpool, pages, images, logger)

	opts := httpserver.Options{JWTSecret: cfg.JWTSecret, CORSOrigins: cfg.CORSOrigins}
	if cfg.Images.Driver == "local" {
		opts.ImageDir = cfg.Images.Dir
	}
	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  svcs.Products,
		CategorySvc: svcs.Categories,
		CartSvc:     svcs.Carts,
		OrderSvc:    svcs.Orders,
		AddressSvc:  svcs.Addresses,
	}, opts)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
