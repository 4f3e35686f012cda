package main

import (
	"context"
	"log"
	"os"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/seed"
)

func main() {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	pages, closeCache, err := app.ProductPages(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer closeCache()

	svcs := app.Build(pool, pages, nil, logger)
	n, err := seed.Apply(ctx, svcs.Categories, svcs.Products)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	logger.Printf("seed applied, %d products created", n)

	token, err := seed.AdminToken(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		logger.Fatalf("sign admin token: %v", err)
	}
	logger.Printf("admin token (24h): %s", token)
}
