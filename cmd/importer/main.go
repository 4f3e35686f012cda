package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Load storefront catalog data",
}

var productsCmd = &cobra.Command{
	Use:   "products <file.csv>",
	Short: "Import products from a CSV file",
	Long: "Imports rows with the columns category, productName, description, quantity, price and discount.\n" +
		"Missing categories are created; products already present in their category are skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runProducts,
}

func init() {
	rootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	pages, closeCache, err := app.ProductPages(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer closeCache()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	svcs := app.Build(pool, pages, nil, logger)
	imp := importer.NewCSVImporter(f, svcs.Products, svcs.Categories)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed after %d products: %w", res.Imported, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products (%d skipped) in %s\n", res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
	return nil
}
