package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/domain"
)

type categoryCreator interface {
	GetOrCreate(ctx context.Context, name string) (*domain.Category, error)
}

type productCreator interface {
	CreateProduct(ctx context.Context, categoryID int64, spec domain.ProductSpec) (*domain.Product, error)
}

type productSeed struct {
	Category    string
	Name        string
	Description string
	Quantity    int
	Price       string
	Discount    string
}

var products = []productSeed{
	{Category: "Phones", Name: "Demo Phone", Description: "Six inch demo handset", Quantity: 25, Price: "499.00", Discount: "10"},
	{Category: "Phones", Name: "Demo Phone Mini", Description: "Compact demo handset", Quantity: 15, Price: "399.00", Discount: "5"},
	{Category: "Home", Name: "Demo Mug", Description: "Ceramic mug with demo logo", Quantity: 100, Price: "12.99", Discount: "0"},
	{Category: "Home", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", Quantity: 60, Price: "19.99", Discount: "25"},
}

// Apply inserts demo catalog data for manual testing. Re-running it leaves
// existing rows alone.
func Apply(ctx context.Context, categories categoryCreator, catalog productCreator) (int, error) {
	created := 0
	for _, p := range products {
		cat, err := categories.GetOrCreate(ctx, p.Category)
		if err != nil {
			return created, fmt.Errorf("category %s: %w", p.Category, err)
		}
		_, err = catalog.CreateProduct(ctx, cat.ID, domain.ProductSpec{
			Name:        p.Name,
			Description: p.Description,
			Quantity:    p.Quantity,
			Price:       decimal.RequireFromString(p.Price),
			Discount:    decimal.RequireFromString(p.Discount),
		})
		if errors.Is(err, domain.ErrDuplicateResource) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("product %s: %w", p.Name, err)
		}
		created++
	}
	return created, nil
}

// AdminToken signs a bearer token for a local admin user.
func AdminToken(secret string, ttl time.Duration) (string, error) {
	return auth.Sign([]byte(secret), domain.User{
		ID:    "seed-admin",
		Email: "admin@storefront.local",
		Roles: []string{domain.RoleAdmin},
	}, ttl)
}
