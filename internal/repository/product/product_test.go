package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	catID := dbtest.InsertCategory(ctx, t, pool, "Books")

	repo := NewPostgres(pool, nil)
	p, err := repo.Create(ctx, domain.Product{
		CategoryID:   catID,
		Name:         "Dune",
		Quantity:     5,
		Price:        decimal.NewFromInt(100),
		Discount:     decimal.NewFromInt(10),
		SpecialPrice: decimal.NewFromInt(90),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Image != domain.DefaultImage {
		t.Fatalf("expected default image, got %q", p.Image)
	}
	if !p.SpecialPrice.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected special price 90, got %s", p.SpecialPrice)
	}

	found, err := repo.FindByCategoryAndName(ctx, catID, "Dune")
	if err != nil || found.ID != p.ID {
		t.Fatalf("find by category and name: %+v err=%v", found, err)
	}
	if _, err := repo.FindByCategoryAndName(ctx, catID, "Emma"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = repo.Create(ctx, domain.Product{CategoryID: catID, Name: "Dune", Price: decimal.NewFromInt(1), SpecialPrice: decimal.NewFromInt(1)})
	if !errors.Is(err, domain.ErrDuplicateResource) {
		t.Fatalf("expected ErrDuplicateResource, got %v", err)
	}
	_, err = repo.Create(ctx, domain.Product{CategoryID: catID + 99, Name: "Orphan", Price: decimal.NewFromInt(1), SpecialPrice: decimal.NewFromInt(1)})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing category, got %v", err)
	}
}

func TestPostgres_ListFilters(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	books := dbtest.InsertCategory(ctx, t, pool, "Books")
	games := dbtest.InsertCategory(ctx, t, pool, "Games")
	dbtest.InsertProduct(ctx, t, pool, books, "Dune", 1, "10", "0", "10")
	dbtest.InsertProduct(ctx, t, pool, books, "Dune Messiah", 1, "12", "0", "12")
	dbtest.InsertProduct(ctx, t, pool, games, "Chess 100%", 1, "30", "0", "30")

	repo := NewPostgres(pool, nil)

	list, total, err := repo.List(ctx, domain.ProductFilter{Keyword: "DUNE"}, domain.PageRequest{SortBy: "price", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 || list[0].Name != "Dune Messiah" {
		t.Fatalf("unexpected keyword result total=%d %+v", total, list)
	}

	list, total, err = repo.List(ctx, domain.ProductFilter{CategoryID: games}, domain.PageRequest{})
	if err != nil || total != 1 || list[0].Name != "Chess 100%" {
		t.Fatalf("unexpected category result total=%d %+v err=%v", total, list, err)
	}

	_, total, err = repo.List(ctx, domain.ProductFilter{Keyword: "%"}, domain.PageRequest{})
	if err != nil || total != 1 {
		t.Fatalf("expected literal percent match, total=%d err=%v", total, err)
	}

	if _, _, err := repo.List(ctx, domain.ProductFilter{}, domain.PageRequest{SortBy: "bogus"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown sort, got %v", err)
	}
}

func TestPostgres_DeleteReferencedByCart(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	catID := dbtest.InsertCategory(ctx, t, pool, "Books")
	pid := dbtest.InsertProduct(ctx, t, pool, catID, "Dune", 5, "10", "0", "10")

	var cartID int64
	if err := pool.QueryRow(ctx, `INSERT INTO carts (user_id) VALUES ('u1') RETURNING id`).Scan(&cartID); err != nil {
		t.Fatalf("insert cart: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO cart_items (cart_id, product_id, quantity, product_price) VALUES ($1, $2, 1, 10)`, cartID, pid); err != nil {
		t.Fatalf("insert cart item: %v", err)
	}

	repo := NewPostgres(pool, nil)
	if err := repo.Delete(ctx, pid); !errors.Is(err, domain.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM cart_items`); err != nil {
		t.Fatalf("clear cart items: %v", err)
	}
	if err := repo.Delete(ctx, pid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, pid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
