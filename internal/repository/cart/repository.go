package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists carts and their items. Every mutating method runs in a
// single transaction that locks the cart row, reads the product row with a
// share lock, and recomputes the cart total before committing.
type Repository interface {
	GetOrCreate(ctx context.Context, user domain.User) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetByID(ctx context.Context, cartID int64) (*domain.Cart, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Cart, int64, error)
	FindCartIDsByProduct(ctx context.Context, productID int64) ([]int64, error)

	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	IncrementItem(ctx context.Context, cartID, productID int64, quantity int) error
	ChangeItemQuantity(ctx context.Context, cartID, productID int64, delta int) error
	RefreshItem(ctx context.Context, cartID, productID int64) error
	DeleteItem(ctx context.Context, cartID, productID int64) error
}
