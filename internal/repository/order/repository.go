package order

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// PlaceInput carries everything checkout needs besides the cart itself.
type PlaceInput struct {
	UserID    string
	Email     string
	AddressID int64
	Payment   domain.Payment
}

type Repository interface {
	PlaceFromCart(ctx context.Context, in PlaceInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Order, int64, error)
	ListByEmail(ctx context.Context, email string, page domain.PageRequest) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
	Totals(ctx context.Context) (count int64, revenue decimal.Decimal, err error)
}
