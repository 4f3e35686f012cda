package address

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Address, int64, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	GetForUser(ctx context.Context, userID string, id int64) (*domain.Address, error)
	// Update overwrites the postal fields of address a.ID; the owner never changes.
	Update(ctx context.Context, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, id int64) error
}
