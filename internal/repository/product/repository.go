package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByCategoryAndName(ctx context.Context, categoryID int64, name string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error)
	ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateImage(ctx context.Context, id int64, image string) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
