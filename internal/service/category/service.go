package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository/category"
)

type productRemover interface {
	DeleteProductsInCategory(ctx context.Context, categoryID int64) error
}

type Service struct {
	repo     category.Repository
	products productRemover
}

func New(repo category.Repository, products productRemover) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name required: %w", domain.ErrInvalidInput)
	}
	return s.repo.Create(ctx, name)
}

// GetOrCreate returns the category named name, creating it when missing.
func (s *Service) GetOrCreate(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	c, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c, err = s.Create(ctx, name)
	if errors.Is(err, domain.ErrDuplicateResource) {
		return s.repo.GetByName(ctx, name)
	}
	return c, err
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	page = page.Normalize()
	list, total, err := s.repo.List(ctx, page)
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return domain.NewPage(list, page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name required: %w", domain.ErrInvalidInput)
	}
	return s.repo.Update(ctx, id, name)
}

// Delete removes the category after deleting its products through the
// product service, so carts holding them are detached first.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.DeleteProductsInCategory(ctx, id); err != nil {
		return nil, fmt.Errorf("delete products of category %d: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}
