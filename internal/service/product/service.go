package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/pricing"
	productrepo "storefront/internal/repository/product"
)

// maxDeleteAttempts bounds the detach-then-delete loop when a cart picks the
// product up between the two steps.
const maxDeleteAttempts = 3

// maxSyncAttempts bounds cart re-snapshotting after a committed product
// update. SyncProduct reads the current product row, so repeating it is safe.
const maxSyncAttempts = 3

type categoryLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

// cartSynchronizer keeps carts in step with catalog writes.
type cartSynchronizer interface {
	SyncProduct(ctx context.Context, productID int64) (int, error)
	DetachProduct(ctx context.Context, productID int64) (int, error)
}

type Service struct {
	repo       productrepo.Repository
	categories categoryLookup
	sync       cartSynchronizer
	pages      cache.ProductPages
	images     imagestore.Store
	logger     *log.Logger
}

func New(repo productrepo.Repository, categories categoryLookup, sync cartSynchronizer, pages cache.ProductPages, images imagestore.Store, logger *log.Logger) *Service {
	if pages == nil {
		pages = cache.NewNoop()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, categories: categories, sync: sync, pages: pages, images: images, logger: logger}
}

func validate(spec domain.ProductSpec) (domain.ProductSpec, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Description = strings.TrimSpace(spec.Description)
	if spec.Name == "" {
		return spec, fmt.Errorf("product name required: %w", domain.ErrInvalidInput)
	}
	if spec.Quantity < 0 {
		return spec, fmt.Errorf("quantity %d must not be negative: %w", spec.Quantity, domain.ErrInvalidInput)
	}
	if err := pricing.ValidatePrice(spec.Price); err != nil {
		return spec, err
	}
	if err := pricing.ValidateDiscount(spec.Discount); err != nil {
		return spec, err
	}
	return spec, nil
}

// CreateProduct adds a product to a category. Names are unique within a
// category.
func (s *Service) CreateProduct(ctx context.Context, categoryID int64, spec domain.ProductSpec) (*domain.Product, error) {
	spec, err := validate(spec)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, err)
	}
	if _, err := s.repo.FindByCategoryAndName(ctx, categoryID, spec.Name); err == nil {
		return nil, fmt.Errorf("product %q already exists: %w", spec.Name, domain.ErrDuplicateResource)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p, err := s.repo.Create(ctx, domain.Product{
		CategoryID:   categoryID,
		Name:         spec.Name,
		Description:  spec.Description,
		Image:        domain.DefaultImage,
		Quantity:     spec.Quantity,
		Price:        spec.Price,
		Discount:     spec.Discount,
		SpecialPrice: pricing.ComputeSpecialPrice(spec.Price, spec.Discount),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// UpdateProduct overwrites the editable fields, recomputes the special price,
// and refreshes the snapshot in every cart holding the product before
// returning.
func (s *Service) UpdateProduct(ctx context.Context, productID int64, spec domain.ProductSpec) (*domain.Product, error) {
	spec, err := validate(spec)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	current.Name = spec.Name
	current.Description = spec.Description
	current.Quantity = spec.Quantity
	current.Price = spec.Price
	current.Discount = spec.Discount
	current.SpecialPrice = pricing.ComputeSpecialPrice(spec.Price, spec.Discount)

	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	if err := s.syncCarts(ctx, productID); err != nil {
		return nil, err
	}
	return updated, nil
}

// syncCarts retries SyncProduct until it succeeds, the context ends or the
// attempts run out. The product row is already committed, so a final failure
// leaves carts on the old snapshot until the next write to the product.
func (s *Service) syncCarts(ctx context.Context, productID int64) error {
	var err error
	for attempt := 1; attempt <= maxSyncAttempts; attempt++ {
		if _, err = s.sync.SyncProduct(ctx, productID); err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, domain.ErrNotFound) {
			break
		}
		s.logger.Printf("product %d: cart sync attempt %d failed: %v", productID, attempt, err)
	}
	s.logger.Printf("product %d: carts left on stale snapshot: %v", productID, err)
	return fmt.Errorf("sync carts: %w", err)
}

// DeleteProduct removes the product from every cart and then deletes it.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		if _, err := s.sync.DetachProduct(ctx, productID); err != nil {
			return nil, fmt.Errorf("detach from carts: %w", err)
		}
		err := s.repo.Delete(ctx, productID)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrReferenced) || attempt >= maxDeleteAttempts {
			return nil, err
		}
		s.logger.Printf("product service: product_id=%d re-added to a cart during delete, attempt=%d", productID, attempt)
	}
	s.invalidate(ctx)
	return p, nil
}

// DeleteProductsInCategory deletes every product of a category through the
// cart-aware delete path.
func (s *Service) DeleteProductsInCategory(ctx context.Context, categoryID int64) error {
	ids, err := s.repo.ListIDsByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.DeleteProduct(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return nil
}

// ListProducts returns a page of products. A category filter that matches
// nothing is reported as ErrEmptyResult.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	res, err := s.list(ctx, "list", filter, page)
	if err != nil {
		return res, err
	}
	if filter.CategoryID != 0 && res.TotalElements == 0 {
		return res, fmt.Errorf("no products in category %d: %w", filter.CategoryID, domain.ErrEmptyResult)
	}
	return res, nil
}

// SearchByKeyword matches names case-insensitively by substring.
func (s *Service) SearchByKeyword(ctx context.Context, keyword string, page domain.PageRequest) (domain.Page[domain.Product], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.Page[domain.Product]{}, fmt.Errorf("keyword required: %w", domain.ErrInvalidInput)
	}
	res, err := s.list(ctx, "keyword", domain.ProductFilter{Keyword: keyword}, page)
	if err != nil {
		return res, err
	}
	if res.TotalElements == 0 {
		return res, fmt.Errorf("no products match %q: %w", keyword, domain.ErrEmptyResult)
	}
	return res, nil
}

// ListByCategory fails with ErrNotFound for an unknown category and with
// ErrEmptyResult for a category without products.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) (domain.Page[domain.Product], error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("category %d: %w", categoryID, err)
	}
	res, err := s.list(ctx, "category", domain.ProductFilter{CategoryID: categoryID}, page)
	if err != nil {
		return res, err
	}
	if res.TotalElements == 0 {
		return res, fmt.Errorf("no products in category %d: %w", categoryID, domain.ErrEmptyResult)
	}
	return res, nil
}

// UpdateProductImage stores the upload and points the product at it.
func (s *Service) UpdateProductImage(ctx context.Context, productID int64, filename string, r io.Reader) (*domain.Product, error) {
	if s.images == nil {
		return nil, errors.New("image store not configured")
	}
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	name, err := s.images.Save(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateImage(ctx, productID, name)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// ImageURL resolves a stored image name for clients.
func (s *Service) ImageURL(name string) string {
	if s.images == nil || name == domain.DefaultImage {
		return name
	}
	return s.images.URL(name)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// InvalidateListings drops every cached listing page. Stock changes made
// outside the catalog, such as checkout, call this.
func (s *Service) InvalidateListings(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *Service) list(ctx context.Context, kind string, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	page = page.Normalize()
	key := cache.QueryKey(kind, filter, page)
	cached, ver, ok := s.pages.Get(ctx, key)
	if ok {
		return *cached, nil
	}

	products, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	res := domain.NewPage(products, page, total)
	if total > 0 {
		s.pages.Set(ctx, key, ver, res)
	}
	return res, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.pages.Invalidate(ctx); err != nil {
		s.logger.Printf("product service: invalidate listing cache error=%v", err)
	}
}
