package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// BulkStatus is returned by CreateOrUpdateCartWithItems when at least one item
// was applied.
const BulkStatus = "Cart created/updated with the new items successfully"

type Service struct {
	repo cartrepo.Repository
}

func New(repo cartrepo.Repository) *Service {
	return &Service{repo: repo}
}

// ItemFailure reports why one entry of a bulk upsert was not applied.
type ItemFailure struct {
	ProductID int64  `json:"productId"`
	Reason    string `json:"reason"`
	err       error
}

func (f ItemFailure) Error() string { return f.Reason }
func (f ItemFailure) Unwrap() error { return f.err }

type BulkResult struct {
	Status   string        `json:"status"`
	Applied  int           `json:"applied"`
	Failures []ItemFailure `json:"failures"`
}

func (s *Service) GetOrCreateCart(ctx context.Context, user domain.User) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, user)
}

func (s *Service) GetCart(ctx context.Context, user domain.User) (*domain.Cart, error) {
	return s.repo.GetByUser(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, cartID int64) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, cartID)
}

func (s *Service) ListCarts(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Cart], error) {
	page = page.Normalize()
	carts, total, err := s.repo.List(ctx, page)
	if err != nil {
		return domain.Page[domain.Cart]{}, err
	}
	return domain.NewPage(carts, page, total), nil
}

// AddProductToCart adds a new line for productID to the user's cart, creating
// the cart on first use.
func (s *Service) AddProductToCart(ctx context.Context, user domain.User, productID int64, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity %d must be at least 1: %w", quantity, domain.ErrInvalidInput)
	}
	cart, err := s.repo.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// UpdateProductQuantityInCart moves the quantity of an existing line by one
// unit in either direction.
func (s *Service) UpdateProductQuantityInCart(ctx context.Context, user domain.User, productID int64, delta int) (*domain.Cart, error) {
	if delta != 1 && delta != -1 {
		return nil, fmt.Errorf("quantity change %d: %w", delta, domain.ErrInvalidInput)
	}
	cart, err := s.repo.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ChangeItemQuantity(ctx, cart.ID, productID, delta); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) DeleteProductFromCart(ctx context.Context, cartID, productID int64) error {
	return s.repo.DeleteItem(ctx, cartID, productID)
}

// UpdateProductInCart refreshes the price snapshot of one line.
func (s *Service) UpdateProductInCart(ctx context.Context, cartID, productID int64) error {
	return s.repo.RefreshItem(ctx, cartID, productID)
}

// CreateOrUpdateCartWithItems applies each item in its own transaction.
// Domain failures are collected per item and earlier items stay applied; an
// infrastructure failure aborts the remaining items.
func (s *Service) CreateOrUpdateCartWithItems(ctx context.Context, user domain.User, items []domain.ItemQuantity) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items: %w", domain.ErrInvalidInput)
	}
	cart, err := s.repo.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Failures: []ItemFailure{}}
	for _, it := range items {
		var err error
		if it.Quantity < 1 {
			err = fmt.Errorf("quantity %d must be at least 1: %w", it.Quantity, domain.ErrInvalidInput)
		} else {
			err = s.repo.IncrementItem(ctx, cart.ID, it.ProductID, it.Quantity)
		}
		if err == nil {
			res.Applied++
			continue
		}
		if !isItemError(err) {
			return nil, err
		}
		res.Failures = append(res.Failures, ItemFailure{ProductID: it.ProductID, Reason: err.Error(), err: err})
	}
	if res.Applied > 0 {
		res.Status = BulkStatus
	} else {
		res.Status = "No items were applied"
	}
	return res, nil
}

func isItemError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInsufficientStock)
}
