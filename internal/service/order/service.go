package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	orderrepo "storefront/internal/repository/order"
)

type addressLookup interface {
	GetForUser(ctx context.Context, userID string, id int64) (*domain.Address, error)
}

type catalog interface {
	Count(ctx context.Context) (int64, error)
	InvalidateListings(ctx context.Context)
}

type Service struct {
	repo      orderrepo.Repository
	addresses addressLookup
	catalog   catalog
	logger    *log.Logger
}

func New(repo orderrepo.Repository, addresses addressLookup, catalog catalog, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, addresses: addresses, catalog: catalog, logger: logger}
}

// PaymentInput is the gateway outcome reported by the client.
type PaymentInput struct {
	AddressID         int64  `json:"addressId"`
	PGName            string `json:"pgName"`
	PGPaymentID       string `json:"pgPaymentId"`
	PGStatus          string `json:"pgStatus"`
	PGResponseMessage string `json:"pgResponseMessage"`
}

// PlaceOrder converts the user's cart into an order. The address must belong
// to the user; the cart must exist and hold at least one item.
func (s *Service) PlaceOrder(ctx context.Context, user domain.User, paymentMethod string, in PaymentInput) (*domain.Order, error) {
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, fmt.Errorf("payment method required: %w", domain.ErrInvalidInput)
	}
	if _, err := s.addresses.GetForUser(ctx, user.ID, in.AddressID); err != nil {
		metrics.CheckoutFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, fmt.Errorf("address %d: %w", in.AddressID, err)
	}

	o, err := s.repo.PlaceFromCart(ctx, orderrepo.PlaceInput{
		UserID:    user.ID,
		Email:     user.Email,
		AddressID: in.AddressID,
		Payment: domain.Payment{
			Method:            paymentMethod,
			PGName:            in.PGName,
			PGPaymentID:       in.PGPaymentID,
			PGStatus:          in.PGStatus,
			PGResponseMessage: in.PGResponseMessage,
		},
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	metrics.OrdersPlaced.Inc()
	s.catalog.InvalidateListings(ctx)
	s.logger.Printf("order service: user_id=%s placed order_id=%d", user.ID, o.ID)
	return o, nil
}

// UpdateOrderStatus stores any non-empty status verbatim. No transition graph
// is enforced.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("status required: %w", domain.ErrInvalidInput)
	}
	return s.repo.UpdateStatus(ctx, orderID, status)
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Order], error) {
	page = page.Normalize()
	orders, total, err := s.repo.List(ctx, page)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	return domain.NewPage(orders, page, total), nil
}

func (s *Service) ListUserOrders(ctx context.Context, user domain.User, page domain.PageRequest) (domain.Page[domain.Order], error) {
	page = page.Normalize()
	orders, total, err := s.repo.ListByEmail(ctx, user.Email, page)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	return domain.NewPage(orders, page, total), nil
}

func (s *Service) Analytics(ctx context.Context) (*domain.Analytics, error) {
	products, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, err
	}
	orders, revenue, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Analytics{ProductCount: products, TotalOrders: orders, TotalRevenue: revenue}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
