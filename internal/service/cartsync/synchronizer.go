// Package cartsync propagates product changes into every cart holding the
// product. It runs synchronously so that a product update or delete has
// reached all carts by the time the catalog call returns.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

type cartLocator interface {
	FindCartIDsByProduct(ctx context.Context, productID int64) ([]int64, error)
}

type cartWriter interface {
	UpdateProductInCart(ctx context.Context, cartID, productID int64) error
	DeleteProductFromCart(ctx context.Context, cartID, productID int64) error
}

type Synchronizer struct {
	carts  cartLocator
	writer cartWriter
	logger *log.Logger
}

func New(carts cartLocator, writer cartWriter, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Synchronizer{carts: carts, writer: writer, logger: logger}
}

// SyncProduct refreshes the price snapshot of productID in every cart that
// holds it and returns the number of carts updated.
func (s *Synchronizer) SyncProduct(ctx context.Context, productID int64) (int, error) {
	return s.each(ctx, productID, "refresh", s.writer.UpdateProductInCart)
}

// DetachProduct removes productID from every cart that holds it and returns
// the number of carts changed.
func (s *Synchronizer) DetachProduct(ctx context.Context, productID int64) (int, error) {
	return s.each(ctx, productID, "detach", s.writer.DeleteProductFromCart)
}

func (s *Synchronizer) each(ctx context.Context, productID int64, action string, fn func(context.Context, int64, int64) error) (int, error) {
	cartIDs, err := s.carts.FindCartIDsByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("find carts for product %d: %w", productID, err)
	}

	touched := 0
	for _, cartID := range cartIDs {
		err := fn(ctx, cartID, productID)
		switch {
		case err == nil:
			touched++
			metrics.CartSync.WithLabelValues(action, "ok").Inc()
		case errors.Is(err, domain.ErrNotFound):
			// Removed by the shopper since the lookup.
			metrics.CartSync.WithLabelValues(action, "skipped").Inc()
		default:
			metrics.CartSync.WithLabelValues(action, "error").Inc()
			return touched, fmt.Errorf("%s product %d in cart %d: %w", action, productID, cartID, err)
		}
	}
	if len(cartIDs) > 0 {
		s.logger.Printf("cart sync: %s product_id=%d carts=%d touched=%d", action, productID, len(cartIDs), touched)
	}
	return touched, nil
}
