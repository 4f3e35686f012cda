package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID         int64           `json:"cartId"`
	UserID     string          `json:"userId"`
	UserEmail  string          `json:"email"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	Items      []CartItem      `json:"products"`
}

// CartItem is a cart line. ProductPrice is the special price captured when the
// line was added or last refreshed.
type CartItem struct {
	ID           int64           `json:"cartItemId"`
	CartID       int64           `json:"cartId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	Image        string          `json:"image"`
	Quantity     int             `json:"quantity"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Discount     decimal.Decimal `json:"discount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// LineTotal is quantity times the price snapshot.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemQuantity is one entry of a bulk cart upsert.
type ItemQuantity struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
