package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPlaced is the only status assigned at checkout.
const OrderStatusPlaced = "PLACED"

type Order struct {
	ID          int64           `json:"orderId"`
	Email       string          `json:"email"`
	AddressID   int64           `json:"addressId"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"orderStatus"`
	Payment     Payment         `json:"payment"`
	Items       []OrderItem     `json:"orderItems"`
}

// Payment holds gateway facts supplied by the client; nothing here is verified.
type Payment struct {
	Method            string `json:"paymentMethod"`
	PGName            string `json:"pgName"`
	PGPaymentID       string `json:"pgPaymentId"`
	PGStatus          string `json:"pgStatus"`
	PGResponseMessage string `json:"pgResponseMessage"`
}

// OrderItem is an immutable snapshot. ProductID is nil once the product is gone.
type OrderItem struct {
	ID          int64           `json:"orderItemId"`
	OrderID     int64           `json:"orderId"`
	ProductID   *int64          `json:"productId,omitempty"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"orderedProductPrice"`
	Discount    decimal.Decimal `json:"discount"`
}

type Analytics struct {
	ProductCount int64           `json:"productCount"`
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}
