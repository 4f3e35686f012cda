package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultImage is attached to every product until an image is uploaded.
const DefaultImage = "default.png"

type Product struct {
	ID           int64           `json:"productId"`
	CategoryID   int64           `json:"categoryId"`
	Name         string          `json:"productName"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	SpecialPrice decimal.Decimal `json:"specialPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProductSpec carries the caller-editable product fields.
type ProductSpec struct {
	Name        string
	Description string
	Quantity    int
	Price       decimal.Decimal
	Discount    decimal.Decimal
}

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	Keyword    string
	CategoryID int64
}

func init() {
	// Prices render as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
