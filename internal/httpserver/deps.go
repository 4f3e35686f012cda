package httpserver

import (
	"context"
	"io"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
)

// Deps holds the services the HTTP layer calls into.
type Deps struct {
	ProductSvc  ProductService
	CategorySvc CategoryService
	CartSvc     CartService
	OrderSvc    OrderService
	AddressSvc  AddressService
}

type ProductService interface {
	CreateProduct(ctx context.Context, categoryID int64, spec domain.ProductSpec) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID int64, spec domain.ProductSpec) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)
	SearchByKeyword(ctx context.Context, keyword string, page domain.PageRequest) (domain.Page[domain.Product], error)
	ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) (domain.Page[domain.Product], error)
	UpdateProductImage(ctx context.Context, productID int64, filename string, r io.Reader) (*domain.Product, error)
	ImageURL(name string) string
}

type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error)
	Update(ctx context.Context, id int64, name string) (*domain.Category, error)
	Delete(ctx context.Context, id int64) (*domain.Category, error)
}

type CartService interface {
	GetCart(ctx context.Context, user domain.User) (*domain.Cart, error)
	ListCarts(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Cart], error)
	AddProductToCart(ctx context.Context, user domain.User, productID int64, quantity int) (*domain.Cart, error)
	UpdateProductQuantityInCart(ctx context.Context, user domain.User, productID int64, delta int) (*domain.Cart, error)
	DeleteProductFromCart(ctx context.Context, cartID, productID int64) error
	CreateOrUpdateCartWithItems(ctx context.Context, user domain.User, items []domain.ItemQuantity) (*cartsvc.BulkResult, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, user domain.User, paymentMethod string, in ordersvc.PaymentInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
	ListOrders(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Order], error)
	ListUserOrders(ctx context.Context, user domain.User, page domain.PageRequest) (domain.Page[domain.Order], error)
	Analytics(ctx context.Context) (*domain.Analytics, error)
}

type AddressService interface {
	Create(ctx context.Context, user domain.User, a domain.Address) (*domain.Address, error)
	List(ctx context.Context, user domain.User) ([]domain.Address, error)
	ListAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Address], error)
	Get(ctx context.Context, user domain.User, id int64) (*domain.Address, error)
	Update(ctx context.Context, user domain.User, id int64, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, user domain.User, id int64) (*domain.Address, error)
}
