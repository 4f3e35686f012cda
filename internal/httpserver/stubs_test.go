package httpserver

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
)

const testSecret = "test-secret"

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	tok, err := auth.Sign([]byte(testSecret), user, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + tok
}

func testRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.ProductSvc == nil {
		deps.ProductSvc = &stubProductService{}
	}
	if deps.CategorySvc == nil {
		deps.CategorySvc = &stubCategoryService{}
	}
	if deps.CartSvc == nil {
		deps.CartSvc = &stubCartService{}
	}
	if deps.OrderSvc == nil {
		deps.OrderSvc = &stubOrderService{}
	}
	if deps.AddressSvc == nil {
		deps.AddressSvc = &stubAddressService{}
	}
	router, err := buildRouter(logDiscard(), nil, deps, Options{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

type stubProductService struct {
	product  *domain.Product
	page     domain.Page[domain.Product]
	err      error
	keyword  string
	filter   domain.ProductFilter
	pageReq  domain.PageRequest
	imageArg string
}

func (s *stubProductService) CreateProduct(_ context.Context, _ int64, _ domain.ProductSpec) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) UpdateProduct(_ context.Context, _ int64, _ domain.ProductSpec) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) DeleteProduct(_ context.Context, _ int64) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) ListProducts(_ context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	s.filter = filter
	s.pageReq = page
	return s.page, s.err
}

func (s *stubProductService) SearchByKeyword(_ context.Context, keyword string, page domain.PageRequest) (domain.Page[domain.Product], error) {
	s.keyword = keyword
	s.pageReq = page
	return s.page, s.err
}

func (s *stubProductService) ListByCategory(_ context.Context, _ int64, page domain.PageRequest) (domain.Page[domain.Product], error) {
	s.pageReq = page
	return s.page, s.err
}

func (s *stubProductService) UpdateProductImage(_ context.Context, _ int64, filename string, _ io.Reader) (*domain.Product, error) {
	s.imageArg = filename
	return s.product, s.err
}

func (s *stubProductService) ImageURL(name string) string {
	return "http://img.test/" + name
}

type stubCategoryService struct {
	category *domain.Category
	err      error
}

func (s *stubCategoryService) Create(_ context.Context, name string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: 1, Name: name}, nil
}

func (s *stubCategoryService) List(_ context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	return domain.NewPage([]domain.Category{}, page, 0), s.err
}

func (s *stubCategoryService) Update(_ context.Context, id int64, name string) (*domain.Category, error) {
	return &domain.Category{ID: id, Name: name}, s.err
}

func (s *stubCategoryService) Delete(_ context.Context, _ int64) (*domain.Category, error) {
	return s.category, s.err
}

type stubCartService struct {
	cart       *domain.Cart
	err        error
	delta      int
	quantity   int
	deleted    bool
	bulkItems  []domain.ItemQuantity
	bulkResult *cartsvc.BulkResult
}

func (s *stubCartService) GetCart(_ context.Context, _ domain.User) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) ListCarts(_ context.Context, page domain.PageRequest) (domain.Page[domain.Cart], error) {
	return domain.NewPage([]domain.Cart{}, page, 0), s.err
}

func (s *stubCartService) AddProductToCart(_ context.Context, _ domain.User, _ int64, quantity int) (*domain.Cart, error) {
	s.quantity = quantity
	return s.cart, s.err
}

func (s *stubCartService) UpdateProductQuantityInCart(_ context.Context, _ domain.User, _ int64, delta int) (*domain.Cart, error) {
	s.delta = delta
	return s.cart, s.err
}

func (s *stubCartService) DeleteProductFromCart(_ context.Context, _, _ int64) error {
	s.deleted = true
	return s.err
}

func (s *stubCartService) CreateOrUpdateCartWithItems(_ context.Context, _ domain.User, items []domain.ItemQuantity) (*cartsvc.BulkResult, error) {
	s.bulkItems = items
	return s.bulkResult, s.err
}

type stubOrderService struct {
	order   *domain.Order
	err     error
	method  string
	payment ordersvc.PaymentInput
	status  string
	user    domain.User
}

func (s *stubOrderService) PlaceOrder(_ context.Context, user domain.User, method string, in ordersvc.PaymentInput) (*domain.Order, error) {
	s.user = user
	s.method = method
	s.payment = in
	return s.order, s.err
}

func (s *stubOrderService) UpdateOrderStatus(_ context.Context, _ int64, status string) (*domain.Order, error) {
	s.status = status
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(_ context.Context, page domain.PageRequest) (domain.Page[domain.Order], error) {
	return domain.NewPage([]domain.Order{}, page, 0), s.err
}

func (s *stubOrderService) ListUserOrders(_ context.Context, user domain.User, page domain.PageRequest) (domain.Page[domain.Order], error) {
	s.user = user
	return domain.NewPage([]domain.Order{}, page, 0), s.err
}

func (s *stubOrderService) Analytics(_ context.Context) (*domain.Analytics, error) {
	return &domain.Analytics{ProductCount: 3, TotalOrders: 2}, s.err
}

type stubAddressService struct {
	created  domain.Address
	updated  domain.Address
	err      error
	lastUser domain.User
	lastID   int64
}

func (s *stubAddressService) Create(_ context.Context, user domain.User, a domain.Address) (*domain.Address, error) {
	a.ID = 7
	a.UserID = user.ID
	s.created = a
	return &a, s.err
}

func (s *stubAddressService) List(_ context.Context, _ domain.User) ([]domain.Address, error) {
	return []domain.Address{}, s.err
}

func (s *stubAddressService) ListAll(_ context.Context, page domain.PageRequest) (domain.Page[domain.Address], error) {
	return domain.NewPage([]domain.Address{{ID: 1}, {ID: 2}}, page, 2), s.err
}

func (s *stubAddressService) Get(_ context.Context, user domain.User, id int64) (*domain.Address, error) {
	s.lastUser, s.lastID = user, id
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Address{ID: id, UserID: user.ID, City: "Springfield"}, nil
}

func (s *stubAddressService) Update(_ context.Context, user domain.User, id int64, a domain.Address) (*domain.Address, error) {
	s.lastUser, s.lastID = user, id
	a.ID = id
	s.updated = a
	if s.err != nil {
		return nil, s.err
	}
	return &a, nil
}

func (s *stubAddressService) Delete(_ context.Context, user domain.User, id int64) (*domain.Address, error) {
	s.lastUser, s.lastID = user, id
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Address{ID: id}, nil
}
