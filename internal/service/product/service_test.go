package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/cache"
	"storefront/internal/domain"
)

type stubRepo struct {
	products    map[int64]*domain.Product
	listResult  []domain.Product
	deleteErrs  []error
	nextID      int64
	listCalls   int
	onList      func()
	events      *[]string
	lastCreated domain.Product
}

func newStubRepo(events *[]string) *stubRepo {
	return &stubRepo{products: map[int64]*domain.Product{}, nextID: 1, events: events}
}

func (s *stubRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = &p
	s.lastCreated = p
	return &p, nil
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) FindByCategoryAndName(_ context.Context, categoryID int64, name string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.CategoryID == categoryID && p.Name == name {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) List(_ context.Context, _ domain.ProductFilter, _ domain.PageRequest) ([]domain.Product, int64, error) {
	s.listCalls++
	if s.onList != nil {
		s.onList()
	}
	return s.listResult, int64(len(s.listResult)), nil
}

func (s *stubRepo) ListIDsByCategory(_ context.Context, categoryID int64) ([]int64, error) {
	var ids []int64
	for id, p := range s.products {
		if p.CategoryID == categoryID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *stubRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	*s.events = append(*s.events, "update")
	s.products[p.ID] = &p
	return &p, nil
}

func (s *stubRepo) UpdateImage(_ context.Context, id int64, image string) (*domain.Product, error) {
	p := s.products[id]
	p.Image = image
	return p, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	*s.events = append(*s.events, "delete")
	if len(s.deleteErrs) > 0 {
		err := s.deleteErrs[0]
		s.deleteErrs = s.deleteErrs[1:]
		if err != nil {
			return err
		}
	}
	delete(s.products, id)
	return nil
}

func (s *stubRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.products)), nil
}

type stubCategories struct{ missing bool }

func (s stubCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	if s.missing {
		return nil, domain.ErrNotFound
	}
	return &domain.Category{ID: id, Name: "Books"}, nil
}

type stubSync struct {
	events   *[]string
	synced   []int64
	failures int
}

func (s *stubSync) SyncProduct(_ context.Context, productID int64) (int, error) {
	*s.events = append(*s.events, "sync")
	if s.failures > 0 {
		s.failures--
		return 0, errors.New("connection reset")
	}
	s.synced = append(s.synced, productID)
	return 2, nil
}

func (s *stubSync) DetachProduct(_ context.Context, _ int64) (int, error) {
	*s.events = append(*s.events, "detach")
	return 1, nil
}

// stubPages keys pages by generation the way the Redis cache does.
type stubPages struct {
	stored      map[string]domain.Page[domain.Product]
	version     cache.Version
	invalidated int
}

func pageKey(ver cache.Version, key string) string {
	return fmt.Sprintf("v%d:%s", ver, key)
}

func (s *stubPages) Get(_ context.Context, key string) (*domain.Page[domain.Product], cache.Version, bool) {
	p, ok := s.stored[pageKey(s.version, key)]
	if !ok {
		return nil, s.version, false
	}
	return &p, s.version, true
}

func (s *stubPages) Set(_ context.Context, key string, ver cache.Version, page domain.Page[domain.Product]) {
	s.stored[pageKey(ver, key)] = page
}

func (s *stubPages) Invalidate(_ context.Context) error {
	s.invalidated++
	s.version++
	return nil
}

type stubImages struct{ saved string }

func (s *stubImages) Save(_ context.Context, name string, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	s.saved = string(data)
	return "stored-" + name, nil
}

func (s *stubImages) URL(name string) string { return "https://cdn.example/" + name }

type fixture struct {
	svc    *Service
	repo   *stubRepo
	sync   *stubSync
	pages  *stubPages
	images *stubImages
	events []string
}

func newFixture() *fixture {
	f := &fixture{}
	f.repo = newStubRepo(&f.events)
	f.sync = &stubSync{events: &f.events}
	f.pages = &stubPages{stored: map[string]domain.Page[domain.Product]{}}
	f.images = &stubImages{}
	f.svc = New(f.repo, stubCategories{}, f.sync, f.pages, f.images, nil)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateProduct_ComputesSpecialPrice(t *testing.T) {
	f := newFixture()
	p, err := f.svc.CreateProduct(context.Background(), 1, domain.ProductSpec{Name: " Dune ", Quantity: 5, Price: dec("100"), Discount: dec("10")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Dune" || p.Image != domain.DefaultImage || !p.SpecialPrice.Equal(dec("90")) {
		t.Fatalf("unexpected product %+v", p)
	}
	if f.pages.invalidated != 1 {
		t.Fatalf("expected listing cache invalidated once, got %d", f.pages.invalidated)
	}
}

func TestCreateProduct_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	spec := domain.ProductSpec{Name: "Dune", Quantity: 1, Price: dec("10"), Discount: dec("0")}
	if _, err := f.svc.CreateProduct(ctx, 1, spec); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.CreateProduct(ctx, 1, spec); !errors.Is(err, domain.ErrDuplicateResource) {
		t.Fatalf("expected ErrDuplicateResource, got %v", err)
	}
	if _, err := f.svc.CreateProduct(ctx, 2, spec); err != nil {
		t.Fatalf("same name in another category should be allowed: %v", err)
	}

	bad := spec
	bad.Discount = dec("101")
	if _, err := f.svc.CreateProduct(ctx, 1, bad); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for discount, got %v", err)
	}

	missing := New(f.repo, stubCategories{missing: true}, f.sync, f.pages, nil, nil)
	spec.Name = "Emma"
	if _, err := missing.CreateProduct(ctx, 9, spec); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing category, got %v", err)
	}
}

func TestUpdateProduct_SyncsCartsAfterSaving(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, _ := f.svc.CreateProduct(ctx, 1, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("100"), Discount: dec("10")})

	updated, err := f.svc.UpdateProduct(ctx, p.ID, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("100"), Discount: dec("20")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.SpecialPrice.Equal(dec("80")) {
		t.Fatalf("expected special price 80, got %s", updated.SpecialPrice)
	}
	if strings.Join(f.events, ",") != "update,sync" {
		t.Fatalf("expected update then sync, got %v", f.events)
	}
	if len(f.sync.synced) != 1 || f.sync.synced[0] != p.ID {
		t.Fatalf("unexpected synced products %v", f.sync.synced)
	}

	if _, err := f.svc.UpdateProduct(ctx, 999, domain.ProductSpec{Name: "x", Price: dec("1"), Discount: dec("0")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProduct_RetriesCartSync(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, _ := f.svc.CreateProduct(ctx, 1, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("100"), Discount: dec("10")})

	f.sync.failures = 1
	if _, err := f.svc.UpdateProduct(ctx, p.ID, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("100"), Discount: dec("20")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if strings.Join(f.events, ",") != "update,sync,sync" {
		t.Fatalf("expected one retried sync, got %v", f.events)
	}
	if len(f.sync.synced) != 1 {
		t.Fatalf("expected carts synced once, got %v", f.sync.synced)
	}

	f.events = nil
	f.sync.failures = maxSyncAttempts
	if _, err := f.svc.UpdateProduct(ctx, p.ID, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("100"), Discount: dec("30")}); err == nil {
		t.Fatalf("expected error once attempts run out")
	}
	if strings.Join(f.events, ",") != "update,sync,sync,sync" {
		t.Fatalf("expected %d sync attempts, got %v", maxSyncAttempts, f.events)
	}
}

func TestDeleteProduct_DetachesBeforeDeleting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, _ := f.svc.CreateProduct(ctx, 1, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("10"), Discount: dec("0")})

	deleted, err := f.svc.DeleteProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != p.ID {
		t.Fatalf("expected deleted product returned, got %+v", deleted)
	}
	if strings.Join(f.events, ",") != "detach,delete" {
		t.Fatalf("expected detach then delete, got %v", f.events)
	}
	if _, err := f.svc.DeleteProduct(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteProduct_RetriesWhenReReferenced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, _ := f.svc.CreateProduct(ctx, 1, domain.ProductSpec{Name: "Dune", Quantity: 5, Price: dec("10"), Discount: dec("0")})
	f.repo.deleteErrs = []error{domain.ErrReferenced, nil}

	if _, err := f.svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if strings.Join(f.events, ",") != "detach,delete,detach,delete" {
		t.Fatalf("unexpected events %v", f.events)
	}

	q, _ := f.svc.CreateProduct(ctx, 1, domain.ProductSpec{Name: "Emma", Quantity: 5, Price: dec("10"), Discount: dec("0")})
	f.repo.deleteErrs = []error{domain.ErrReferenced, domain.ErrReferenced, domain.ErrReferenced}
	if _, err := f.svc.DeleteProduct(ctx, q.ID); !errors.Is(err, domain.ErrReferenced) {
		t.Fatalf("expected ErrReferenced after bounded retries, got %v", err)
	}
}

func TestListings_EmptyResultsAndCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.SearchByKeyword(ctx, "dune", domain.PageRequest{}); !errors.Is(err, domain.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult for keyword search, got %v", err)
	}
	if _, err := f.svc.ListByCategory(ctx, 1, domain.PageRequest{}); !errors.Is(err, domain.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult for empty category, got %v", err)
	}
	if _, err := f.svc.ListProducts(ctx, domain.ProductFilter{CategoryID: 1}, domain.PageRequest{}); !errors.Is(err, domain.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult for category filter, got %v", err)
	}
	if page, err := f.svc.ListProducts(ctx, domain.ProductFilter{}, domain.PageRequest{}); err != nil || page.TotalElements != 0 {
		t.Fatalf("unfiltered empty list should succeed, got %+v err=%v", page, err)
	}

	f.repo.listResult = []domain.Product{{ID: 1, Name: "Dune"}}
	f.repo.listCalls = 0
	for i := 0; i < 2; i++ {
		page, err := f.svc.SearchByKeyword(ctx, "dune", domain.PageRequest{})
		if err != nil || len(page.Content) != 1 {
			t.Fatalf("search: %+v err=%v", page, err)
		}
	}
	if f.repo.listCalls != 1 {
		t.Fatalf("expected second search served from cache, repo calls=%d", f.repo.listCalls)
	}

	missing := New(f.repo, stubCategories{missing: true}, f.sync, f.pages, nil, nil)
	if _, err := missing.ListByCategory(ctx, 5, domain.PageRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestListProducts_PageLoadedAcrossCatalogWriteIsNotServed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.listResult = []domain.Product{{ID: 1, Name: "Dune", SpecialPrice: dec("90")}}

	// The catalog changes after the rows were read but before the page is
	// stored.
	f.repo.onList = func() {
		f.repo.onList = nil
		f.svc.InvalidateListings(ctx)
	}
	if _, err := f.svc.SearchByKeyword(ctx, "dune", domain.PageRequest{}); err != nil {
		t.Fatalf("first search: %v", err)
	}

	f.repo.listResult = []domain.Product{{ID: 1, Name: "Dune", SpecialPrice: dec("80")}}
	page, err := f.svc.SearchByKeyword(ctx, "dune", domain.PageRequest{})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if f.repo.listCalls != 2 {
		t.Fatalf("expected the stale page to be skipped, repo calls=%d", f.repo.listCalls)
	}
	if !page.Content[0].SpecialPrice.Equal(dec("80")) {
		t.Fatalf("served stale price %s", page.Content[0].SpecialPrice)
	}
}

func TestUpdateProductImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, _ := f.svc.CreateProduct(ctx, 1, domain.ProductSpec{Name: "Dune", Quantity: 1, Price: dec("10"), Discount: dec("0")})

	got, err := f.svc.UpdateProductImage(ctx, p.ID, "cover.png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("update image: %v", err)
	}
	if got.Image != "stored-cover.png" || f.images.saved != "bytes" {
		t.Fatalf("unexpected image %q saved=%q", got.Image, f.images.saved)
	}
	if f.svc.ImageURL(got.Image) != "https://cdn.example/stored-cover.png" {
		t.Fatalf("unexpected url %q", f.svc.ImageURL(got.Image))
	}
	if f.svc.ImageURL(domain.DefaultImage) != domain.DefaultImage {
		t.Fatalf("default image should not be rewritten")
	}
}
