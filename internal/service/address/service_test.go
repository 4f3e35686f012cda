package address

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubRepo struct {
	created *domain.Address
	updated *domain.Address
	deleted int64
	stored  map[int64]domain.Address
	delErr  error
}

func (s *stubRepo) Create(_ context.Context, a domain.Address) (*domain.Address, error) {
	a.ID = 1
	s.created = &a
	return &a, nil
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (*domain.Address, error) {
	a, ok := s.stored[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *stubRepo) List(_ context.Context, _ domain.PageRequest) ([]domain.Address, int64, error) {
	out := make([]domain.Address, 0, len(s.stored))
	for _, a := range s.stored {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (s *stubRepo) ListByUser(_ context.Context, _ string) ([]domain.Address, error) {
	return nil, nil
}

func (s *stubRepo) GetForUser(_ context.Context, userID string, id int64) (*domain.Address, error) {
	a, ok := s.stored[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *stubRepo) Update(_ context.Context, a domain.Address) (*domain.Address, error) {
	a.UserID = s.stored[a.ID].UserID
	s.updated = &a
	return &a, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = id
	return nil
}

var (
	owner    = domain.User{ID: "u1"}
	stranger = domain.User{ID: "u2"}
	seller   = domain.User{ID: "s1", Roles: []string{domain.RoleSeller}}
)

func seeded() *stubRepo {
	return &stubRepo{stored: map[int64]domain.Address{
		7: {ID: 7, UserID: "u1", Street: "1 Main St", City: "Springfield", Country: "US"},
	}}
}

func TestCreate_AssignsOwner(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)

	a, err := svc.Create(context.Background(), domain.User{ID: "u1"}, domain.Address{UserID: "spoofed", Street: " 1 Main St ", City: "Springfield", Country: "US"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.UserID != "u1" || a.Street != "1 Main St" {
		t.Fatalf("unexpected address %+v", a)
	}
	if _, err := svc.Create(context.Background(), domain.User{ID: "u1"}, domain.Address{City: "x", Country: "y"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestList_NeverNil(t *testing.T) {
	svc := New(&stubRepo{})
	list, err := svc.List(context.Background(), domain.User{ID: "u1"})
	if err != nil || list == nil {
		t.Fatalf("expected empty non-nil list, got %v err=%v", list, err)
	}
}

func TestGet_ScopedToOwnerUnlessStaff(t *testing.T) {
	svc := New(seeded())
	ctx := context.Background()

	if a, err := svc.Get(ctx, owner, 7); err != nil || a.City != "Springfield" {
		t.Fatalf("owner get: %+v err=%v", a, err)
	}
	if _, err := svc.Get(ctx, stranger, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	if _, err := svc.Get(ctx, seller, 7); err != nil {
		t.Fatalf("staff get: %v", err)
	}
}

func TestUpdate_ChecksOwnershipAndInput(t *testing.T) {
	repo := seeded()
	svc := New(repo)
	ctx := context.Background()

	a, err := svc.Update(ctx, owner, 7, domain.Address{UserID: "u2", Street: " 2 Elm St ", City: "Shelbyville", Country: "US"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.ID != 7 || a.Street != "2 Elm St" || a.UserID != "u1" {
		t.Fatalf("unexpected address %+v", a)
	}

	repo.updated = nil
	if _, err := svc.Update(ctx, stranger, 7, domain.Address{Street: "x", City: "y", Country: "z"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, owner, 7, domain.Address{City: "y"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.updated != nil {
		t.Fatalf("rejected updates must not reach the repository")
	}
}

func TestDelete(t *testing.T) {
	repo := seeded()
	svc := New(repo)
	ctx := context.Background()

	if _, err := svc.Delete(ctx, stranger, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.deleted != 0 {
		t.Fatalf("another user's address was deleted")
	}
	a, err := svc.Delete(ctx, owner, 7)
	if err != nil || a.ID != 7 || repo.deleted != 7 {
		t.Fatalf("delete: %+v err=%v deleted=%d", a, err, repo.deleted)
	}

	repo = seeded()
	repo.delErr = domain.ErrReferenced
	if _, err := New(repo).Delete(ctx, seller, 7); !errors.Is(err, domain.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
}

func TestListAll(t *testing.T) {
	page, err := New(seeded()).ListAll(context.Background(), domain.PageRequest{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if page.TotalElements != 1 || len(page.Content) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}
