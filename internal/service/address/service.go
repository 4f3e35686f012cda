package address

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	addressrepo "storefront/internal/repository/address"
)

type Service struct {
	repo addressrepo.Repository
}

func New(repo addressrepo.Repository) *Service {
	return &Service{repo: repo}
}

func normalize(a domain.Address) (domain.Address, error) {
	a.Street = strings.TrimSpace(a.Street)
	a.BuildingName = strings.TrimSpace(a.BuildingName)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Country = strings.TrimSpace(a.Country)
	a.Pincode = strings.TrimSpace(a.Pincode)
	if a.Street == "" || a.City == "" || a.Country == "" {
		return a, fmt.Errorf("street, city and country are required: %w", domain.ErrInvalidInput)
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, user domain.User, a domain.Address) (*domain.Address, error) {
	a, err := normalize(a)
	if err != nil {
		return nil, err
	}
	a.UserID = user.ID
	return s.repo.Create(ctx, a)
}

// List returns the caller's own addresses.
func (s *Service) List(ctx context.Context, user domain.User) ([]domain.Address, error) {
	list, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Address{}
	}
	return list, nil
}

// ListAll returns every address. Callers restrict it to staff.
func (s *Service) ListAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Address], error) {
	page = page.Normalize()
	list, total, err := s.repo.List(ctx, page)
	if err != nil {
		return domain.Page[domain.Address]{}, err
	}
	return domain.NewPage(list, page, total), nil
}

// Get returns address id when user owns it or is staff. Other users' addresses
// are reported as not found.
func (s *Service) Get(ctx context.Context, user domain.User, id int64) (*domain.Address, error) {
	var (
		a   *domain.Address
		err error
	)
	if user.IsStaff() {
		a, err = s.repo.GetByID(ctx, id)
	} else {
		a, err = s.repo.GetForUser(ctx, user.ID, id)
	}
	if err != nil {
		return nil, fmt.Errorf("address %d: %w", id, err)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, user domain.User, id int64, a domain.Address) (*domain.Address, error) {
	a, err := normalize(a)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	a.ID = id
	return s.repo.Update(ctx, a)
}

// Delete removes an address the caller may see. Addresses referenced by an
// order cannot be removed.
func (s *Service) Delete(ctx context.Context, user domain.User, id int64) (*domain.Address, error) {
	a, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

// GetForUser is the owner-only lookup used by checkout.
func (s *Service) GetForUser(ctx context.Context, userID string, id int64) (*domain.Address, error) {
	return s.repo.GetForUser(ctx, userID, id)
}
