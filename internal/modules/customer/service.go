package customer

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

var ErrNotFound = errors.New("customer not found")

// Repository covers the admin-facing customer management needs.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context, limit, offset int) ([]domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
}

// UserDeactivator flips is_active; users are never hard-deleted.
type UserDeactivator interface {
	Deactivate(ctx context.Context, userID int64) error
}

type Service struct {
	customers Repository
	users     UserDeactivator
}

func NewService(customers Repository, users UserDeactivator) *Service {
	return &Service{customers: customers, users: users}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	return s.customers.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, address, notes string) (*domain.Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Address = address
	c.Notes = notes
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// DeactivateUser is the admin "delete": the user row is retained for
// audit, only is_active flips.
func (s *Service) DeactivateUser(ctx context.Context, userID int64) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
