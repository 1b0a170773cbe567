// Package authz holds the single authorization decision point: every
// handler asks the Policy before touching a customer-owned resource,
// instead of re-implementing role and ownership checks inline.
package authz

import (
	"context"
	"errors"

	"repairdesk/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// Identity is the caller as extracted from the bearer token.
type Identity struct {
	UserID int64
	Role   domain.UserRole
}

// Resource describes the target of an access decision. For
// customer-owned resources OwnerCustomerID carries the owning
// Customer's id.
type Resource struct {
	Kind            string
	OwnerCustomerID int64
}

// CustomerResolver resolves (creating if absent) the customer row for
// a user.
type CustomerResolver interface {
	FindOrCreateByUserID(ctx context.Context, userID int64) (*domain.Customer, error)
}

type Policy struct {
	customers CustomerResolver
}

func NewPolicy(customers CustomerResolver) *Policy {
	return &Policy{customers: customers}
}

// CustomerFor returns the caller's customer identity, creating the
// row on first use. The lazy create is intentional: a brand-new
// customer user has no Customer row until their first customer-scoped
// action, and that action must not fail for the lack of one.
func (p *Policy) CustomerFor(ctx context.Context, ident Identity) (*domain.Customer, error) {
	if ident.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	return p.customers.FindOrCreateByUserID(ctx, ident.UserID)
}

// Authorize decides whether ident may act on res. Staff roles pass;
// customers pass only when they own the resource.
func (p *Policy) Authorize(ctx context.Context, ident Identity, res Resource) error {
	if ident.UserID == 0 {
		return ErrUnauthenticated
	}

	switch ident.Role {
	case domain.RoleAdmin, domain.RoleTechnician:
		return nil
	case domain.RoleCustomer:
		own, err := p.customers.FindOrCreateByUserID(ctx, ident.UserID)
		if err != nil {
			return err
		}
		if own.ID != res.OwnerCustomerID {
			return ErrForbidden
		}
		return nil
	}

	return ErrForbidden
}

// IdentityFromContext builds an Identity from gin context values set
// by the auth middleware.
func IdentityFromContext(userID int64, role string) Identity {
	return Identity{UserID: userID, Role: domain.UserRole(role)}
}
