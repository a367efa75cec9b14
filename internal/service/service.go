package service

import (
	"context"

	"decor-store/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue queries.
type ProductService interface {
	// List returns the products matching every set field of the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID returns a product with its variants, or model.ErrProductNotFound.
	GetByID(ctx context.Context, id int64) (*model.ProductWithVariants, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder places a pending order for principal, pricing every item from
	// the catalogue.
	CreateOrder(ctx context.Context, principal *model.Principal, req *model.OrderRequest) (*model.Order, error)

	// GetByID returns an order owned by principal together with its items.
	GetByID(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.OrderWithItems, error)
}

// AuthService defines account and login session operations.
type AuthService interface {
	// Register creates an account and logs it in.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.Session, error)

	// Login verifies credentials and opens a session.
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.Session, error)

	// Logout ends a session. Ending an unknown session is not an error.
	Logout(ctx context.Context, sessionID uuid.UUID) error

	// Authenticate resolves an active session into a principal. Returns nil,
	// nil when the session is unknown or expired.
	Authenticate(ctx context.Context, sessionID uuid.UUID) (*model.Principal, error)

	// CurrentUser returns the account behind principal.
	CurrentUser(ctx context.Context, principal *model.Principal) (*model.User, error)
}

// ShippingRates prices the courier services that can be ordered.
type ShippingRates interface {
	ServiceCost(courier, service string, weightGrams float64) (float64, bool)
}
