package repository

import (
	"context"

	"decor-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// List retrieves every product matching all set fields of the filter, ordered by ID.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product. Returns nil, nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetVariants retrieves the variants of a product ordered by ID.
	GetVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)

	// GetByIDs retrieves the products that exist among ids.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateProduct inserts a product within tx and sets its ID.
	CreateProduct(ctx context.Context, tx pgx.Tx, product *model.Product) error

	// CreateVariants inserts variants within tx and sets their IDs.
	CreateVariants(ctx context.Context, tx pgx.Tx, variants []model.ProductVariant) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)
}

// UserRepository defines the interface for user account storage.
type UserRepository interface {
	// Create inserts a user and sets its ID and timestamps.
	// Returns model.ErrUsernameTaken when the username is already registered.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername returns nil, nil when no user has that username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID returns nil, nil when the user does not exist.
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// SessionRepository defines the interface for login session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error

	// GetActive returns the session if it exists and has not expired, nil otherwise.
	GetActive(ctx context.Context, id uuid.UUID) (*model.Session, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes every expired session and reports how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
