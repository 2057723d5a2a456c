package repository

import (
	"context"
	"errors"

	"github.com/shukrishariif/grocery-app/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartExists      = errors.New("cart already exists")
	ErrVersionMismatch = errors.New("cart version mismatch")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// CartRepository is the capability set the cart service works against:
// get, insert, update and delete keyed by owner. Insert and Update carry
// compare-and-swap semantics on Cart.Version so concurrent writers for the
// same owner cannot lose updates.
type CartRepository interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)

	// Insert stores a brand-new cart at version 1. Returns ErrCartExists
	// if the owner already has one.
	Insert(ctx context.Context, cart *domain.Cart) error

	// Update persists cart.Items against the version the caller read and
	// bumps the version. Returns ErrVersionMismatch if the stored version
	// moved (or the cart vanished) in the meantime.
	Update(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart only if it is still at the given version.
	Delete(ctx context.Context, ownerID string, version int64) error
}

// OrderRepository persists derived orders. Checkout is the single
// all-or-nothing step of order derivation: it stores the order and deletes
// the source cart at the presented version inside one transaction.
type OrderRepository interface {
	Checkout(ctx context.Context, order *domain.Order, cartVersion int64) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	Get(ctx context.Context, ownerID, orderID string) (*domain.Order, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, category string) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type ContactRepository interface {
	Insert(ctx context.Context, m *domain.ContactMessage) error
}
