package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository provides access to duration billing products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// OrderRepository provides access to duration billing orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderCode(ctx context.Context, orderCode string) (*Order, error)
	FindActiveByUser(ctx context.Context, userID string) ([]Order, error)
	FindByUser(ctx context.Context, userID string, filter shared.Filter) ([]Order, error)
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)
	Save(ctx context.Context, order *Order) error
	// SaveWithLock saves the order with an optimistic-locking version check,
	// failing with ConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, order *Order) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
