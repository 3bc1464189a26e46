package ports

import (
	"context"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create inserts o and sets its ID.
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	// FindByIDs returns the orders in ids, newest first. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Order, error)
	// FindUnfulfilled returns the ids of orders whose fulfilment has not completed.
	FindUnfulfilled(ctx context.Context) ([]string, error)
	MarkFulfilled(ctx context.Context, id string) error
	// UpdateStatus sets the status only if the order is still in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
}

// Transactor runs fn atomically when the store supports multi-document
// transactions. Atomic reports whether it does.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}
