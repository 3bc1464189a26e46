package ports

import (
	"context"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// PlaceOrderInput carries a purchase request from an authenticated buyer.
type PlaceOrderInput struct {
	Buyer          *domain.User
	Items          []string
	Shipping       domain.ShippingDetails
	IdempotencyKey string
}

// PlaceOrderResult is returned after an order has been persisted.
type PlaceOrderResult struct {
	Order *domain.Order
	// Replayed is true when the Idempotency-Key matched an existing order.
	Replayed bool
}

// OrderService defines use-case operations on orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	GetOrder(ctx context.Context, actor *domain.User, id string) (*OrderView, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	// Fulfill re-runs the idempotent fulfilment steps of a persisted order.
	Fulfill(ctx context.Context, orderID string) error
}

// FulfillmentQueue accepts orders whose fulfilment must be retried.
type FulfillmentQueue interface {
	Enqueue(orderID string)
}
