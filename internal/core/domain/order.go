package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
)

// orderTransitions only moves forward; Shipped is terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing},
	OrderProcessing: {OrderShipped},
}

// ParseOrderStatus returns the status named by s.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderProcessing, OrderShipped:
		return st, nil
	}
	return "", NewValidationError(map[string]string{"status": "status must be one of Pending, Processing, Shipped"})
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingDetails are the delivery fields captured with an order.
type ShippingDetails struct {
	Name     string
	Street   string
	Postcode string
	City     string
	Phone    string
}

// Order is a purchase. Items may repeat a product reference; there is no
// quantity field.
type Order struct {
	ID             string
	BuyerID        string
	Items          []string
	Shipping       ShippingDetails
	Status         OrderStatus
	Fulfilled      bool
	IdempotencyKey string
	CreatedAt      time.Time
}

// DistinctItems returns the item references with duplicates removed, in
// first-seen order.
func (o *Order) DistinctItems() []string {
	seen := make(map[string]struct{}, len(o.Items))
	out := make([]string, 0, len(o.Items))
	for _, id := range o.Items {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
