package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/closetshop/closet-api/pkg/metrics"
	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

// Fulfilment steps, in execution order.
const (
	stepMarkSold      = "mark_sold"
	stepAppendHistory = "append_history"
	stepMarkFulfilled = "mark_fulfilled"
)

type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	users    ports.UserRepository
	tx       ports.Transactor
	cache    ports.ProductCache
	retry    ports.FulfillmentQueue
	logger   zerolog.Logger
}

// NewOrderService wires the order use cases. cache may be nil.
func NewOrderService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	users ports.UserRepository,
	tx ports.Transactor,
	cache ports.ProductCache,
	logger zerolog.Logger,
) *OrderService {
	if cache == nil {
		cache = noopCache{}
	}
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		tx:       tx,
		cache:    cache,
		logger:   logger,
	}
}

// UseRetryQueue sets where orders with incomplete fulfilment are sent. The
// queue is attached after construction because it calls back into Fulfill.
func (s *OrderService) UseRetryQueue(q ports.FulfillmentQueue) {
	s.retry = q
}

// PlaceOrder persists an order and fulfils it: every item is marked sold and
// the order is appended to the buyer's history.
//
// With a transactional store all steps commit together. Otherwise they run
// in sequence; a sold conflict is compensated, and any other failure leaves
// the order unfulfilled and queued for retry. The returned order reports
// which case applied through its Fulfilled flag.
func (s *OrderService) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	if input.Buyer == nil {
		return nil, domain.ErrUnauthorized
	}
	if len(input.Items) == 0 {
		return nil, domain.NewValidationError(map[string]string{"items": "items must contain at least one product"})
	}

	if input.IdempotencyKey != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, input.IdempotencyKey)
		switch {
		case err == nil && existing.BuyerID == input.Buyer.ID:
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("order_id", existing.ID).Msg("idempotent replay")
			metrics.OrdersPlacedTotal.WithLabelValues("replayed").Inc()
			return &ports.PlaceOrderResult{Order: existing, Replayed: true}, nil
		case err == nil:
			return nil, domain.ErrIdempotencyReused
		case !errors.Is(err, domain.ErrOrderNotFound):
			return nil, fmt.Errorf("place order: %w", err)
		}
	}

	order := &domain.Order{
		BuyerID:        input.Buyer.ID,
		Items:          input.Items,
		Shipping:       input.Shipping,
		Status:         domain.OrderPending,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.checkAvailable(ctx, order.DistinctItems()); err != nil {
		return nil, err
	}

	if s.tx.Atomic() {
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.orders.Create(ctx, order); err != nil {
				return err
			}
			_, err := s.fulfil(ctx, order)
			return err
		})
		if err != nil {
			order.Fulfilled = false
			s.countOutcome(err)
			return nil, fmt.Errorf("place order: %w", err)
		}
		s.cache.Invalidate(ctx, order.DistinctItems()...)
		s.logPlaced(order)
		return &ports.PlaceOrderResult{Order: order}, nil
	}

	if err := s.orders.Create(ctx, order); err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("place order: %w", err)
	}

	done, err := s.fulfil(ctx, order)
	s.cache.Invalidate(ctx, order.DistinctItems()...)
	if err != nil {
		if errors.Is(err, domain.ErrProductSold) {
			s.compensate(ctx, order)
			metrics.OrdersPlacedTotal.WithLabelValues("conflict").Inc()
			return nil, err
		}

		s.logger.Warn().Err(err).
			Str("order_id", order.ID).
			Strs("completed_steps", done).
			Msg("order saved with incomplete fulfilment, queued for retry")
		if s.retry != nil {
			s.retry.Enqueue(order.ID)
		}
		metrics.OrdersPlacedTotal.WithLabelValues("pending").Inc()
		return &ports.PlaceOrderResult{Order: order}, nil
	}

	s.logPlaced(order)
	return &ports.PlaceOrderResult{Order: order}, nil
}

// Fulfill re-runs the fulfilment steps of a persisted order. Fulfilled
// orders are left untouched.
func (s *OrderService) Fulfill(ctx context.Context, orderID string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Fulfilled {
		return nil
	}

	done, err := s.fulfil(ctx, order)
	s.cache.Invalidate(ctx, order.DistinctItems()...)
	if err != nil {
		if errors.Is(err, domain.ErrProductSold) {
			s.compensate(ctx, order)
			metrics.FulfillmentRetriesTotal.WithLabelValues("compensated").Inc()
			return err
		}
		s.logger.Warn().Err(err).
			Str("order_id", order.ID).
			Strs("completed_steps", done).
			Msg("fulfilment retry incomplete")
		metrics.FulfillmentRetriesTotal.WithLabelValues("failed").Inc()
		return err
	}

	metrics.FulfillmentRetriesTotal.WithLabelValues("fulfilled").Inc()
	s.logger.Info().Str("order_id", order.ID).Msg("order fulfilled on retry")
	return nil
}

// GetOrder returns an order with its items expanded. Only the buyer or an
// admin may read it.
func (s *OrderService) GetOrder(ctx context.Context, actor *domain.User, id string) (*ports.OrderView, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(order.BuyerID) {
		return nil, domain.ErrForbidden
	}

	items, err := s.products.FindSummaries(ctx, order.DistinctItems())
	if err != nil {
		return nil, fmt.Errorf("expand order items: %w", err)
	}

	return &ports.OrderView{Order: order, Items: pick(indexSummaries(items), order.Items)}, nil
}

// UpdateStatus moves an order one step forward in its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("update order status: %w (from %s to %s)", domain.ErrInvalidTransition, order.Status, next)
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, next); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = next

	s.logger.Info().Str("order_id", order.ID).Str("status", string(next)).Msg("order status updated")
	return order, nil
}

// checkAvailable rejects missing or already sold items before anything is
// written.
func (s *OrderService) checkAvailable(ctx context.Context, ids []string) error {
	found, err := s.products.FindSummaries(ctx, ids)
	if err != nil {
		return fmt.Errorf("check items: %w", err)
	}
	if len(found) < len(ids) {
		return domain.ErrProductNotFound
	}
	for _, p := range found {
		if p.Sold {
			return domain.ErrProductSold
		}
	}
	return nil
}

// fulfil runs the idempotent fulfilment steps and returns the ones that
// completed.
func (s *OrderService) fulfil(ctx context.Context, order *domain.Order) ([]string, error) {
	var done []string
	items := order.DistinctItems()

	matched, err := s.products.MarkSoldByOrder(ctx, items, order.ID)
	if err != nil {
		return done, fmt.Errorf("%s: %w", stepMarkSold, err)
	}
	if matched < int64(len(items)) {
		return done, fmt.Errorf("%s: %w", stepMarkSold, domain.ErrProductSold)
	}
	done = append(done, stepMarkSold)

	if err := s.users.AppendOrder(ctx, order.BuyerID, order.ID); err != nil {
		return done, fmt.Errorf("%s: %w", stepAppendHistory, err)
	}
	done = append(done, stepAppendHistory)

	if err := s.orders.MarkFulfilled(ctx, order.ID); err != nil {
		return done, fmt.Errorf("%s: %w", stepMarkFulfilled, err)
	}
	done = append(done, stepMarkFulfilled)

	order.Fulfilled = true
	return done, nil
}

// compensate undoes a partially fulfilled order that lost a sold race.
func (s *OrderService) compensate(ctx context.Context, order *domain.Order) {
	log := s.logger.With().Str("order_id", order.ID).Logger()

	if err := s.products.ReleaseOrder(ctx, order.ID); err != nil {
		log.Error().Err(err).Msg("compensation: failed to release items")
		return
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		log.Error().Err(err).Msg("compensation: failed to delete order")
		return
	}
	log.Warn().Msg("order rolled back after sold conflict")
}

func (s *OrderService) countOutcome(err error) {
	if errors.Is(err, domain.ErrProductSold) {
		metrics.OrdersPlacedTotal.WithLabelValues("conflict").Inc()
		return
	}
	metrics.OrdersPlacedTotal.WithLabelValues("error").Inc()
}

func (s *OrderService) logPlaced(order *domain.Order) {
	metrics.OrdersPlacedTotal.WithLabelValues("fulfilled").Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("buyer_id", order.BuyerID).
		Int("items", len(order.Items)).
		Msg("order placed")
}
