package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

const orderBody = `{"items":["p1","p2"],"shipping":{"name":"Ana","street":"Main 1","postcode":"1000","city":"Lisbon","phone":"123"}}`

func TestOrderHandler_Place_Status(t *testing.T) {
	cases := []struct {
		name   string
		result ports.PlaceOrderResult
		want   int
	}{
		{"fulfilled", ports.PlaceOrderResult{Order: &domain.Order{ID: "o1", Fulfilled: true}}, http.StatusCreated},
		{"pending", ports.PlaceOrderResult{Order: &domain.Order{ID: "o1"}}, http.StatusAccepted},
		{"replayed", ports.PlaceOrderResult{Order: &domain.Order{ID: "o1", Fulfilled: true}, Replayed: true}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buyer := &domain.User{ID: "u1"}
			var got ports.PlaceOrderInput
			stub := &stubOrderService{
				placeFn: func(_ context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
					got = input
					result := tc.result
					return &result, nil
				},
			}
			h := NewOrderHandler(stub)

			c, rec := newContext(newEcho(), http.MethodPost, "/orders", orderBody, buyer)
			c.Request().Header.Set(IdempotencyHeader, "key-1")
			if err := h.Place(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if rec.Header().Get("Location") != "/orders/o1" {
				t.Errorf("unexpected location %q", rec.Header().Get("Location"))
			}
			if got.Buyer != buyer || got.IdempotencyKey != "key-1" || len(got.Items) != 2 || got.Shipping.City != "Lisbon" {
				t.Errorf("unexpected input: %+v", got)
			}
		})
	}
}

func TestOrderHandler_Place_Validation(t *testing.T) {
	h := NewOrderHandler(&stubOrderService{})

	c, _ := newContext(newEcho(), http.MethodPost, "/orders", `{"items":[],"shipping":{"name":"Ana"}}`, &domain.User{ID: "u1"})
	fields := fieldsOf(h.Place(c))
	for _, name := range []string{"items", "shipping.street", "shipping.city"} {
		if fields[name] == "" {
			t.Errorf("expected a message for %s, got %v", name, fields)
		}
	}
	if _, ok := fields["shipping.name"]; ok {
		t.Error("shipping.name is present")
	}
}

func TestOrderHandler_Place_PropagatesConflict(t *testing.T) {
	stub := &stubOrderService{
		placeFn: func(context.Context, ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
			return nil, domain.ErrProductSold
		},
	}
	h := NewOrderHandler(stub)

	c, _ := newContext(newEcho(), http.MethodPost, "/orders", orderBody, &domain.User{ID: "u1"})
	if err := h.Place(c); !errors.Is(err, domain.ErrProductSold) {
		t.Fatalf("expected ErrProductSold, got %v", err)
	}
}

func TestOrderHandler_Get_ExpandsItems(t *testing.T) {
	stub := &stubOrderService{
		getFn: func(_ context.Context, _ *domain.User, id string) (*ports.OrderView, error) {
			return &ports.OrderView{
				Order: &domain.Order{ID: id, BuyerID: "u1", Items: []string{"p1", "p1"}, Status: domain.OrderShipped},
				Items: []domain.ProductSummary{{ID: "p1", Name: "Derby", Price: 89.5}, {ID: "p1", Name: "Derby", Price: 89.5}},
			}, nil
		},
	}
	h := NewOrderHandler(stub)

	c, rec := newContext(newEcho(), http.MethodGet, "/", "", &domain.User{ID: "u1"})
	c.SetParamNames("orderId")
	c.SetParamValues("o1")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "o1" || len(resp.Products) != 2 || resp.Products[1].Name != "Derby" {
		t.Errorf("unexpected order: %+v", resp)
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	stub := &stubOrderService{
		statusFn: func(_ context.Context, id, status string) (*domain.Order, error) {
			if status == "Shipped" {
				return nil, domain.ErrInvalidTransition
			}
			return &domain.Order{ID: id, Status: domain.OrderStatus(status)}, nil
		},
	}
	h := NewOrderHandler(stub)
	admin := &domain.User{ID: "a1", Admin: true}

	c, rec := newContext(newEcho(), http.MethodPut, "/", `{"status":"Processing"}`, admin)
	c.SetParamNames("orderId")
	c.SetParamValues("o1")
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(newEcho(), http.MethodPut, "/", `{"status":"Shipped"}`, admin)
	c.SetParamNames("orderId")
	c.SetParamValues("o1")
	if err := h.UpdateStatus(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	c, _ = newContext(newEcho(), http.MethodPut, "/", `{"status":"Lost"}`, admin)
	if fieldsOf(h.UpdateStatus(c))["status"] == "" {
		t.Fatal("expected status validation error")
	}
}
