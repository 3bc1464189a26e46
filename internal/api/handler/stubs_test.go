package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

type stubCatalogService struct {
	listFn     func(ctx context.Context, input ports.ListProductsInput) (*ports.ListProductsResult, error)
	getFn      func(ctx context.Context, id string) (*domain.Product, error)
	createFn   func(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error)
	toggleFn   func(ctx context.Context, actor *domain.User, userID, productID string) (*domain.Product, error)
	featuredFn func(ctx context.Context, productID string, featured bool) (*domain.Product, error)
	imageFn    func(ctx context.Context, id string) (*ports.Image, error)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, input ports.ListProductsInput) (*ports.ListProductsResult, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, input)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, input)
}

func (s *stubCatalogService) ToggleSold(ctx context.Context, actor *domain.User, userID, productID string) (*domain.Product, error) {
	if s.toggleFn == nil {
		return nil, errNotStubbed
	}
	return s.toggleFn(ctx, actor, userID, productID)
}

func (s *stubCatalogService) SetFeatured(ctx context.Context, productID string, featured bool) (*domain.Product, error) {
	if s.featuredFn == nil {
		return nil, errNotStubbed
	}
	return s.featuredFn(ctx, productID, featured)
}

func (s *stubCatalogService) OpenImage(ctx context.Context, id string) (*ports.Image, error) {
	if s.imageFn == nil {
		return nil, errNotStubbed
	}
	return s.imageFn(ctx, id)
}

type stubUserService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	profileFn  func(ctx context.Context, actor *domain.User, id string) (*ports.UserProfile, error)
	updateFn   func(ctx context.Context, actor *domain.User, id string, input ports.UpdateUserInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, actor *domain.User, id string) error
	loginFn    func(ctx context.Context, email, password string) (*ports.UserProfile, error)
}

func (s *stubUserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if s.registerFn == nil {
		return nil, errNotStubbed
	}
	return s.registerFn(ctx, input)
}

func (s *stubUserService) Profile(ctx context.Context, actor *domain.User, id string) (*ports.UserProfile, error) {
	if s.profileFn == nil {
		return nil, errNotStubbed
	}
	return s.profileFn(ctx, actor, id)
}

func (s *stubUserService) Update(ctx context.Context, actor *domain.User, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if s.updateFn == nil {
		return nil, errNotStubbed
	}
	return s.updateFn(ctx, actor, id, input)
}

func (s *stubUserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if s.deleteFn == nil {
		return errNotStubbed
	}
	return s.deleteFn(ctx, actor, id)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (*ports.UserProfile, error) {
	if s.loginFn == nil {
		return nil, errNotStubbed
	}
	return s.loginFn(ctx, email, password)
}

type stubOrderService struct {
	placeFn  func(ctx context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error)
	getFn    func(ctx context.Context, actor *domain.User, id string) (*ports.OrderView, error)
	statusFn func(ctx context.Context, id, status string) (*domain.Order, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	if s.placeFn == nil {
		return nil, errNotStubbed
	}
	return s.placeFn(ctx, input)
}

func (s *stubOrderService) GetOrder(ctx context.Context, actor *domain.User, id string) (*ports.OrderView, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, actor, id)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if s.statusFn == nil {
		return nil, errNotStubbed
	}
	return s.statusFn(ctx, id, status)
}

func (s *stubOrderService) Fulfill(context.Context, string) error {
	return errNotStubbed
}

// newEcho returns an Echo instance with the request validator installed.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds a context for method/target with an optional JSON body
// and authenticated user. Path params are set from names and values.
func newContext(e *echo.Echo, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(UserContextKey, user)
	}
	return c, rec
}

// fieldsOf returns the per-field messages of a validation error.
func fieldsOf(err error) map[string]string {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindValidation {
		return de.Fields
	}
	return nil
}
