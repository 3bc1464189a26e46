package ports

import (
	"context"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  domain.Address
	Phone    string
}

// UpdateUserInput replaces every editable profile field.
type UpdateUserInput struct {
	Name    string
	Email   string
	Address domain.Address
	Phone   string
}

// OrderView is an order with its items expanded to name/price.
type OrderView struct {
	Order *domain.Order
	Items []domain.ProductSummary
}

// UserProfile is a user with owned products and order history expanded.
type UserProfile struct {
	User     *domain.User
	Products []domain.ProductSummary
	Orders   []OrderView
}

// UserService defines use-case operations on accounts and sessions.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Profile(ctx context.Context, actor *domain.User, id string) (*UserProfile, error)
	Update(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	// Login verifies the credential and returns the populated profile.
	// Unknown email and wrong password yield the same error.
	Login(ctx context.Context, email, password string) (*UserProfile, error)
}

// AccessService resolves bearer tokens to users.
type AccessService interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
