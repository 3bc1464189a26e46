package ports

import (
	"context"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts u and sets its ID. A duplicate email yields
	// domain.ErrUserExists.
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByAccessToken(ctx context.Context, token string) (*domain.User, error)
	// Update overwrites the editable profile fields of u.
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	AppendProduct(ctx context.Context, userID, productID string) error
	SetAdmin(ctx context.Context, id string, admin bool) error
	// AppendOrder adds orderID to the user's history if not already present.
	AppendOrder(ctx context.Context, userID, orderID string) error
}
