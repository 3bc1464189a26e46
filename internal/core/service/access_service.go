package service

import (
	"context"
	"errors"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

// AccessService maps bearer tokens to users.
type AccessService struct {
	users ports.UserRepository
}

func NewAccessService(users ports.UserRepository) *AccessService {
	return &AccessService{users: users}
}

// Authenticate returns the owner of token. Tokens do not expire; they stop
// working only when the account is deleted.
func (s *AccessService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}
