package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

const (
	minPasswordLen = 6
	accessTokenLen = 128
)

var validate = validator.New()

// UserService implements registration, profile management and sessions.
type UserService struct {
	users    ports.UserRepository
	products ports.ProductRepository
	orders   ports.OrderRepository
	logger   zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	logger zerolog.Logger,
) *UserService {
	return &UserService{users: users, products: products, orders: orders, logger: logger}
}

func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Email = normalizeEmail(input.Email)
	fields := checkProfile(input.Name, input.Email)
	if len(input.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	token, err := generateAccessToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Address:      input.Address,
		Phone:        input.Phone,
		AccessToken:  token,
		ProductIDs:   []string{},
		OrderIDs:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Profile returns the user with owned products and order history expanded.
func (s *UserService) Profile(ctx context.Context, actor *domain.User, id string) (*ports.UserProfile, error) {
	user, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, user)
}

// Update overwrites name, email, address and phone. Fields missing from
// input are cleared.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	input.Email = normalizeEmail(input.Email)
	if fields := checkProfile(input.Name, input.Email); len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	user.Name = input.Name
	user.Email = input.Email
	user.Address = input.Address
	user.Phone = input.Phone
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user updated")
	return user, nil
}

// Delete removes the account. Products and orders referencing it are left
// in place.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Str("actor_id", actor.ID).Msg("user deleted")
	return nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*ports.UserProfile, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.expand(ctx, user)
}

// EnsureAdmin makes sure an admin account exists for email. An existing
// account is promoted and keeps its password; otherwise one is registered.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.Admin {
			if err := s.users.SetAdmin(ctx, user.ID, true); err != nil {
				return nil, err
			}
			user.Admin = true
			s.logger.Info().Str("user_id", user.ID).Msg("user promoted to admin")
		}
		return user, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	user, err = s.Register(ctx, ports.RegisterInput{Name: "Admin", Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAdmin(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.Admin = true
	s.logger.Info().Str("user_id", user.ID).Msg("admin account created")
	return user, nil
}

// authorize loads the target account and checks actor may act on it. A
// missing account is reported before a permission failure.
func (s *UserService) authorize(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(user.ID) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (s *UserService) expand(ctx context.Context, user *domain.User) (*ports.UserProfile, error) {
	products, err := s.products.FindSummaries(ctx, user.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("expand products: %w", err)
	}

	orders, err := s.orders.FindByIDs(ctx, user.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("expand orders: %w", err)
	}

	var itemIDs []string
	for _, o := range orders {
		itemIDs = append(itemIDs, o.DistinctItems()...)
	}
	items, err := s.products.FindSummaries(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("expand order items: %w", err)
	}
	byID := indexSummaries(items)

	views := make([]ports.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, ports.OrderView{Order: o, Items: pick(byID, o.Items)})
	}

	return &ports.UserProfile{User: user, Products: products, Orders: views}, nil
}

// checkProfile returns field messages for the identity fields of a profile.
func checkProfile(name, email string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if email == "" {
		fields["email"] = "email is required"
	} else if validate.Var(email, "email") != nil {
		fields["email"] = "email must be a valid email"
	}
	return fields
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateAccessToken returns 128 random bytes, hex encoded.
func generateAccessToken() (string, error) {
	b := make([]byte, accessTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func indexSummaries(items []domain.ProductSummary) map[string]domain.ProductSummary {
	byID := make(map[string]domain.ProductSummary, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return byID
}

// pick returns the summaries of ids in order, repeating duplicates and
// skipping ids that no longer resolve.
func pick(byID map[string]domain.ProductSummary, ids []string) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
