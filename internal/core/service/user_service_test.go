package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

func newUsers() (*UserService, *stubUserRepo, *stubProductRepo, *stubOrderRepo) {
	users := newStubUserRepo()
	products := newStubProductRepo()
	orders := newStubOrderRepo()
	return NewUserService(users, products, orders, discardLogger), users, products, orders
}

func registerInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:     "Ana Lopez",
		Email:    "Ana@Example.com ",
		Password: "hunter22",
		Address:  domain.Address{Street: "Main 1", Postcode: "1000", City: "Lisbon"},
		Phone:    "+351 555 0101",
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestUserService_Register_HashesPassword(t *testing.T) {
	svc, users, _, _ := newUsers()

	u, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := users.byID[u.ID]
	if stored.PasswordHash == "hunter22" || strings.Contains(stored.PasswordHash, "hunter22") {
		t.Fatal("password must never be stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")) != nil {
		t.Error("stored hash does not verify the original password")
	}
	if stored.Email != "ana@example.com" {
		t.Errorf("expected normalised email, got %q", stored.Email)
	}
}

func TestUserService_Register_IssuesAccessToken(t *testing.T) {
	svc, _, _, _ := newUsers()

	first, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := registerInput()
	in.Email = "ben@example.com"
	second, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.AccessToken) != accessTokenLen*2 {
		t.Errorf("expected %d hex chars, got %d", accessTokenLen*2, len(first.AccessToken))
	}
	if first.AccessToken == second.AccessToken {
		t.Error("access tokens must be unique per account")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	svc, users, _, _ := newUsers()
	in := registerInput()
	in.Name = "  "
	in.Email = "not-an-email"
	in.Password = "abc"

	_, err := svc.Register(context.Background(), in)
	fields := validationFields(t, err)
	for _, f := range []string{"name", "email", "password"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected %s field error, got %v", f, fields)
		}
	}
	if len(users.byID) != 0 {
		t.Error("invalid registration must not be stored")
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newUsers()
	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Register(context.Background(), registerInput())
	if !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestUserService_Login(t *testing.T) {
	svc, _, _, _ := newUsers()
	registered, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct credentials", "ana@example.com", "hunter22", nil},
		{"email is case insensitive", "ANA@example.com", "hunter22", nil},
		{"wrong password", "ana@example.com", "hunter23", domain.ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "hunter22", domain.ErrInvalidCredentials},
		{"empty password", "ana@example.com", "", domain.ErrInvalidCredentials},
	}

	for _, tc := range cases {
		profile, err := svc.Login(context.Background(), tc.email, tc.password)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if profile.User.AccessToken != registered.AccessToken {
			t.Errorf("%s: login must return the issued token", tc.name)
		}
	}
}

func TestUserService_Login_UnknownEmailIsNotFound(t *testing.T) {
	svc, _, _, _ := newUsers()

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("expected not_found kind, got %v", domain.KindOf(err))
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestUserService_Profile_ExpandsProductsAndOrders(t *testing.T) {
	svc, users, products, orders := newUsers()
	owned := products.seed(domain.Product{Name: "Owned coat", Price: 80})
	bought := products.seed(domain.Product{Name: "Bought tee", Price: 12})

	now := time.Now().UTC()
	older := &domain.Order{Items: []string{bought.ID, bought.ID}, CreatedAt: now.Add(-time.Hour)}
	newer := &domain.Order{Items: []string{owned.ID}, CreatedAt: now}
	_ = orders.Create(context.Background(), older)
	_ = orders.Create(context.Background(), newer)

	u := users.seed(domain.User{
		Name:       "Ana",
		ProductIDs: []string{owned.ID},
		OrderIDs:   []string{older.ID, newer.ID},
	})

	profile, err := svc.Profile(context.Background(), u, u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.Products) != 1 || profile.Products[0].Name != "Owned coat" || profile.Products[0].Price != 80 {
		t.Errorf("unexpected products %+v", profile.Products)
	}
	if len(profile.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(profile.Orders))
	}
	if profile.Orders[0].Order.ID != newer.ID {
		t.Errorf("expected newest order first, got %s", profile.Orders[0].Order.ID)
	}
	if items := profile.Orders[1].Items; len(items) != 2 || items[0].Name != "Bought tee" {
		t.Errorf("expected duplicated item expanded twice, got %+v", items)
	}
}

func TestUserService_Profile_OtherUserForbidden(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana"})
	ben := users.seed(domain.User{Name: "Ben"})

	_, err := svc.Profile(context.Background(), ben, ana.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Profile_AdminMayReadAnyAccount(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana"})
	admin := users.seed(domain.User{Name: "Root", Admin: true})

	if _, err := svc.Profile(context.Background(), admin, ana.ID); err != nil {
		t.Errorf("admin profile read failed: %v", err)
	}
}

func TestUserService_Profile_RequiresActor(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana"})

	_, err := svc.Profile(context.Background(), nil, ana.ID)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestUserService_Update_ReplacesAllFields(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{
		Name:    "Ana",
		Email:   "ana@example.com",
		Phone:   "+351 555 0101",
		Address: domain.Address{Street: "Main 1", City: "Lisbon"},
	})

	updated, err := svc.Update(context.Background(), ana, ana.ID, ports.UpdateUserInput{
		Name:  "Ana Maria",
		Email: "ana.maria@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := users.byID[ana.ID]
	if stored.Name != "Ana Maria" || stored.Email != "ana.maria@example.com" {
		t.Errorf("unexpected identity fields: %+v", stored)
	}
	if stored.Phone != "" || stored.Address != (domain.Address{}) {
		t.Errorf("omitted fields must be cleared, got phone=%q address=%+v", stored.Phone, stored.Address)
	}
	if updated.UpdatedAt.IsZero() {
		t.Error("UpdatedAt must be set")
	}
}

func TestUserService_Update_Validation(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana", Email: "ana@example.com"})

	_, err := svc.Update(context.Background(), ana, ana.ID, ports.UpdateUserInput{Name: "Ana"})
	fields := validationFields(t, err)
	if _, ok := fields["email"]; !ok {
		t.Errorf("expected email field error, got %v", fields)
	}
	if users.byID[ana.ID].Email != "ana@example.com" {
		t.Error("rejected update must not change the account")
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana"})

	if err := svc.Delete(context.Background(), ana, ana.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := users.byID[ana.ID]; ok {
		t.Error("account must be removed")
	}
}

func TestUserService_Delete_NonexistentIsNotFound(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana"})

	err := svc.Delete(context.Background(), ana, "u999")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound before any permission check, got %v", err)
	}
}

func TestUserService_Delete_OtherUserForbidden(t *testing.T) {
	svc, users, _, _ := newUsers()
	ana := users.seed(domain.User{Name: "Ana"})
	ben := users.seed(domain.User{Name: "Ben"})

	err := svc.Delete(context.Background(), ben, ana.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, ok := users.byID[ana.ID]; !ok {
		t.Error("forbidden delete must not remove the account")
	}
}

// ---------------------------------------------------------------------------
// EnsureAdmin
// ---------------------------------------------------------------------------

func TestUserService_EnsureAdmin_CreatesAccount(t *testing.T) {
	svc, users, _, _ := newUsers()

	u, err := svc.EnsureAdmin(context.Background(), "Root@Example.com", "s3cret!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := users.byID[u.ID]
	if !stored.Admin || stored.Email != "root@example.com" {
		t.Errorf("expected admin root@example.com, got admin=%v email=%q", stored.Admin, stored.Email)
	}
	if _, err := svc.Login(context.Background(), "root@example.com", "s3cret!"); err != nil {
		t.Errorf("admin must be able to log in: %v", err)
	}
}

func TestUserService_EnsureAdmin_PromotesExistingAccount(t *testing.T) {
	svc, users, _, _ := newUsers()
	existing, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := svc.EnsureAdmin(context.Background(), "ana@example.com", "other-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != existing.ID || !users.byID[existing.ID].Admin {
		t.Error("existing account must be promoted in place")
	}
	if _, err := svc.Login(context.Background(), "ana@example.com", "hunter22"); err != nil {
		t.Errorf("promoted account must keep its password: %v", err)
	}
}
