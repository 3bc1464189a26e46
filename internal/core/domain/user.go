package domain

import "time"

// Address is the postal address embedded in a user profile.
type Address struct {
	Street   string
	Postcode string
	City     string
}

// User is a customer account. AccessToken is the only credential accepted on
// protected routes; it is issued once and never rotated.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Address      Address
	Phone        string
	Admin        bool
	AccessToken  string
	ProductIDs   []string
	OrderIDs     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanActOn reports whether u may read or modify the account identified by id.
func (u *User) CanActOn(id string) bool {
	return u != nil && (u.Admin || u.ID == id)
}
