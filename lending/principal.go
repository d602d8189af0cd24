package lending

import "time"

// Principal is the authenticated caller of an operation.
// The lending core only cares about two facts: identity and admin privilege.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

// User is an account record. The lending core treats users as opaque
// principals; the full record exists for registration and authentication.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AsPrincipal reduces a user to the two facts the core needs.
func (u User) AsPrincipal() Principal {
	return Principal{UserID: u.ID, IsAdmin: u.IsAdmin}
}
