package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a registered resident. Rows are created by registration or
// out-of-band provisioning and never updated afterwards.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed
	City         string    `json:"city"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Account) Role() string {
	if a.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Caller is the authenticated identity attached to a single request.
type Caller struct {
	AccountID int64
	Username  string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
