package domain

import "time"

// User represents a user in the system
type User struct {
	ID                 string     `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	Role               string     `json:"role" db:"role"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt        *time.Time `json:"last_login_at" db:"last_login_at"`
	IsEmailVerified    bool       `json:"is_email_verified" db:"is_email_verified"`
	IsFederated        bool       `json:"is_federated" db:"is_federated"`
	FederationVerified bool       `json:"federation_verified" db:"federation_verified"`
	FailedLoginCount   int        `json:"-" db:"failed_login_count"`
	LockoutEnabled     bool       `json:"-" db:"lockout_enabled"`
	LockoutUntil       *time.Time `json:"-" db:"lockout_until"`
}

// IsLockedOut checks whether the account is locked at the given time
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// OAuthProvider represents an OAuth provider connection for a user
type OAuthProvider struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Provider       string    `json:"provider" db:"provider"` // linkedin
	ProviderUserID string    `json:"provider_user_id" db:"provider_user_id"`
	Email          *string   `json:"email" db:"email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
