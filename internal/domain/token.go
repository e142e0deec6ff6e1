package domain

import "time"

// TokenClaims represents JWT access token claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	TokenID string `json:"jti"`
	Exp     int64  `json:"exp"`
	Iat     int64  `json:"iat"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}

// RefreshToken represents a refresh token row. A token is never deleted on
// rotation: it is marked revoked and linked forward via ReplacedByToken so
// the rotation chain stays available for replay detection.
type RefreshToken struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Token           string     `json:"-" db:"token"`
	ExpiresAt       time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	RevokedAt       *time.Time `json:"revoked_at" db:"revoked_at"`
	ReplacedByToken *string    `json:"-" db:"replaced_by_token"`
}

// IsExpired checks if the token is past its expiry at the given time
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive checks if the token is neither revoked nor expired
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && !t.IsExpired(now)
}
