package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required,min=8" validate:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// RefreshRequest carries the expired access token presented for rotation.
// The refresh token value itself travels in the httpOnly cookie, with the
// body field as a fallback for non-browser clients.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// JobAgentRequest represents a job agent settings update
type JobAgentRequest struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency" binding:"required,oneof=daily weekly monthly"`
}

// JobAgentResponse represents job agent settings in responses
type JobAgentResponse struct {
	Enabled    bool    `json:"enabled"`
	Frequency  string  `json:"frequency"`
	LastSentAt *string `json:"last_sent_at"`
	NextSendAt *string `json:"next_send_at"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserResponse represents a user response
type UserResponse struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	LastLoginAt     *string `json:"last_login_at"`
	IsEmailVerified bool    `json:"is_email_verified"`
	IsFederated     bool    `json:"is_federated"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
