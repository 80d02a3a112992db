package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mathtrail/mathtrail-api/internal/domain"
)

// Common request/response structures

// SignUpRequest defines the payload for the sign-up endpoint.
type SignUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// SignInRequest defines the payload for the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// UpdateProfileRequest defines the payload for the profile settings
// endpoint.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=255"`
	FirstName   string `json:"first_name"   validate:"max=255"`
	LastName    string `json:"last_name"    validate:"max=255"`
	Username    string `json:"username"     validate:"max=255"`
	Avatar      string `json:"avatar"`
}

// UserResponse is the sanitized account view returned by every endpoint.
// It never carries credential fields.
type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	IsAdmin   bool            `json:"is_admin"`
	CreatedAt time.Time       `json:"created_at"`
	Profile   *domain.Profile `json:"profile,omitempty"`
}

// AuthResponse wraps the sanitized user for sign-up, sign-in, me, and
// profile responses. User is null when no session resolves to an account.
type AuthResponse struct {
	User *UserResponse `json:"user"`
}

// OKResponse is the fixed sign-out response.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ListUsersResponse is one page of sanitized accounts.
type ListUsersResponse struct {
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
	Users    []*UserResponse `json:"users"`
}

// NewUserResponse builds the sanitized view of an account. The profile is
// included only when it has content.
func NewUserResponse(account *domain.Account) *UserResponse {
	if account == nil {
		return nil
	}
	resp := &UserResponse{
		ID:        account.ID,
		Email:     account.Email,
		IsAdmin:   account.IsAdmin,
		CreatedAt: account.CreatedAt,
	}
	if account.Profile != (domain.Profile{}) {
		profile := account.Profile
		resp.Profile = &profile
	}
	return resp
}
