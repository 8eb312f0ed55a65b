package inbound

import (
	"net/http"

	"github.com/shandysiswandi/otpauth/internal/auth/usecase"
)

type RequestOTPRequest struct {
	// Username accepts a username, email address or phone number.
	Username string `json:"username"`
}

type RequestOTPResponse struct {
	// OneTimePassword is only echoed in development.
	OneTimePassword string `json:"one_time_password,omitempty"`
}

func (RequestOTPResponse) StatusCode() int { return http.StatusCreated }

func (RequestOTPResponse) Message() string { return "One-time password sent" }

type LoginRequest struct {
	Username        string `json:"username"`
	OneTimePassword string `json:"one_time_password"`
}

type LoginPasswordRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	UserID   int64  `json:"user_id,string"`
	Username string `json:"username"`
	Contact  string `json:"contact"`
	Role     string `json:"role"`
}

func toUserResponse(u usecase.UserResponse) UserResponse {
	return UserResponse{
		UserID:   u.UserID,
		Username: u.Username,
		Contact:  u.Contact,
		Role:     u.Role,
	}
}

type LoginPasswordResponse struct {
	UserResponse
	// OTPRequired is true when the device was not recognized and the client
	// must continue with /login.
	OTPRequired     bool   `json:"otp_required"`
	OneTimePassword string `json:"one_time_password,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserResponse
}

func (RegisterResponse) StatusCode() int { return http.StatusCreated }

func (RegisterResponse) Message() string { return "Registration successful" }

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type PasswordChangeResponse struct{}

func (PasswordChangeResponse) Message() string { return "Password changed" }

type UserListResponse []UserResponse

func (r UserListResponse) Meta() map[string]any {
	return map[string]any{"total": len(r)}
}

type SignOutResponse struct{}

func (SignOutResponse) Message() string { return "Signed out" }

type DevTokenRequest struct {
	UserID   int64  `json:"user_id,string"`
	Username string `json:"username"`
	Contact  string `json:"contact"`
	Role     string `json:"role"`
}

type DevTokenResponse struct {
	Token string `json:"token"`
}
