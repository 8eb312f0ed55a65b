package inbound

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/auth/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

type uc interface {
	RequestOTP(ctx context.Context, in usecase.RequestOTPInput) (*usecase.Challenge, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.Session, error)
	LoginPassword(ctx context.Context, in usecase.LoginPasswordInput) (*usecase.LoginPasswordOutput, error)
	Refresh(ctx context.Context) (*jwt.Identity, error)
	DevToken(ctx context.Context, in usecase.DevTokenInput) (*usecase.Session, error)

	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.UserResponse, error)
	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error
	UserList(ctx context.Context) ([]usecase.UserResponse, error)
	UserDelete(ctx context.Context, in usecase.UserDeleteInput) error

	IsDevelopment() bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cookies CookieConfig) {
	end := &HTTPEndpoint{uc: uc, cookies: cookies}

	// Login
	r.POST("/api/v1/auth/request-otp", end.RequestOTP)
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/login-password", end.LoginPassword)
	r.POST("/api/v1/auth/sign-out", end.SignOut)
	r.POST("/api/v1/auth/refresh", end.Refresh) // need authenticated

	// Only answers in development
	if uc.IsDevelopment() {
		r.POST("/api/v1/auth/dev-token", end.DevToken)
	}

	// Users
	r.POST("/api/v1/auth/users", end.Register)
	r.PUT("/api/v1/auth/users/password", end.PasswordChange) // need authenticated
	r.GET("/api/v1/auth/users", end.UserList)                // need authenticated & authorization
	r.DELETE("/api/v1/auth/users/:id", end.UserDelete)       // need authenticated & authorization
}
