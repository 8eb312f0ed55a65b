package inbound

import (
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpauth/internal/auth/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

// IdempotencyKeyHeader deduplicates registration retries.
const IdempotencyKeyHeader = "Idempotency-Key"

// HTTPEndpoint exposes HTTP handlers for the login flows and user management.
type HTTPEndpoint struct {
	uc      uc
	cookies CookieConfig
}

// RequestOTP sends a one-time password and sets the Login challenge cookie.
func (h *HTTPEndpoint) RequestOTP(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := decodeLoginBody(r, &req); err != nil {
		return nil, err
	}

	chal, err := h.uc.RequestOTP(r.Context(), usecase.RequestOTPInput{Identifier: req.Username})
	if err != nil {
		return nil, err
	}

	r.SetCookie(h.cookies.login(chal.Token))

	resp := RequestOTPResponse{}
	if h.uc.IsDevelopment() {
		resp.OneTimePassword = chal.Code
	}

	return resp, nil
}

// Login completes an OTP login using the Login cookie and issues the
// Authorization and KnownDevice cookies.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := decodeLoginBody(r, &req); err != nil {
		return nil, err
	}

	sess, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Username:       req.Username,
		ChallengeToken: r.CookieValue(LoginCookie),
		OTP:            req.OneTimePassword,
	})
	if err != nil {
		return nil, err
	}

	r.SetCookie(h.cookies.authorization(sess.SessionToken))
	r.SetCookie(h.cookies.device(sess.DeviceToken))

	return toUserResponse(sess.User), nil
}

// LoginPassword logs in by password. A recognized device gets a session;
// otherwise a fresh OTP challenge is issued.
func (h *HTTPEndpoint) LoginPassword(r *router.Request) (any, error) {
	var req LoginPasswordRequest
	if err := decodeLoginBody(r, &req); err != nil {
		return nil, err
	}

	out, err := h.uc.LoginPassword(r.Context(), usecase.LoginPasswordInput{
		Username:    req.Username,
		Password:    req.Password,
		DeviceToken: r.CookieValue(DeviceCookie),
	})
	if err != nil {
		return nil, err
	}

	resp := LoginPasswordResponse{UserResponse: toUserResponse(out.User)}

	if out.Session != nil {
		r.SetCookie(h.cookies.authorization(out.Session.SessionToken))
		r.SetCookie(h.cookies.device(out.Session.DeviceToken))
		return resp, nil
	}

	r.SetCookie(h.cookies.login(out.Challenge.Token))
	resp.OTPRequired = true
	if h.uc.IsDevelopment() {
		resp.OneTimePassword = out.Challenge.Code
	}

	return resp, nil
}

// Refresh echoes the identity of the current session.
func (h *HTTPEndpoint) Refresh(r *router.Request) (any, error) {
	id, err := h.uc.Refresh(r.Context())
	if err != nil {
		return nil, err
	}

	return UserResponse{
		UserID:   id.UserID,
		Username: id.Username,
		Contact:  id.Contact,
		Role:     id.Role,
	}, nil
}

// SignOut clears the Authorization cookie.
func (h *HTTPEndpoint) SignOut(r *router.Request) (any, error) {
	r.SetCookie(h.cookies.signOut())
	return SignOutResponse{}, nil
}

// DevToken mints a session for the posted identity.
func (h *HTTPEndpoint) DevToken(r *router.Request) (any, error) {
	var req DevTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess, err := h.uc.DevToken(r.Context(), usecase.DevTokenInput{
		UserID:   req.UserID,
		Username: req.Username,
		Contact:  req.Contact,
		Role:     req.Role,
	})
	if err != nil {
		return nil, err
	}

	r.SetCookie(h.cookies.authorization(sess.SessionToken))
	r.SetCookie(h.cookies.device(sess.DeviceToken))

	return DevTokenResponse{Token: sess.SessionToken}, nil
}

// Register creates a user account.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
		Username:       req.Username,
		Contact:        req.Contact,
		Password:       req.Password,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", user.UserID)

	return RegisterResponse{UserResponse: toUserResponse(*user)}, nil
}

// PasswordChange updates the current user's password.
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	var req PasswordChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordChangeResponse{}, nil
}

// UserList returns every user. Admin only.
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	users, err := h.uc.UserList(r.Context())
	if err != nil {
		return nil, err
	}

	return UserListResponse(lo.Map(users, func(u usecase.UserResponse, _ int) UserResponse {
		return toUserResponse(u)
	})), nil
}

// UserDelete removes a user. Admin only.
func (h *HTTPEndpoint) UserDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.UserDelete(r.Context(), usecase.UserDeleteInput{ID: id})
}

// decodeLoginBody reports an unreadable body on the login routes as the same
// Unauthorized every other login failure produces.
func decodeLoginBody(r *router.Request, dst any) error {
	if err := r.DecodeBody(dst); err != nil {
		slog.WarnContext(r.Context(), "login body rejected", "path", r.URL.Path, "error", err)
		return goerror.NewUnauthorized()
	}
	return nil
}
