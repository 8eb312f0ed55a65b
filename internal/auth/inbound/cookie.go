package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

const (
	// LoginCookie carries the OTP challenge token.
	LoginCookie = "Login"
	// DeviceCookie carries the device token.
	DeviceCookie = "KnownDevice"
)

type clocker interface {
	Now() time.Time
}

// CookieConfig holds the attributes shared by every auth cookie.
type CookieConfig struct {
	Domain string
	Secure bool
	Clock  clocker
}

func (c CookieConfig) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

// login is the OTP challenge cookie, valid as long as the challenge.
func (c CookieConfig) login(token string) *http.Cookie {
	return &http.Cookie{
		Name:     LoginCookie,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  c.now().Add(jwt.ChallengeTTL),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// authorization is a browser-session cookie; the token inside expires on its own.
func (c CookieConfig) authorization(bearer string) *http.Cookie {
	return &http.Cookie{
		Name:     router.AuthorizationCookie,
		Value:    bearer,
		Path:     "/",
		Domain:   c.Domain,
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) device(token string) *http.Cookie {
	return &http.Cookie{
		Name:     DeviceCookie,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  c.now().Add(jwt.DeviceTTL),
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) signOut() *http.Cookie {
	sc := c.authorization("")
	sc.Expires = time.Unix(0, 0)
	return sc
}
