package jwt

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrUnauthorized is returned for every verification failure: malformed,
	// forged, expired or of the wrong kind.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoPayload is returned when signing without a payload or with a payload
	// that fails its own shape check. It is a programming error.
	ErrNoPayload = errors.New("jwt: missing or malformed payload")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")
)

// BearerPrefix is prepended to session tokens on the wire.
const BearerPrefix = "Bearer "

const (
	// ChallengeTTL is the lifetime of an OTP challenge token.
	ChallengeTTL = 15 * time.Minute
	// DeviceTTL is the lifetime of a device token.
	DeviceTTL = 30 * 24 * time.Hour
)

// Codec signs and verifies tokens.
type Codec interface {
	// Sign mints a token for the payload using the expiry of its kind.
	Sign(p Payload) (string, error)
	// Verify checks token as kind and returns its decoded payload.
	Verify(kind Kind, token string) (Payload, error)
	// TTL returns the lifetime of tokens of kind.
	TTL(kind Kind) time.Duration
}

// VerifyAs verifies token as the kind of P and returns the typed payload.
func VerifyAs[P Payload](c Codec, token string) (P, error) {
	var zero P

	p, err := c.Verify(zero.Kind(), token)
	if err != nil {
		return zero, err
	}

	v, ok := p.(P)
	if !ok {
		return zero, ErrUnauthorized
	}

	return v, nil
}

// WrapBearer prepends the bearer prefix to a session token.
func WrapBearer(token string) string {
	return BearerPrefix + token
}

// UnwrapBearer strips exactly the bearer prefix. It reports false when the
// prefix is absent or nothing follows it.
func UnwrapBearer(value string) (string, bool) {
	token, ok := strings.CutPrefix(value, BearerPrefix)
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type authContextKey struct{}

// GetAuth returns the identity stored in the context, if any.
func GetAuth(ctx context.Context) *Identity {
	id, ok := ctx.Value(authContextKey{}).(Identity)
	if !ok {
		return nil
	}

	return &id
}

// SetAuth stores an authenticated identity in the context.
func SetAuth(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, authContextKey{}, id)
}
