package jwt

import (
	"encoding/json"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"
)

// Config defines the inputs for building the HS512 codec.
type Config struct {
	// Secret is the HMAC signing key shared by every kind.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// SessionTTL is the session token lifetime.
	SessionTTL time.Duration
	// Clock provides the current time source for signing and verification.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

type claims struct {
	libJWT.RegisteredClaims
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// HS512 implements Codec with an HMAC-SHA512 secret.
type HS512 struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	clock      clocker
	uuid       generator
}

// NewHS512 constructs the codec. The secret must be at least 64 bytes.
func NewHS512(cfg Config) (*HS512, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &HS512{
		secret:     cfg.Secret,
		issuer:     cfg.Issuer,
		sessionTTL: ttl,
		clock:      cfg.Clock,
		uuid:       cfg.UUID,
	}, nil
}

// TTL returns the lifetime of tokens of kind.
func (c *HS512) TTL(kind Kind) time.Duration {
	switch kind {
	case KindOTPChallenge:
		return ChallengeTTL
	case KindDevice:
		return DeviceTTL
	default:
		return c.sessionTTL
	}
}

// Sign mints a token for the payload.
func (c *HS512) Sign(p Payload) (string, error) {
	if p == nil || p.validate() != nil {
		return "", ErrNoPayload
	}

	data, err := marshalData(p)
	if err != nil {
		return "", err
	}

	now := c.clock.Now()

	return libJWT.
		NewWithClaims(libJWT.SigningMethodHS512, claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				ID:        c.uuid.Generate(),
				Issuer:    c.issuer,
				IssuedAt:  libJWT.NewNumericDate(now),
				NotBefore: libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(now.Add(c.TTL(p.Kind()))),
			},
			Kind: p.Kind(),
			Data: data,
		}).
		SignedString(c.secret)
}

// Verify parses and validates token as kind.
func (c *HS512) Verify(kind Kind, token string) (Payload, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var clm claims
	parsed, err := libJWT.ParseWithClaims(token, &clm,
		func(*libJWT.Token) (any, error) { return c.secret, nil },
		libJWT.WithIssuer(c.issuer),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithTimeFunc(c.clock.Now),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithStrictDecoding(),
	)
	if err != nil || !parsed.Valid || clm.Kind != kind {
		return nil, ErrUnauthorized
	}

	p, err := unmarshalData(kind, clm.Data)
	if err != nil {
		return nil, ErrUnauthorized
	}

	return p, nil
}

// Tokens is the pair minted for an authenticated login.
type Tokens struct {
	// Session is the bearer-wrapped session token.
	Session string
	// Device is the device token.
	Device string
}

// IssueSession mints a session token and a device token for id. The two
// signatures are independent and computed concurrently.
func IssueSession(c Codec, id Identity) (Tokens, error) {
	var out Tokens

	var g errgroup.Group
	g.Go(func() error {
		tok, err := c.Sign(SessionPayload{Identity: id})
		if err != nil {
			return err
		}
		out.Session = WrapBearer(tok)
		return nil
	})
	g.Go(func() error {
		tok, err := c.Sign(DevicePayload{UserID: id.UserID})
		if err != nil {
			return err
		}
		out.Device = tok
		return nil
	})

	if err := g.Wait(); err != nil {
		return Tokens{}, err
	}

	return out, nil
}
