package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
)

// ErrSecretTooShort is returned when the HMAC key is shorter than 32 bytes.
var ErrSecretTooShort = errors.New("hash: hmac secret must be at least 32 bytes")

// HMACSHA256 implements Hasher for short-lived codes (OTPs).
//
// The key is a server-side pepper, so a leaked Pair cannot be brute forced
// over the small code space without it.
type HMACSHA256 struct {
	secret     []byte
	saltLength uint32
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}

	return &HMACSHA256{secret: []byte(secret), saltLength: 16}, nil
}

// Hash salts and hashes a code.
func (s *HMACSHA256) Hash(plaintext string) (Pair, error) {
	if plaintext == "" {
		return Pair{}, ErrEmptyInput
	}

	salt, err := newSalt(s.saltLength)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Hash: encode(s.gen(salt, plaintext)), Salt: encode(salt)}, nil
}

// Verify reports whether plaintext matches the pair.
func (s *HMACSHA256) Verify(plaintext string, p Pair) bool {
	if plaintext == "" || p.IsZero() {
		return false
	}

	salt, err := decode(p.Salt)
	if err != nil {
		return false
	}

	expected, err := decode(p.Hash)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(expected, s.gen(salt, plaintext)) == 1
}

func (s *HMACSHA256) gen(salt []byte, str string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(salt)
	h.Write([]byte(str))
	return h.Sum(nil)
}
