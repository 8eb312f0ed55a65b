package hash

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// ErrEmptyInput is returned when asked to hash an empty secret.
var ErrEmptyInput = errors.New("hash: input is empty")

// Pair is the stored verification material for a secret: a salt and the
// hash computed over that salt. Both are base64 (raw, standard alphabet).
type Pair struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

// IsZero reports whether the pair carries no material.
func (p Pair) IsZero() bool {
	return p.Hash == "" || p.Salt == ""
}

// Hasher produces and checks salted hash pairs.
type Hasher interface {
	// Hash salts and hashes plaintext with a fresh random salt.
	Hash(plaintext string) (Pair, error)
	// Verify recomputes the hash of plaintext with the pair's salt and
	// compares in constant time.
	Verify(plaintext string, p Pair) bool
}

func newSalt(n uint32) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func encode(b []byte) string {
	return base64.RawStdEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(s)
}
