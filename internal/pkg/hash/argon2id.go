package hash

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id implements Hasher for passwords.
//
// The Pair.Hash value is "$argon2id$v=..$m=..,t=..,p=..$<key>" so that cost
// parameters can be raised later without breaking existing rows.
type Argon2id struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
	pepper      string
	sema        chan struct{}
}

// NewArgon2id returns a Argon2id hasher with recommended defaults.
func NewArgon2id(pepper string) *Argon2id {
	return &Argon2id{
		memory:      32 * 1024, // KiB
		iterations:  3,
		parallelism: 2,
		saltLength:  16,
		keyLength:   32,
		pepper:      pepper,
		sema:        make(chan struct{}, 4),
	}
}

// Hash salts and hashes a password.
func (a *Argon2id) Hash(plaintext string) (Pair, error) {
	if plaintext == "" {
		return Pair{}, ErrEmptyInput
	}

	salt, err := newSalt(a.saltLength)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := a.derive(plaintext, salt, a.iterations, a.memory, a.parallelism, a.keyLength)

	return Pair{
		Hash: fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
			argon2.Version, a.memory, a.iterations, a.parallelism, encode(key)),
		Salt: encode(salt),
	}, nil
}

// Verify reports whether plaintext matches the pair.
func (a *Argon2id) Verify(plaintext string, p Pair) bool {
	if plaintext == "" || p.IsZero() {
		return false
	}

	parts := strings.Split(p.Hash, "$")
	if len(parts) != 5 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	expected, err := decode(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	salt, err := decode(p.Salt)
	if err != nil {
		return false
	}

	computed := a.derive(plaintext, salt, iterations, memory, parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(expected, computed) == 1
}

func (a *Argon2id) derive(plaintext string, salt []byte, t, m uint32, p uint8, keyLen uint32) []byte {
	a.sema <- struct{}{}
	defer func() { <-a.sema }()

	return argon2.IDKey([]byte(plaintext+a.pepper), salt, t, m, p, keyLen)
}
