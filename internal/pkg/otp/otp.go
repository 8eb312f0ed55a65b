package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// Generator creates one-time password codes.
type Generator interface {
	// Code returns a fresh numeric code.
	Code() (string, error)
}

// HOTP implements Generator using the HMAC-based One-Time Password algorithm
// keyed by a random secret per code.
type HOTP struct {
	digits     otp.Digits
	secretSize int
}

// NewHOTP constructs a HOTP generator.
//
// If digits is not 6 or 8, it falls back to 6 digits.
func NewHOTP(digits otp.Digits) *HOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	return &HOTP{digits: digits, secretSize: 20}
}

// Code returns a fresh numeric code of the configured length.
func (h *HOTP) Code() (string, error) {
	secret := make([]byte, h.secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}

	var counter [8]byte
	if _, err := rand.Read(counter[:]); err != nil {
		return "", err
	}

	return hotp.GenerateCodeCustom(
		base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret),
		binary.BigEndian.Uint64(counter[:]),
		hotp.ValidateOpts{Digits: h.digits, Algorithm: otp.AlgorithmSHA1},
	)
}

// Static is a Generator that always returns the same code. Handy for tests
// and scripted demos.
type Static string

// Code returns the static value.
func (s Static) Code() (string, error) { return string(s), nil }
