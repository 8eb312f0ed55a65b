// Package otp generates short numeric one-time passwords for out-of-band
// delivery (email or SMS).
//
// Codes are derived with HOTP over a fresh random secret, so each call yields
// an independent value. Nothing here stores or validates codes: callers hash
// the plaintext with package hash and keep only the pair.
package otp
