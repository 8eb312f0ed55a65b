// Package jwt signs and verifies the three stateless tokens used by login:
// session, device and OTP challenge.
//
// All kinds share one HS512 secret. Each token carries a "kind" claim and a
// kind-specific "data" claim, and is only accepted when verified as the kind
// it was minted as. Verification failures are reported as ErrUnauthorized
// regardless of cause.
package jwt
