// Package hash produces and verifies salted {hash, salt} pairs.
//
// Argon2id is used for passwords stored in the database. HMACSHA256 is used
// for one-time passwords whose pair travels inside a signed challenge token.
package hash
