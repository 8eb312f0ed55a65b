// Package uid generates identifiers: numeric ids for user rows and string
// ids for token ids and correlation ids.
package uid

// NumberID generates unique 64-bit identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
