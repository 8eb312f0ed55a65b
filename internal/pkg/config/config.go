package config

import (
	"io"
	"time"
)

// Config defines the configuration reads the application performs.
//
// Keys are dotted paths ("jwt.secret"). Every key can be overridden from the
// environment by upper-casing it and replacing dots with underscores
// ("JWT_SECRET"); a few keys have short aliases, see envAliases.
type Config interface {
	io.Closer

	// GetString returns the value for key, or "" when unset.
	GetString(key string) string

	// GetInt returns the value for key as an int, or 0.
	GetInt(key string) int

	// GetBool returns the value for key as a bool, or false.
	GetBool(key string) bool

	// GetFloat64 returns the value for key as a float64, or 0.
	GetFloat64(key string) float64

	// GetDuration returns the value for key as a duration. Accepted forms are
	// Go durations ("90m"), day counts ("30d") and bare integers (seconds).
	// Unparseable values return 0.
	GetDuration(key string) time.Duration

	// GetArray returns the value for key split by commas.
	GetArray(key string) []string

	// GetMap returns the value for key parsed from "k:v,k:v" pairs.
	GetMap(key string) map[string]string
}
