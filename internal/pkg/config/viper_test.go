package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  env: production
  name: otpauth
  ratio: 0.25
jwt:
  session_ttl: 2h
cookie:
  domain: example.com
mail:
  from_days: 7d
  plain: 30
cors:
  origins: "https://a.example.com, https://b.example.com"
  headers: "x:1,y:2"
  brokers:
    - kafka-1:9092
    - kafka-2:9092
`

func TestViper(t *testing.T) {
	t.Run("ReadFromBytes", func(t *testing.T) {
		// Arrange
		cfg, err := NewViperFromBytes("yaml", []byte(sample))
		require.NoError(t, err)

		// Act & Assert
		assert.Equal(t, "otpauth", cfg.GetString("app.name"))
		assert.InDelta(t, 0.25, cfg.GetFloat64("app.ratio"), 1e-9)
		assert.Equal(t, 2*time.Hour, cfg.GetDuration("jwt.session_ttl"))
		assert.Equal(t, 7*24*time.Hour, cfg.GetDuration("mail.from_days"))
		assert.Equal(t, 30*time.Second, cfg.GetDuration("mail.plain"))
		assert.Equal(t, time.Duration(0), cfg.GetDuration("missing"))
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.GetArray("cors.origins"))
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.GetArray("cors.brokers"))
		assert.Nil(t, cfg.GetArray("missing"))
		assert.Equal(t, map[string]string{"x": "1", "y": "2"}, cfg.GetMap("cors.headers"))
		assert.NoError(t, cfg.Close())
	})

	t.Run("EnvAliasesOverride", func(t *testing.T) {
		// Arrange
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_EXPIRES", "45m")
		t.Setenv("AUTH_DOMAIN", "auth.local")

		// Act
		cfg, err := NewViperFromBytes("yaml", []byte(sample))
		require.NoError(t, err)

		// Assert
		assert.Equal(t, "test", cfg.GetString("app.env"))
		assert.Equal(t, 45*time.Minute, cfg.GetDuration("jwt.session_ttl"))
		assert.Equal(t, "auth.local", cfg.GetString("cookie.domain"))
	})

	t.Run("MalformedDurationIsZero", func(t *testing.T) {
		t.Setenv("JWT_EXPIRES", "two hours")

		cfg, err := NewViperFromBytes("yaml", []byte(sample))
		require.NoError(t, err)

		assert.Zero(t, cfg.GetDuration("jwt.session_ttl"))
		assert.Equal(t, "two hours", cfg.GetString("jwt.session_ttl"))
	})

	t.Run("DottedEnvOverride", func(t *testing.T) {
		t.Setenv("APP_NAME", "renamed")

		cfg, err := NewViperFromBytes("yaml", []byte(sample))
		require.NoError(t, err)

		assert.Equal(t, "renamed", cfg.GetString("app.name"))
	})

	t.Run("FromFile", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		file := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

		// Act
		cfg, err := NewViper(file)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "example.com", cfg.GetString("cookie.domain"))
	})

	t.Run("MissingType", func(t *testing.T) {
		_, err := NewViperFromBytes(" ", nil)
		assert.Error(t, err)
	})
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
		ok   bool
	}{
		{"", 0, true},
		{"90", 90 * time.Second, true},
		{"30d", 30 * 24 * time.Hour, true},
		{"1h30m", 90 * time.Minute, true},
		{"xd", 0, false},
		{"two hours", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseDuration(tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
	}
}
