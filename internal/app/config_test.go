package app

import (
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleConfig(t *testing.T) {
	t.Run("ShipsAsProduction", func(t *testing.T) {
		// Arrange
		t.Setenv("APP_ENV", "")
		cfg, err := config.NewViper("../../config/config.yaml")
		require.NoError(t, err)

		// Act
		env := cfg.GetString("app.env")

		// Assert
		assert.Equal(t, "production", env)
	})

	t.Run("EnvironmentOptsIntoDevelopment", func(t *testing.T) {
		// Arrange
		t.Setenv("APP_ENV", "development")

		// Act
		cfg, err := config.NewViper("../../config/config.yaml")
		require.NoError(t, err)

		// Assert
		assert.Equal(t, "development", cfg.GetString("app.env"))
	})
}

func TestSessionTTL(t *testing.T) {
	load := func(t *testing.T, yaml string) config.Config {
		t.Helper()
		cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
		require.NoError(t, err)
		return cfg
	}

	t.Run("Parsed", func(t *testing.T) {
		ttl, err := sessionTTL(load(t, "jwt:\n  session_ttl: 2h\n"))

		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, ttl)
	})

	t.Run("UnsetUsesCodecDefault", func(t *testing.T) {
		ttl, err := sessionTTL(load(t, "jwt:\n  issuer: otpauth\n"))

		require.NoError(t, err)
		assert.Zero(t, ttl)
	})

	t.Run("MalformedRejected", func(t *testing.T) {
		// Arrange
		t.Setenv("JWT_EXPIRES", "two hours")

		// Act
		_, err := sessionTTL(load(t, "jwt:\n  session_ttl: 2h\n"))

		// Assert
		assert.ErrorIs(t, err, errInvalidSessionTTL)
	})
}
