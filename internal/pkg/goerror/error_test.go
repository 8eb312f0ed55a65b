package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnauthorized(t *testing.T) {
	// Act
	err := NewUnauthorized()

	// Assert
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Unauthorized", e.Error())
	assert.Equal(t, http.StatusUnauthorized, e.StatusCode())
	assert.Equal(t, TypeBusiness, e.Type())
	assert.True(t, IsCode(err, CodeUnauthorized))
	assert.False(t, IsCode(err, CodeForbidden))
}

func TestNewServer(t *testing.T) {
	// Arrange
	cause := errors.New("db down")

	// Act
	err := NewServer(cause)

	// Assert
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error", e.Msg())
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode())
	assert.Contains(t, e.String(), "ERROR_CODE_INTERNAL")
}

func TestNewInvalidInput(t *testing.T) {
	t.Run("Fields", func(t *testing.T) {
		var e *Error
		require.ErrorAs(t, NewInvalidInput(nil, "username", "is required"), &e)
		assert.Equal(t, map[string]string{"username": "is required"}, e.Fields())
		assert.Equal(t, http.StatusUnprocessableEntity, e.StatusCode())
	})

	t.Run("OddPairs", func(t *testing.T) {
		var e *Error
		require.ErrorAs(t, NewInvalidInput(nil, "username"), &e)
		assert.Equal(t, CodeInvalidFormat, e.Code())
	})
}

func TestNewInvalidFormat(t *testing.T) {
	var e *Error
	require.ErrorAs(t, NewInvalidFormat(), &e)
	assert.Equal(t, http.StatusBadRequest, e.StatusCode())
	assert.Equal(t, "Invalid request body", e.Error())
}
