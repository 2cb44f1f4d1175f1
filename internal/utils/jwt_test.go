package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtract(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	extractedID, err := service.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), extractedID)

	email, err := service.ExtractEmail(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestWrongSecret(t *testing.T) {
	service := NewJWTService("test-secret")
	other := NewJWTService("another-secret")

	token, err := service.GenerateToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = other.ExtractUserID(token)
	assert.Error(t, err)
}

func TestTamperedToken(t *testing.T) {
	service := NewJWTService("test-secret")

	token, err := service.GenerateToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = service.ExtractUserID(tampered)
	assert.Error(t, err)
}

func TestGarbageToken(t *testing.T) {
	service := NewJWTService("test-secret")
	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}
