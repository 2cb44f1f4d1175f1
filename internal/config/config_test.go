package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SWAPTA_TEST_VAR", "value")
	assert.Equal(t, "value", getEnv("SWAPTA_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", getEnv("SWAPTA_TEST_MISSING", "fallback"))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := LoadConfig()

	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "8081", cfg.WSPort)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
}
