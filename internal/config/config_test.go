package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.SessionStore)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 14*24*time.Hour, cfg.TokenTTL())
	assert.False(t, cfg.Production())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("RANDOM_SALT", "replay")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, "replay", cfg.RandomSalt)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Production())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "unknown store", key: "SESSION_STORE", value: "redis"},
		{name: "zero expiry", key: "JWT_EXPIRES_DAYS", value: "0"},
		{name: "malformed timeout", key: "REQUEST_TIMEOUT", value: "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "pebbles_token", cfg.CookieName)
	assert.Empty(t, cfg.RandomSalt)
}
