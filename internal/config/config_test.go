package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, ":9090", cfg.GRPCAddr)
	require.Empty(t, cfg.JWTKey)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8888")
	t.Setenv("JWT_KEY", "supersecret")
	t.Setenv("TOKEN_TTL", "1h")

	cfg := Load()
	require.Equal(t, ":8888", cfg.HTTPAddr)
	require.Equal(t, []byte("supersecret"), cfg.JWTKey)
	require.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")
	cfg := Load()
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
