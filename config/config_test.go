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
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.StallTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INCUBE_BASE_URL", "https://app.example.com")
	t.Setenv("INCUBE_STALL_TIMEOUT", "90s")
	t.Setenv("INCUBE_LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.StallTimeout)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_BareSecondsDuration(t *testing.T) {
	t.Setenv("INCUBE_STALL_TIMEOUT", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.StallTimeout)
}

func TestLoad_RejectsBadURL(t *testing.T) {
	t.Setenv("INCUBE_BASE_URL", "ftp://nope")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadFormat(t *testing.T) {
	t.Setenv("INCUBE_LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
}
