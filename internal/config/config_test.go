package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TUIDO_BASE_URL", "")
	t.Setenv("TUIDO_PAGE_SIZE", "")
	t.Setenv("TUIDOD_ADDR", "")

	cfg := Load()
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Client.BaseURL)
	assert.Equal(t, 200, cfg.Client.PageSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "./tuidod.db", cfg.Server.DBPath)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.NotEmpty(t, cfg.Logger.File)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TUIDO_BASE_URL", "https://todos.example.com")
	t.Setenv("TUIDO_PAGE_SIZE", "50")
	t.Setenv("TUIDO_TIMEOUT", "5s")
	t.Setenv("TUIDOD_SHUTDOWN_TIMEOUT", "30")

	cfg := Load()
	assert.Equal(t, "https://todos.example.com", cfg.Client.BaseURL)
	assert.Equal(t, 50, cfg.Client.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout, "bare seconds accepted")
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("TUIDO_PAGE_SIZE", "many")
	t.Setenv("TUIDO_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 200, cfg.Client.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
}
