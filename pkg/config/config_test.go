package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/pulse/pkg/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pulse.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"listen_addr": ":9191",
		"activity_window": "30s",
		"sweep_interval": "10s",
		"inactivity_threshold": "2m",
		"cors": {"allowed_origins": ["https://dashboard.example.com"]}
	}`)

	var cfg models.Config

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, ":9191", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.ActivityWindow))
	assert.Equal(t, 10*time.Second, time.Duration(cfg.SweepInterval))
	assert.Equal(t, 2*time.Minute, time.Duration(cfg.InactivityThreshold))
	assert.Equal(t, []string{"https://dashboard.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadAndValidateFillsDefaults(t *testing.T) {
	path := writeConfigFile(t, `{}`)

	var cfg models.Config

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 60*time.Second, time.Duration(cfg.ActivityWindow))
	assert.Equal(t, 60*time.Second, time.Duration(cfg.SweepInterval))
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.InactivityThreshold))
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.NotNil(t, cfg.Logging)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	var cfg models.Config

	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "absent.json"), &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAndValidateNumericDurations(t *testing.T) {
	// Numeric durations are nanoseconds, matching time.Duration's JSON form.
	path := writeConfigFile(t, `{"activity_window": 45000000000}`)

	var cfg models.Config

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, 45*time.Second, time.Duration(cfg.ActivityWindow))
}

func TestLoadAndValidateFromEnv(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("PULSE_LISTEN_ADDR", ":7070")
	t.Setenv("PULSE_ACTIVITY_WINDOW", "90s")
	t.Setenv("PULSE_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	var cfg models.Config

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.ActivityWindow))
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadAndValidateFromEnvConfigJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("PULSE_CONFIG_JSON", `{"listen_addr": ":6060", "sweep_interval": "15s"}`)

	var cfg models.Config

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, ":6060", cfg.ListenAddr)
	assert.Equal(t, 15*time.Second, time.Duration(cfg.SweepInterval))
}

func TestLoadAndValidateInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg models.Config

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidConfigSource)
}
