package lifecycle

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/pulse/pkg/logger"
)

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger("pulse", &logger.Config{Level: "warn"})
	require.NoError(t, err)
	require.NotNil(t, log)

	// Events below the configured level are disabled.
	assert.False(t, log.Info().Enabled())
	assert.True(t, log.Warn().Enabled())
}

func TestCreateComponentLoggerNilConfig(t *testing.T) {
	log, err := CreateComponentLogger("pulse", nil)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestCreateComponentLoggerInvalidLevel(t *testing.T) {
	_, err := CreateComponentLogger("pulse", &logger.Config{Level: "shout"})
	require.Error(t, err)
}

func TestLoggerImplDebugOverridesLevel(t *testing.T) {
	log, err := NewLoggerImpl(&logger.Config{Level: "error", Debug: true})
	require.NoError(t, err)

	assert.True(t, log.Debug().Enabled())
}

func TestLoggerImplSetDebug(t *testing.T) {
	log, err := NewLoggerImpl(&logger.Config{Level: "info"})
	require.NoError(t, err)

	log.SetDebug(true)
	assert.True(t, log.Debug().Enabled())

	log.SetDebug(false)
	assert.False(t, log.Debug().Enabled())

	log.SetLevel(zerolog.ErrorLevel)
	assert.False(t, log.Warn().Enabled())
}
