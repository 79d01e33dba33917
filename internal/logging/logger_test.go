package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"mealmind/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	logger, err := New(config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger, err := New(config.LoggingConfig{Level: "chatty"})
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
