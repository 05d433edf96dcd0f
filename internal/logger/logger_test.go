package logger

import (
	"testing"

	"hosting-storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(config.Environment{Name: "development"}, config.Log{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(config.Environment{Name: "production"}, config.Log{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New(config.Environment{}, config.Log{Level: "loud"})
	assert.Error(t, err)
}
