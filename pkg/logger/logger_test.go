package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	lg, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, lg.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, lg.Core().Enabled(zapcore.WarnLevel))

	lg, err = New("development", "debug")
	require.NoError(t, err)
	assert.True(t, lg.Core().Enabled(zapcore.DebugLevel))

	_, err = New("production", "loud")
	assert.Error(t, err)
}
