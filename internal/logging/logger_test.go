package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json at debug", func(t *testing.T) {
		logger, err := New("debug", "json")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("console at warn", func(t *testing.T) {
		logger, err := New("warn", "console")
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("verbose", "json")
		assert.Error(t, err)
	})
}
