package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	deployment := config.DeploymentConfig{Environment: "test", Version: "0.0.0"}

	t.Run("stdout json", func(t *testing.T) {
		log, err := New(config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"}, deployment)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file output rotates through lumberjack", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, err := New(config.LoggingConfig{Level: "info", Format: "console", Output: "file", FilePath: path, MaxSize: 1}, deployment)
		require.NoError(t, err)

		log.Info("participation recorded")
		_ = log.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "participation recorded")
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(config.LoggingConfig{Level: "loud"}, deployment)
		assert.Error(t, err)
	})

	t.Run("invalid output", func(t *testing.T) {
		_, err := New(config.LoggingConfig{Level: "info", Output: "syslog"}, deployment)
		assert.Error(t, err)
	})
}
