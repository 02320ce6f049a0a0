package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })

	require.NoError(t, Initialize("debug", FileOptions{}))
	assert.True(t, Log.Core().Enabled(zap.DebugLevel))

	assert.Error(t, Initialize("loud", FileOptions{}))
}

func TestInitialize_File(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })

	path := filepath.Join(t.TempDir(), "gateway.log")
	require.NoError(t, Initialize("info", FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1}))

	Log.Info("written to file", zap.String("codec", "gzip"))
	require.NoError(t, Log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"codec":"gzip"`)
}
