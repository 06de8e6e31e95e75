package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithConfig_jsonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, InitWithConfig(Config{Level: LevelWarn, OutputPath: path, Format: "json"}))
	t.Cleanup(func() { _ = Close() })

	Info("dropped below level")
	Warn("dose conflict", "medication_id", "met")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "exactly one JSON line expected, got %q", data)
	assert.Equal(t, "dose conflict", entry["msg"])
	assert.Equal(t, "met", entry["medication_id"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
}
