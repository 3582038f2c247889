package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hn.log")

	logger, err := NewLogger(Options{LogPath: path, LogLevel: "info", MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("hidden message")
	logger.With("run_id", "abc").Info("Page analysis", "page", 1)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `msg="Page analysis"`)
	assert.Contains(t, out, "run_id=abc")
	assert.Contains(t, out, "page=1")
	assert.NotContains(t, out, "hidden message")
}

func TestSetLevelAffectsChildren(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hn.log")

	logger, err := NewLogger(Options{LogPath: path, LogLevel: "warn"})
	require.NoError(t, err)
	child := logger.With("component", "collector")

	assert.False(t, logger.Enabled("info"))
	child.Info("before")

	logger.SetLevel("debug")
	assert.True(t, logger.Enabled("debug"))
	child.Debug("after")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.False(t, strings.Contains(out, "before"))
	assert.Contains(t, out, "after")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"DEBUG":   "DEBUG",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), "level %q", in)
	}
}
