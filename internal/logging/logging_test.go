package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestOpenWritesAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "devquest.log")

	logger, closer, err := Open(path, "warn")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "topic", "go-basics")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "topic=go-basics")
}

func TestOpenWithoutPathDiscards(t *testing.T) {
	logger, closer, err := Open("", "nonsense")
	require.NoError(t, err)
	logger.Error("dropped")
	assert.NoError(t, closer.Close())
}
