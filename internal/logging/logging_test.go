package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel(" TRACE "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("loud"))
}

func TestVerbosityLevel(t *testing.T) {
	assert.Equal(t, "warn", VerbosityLevel(0, false, "warn"))
	assert.Equal(t, "info", VerbosityLevel(1, false, "warn"))
	assert.Equal(t, "debug", VerbosityLevel(2, false, "warn"))
	assert.Equal(t, "trace", VerbosityLevel(5, false, "warn"))
	assert.Equal(t, "error", VerbosityLevel(2, true, "warn"))
}

func TestInitWritesToFile(t *testing.T) {
	if os.Getenv("SWEEPER_DEBUG") != "" {
		t.Skip("SWEEPER_DEBUG overrides Init")
	}
	path := filepath.Join(t.TempDir(), "sweeper.log")
	require.NoError(t, Init("info", path))
	t.Cleanup(func() { _ = Close() })

	Scanner.Info().Str("root", "/tmp").Msg("scan started")
	Scanner.Debug().Msg("filtered out")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan started")
	assert.Contains(t, string(data), `"component":"scanner"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestInitClosesPreviousFile(t *testing.T) {
	if os.Getenv("SWEEPER_DEBUG") != "" {
		t.Skip("SWEEPER_DEBUG overrides Init")
	}
	dir := t.TempDir()
	require.NoError(t, Init("info", filepath.Join(dir, "first.log")))
	first := logFile
	require.NotNil(t, first)

	second := filepath.Join(dir, "second.log")
	require.NoError(t, Init("info", second))
	_, err := first.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)

	Scanner.Info().Msg("after re-init")
	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after re-init")

	held := logFile
	require.NoError(t, Close())
	assert.Nil(t, logFile)
	_, err = held.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.False(t, Enabled)
}
