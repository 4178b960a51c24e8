package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithWriters(t *testing.T) {
	var text, js bytes.Buffer
	logger := WithWriters(&text, &js, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("similarity run finished", "scored_pairs", 42)

	assert.NotContains(t, text.String(), "hidden")
	assert.Contains(t, text.String(), "scored_pairs=42")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &rec))
	assert.Equal(t, "similarity run finished", rec["msg"])
	assert.Equal(t, 42.0, rec["scored_pairs"])
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itemsim.log")
	logger, cleanup := Setup(path, slog.LevelDebug)
	logger.Debug("to file", "k", "v")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"to file"`))
}

func TestSetup_NoFile(t *testing.T) {
	logger, cleanup := Setup("", slog.LevelInfo)
	assert.NotNil(t, logger)
	assert.NoError(t, cleanup())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
