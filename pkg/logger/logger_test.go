package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishuide/Car-price-prediction/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseLevel("verbose")
	assert.Error(t, err)
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, "json", slog.LevelInfo)
	require.NoError(t, err)

	log := slog.New(h)
	log.Debug("hidden")
	log.Info("model saved", "path", "models/x.gob")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "model saved", rec["msg"])
	assert.Equal(t, "models/x.gob", rec["path"])
}

func TestNewHandlerTintWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, "tint", slog.LevelInfo)
	require.NoError(t, err)
	slog.New(h).Warn("unseen category", "label", "Hydrogen")

	out := buf.String()
	assert.Contains(t, out, "unseen category")
	assert.Contains(t, out, "label=Hydrogen")
	assert.NotContains(t, out, "\x1b[", "no color escapes outside a terminal")
}

func TestNewHandlerUnknownFormat(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, "xml", slog.LevelInfo)
	assert.Error(t, err)
}

func TestSetupFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "carprice.log")
	log, closer, err := Setup(config.LogConfig{Level: "info", Format: "text", Output: "file", FilePath: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=hello")
}

func TestSetupRejectsBadOutput(t *testing.T) {
	_, _, err := Setup(config.LogConfig{Level: "info", Format: "text", Output: "syslog"})
	assert.Error(t, err)
}
