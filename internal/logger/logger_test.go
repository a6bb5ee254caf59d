package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"storefront-payments/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Log{Level: "warn", Format: "json"}, &buf)

	log.Info("dropped")
	log.Warn("kept", "payment_id", "12345")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "12345", entry["payment_id"])
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Log{Level: "debug", Format: "text"}, &buf)

	log.Debug("reconciled", "purchase_id", 3)
	assert.Contains(t, buf.String(), "msg=reconciled")
	assert.Contains(t, buf.String(), "purchase_id=3")
}
