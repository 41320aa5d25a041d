package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), tt.input)
	}
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Level: "warn"})

	log.Info("hidden")
	log.Warn("shown", "table", "users")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "table=users")
}

func TestNew_JSONWithStage(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Level: "info", Format: "json"}).Stage("normalize")

	log.Info("done", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "normalize", entry["stage"])
	assert.Equal(t, "done", entry["msg"])
	assert.InDelta(t, 3, entry["rows"], 0)
}

func TestSetLevel_AppliesToChildren(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Writer: &buf, Level: "error"})
	child := parent.With("k", "v")

	child.Info("before")
	parent.SetLevel("info")
	child.Info("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}
