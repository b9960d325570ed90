package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("resolver").
		With("framework", "bootstrap").
		Warn(context.Background(), errors.New("no view"), "falling back", "component_type", "/apps/widget")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "falling back", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "resolver", entry["component"])
	assert.Equal(t, "no view", entry["error"])
	assert.Equal(t, "bootstrap", entry["framework"])
	assert.Equal(t, "/apps/widget", entry["component_type"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "hidden debug")
	logger.Info(context.Background(), "hidden info")
	assert.Empty(t, buf.String())

	logger.Error(context.Background(), errors.New("x"), "visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))
}

func TestNopLogger(t *testing.T) {
	var logger Logger = OrNop(nil)
	assert.IsType(t, NopLogger{}, logger)
	assert.NotPanics(t, func() {
		logger.WithComponent("x").With("k", "v").Error(context.Background(), nil, "ignored")
		op := StartOperation(nil, "build")
		op.End(context.Background())
		op.EndWithError(context.Background(), errors.New("boom"))
	})
}
