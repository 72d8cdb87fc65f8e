package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerotrace-systems/aerotrace/internal/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestNewFormats(t *testing.T) {
	assert.NotNil(t, New(slog.LevelInfo, "json"))
	assert.NotNil(t, New(slog.LevelDebug, "text"))
	assert.NotNil(t, New(slog.LevelInfo, "unknown"))
}

func TestWithContextAddsRequestID(t *testing.T) {
	l := New(slog.LevelInfo, "json")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	withID := l.WithContext(ctx)
	bare := l.WithContext(context.Background())

	assert.NotSame(t, l.Logger, withID)
	assert.Same(t, l.Logger, bare)
}

func TestFieldAttrs(t *testing.T) {
	assert.True(t, ComponentID("c-1").Equal(slog.String("component_id", "c-1")))
	assert.True(t, Serial("SN1").Equal(slog.String("serial_number", "SN1")))
	assert.True(t, Count(3).Equal(slog.Int("count", 3)))
	assert.True(t, Err(errors.New("boom")).Equal(slog.String("error", "boom")))
	assert.True(t, Err(nil).Equal(slog.String("error", "")))
}
