package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentSource, Output: &buf})

	logger.Info("Dataset loaded", FieldRecords, 19)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Dataset loaded", rec["msg"])
	assert.Equal(t, ComponentSource, rec[FieldComponent])
	assert.Equal(t, float64(19), rec[FieldRecords])
}

func TestLogHTTPEnd_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).With(FieldRequestID, "req-1")
	ctx := WithLogger(context.Background(), logger)
	r := httptest.NewRequest("GET", "/ui/dashboard?from=2010&to=2023", nil)

	LogHTTPEnd(ctx, r, 503, 12, "127.0.0.1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "req-1", rec[FieldRequestID])
	assert.Equal(t, ComponentHTTP, rec[FieldComponent])
	assert.Equal(t, "from=2010&to=2023", rec[FieldQuery])
	assert.Equal(t, false, rec[FieldSuccess])
}

func TestFromContext_Default(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}
