package zap

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init("verbose", true)

	assert.ErrorContains(t, err, "log level")
}

func TestLoggerContextFields(t *testing.T) {
	var out bytes.Buffer
	log := newLogger(&out, zapcore.InfoLevel, true)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	ctx = ContextWithUserID(ctx, "user-7")

	log.Debug(ctx, "hidden")
	log.Info(ctx, "order placed", zap.String("order_id", "o-1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "order placed", entry["message"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "user-7", entry["user_id"])
	assert.Equal(t, "o-1", entry["order_id"])
}

func TestNamedBeforeInit(t *testing.T) {
	if globalLogger != nil {
		t.Skip("process logger already initialised")
	}

	assert.NotPanics(t, func() {
		Named("redis").Error(context.Background(), "dropped")
	})
}
