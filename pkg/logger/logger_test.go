package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// TestNewLogger_DevEnvironment проверяет создание логгера для dev окружения
func TestNewLogger_DevEnvironment(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("dev", "debug", "admin-cli", &buf)
	require.NoError(t, err)

	log.Info("Test message")
	log.With(String("test", "value")).Info("Test message with field")

	assert.Contains(t, buf.String(), "Test message with field")
	assert.Contains(t, buf.String(), "value")
}

// TestNewLogger_ProdEnvironment проверяет JSON вывод для prod окружения
func TestNewLogger_ProdEnvironment(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("prod", "info", "admin-cli", &buf)
	require.NoError(t, err)

	log.Info("загрузка категорий", Int("count", 3), Duration("took", 150*time.Millisecond))
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "загрузка категорий", entry["msg"])
	assert.Equal(t, "admin-cli", entry["service"])
	assert.Equal(t, "prod", entry["environment"])
	assert.EqualValues(t, 3, entry["count"])
	assert.EqualValues(t, 150, entry["took"])
}

// TestNewLogger_InvalidLevel проверяет, что при некорректном уровне используется info
func TestNewLogger_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("prod", "invalid", "admin-cli", &buf)
	require.NoError(t, err)

	log.Debug("скрыто")
	log.Info("видно")

	assert.NotContains(t, buf.String(), "скрыто")
	assert.Contains(t, buf.String(), "видно")
}

// TestNewNop проверяет, что nop логгер безопасен в использовании
func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("ничего не произойдет", Error(nil))
	assert.NotNil(t, log.With(String("k", "v")))
}

// TestLogger_CtxField проверяет извлечение trace_id из спана
func TestLogger_CtxField(t *testing.T) {
	field := CtxField(context.Background())
	assert.Equal(t, "trace_id", field.Key)
	assert.Equal(t, "unknown", field.String)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	field = CtxField(ctx)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", field.String)
}

// TestLogger_Fields проверяет создание различных типов полей
func TestLogger_Fields(t *testing.T) {
	assert.Equal(t, "name", String("name", "test").Key)
	assert.Equal(t, "count", Int("count", 42).Key)
	assert.Equal(t, "active", Bool("active", true).Key)
	assert.Equal(t, "took", Duration("took", time.Second).Key)
	assert.Equal(t, "error", Error(nil).Key)
	assert.Equal(t, "data", Any("data", map[string]interface{}{"key": "value"}).Key)
}
