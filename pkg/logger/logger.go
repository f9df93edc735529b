package logger

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger интерфейс структурированного логирования.
// Все компоненты клиента принимают его, а не *zap.Logger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field поле записи лога
type Field struct {
	zap.Field
}

type zapLogger struct {
	base *zap.Logger
}

// NewLogger создает логгер.
//
// environment "dev" включает цветной консольный формат, остальные окружения пишут JSON.
// Некорректный level заменяется на info. out nil означает os.Stderr: stdout
// занят выводом команд.
func NewLogger(environment, level, serviceName string, out io.Writer) (Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(newEncoder(environment), zapcore.AddSync(out), zap.NewAtomicLevelAt(lvl))
	base := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(
		zap.String("service", serviceName),
		zap.String("environment", environment),
	)
	return &zapLogger{base: base}, nil
}

func newEncoder(environment string) zapcore.Encoder {
	if environment == "dev" {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return zapcore.NewConsoleEncoder(cfg)
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// NewNop логгер без вывода
func NewNop() Logger {
	return &zapLogger{base: zap.NewNop()}
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.base.Debug(msg, unwrap(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.base.Info(msg, unwrap(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.base.Warn(msg, unwrap(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.base.Error(msg, unwrap(fields)...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{base: l.base.With(unwrap(fields)...)}
}

func (l *zapLogger) Sync() error {
	return l.base.Sync()
}

func unwrap(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i := range fields {
		out[i] = fields[i].Field
	}
	return out
}

// CtxField trace_id активного спана; "unknown" вне трассировки
func CtxField(ctx context.Context) Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return String("trace_id", "unknown")
	}
	return String("trace_id", sc.TraceID().String())
}

// String строковое поле
func String(key, val string) Field {
	return Field{zap.String(key, val)}
}

// Int целочисленное поле
func Int(key string, val int) Field {
	return Field{zap.Int(key, val)}
}

// Bool логическое поле
func Bool(key string, val bool) Field {
	return Field{zap.Bool(key, val)}
}

// Duration поле длительности
func Duration(key string, val time.Duration) Field {
	return Field{zap.Duration(key, val)}
}

// Any поле произвольного значения
func Any(key string, val any) Field {
	return Field{zap.Any(key, val)}
}

// Error поле "error"; nil записывается строкой "nil"
func Error(err error) Field {
	if err == nil {
		return String("error", "nil")
	}
	return String("error", err.Error())
}
