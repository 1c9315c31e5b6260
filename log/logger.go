// Package log provides structured diagnostics for the harness itself.
//
// Harness diagnostics must never mix into the formatter's stream on
// stdout, so the logger writes JSON records to stderr and stays silent
// unless GAUNTLET_LOG=debug is set. Every record carries the invocation's
// run id so interleaved runs can be told apart.
package log

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/justapithecus/gauntlet/types"
)

// EnvVar enables diagnostics when set to "debug".
const EnvVar = "GAUNTLET_LOG"

// Logger wraps a non-sugared zap.Logger with run context.
type Logger struct {
	zap *zap.Logger
}

// NewLogger creates a logger for one harness invocation, tagged with a
// fresh run id. Output goes to os.Stderr; the logger is a no-op unless
// GAUNTLET_LOG=debug.
func NewLogger() *Logger {
	if os.Getenv(EnvVar) != "debug" {
		return &Logger{zap: zap.NewNop()}
	}
	return newLoggerWithWriter(uuid.New().String(), os.Stderr)
}

// NewLoggerWithWriter creates an always-on logger writing to w, tagged with
// runID. Used by tests.
func NewLoggerWithWriter(runID string, w io.Writer) *Logger {
	return newLoggerWithWriter(runID, w)
}

func newLoggerWithWriter(runID string, w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)

	zapLogger := zap.New(core).With(
		zap.String("run_id", runID),
		zap.String("harness_version", types.Version),
	)
	return &Logger{zap: zapLogger}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sync flushes buffered records. Errors are unactionable at exit.
func (l *Logger) Sync() {
	_ = l.zap.Sync()
}
