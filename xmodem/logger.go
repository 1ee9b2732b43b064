package xmodem

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the logging interface the engine uses for protocol tracing.
// It mirrors the teacher's shape so callers already familiar with it can
// drop in their own adapter.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NoopLogger discards everything. It is the default for Session and the
// right choice for tests, which assert on protocol behavior, not logs.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...interface{}) {}
func (NoopLogger) Info(string, ...interface{})  {}
func (NoopLogger) Error(string, ...interface{}) {}

// zapLogger adapts a *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	l *zap.SugaredLogger
}

// NewZapLogger wraps a *zap.SugaredLogger as a Logger. A nil l falls back
// to zap.NewProduction's default sugared logger.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	if l == nil {
		prod, err := zap.NewProduction()
		if err != nil {
			return NoopLogger{}
		}
		l = prod.Sugar()
	}
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(format string, args ...interface{}) { z.l.Debugf(format, args...) }
func (z *zapLogger) Info(format string, args ...interface{})  { z.l.Infof(format, args...) }
func (z *zapLogger) Error(format string, args ...interface{}) { z.l.Errorf(format, args...) }

// formatPacketLog formats a packet for a structured debug line.
func formatPacketLog(direction string, mode Mode, seq byte, payloadLen int) string {
	return fmt.Sprintf("%s seq=%d mode=%s len=%d", direction, seq, mode, payloadLen)
}
