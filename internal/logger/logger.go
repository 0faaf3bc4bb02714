package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	level  string
	sugar  *zap.SugaredLogger
	atomic zap.AtomicLevel
}

// New builds a console logger writing to stderr at the given level.
func New(level string) *Logger {
	atomic := zap.NewAtomicLevelAt(parseLevel(level))

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		atomic,
	)

	return &Logger{
		level:  strings.ToLower(level),
		sugar:  zap.New(core).Sugar(),
		atomic: atomic,
	}
}

// NewJSON builds a production logger emitting JSON lines.
func NewJSON(level string) *Logger {
	atomic := zap.NewAtomicLevelAt(parseLevel(level))
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	z, err := cfg.Build()
	if err != nil {
		return New(level)
	}
	return &Logger{level: strings.ToLower(level), sugar: z.Sugar(), atomic: atomic}
}

// NewNop discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{level: "error", sugar: zap.NewNop().Sugar(), atomic: zap.NewAtomicLevel()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{level: "debug", sugar: z.Sugar(), atomic: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{level: l.level, sugar: l.sugar.With(keysAndValues...), atomic: l.atomic}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}

// Fatal logs and exits with status 1.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
	l.Sync()
	os.Exit(1)
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// Level reports the configured level name.
func (l *Logger) Level() string {
	return l.level
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
