package logger

import (
	"strings"

	"market-dashboard/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *zap.SugaredLogger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. A nil config logs at INFO.
func NewLogger(config *models.MConfig, name string) *Logger {
	level := "INFO"
	if config != nil && config.LogLevel != "" {
		level = config.LogLevel
	}

	base, err := buildZap(level)
	if err != nil {
		base = zap.NewNop()
	}

	return &Logger{
		name:   name,
		logger: base.Named(name).Sugar(),
	}
}

// -----------------------------------------------------------------------------

// NewNop returns a Logger that discards everything.
func NewNop(name string) *Logger {
	return &Logger{name: name, logger: zap.NewNop().Sugar()}
}

// -----------------------------------------------------------------------------

func buildZap(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch strings.ToUpper(level) {
	case "DEBUG":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARNING", "WARN":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// -----------------------------------------------------------------------------

// Name returns the component name of the logger
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// Zap exposes the underlying structured logger (used by the gin middleware).
func (l *Logger) Zap() *zap.Logger {
	return l.logger.Desugar()
}

// -----------------------------------------------------------------------------

// Debug logs debugging messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Fatalf(format, args...)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.logger.Sync()
}
