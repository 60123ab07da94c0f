package bramble

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is the package-wide warning/error channel. Plain variable, no locking
// (bramble is single-threaded).
var (
	logLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger   = newDefaultLogger()
)

func newDefaultLogger() *zap.Logger {
	cfg := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("bramble")
}

// SetLogger replaces the logger used for misuse warnings and debug stats.
// A nil logger silences all output. The replacement's level is its own;
// SetDebugMode only adjusts the default logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the current package logger.
func Logger() *zap.Logger {
	return logger
}

// entityFields returns the structured fields that identify an entity in logs.
func entityFields(e *Entity) []zap.Field {
	return []zap.Field{
		zap.Uint32("id", e.ID),
		zap.String("entity", e.Name),
	}
}
