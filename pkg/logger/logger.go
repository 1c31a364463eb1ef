package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger. It discards everything until Init is called, so
// packages can log from tests without setting anything up.
var Log = zap.NewNop()

// Init builds the global logger. Development mode writes coloured console
// lines at debug level; otherwise JSON at info. A non-empty level ("debug",
// "warn", ...) overrides the mode's default.
func Init(isDevelopment bool, level string) error {
	var config zap.Config

	if isDevelopment {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}

	built, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return err
	}

	Log = built.With(zap.String("service", "blog-api"))
	return nil
}

// Sync flushes buffered entries; call it before exit.
func Sync() {
	_ = Log.Sync()
}
