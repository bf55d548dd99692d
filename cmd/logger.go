package cmd

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zlog *zap.Logger

// InitLogger initializes the CLI logger with the specified log level
func InitLogger(level string, format string) error {
	var config zap.Config

	switch format {
	case "json":
		config = zap.NewProductionConfig()
	default:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level == "" {
		level = "info"
	}
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	config.Level = zap.NewAtomicLevelAt(logLevel)

	zlog, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// GetLogger returns the CLI logger instance
func GetLogger() *zap.Logger {
	if zlog == nil {
		zlog, _ = zap.NewDevelopment()
	}
	return zlog
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Warn logs a warning
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}
