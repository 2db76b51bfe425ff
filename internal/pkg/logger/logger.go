package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создает JSON логгер сервиса; debug включает консольный вывод
func New(level string) (*zap.Logger, error) {
	zapLevel := parseLevel(level, zapcore.InfoLevel)

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if zapLevel == zapcore.DebugLevel {
		config.Development = true
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// NewCLI создает логгер для утилит командной строки: stdout занят отчётом,
// поэтому логи идут в stderr и не ниже warn, если не запрошен debug
func NewCLI(level string) (*zap.Logger, error) {
	zapLevel := parseLevel(level, zapcore.WarnLevel)
	if zapLevel == zapcore.InfoLevel {
		zapLevel = zapcore.WarnLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func parseLevel(level string, fallback zapcore.Level) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return fallback
	}
	return zapLevel
}
