package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger
type Logger struct {
	*zap.SugaredLogger
}

// New creates a production Logger
func New() (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewDevelopment creates a console Logger for the CLI and tests
func NewDevelopment() *Logger {
	config := zap.NewDevelopmentConfig()
	zapLogger, err := config.Build()
	if err != nil {
		return NewNop()
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}
}

// NewNop creates a Logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
