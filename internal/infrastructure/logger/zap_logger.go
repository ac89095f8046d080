package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide logger. An unparseable level falls
// back to info. When filePath is non-empty the log is written there in
// addition to stderr.
func NewLogger(level string, filePath string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	l, err := zapcore.ParseLevel(level)
	if err != nil {
		l = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(l)

	if filePath != "" {
		config.OutputPaths = append(config.OutputPaths, filePath)
	}

	return config.Build()
}
