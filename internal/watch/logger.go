package watch

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// createLogger creates a zap logger for the session. Verbose sessions log
// every decoded event and lifecycle step to stdout; otherwise only errors
// surface.
func createLogger(verbose bool) *zap.Logger {
	var config zap.Config
	if verbose {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	logger, _ := config.Build()
	return logger
}
