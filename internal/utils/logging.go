package utils

import (
	"go.uber.org/zap"
)

// Logger is the process-wide structured logger.
var Logger *zap.Logger

// InitLogger replaces Logger with a production zap logger. Call it once
// at startup; a logger that cannot be built is fatal.
func InitLogger() {
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.Logger {
	if Logger == nil {
		InitLogger()
	}
	return Logger
}
