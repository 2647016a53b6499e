package configuration

import "go.uber.org/zap"

// Logger is the process-wide structured logger.
var Logger *zap.Logger

// InitLogger builds the production logger. Call before anything that logs.
func InitLogger() {
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
}
