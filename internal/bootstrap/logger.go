package bootstrap

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the service logger. Development gets the console
// encoder, everything else structured JSON.
func NewLogger(environment string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
