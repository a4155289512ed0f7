package logger

import (
	"go.uber.org/zap"
)

// New creates a zap logger configured for the given application environment.
// "development" uses the human-readable console encoder; anything else uses
// production JSON output.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewNamed creates an environment-appropriate logger named after the service.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	log, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
