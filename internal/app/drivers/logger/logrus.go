package logger

import (
	"medbridge-service/internal/pkg/constvars"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogrusLogger builds the logger used by the command line tools.
func NewLogrusLogger(appEnv string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	switch appEnv {
	case constvars.AppEnvProduction:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
