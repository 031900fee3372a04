package middlewares

import (
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	Metrics        *metrics.Metrics
}

func NewMiddlewares(logger *zap.Logger, internalConfig *config.InternalConfig, m *metrics.Metrics) *Middlewares {
	return &Middlewares{
		Log:            logger,
		InternalConfig: internalConfig,
		Metrics:        m,
	}
}
