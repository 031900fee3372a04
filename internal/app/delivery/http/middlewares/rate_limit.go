package middlewares

import (
	"medbridge-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// GlobalRateLimit limits every route per client IP.
func (m *Middlewares) GlobalRateLimit() func(next http.Handler) http.Handler {
	return httprate.LimitByIP(m.InternalConfig.App.MaxRequests, time.Second)
}

// ProbeRateLimit limits the routes that call remote FHIR servers, keyed by
// the authenticated caller so one manager cannot flood partner hospitals.
func (m *Middlewares) ProbeRateLimit() func(next http.Handler) http.Handler {
	return httprate.Limit(
		m.InternalConfig.App.MaxTimeRequestsPerSeconds,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if callerID := utils.GetCallerUserID(r.Context()); callerID != "" {
				return callerID, nil
			}
			return httprate.KeyByIP(r)
		}),
	)
}
