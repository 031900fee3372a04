package middlewares

import (
	"errors"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"
	"net/http"

	"go.uber.org/zap"
)

// ErrorHandler turns a panic anywhere below it into a generic 500.
func (m *Middlewares) ErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				var err error
				switch x := rec.(type) {
				case string:
					err = errors.New(x)
				case error:
					err = x
				default:
					err = errors.New("unknown error")
				}

				utils.LogSecurityEvent(m.Log, "handler_panic", utils.GetRequestID(r.Context()), "high",
					zap.String(constvars.LoggingEndpointKey, r.URL.Path),
					zap.Error(err),
				)
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
