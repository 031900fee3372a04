package middlewares

import (
	"context"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Authenticate resolves the caller from the bearer token. Handlers read the
// caller id from the context and never from the request body.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if authHeader == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}

		token := strings.TrimPrefix(authHeader, constvars.AuthorizationBearerPrefix)
		userID, err := utils.ParseAccessToken(token, m.InternalConfig.Security.JWTSecret)
		if err != nil {
			utils.LogSecurityEvent(m.Log, "invalid_access_token", utils.GetRequestID(r.Context()), "medium",
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			)
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_CALLER_USER_ID_KEY, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
