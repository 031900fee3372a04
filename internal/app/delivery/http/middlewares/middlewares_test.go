package middlewares

import (
	"context"
	"io"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/pkg/constvars"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestMiddlewares(app config.App) *Middlewares {
	return &Middlewares{
		Log:            zap.NewNop(),
		InternalConfig: &config.InternalConfig{App: app},
	}
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	m := newTestMiddlewares(config.App{})
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil endpoint row")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datarequest/history", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequestIDMiddleware_GeneratesWhenAbsent(t *testing.T) {
	m := newTestMiddlewares(config.App{})
	var seen string
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, strings.HasPrefix(seen, constvars.REQUEST_ID_PREFIX))
	assert.Equal(t, seen, rec.Header().Get(constvars.HeaderXRequestID))
}

func TestBodyLimit_TruncatesLargeBodies(t *testing.T) {
	m := newTestMiddlewares(config.App{RequestBodyLimitInMegabyte: 1})
	var readErr error
	handler := m.BodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	body := strings.NewReader(strings.Repeat("a", 2<<20))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/datarequest/request", body))

	assert.Error(t, readErr)
}

func TestProbeRateLimit_KeysByCaller(t *testing.T) {
	m := newTestMiddlewares(config.App{MaxTimeRequestsPerSeconds: 1})
	handler := m.ProbeRateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(callerID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/datarequestendpoint/x/validate", nil)
		req = req.WithContext(context.WithValue(req.Context(), constvars.CONTEXT_CALLER_USER_ID_KEY, callerID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("manager-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("manager-1"))
	assert.Equal(t, http.StatusOK, call("manager-2"))
}
