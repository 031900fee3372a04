package controllers

import (
	"context"
	"errors"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// decodeBody parses and validates a JSON body into dst. On failure the
// error response is already written.
func decodeBody(log *zap.Logger, w http.ResponseWriter, r *http.Request, requestID string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error("Failed to parse request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "JSON parsing"),
			zap.Error(err),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrCannotParseJSON(err))
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		log.Error("Request body validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "validation"),
			zap.Error(err),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrInputValidation(err))
		return false
	}
	return true
}

// urlParamID reads a uuid path parameter.
func urlParamID(log *zap.Logger, w http.ResponseWriter, r *http.Request, requestID, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if err := utils.ValidateUrlParamID(value); err != nil {
		log.Error("Invalid url parameter",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("param", name),
			zap.Error(err),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrURLParamValidation(err, name))
		return "", false
	}
	return value, true
}

// requestContext returns the request id and caller id put there by the
// middlewares.
func requestContext(log *zap.Logger, w http.ResponseWriter, r *http.Request) (string, string, bool) {
	requestID := utils.GetRequestID(r.Context())
	if requestID == "" {
		log.Error("Request ID missing from context",
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingMethodKey, r.Method),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil))
		return "", "", false
	}

	callerID := utils.GetCallerUserID(r.Context())
	if callerID == "" {
		utils.BuildErrorResponse(log, w, exceptions.ErrTokenMissing(nil))
		return "", "", false
	}
	return requestID, callerID, true
}

func writeUsecaseError(log *zap.Logger, w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(log, w, err)
}
