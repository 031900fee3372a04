package utils

import (
	"errors"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/dto/responses"
	"medbridge-service/internal/pkg/exceptions"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	}
	writeJSON(w, code, response)
}

// BuildDataRequestResponse renders an orchestration or approval outcome.
// Outcomes that were persisted are always 200; a rejection with nothing
// persisted behind it takes the status of its error code.
func BuildDataRequestResponse(w http.ResponseWriter, message string, result *responses.DataRequestResult) {
	code := constvars.StatusOK
	if result.RequestID == "" && result.ErrorCode != "" {
		code = exceptions.ErrorCode(result.ErrorCode).HTTPStatus()
	}
	response := responses.ResponseDTO{
		Success: result.Success,
		Message: message,
		Data:    result,
	}
	writeJSON(w, code, response)
}

func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	code := constvars.StatusInternalServerError
	clientMessage := constvars.ErrClientSomethingWrongWithApplication

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		code = customErr.StatusCode
		clientMessage = customErr.ClientMessage
		for _, location := range customErr.Locations {
			log.Error(customErr.DevMessage,
				zap.String("file", location.File),
				zap.Int("line", location.Line),
				zap.String("function_name", location.FunctionName),
			)
		}
	} else {
		log.Error(err.Error())
	}

	response := exceptions.CustomError{
		StatusCode:    code,
		Success:       false,
		ClientMessage: clientMessage,
	}
	appEnvironment := GetEnvString("APP_ENV", constvars.AppEnvDevelopment)
	if customErr != nil && appEnvironment != constvars.AppEnvProduction {
		response.DevMessage = customErr.DevMessage
		response.Locations = customErr.Locations
	}
	writeJSON(w, code, response)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
