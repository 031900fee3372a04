package responses

import (
	"medbridge-service/internal/app/models"
	"time"
)

type Endpoint struct {
	ID                  string                     `json:"id"`
	HospitalID          string                     `json:"hospitalId"`
	DataType            models.DataType            `json:"dataType"`
	URLTemplate         string                     `json:"urlTemplate"`
	HTTPMethod          string                     `json:"httpMethod"`
	HasAPIKey           bool                       `json:"hasApiKey"`
	HasBearerToken      bool                       `json:"hasBearerToken"`
	Parameters          []models.EndpointParameter `json:"parameters"`
	AllowedRoles        []models.Role              `json:"allowedRoles"`
	SamplePatientID     *string                    `json:"samplePatientId,omitempty"`
	IsValid             *bool                      `json:"isValid,omitempty"`
	LastValidationError *string                    `json:"lastValidationError,omitempty"`
	LastValidatedAt     *time.Time                 `json:"lastValidatedAt,omitempty"`
	CreatedAt           time.Time                  `json:"createdAt"`
	UpdatedAt           time.Time                  `json:"updatedAt"`
}

func NewEndpoint(endpoint *models.EndpointConfig) Endpoint {
	parameters := endpoint.Parameters
	if parameters == nil {
		parameters = []models.EndpointParameter{}
	}
	allowedRoles := endpoint.AllowedRoles
	if allowedRoles == nil {
		allowedRoles = []models.Role{}
	}
	return Endpoint{
		ID:                  endpoint.ID,
		HospitalID:          endpoint.HospitalID,
		DataType:            endpoint.DataType,
		URLTemplate:         endpoint.URLTemplate,
		HTTPMethod:          endpoint.HTTPMethod,
		HasAPIKey:           endpoint.APIKeyCipher != nil && *endpoint.APIKeyCipher != "",
		HasBearerToken:      endpoint.BearerTokenCipher != nil && *endpoint.BearerTokenCipher != "",
		Parameters:          parameters,
		AllowedRoles:        allowedRoles,
		SamplePatientID:     endpoint.SamplePatientID,
		IsValid:             endpoint.IsValid,
		LastValidationError: endpoint.LastValidationError,
		LastValidatedAt:     endpoint.LastValidatedAt,
		CreatedAt:           endpoint.CreatedAt,
		UpdatedAt:           endpoint.UpdatedAt,
	}
}

func NewEndpoints(endpoints []models.EndpointConfig) []Endpoint {
	result := make([]Endpoint, 0, len(endpoints))
	for i := range endpoints {
		result = append(result, NewEndpoint(&endpoints[i]))
	}
	return result
}

type EndpointValidation struct {
	EndpointID     string    `json:"endpointId,omitempty"`
	DataType       string    `json:"dataType,omitempty"`
	IsValid        bool      `json:"isValid"`
	ErrorMessage   *string   `json:"errorMessage,omitempty"`
	ResponseSample *string   `json:"responseSample,omitempty"`
	LatencyMs      int64     `json:"latencyMs"`
	ResolvedURL    string    `json:"resolvedUrl,omitempty"`
	ValidatedAt    time.Time `json:"validatedAt"`
}

func NewEndpointValidation(endpointID string, dataType models.DataType, result *models.ValidationResult) EndpointValidation {
	return EndpointValidation{
		EndpointID:     endpointID,
		DataType:       string(dataType),
		IsValid:        result.IsValid,
		ErrorMessage:   result.ErrorMessage,
		ResponseSample: result.ResponseSample,
		LatencyMs:      result.LatencyMs,
		ResolvedURL:    result.ResolvedURL,
		ValidatedAt:    result.ValidatedAt,
	}
}
