package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/dto/responses"
)

type EndpointUsecase interface {
	CreateEndpoint(ctx context.Context, request *requests.CreateEndpoint) (*responses.Endpoint, error)
	UpdateEndpoint(ctx context.Context, request *requests.UpdateEndpoint) (*responses.Endpoint, error)
	DeleteEndpoint(ctx context.Context, callerID, endpointID string) error
	FindEndpointByID(ctx context.Context, callerID, endpointID string) (*responses.Endpoint, error)
	FindEndpointsByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.Endpoint, error)
	ValidateEndpoint(ctx context.Context, callerID, endpointID string) (*responses.EndpointValidation, error)
	ValidateAllEndpoints(ctx context.Context, callerID, hospitalID string) ([]responses.EndpointValidation, error)
}

// EndpointResolver picks the remote FHIR target for a data request. It
// returns nil, nil when the hospital has nothing configured.
type EndpointResolver interface {
	ResolveURL(ctx context.Context, hospitalID string, dataType models.DataType, patientID string) (*models.FhirTarget, error)
}

// EndpointRegistry is the endpoint administration surface together with
// the resolver backed by the same rows.
type EndpointRegistry interface {
	EndpointUsecase
	EndpointResolver
}

type EndpointRepository interface {
	Create(ctx context.Context, endpoint *models.EndpointConfig) error
	Update(ctx context.Context, endpoint *models.EndpointConfig) error
	Delete(ctx context.Context, endpointID string) error
	FindByID(ctx context.Context, endpointID string) (*models.EndpointConfig, error)
	FindByHospital(ctx context.Context, hospitalID string) ([]models.EndpointConfig, error)
	FindByHospitalAndDataType(ctx context.Context, hospitalID string, dataType models.DataType) (*models.EndpointConfig, error)
	UpdateValidation(ctx context.Context, endpointID string, result *models.ValidationResult) error
}
