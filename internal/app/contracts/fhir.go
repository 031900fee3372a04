package contracts

import (
	"context"
	"encoding/json"
	"medbridge-service/internal/app/models"
)

// FhirRemoteClient performs a single bounded call to a remote FHIR server.
// A non-nil error means no HTTP response was received.
type FhirRemoteClient interface {
	Fetch(ctx context.Context, target *models.FhirTarget) (*models.FhirResponse, error)
}

type FhirValidator interface {
	Validate(ctx context.Context, target *models.FhirTarget) *models.ValidationResult
	// ValidatePayload runs the structural Bundle checks on a body that was
	// already fetched. The returned error text is operator facing.
	ValidatePayload(body []byte) error
	// ValidateResource is the looser check for per data type endpoints: any
	// FHIR resource other than an OperationOutcome is accepted.
	ValidateResource(body []byte) error
}

type FhirSynthesizer interface {
	Synthesize(ctx context.Context, patient *models.Patient, dataType models.DataType, requestID string) (json.RawMessage, error)
}
