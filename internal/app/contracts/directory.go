package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
)

// Lookups return nil, nil when the row does not exist.

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

type PatientRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Patient, error)
	FindByID(ctx context.Context, patientID string) (*models.Patient, error)
}

type ConsentRepository interface {
	FindLatest(ctx context.Context, patientID, requestingUserID, requestingHospitalID string, dataType models.DataType) (*models.PatientConsent, error)
}
