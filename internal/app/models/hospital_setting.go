package models

import "time"

// HospitalSetting is the hospital-wide FHIR server configuration. It backs
// the generic patient-everything endpoint when no per data type endpoint
// exists. Rows are deactivated, never deleted.
type HospitalSetting struct {
	ID                  string
	HospitalID          string
	Name                string
	FhirBaseURL         string
	HTTPMethod          string
	TimeoutSeconds      int
	APIKeyCipher        *string
	BearerTokenCipher   *string
	IsActive            bool
	IsValid             *bool
	LastValidationError *string
	LastValidatedAt     *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
