package models

import "time"

type User struct {
	ID         string
	HospitalID string
	Role       Role
	FullName   string
	Email      string
	IsActive   bool
}

type Patient struct {
	ID                  string
	ExternalID          string
	HospitalID          string
	FirstName           string
	LastName            string
	Gender              string
	BirthDate           *time.Time
	MedicalRecordNumber string
}

// PatientConsent grants one (patient, requester, hospital, data type) tuple.
type PatientConsent struct {
	ID                   string
	PatientID            string
	RequestingUserID     string
	RequestingHospitalID string
	DataType             DataType
	GrantedAt            time.Time
	ExpiresAt            *time.Time
	IsRevoked            bool
}

// IsValidAt reports whether the consent is in force at the given instant.
func (c *PatientConsent) IsValidAt(now time.Time) bool {
	if c == nil || c.IsRevoked {
		return false
	}
	if now.Before(c.GrantedAt) {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}
