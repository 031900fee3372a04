package models

import "time"

// EndpointParameter is a named placeholder in an endpoint URL template.
// ExampleValue is only substituted during pre-flight validation.
type EndpointParameter struct {
	Name         string `json:"name"`
	Placeholder  string `json:"placeholder"`
	ExampleValue string `json:"exampleValue"`
}

// EndpointConfig points one (hospital, data type) pair at a remote FHIR URL.
// Secrets are held encrypted; only the registry decrypts them.
type EndpointConfig struct {
	ID                  string
	HospitalID          string
	DataType            DataType
	URLTemplate         string
	HTTPMethod          string
	APIKeyCipher        *string
	BearerTokenCipher   *string
	Parameters          []EndpointParameter
	AllowedRoles        []Role
	SamplePatientID     *string
	IsValid             *bool
	LastValidationError *string
	LastValidatedAt     *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AllowsRole reports whether requests from role may be served by this
// endpoint. An empty list allows every role.
func (e *EndpointConfig) AllowsRole(role Role) bool {
	return allowsRole(e.AllowedRoles, role)
}

func allowsRole(allowedRoles []Role, role Role) bool {
	if len(allowedRoles) == 0 {
		return true
	}
	for _, allowed := range allowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// ValidationResult is the cached outcome of the last endpoint validation.
type ValidationResult struct {
	IsValid        bool
	ErrorMessage   *string
	ResponseSample *string
	LatencyMs      int64
	ValidatedAt    time.Time
	ResolvedURL    string
}

// FhirTarget is a fully resolved outbound call.
type FhirTarget struct {
	URL                 string
	HTTPMethod          string
	APIKey              string
	BearerToken         string
	Timeout             time.Duration
	EndpointID          string
	SettingID           string
	AllowedRoles        []Role
	IsPatientEverything bool
}

type FhirResponse struct {
	StatusCode int
	Status     string
	Body       []byte
	Latency    time.Duration
}

func (t *FhirTarget) AllowsRole(role Role) bool {
	return allowsRole(t.AllowedRoles, role)
}
