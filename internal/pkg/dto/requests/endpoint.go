package requests

type EndpointParameter struct {
	Name         string `json:"name" validate:"required,max=64"`
	Placeholder  string `json:"placeholder" validate:"required,max=64"`
	ExampleValue string `json:"exampleValue" validate:"max=256"`
}

type CreateEndpoint struct {
	HospitalID      string              `json:"hospitalId" validate:"required,uuid"`
	DataType        string              `json:"dataType" validate:"required,datatype"`
	URLTemplate     string              `json:"urlTemplate" validate:"required,max=2048"`
	HTTPMethod      string              `json:"httpMethod" validate:"omitempty,oneof=GET POST"`
	APIKey          string              `json:"apiKey" validate:"max=512"`
	BearerToken     string              `json:"bearerToken" validate:"max=4096"`
	Parameters      []EndpointParameter `json:"parameters" validate:"dive"`
	AllowedRoles    []string            `json:"allowedRoles" validate:"dive,role"`
	SamplePatientID string              `json:"samplePatientId" validate:"max=128"`
	CallerUserID    string              `json:"-"`
}

// UpdateEndpoint replaces the endpoint's mutable fields. A nil secret keeps
// the stored one and an empty string clears it.
type UpdateEndpoint struct {
	URLTemplate     string              `json:"urlTemplate" validate:"required,max=2048"`
	HTTPMethod      string              `json:"httpMethod" validate:"omitempty,oneof=GET POST"`
	APIKey          *string             `json:"apiKey" validate:"omitempty,max=512"`
	BearerToken     *string             `json:"bearerToken" validate:"omitempty,max=4096"`
	Parameters      []EndpointParameter `json:"parameters" validate:"dive"`
	AllowedRoles    []string            `json:"allowedRoles" validate:"dive,role"`
	SamplePatientID string              `json:"samplePatientId" validate:"max=128"`
	EndpointID      string              `json:"-"`
	CallerUserID    string              `json:"-"`
}
