package requests

type CreateHospitalSetting struct {
	HospitalID     string `json:"hospitalId" validate:"required,uuid"`
	Name           string `json:"name" validate:"required,max=128"`
	FhirBaseURL    string `json:"fhirBaseUrl" validate:"required,url,max=2048"`
	HTTPMethod     string `json:"httpMethod" validate:"omitempty,oneof=GET POST"`
	TimeoutSeconds int    `json:"timeoutSeconds" validate:"omitempty,gte=1,lte=120"`
	APIKey         string `json:"apiKey" validate:"max=512"`
	BearerToken    string `json:"bearerToken" validate:"max=4096"`
	CallerUserID   string `json:"-"`
}

type UpdateHospitalSetting struct {
	Name           string  `json:"name" validate:"required,max=128"`
	FhirBaseURL    string  `json:"fhirBaseUrl" validate:"required,url,max=2048"`
	HTTPMethod     string  `json:"httpMethod" validate:"omitempty,oneof=GET POST"`
	TimeoutSeconds int     `json:"timeoutSeconds" validate:"omitempty,gte=1,lte=120"`
	APIKey         *string `json:"apiKey" validate:"omitempty,max=512"`
	BearerToken    *string `json:"bearerToken" validate:"omitempty,max=4096"`
	SettingID      string  `json:"-"`
	CallerUserID   string  `json:"-"`
}

// ValidateAdHocEndpoint checks an arbitrary URL without storing anything.
type ValidateAdHocEndpoint struct {
	URL             string `json:"url" validate:"required,max=2048"`
	DataType        string `json:"dataType" validate:"omitempty,datatype"`
	APIKey          string `json:"apiKey" validate:"max=512"`
	BearerToken     string `json:"bearerToken" validate:"max=4096"`
	SamplePatientID string `json:"samplePatientId" validate:"max=128"`
	CallerUserID    string `json:"-"`
}
