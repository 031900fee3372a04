package responses

import (
	"medbridge-service/internal/app/models"
	"time"
)

type HospitalSetting struct {
	ID                  string     `json:"id"`
	HospitalID          string     `json:"hospitalId"`
	Name                string     `json:"name"`
	FhirBaseURL         string     `json:"fhirBaseUrl"`
	HTTPMethod          string     `json:"httpMethod"`
	TimeoutSeconds      int        `json:"timeoutSeconds"`
	HasAPIKey           bool       `json:"hasApiKey"`
	HasBearerToken      bool       `json:"hasBearerToken"`
	IsActive            bool       `json:"isActive"`
	IsValid             *bool      `json:"isValid,omitempty"`
	LastValidationError *string    `json:"lastValidationError,omitempty"`
	LastValidatedAt     *time.Time `json:"lastValidatedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func NewHospitalSetting(setting *models.HospitalSetting) HospitalSetting {
	return HospitalSetting{
		ID:                  setting.ID,
		HospitalID:          setting.HospitalID,
		Name:                setting.Name,
		FhirBaseURL:         setting.FhirBaseURL,
		HTTPMethod:          setting.HTTPMethod,
		TimeoutSeconds:      setting.TimeoutSeconds,
		HasAPIKey:           setting.APIKeyCipher != nil && *setting.APIKeyCipher != "",
		HasBearerToken:      setting.BearerTokenCipher != nil && *setting.BearerTokenCipher != "",
		IsActive:            setting.IsActive,
		IsValid:             setting.IsValid,
		LastValidationError: setting.LastValidationError,
		LastValidatedAt:     setting.LastValidatedAt,
		CreatedAt:           setting.CreatedAt,
		UpdatedAt:           setting.UpdatedAt,
	}
}

func NewHospitalSettings(settings []models.HospitalSetting) []HospitalSetting {
	result := make([]HospitalSetting, 0, len(settings))
	for i := range settings {
		result = append(result, NewHospitalSetting(&settings[i]))
	}
	return result
}
