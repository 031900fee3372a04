package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/dto/responses"
	"time"
)

type HospitalSettingUsecase interface {
	CreateSetting(ctx context.Context, request *requests.CreateHospitalSetting) (*responses.HospitalSetting, error)
	UpdateSetting(ctx context.Context, request *requests.UpdateHospitalSetting) (*responses.HospitalSetting, error)
	DeactivateSetting(ctx context.Context, callerID, settingID string) error
	FindSettingsByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.HospitalSetting, error)
	ValidateSetting(ctx context.Context, callerID, settingID string) (*responses.EndpointValidation, error)
	ValidateAdHocEndpoint(ctx context.Context, request *requests.ValidateAdHocEndpoint) (*responses.EndpointValidation, error)
}

type HospitalSettingRepository interface {
	Create(ctx context.Context, setting *models.HospitalSetting) error
	// Update and Deactivate report false when no active row matched.
	Update(ctx context.Context, setting *models.HospitalSetting) (bool, error)
	Deactivate(ctx context.Context, settingID string, at time.Time) (bool, error)
	FindByID(ctx context.Context, settingID string) (*models.HospitalSetting, error)
	FindByHospital(ctx context.Context, hospitalID string) ([]models.HospitalSetting, error)
	FindActiveByHospital(ctx context.Context, hospitalID string) (*models.HospitalSetting, error)
	UpdateValidation(ctx context.Context, settingID string, result *models.ValidationResult) error
}
