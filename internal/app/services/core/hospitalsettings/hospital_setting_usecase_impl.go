package hospitalsettings

import (
	"context"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/core/directory"
	"medbridge-service/internal/app/services/core/endpoints"
	"medbridge-service/internal/app/services/shared/audit"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/dto/responses"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type hospitalSettingUsecase struct {
	HospitalSettingRepository contracts.HospitalSettingRepository
	UserRepository            contracts.UserRepository
	FhirValidator             contracts.FhirValidator
	AuditSink                 contracts.AuditSink
	Cipher                    *utils.SecretCipher
	DefaultSamplePatientID    string
	DefaultTimeoutSeconds     int
	Log                       *zap.Logger
	Now                       func() time.Time
}

var (
	hospitalSettingUsecaseInstance contracts.HospitalSettingUsecase
	onceHospitalSettingUsecase     sync.Once
)

func NewHospitalSettingUsecase(
	hospitalSettingRepository contracts.HospitalSettingRepository,
	userRepository contracts.UserRepository,
	fhirValidator contracts.FhirValidator,
	auditSink contracts.AuditSink,
	cipher *utils.SecretCipher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.HospitalSettingUsecase {
	onceHospitalSettingUsecase.Do(func() {
		hospitalSettingUsecaseInstance = &hospitalSettingUsecase{
			HospitalSettingRepository: hospitalSettingRepository,
			UserRepository:            userRepository,
			FhirValidator:             fhirValidator,
			AuditSink:                 auditSink,
			Cipher:                    cipher,
			DefaultSamplePatientID:    internalConfig.FHIR.DefaultSamplePatientID,
			DefaultTimeoutSeconds:     internalConfig.FHIR.OutboundTimeoutInSeconds,
			Log:                       logger,
			Now:                       func() time.Time { return time.Now().UTC() },
		}
	})
	return hospitalSettingUsecaseInstance
}

func (uc *hospitalSettingUsecase) CreateSetting(ctx context.Context, request *requests.CreateHospitalSetting) (*responses.HospitalSetting, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("hospitalSettingUsecase.CreateSetting called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHospitalIDKey, request.HospitalID),
	)

	caller, err := directory.RequireHospitalManager(ctx, uc.UserRepository, request.CallerUserID, request.HospitalID)
	if err != nil {
		return nil, err
	}

	apiKeyCipher, err := uc.seal(request.APIKey)
	if err != nil {
		return nil, err
	}
	bearerTokenCipher, err := uc.seal(request.BearerToken)
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	setting := &models.HospitalSetting{
		ID:                uuid.NewString(),
		HospitalID:        request.HospitalID,
		Name:              strings.TrimSpace(request.Name),
		FhirBaseURL:       strings.TrimRight(strings.TrimSpace(request.FhirBaseURL), "/"),
		HTTPMethod:        httpMethodOrDefault(request.HTTPMethod),
		TimeoutSeconds:    uc.timeoutOrDefault(request.TimeoutSeconds),
		APIKeyCipher:      apiKeyCipher,
		BearerTokenCipher: bearerTokenCipher,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.HospitalSettingRepository.Create(ctx, setting); err != nil {
		uc.Log.Error("hospitalSettingUsecase.CreateSetting error storing setting",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	uc.audit(ctx, constvars.AuditActionCreateSetting, caller.ID, setting.ID, setting.HospitalID, true, "")

	response := responses.NewHospitalSetting(setting)
	uc.Log.Info("hospitalSettingUsecase.CreateSetting succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, setting.ID),
	)
	return &response, nil
}

func (uc *hospitalSettingUsecase) UpdateSetting(ctx context.Context, request *requests.UpdateHospitalSetting) (*responses.HospitalSetting, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("hospitalSettingUsecase.UpdateSetting called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, request.SettingID),
	)

	setting, caller, err := uc.findManaged(ctx, request.CallerUserID, request.SettingID)
	if err != nil {
		return nil, err
	}
	if !setting.IsActive {
		return nil, exceptions.ErrHospitalSettingNotFound(nil)
	}

	if request.APIKey != nil {
		if setting.APIKeyCipher, err = uc.seal(*request.APIKey); err != nil {
			return nil, err
		}
	}
	if request.BearerToken != nil {
		if setting.BearerTokenCipher, err = uc.seal(*request.BearerToken); err != nil {
			return nil, err
		}
	}
	setting.Name = strings.TrimSpace(request.Name)
	setting.FhirBaseURL = strings.TrimRight(strings.TrimSpace(request.FhirBaseURL), "/")
	setting.HTTPMethod = httpMethodOrDefault(request.HTTPMethod)
	setting.TimeoutSeconds = uc.timeoutOrDefault(request.TimeoutSeconds)
	setting.IsValid = nil
	setting.LastValidationError = nil
	setting.LastValidatedAt = nil
	setting.UpdatedAt = uc.Now()

	updated, err := uc.HospitalSettingRepository.Update(ctx, setting)
	if err != nil {
		return nil, err
	}
	if !updated {
		// deactivated between the read and the write
		return nil, exceptions.ErrHospitalSettingNotFound(nil)
	}
	uc.audit(ctx, constvars.AuditActionUpdateSetting, caller.ID, setting.ID, setting.HospitalID, true, "")

	response := responses.NewHospitalSetting(setting)
	uc.Log.Info("hospitalSettingUsecase.UpdateSetting succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, setting.ID),
	)
	return &response, nil
}

// DeactivateSetting is the only way to remove a setting; rows are kept.
func (uc *hospitalSettingUsecase) DeactivateSetting(ctx context.Context, callerID, settingID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("hospitalSettingUsecase.DeactivateSetting called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, settingID),
	)

	setting, caller, err := uc.findManaged(ctx, callerID, settingID)
	if err != nil {
		return err
	}

	deactivated, err := uc.HospitalSettingRepository.Deactivate(ctx, setting.ID, uc.Now())
	if err != nil {
		return err
	}
	if !deactivated {
		return exceptions.ErrHospitalSettingNotFound(nil)
	}
	uc.audit(ctx, constvars.AuditActionDeactivateSetting, caller.ID, setting.ID, setting.HospitalID, true, "")

	uc.Log.Info("hospitalSettingUsecase.DeactivateSetting succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, settingID),
	)
	return nil
}

func (uc *hospitalSettingUsecase) FindSettingsByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.HospitalSetting, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("hospitalSettingUsecase.FindSettingsByHospital called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHospitalIDKey, hospitalID),
	)

	caller, err := directory.RequireHospitalManager(ctx, uc.UserRepository, callerID, hospitalID)
	if err != nil {
		return nil, err
	}
	if hospitalID == "" {
		hospitalID = caller.HospitalID
	}

	settings, err := uc.HospitalSettingRepository.FindByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("hospitalSettingUsecase.FindSettingsByHospital succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(settings)),
	)
	return responses.NewHospitalSettings(settings), nil
}

// ValidateSetting probes the setting's Patient Everything URL with the
// sample patient id and caches the outcome on the row.
func (uc *hospitalSettingUsecase) ValidateSetting(ctx context.Context, callerID, settingID string) (*responses.EndpointValidation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("hospitalSettingUsecase.ValidateSetting called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, settingID),
	)

	setting, caller, err := uc.findManaged(ctx, callerID, settingID)
	if err != nil {
		return nil, err
	}

	target, err := endpoints.SettingTarget(uc.Cipher, setting, endpoints.PatientEverythingURL(setting.FhirBaseURL, uc.DefaultSamplePatientID))
	if err != nil {
		return nil, err
	}
	result := uc.FhirValidator.Validate(ctx, target)
	if err := uc.HospitalSettingRepository.UpdateValidation(ctx, setting.ID, result); err != nil {
		uc.Log.Error("hospitalSettingUsecase.ValidateSetting error storing validation result",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSettingIDKey, setting.ID),
			zap.Error(err),
		)
		return nil, err
	}
	uc.audit(ctx, constvars.AuditActionValidateSetting, caller.ID, setting.ID, setting.HospitalID, result.IsValid, errorMessageOf(result))

	validation := responses.NewEndpointValidation("", "", result)
	uc.Log.Info("hospitalSettingUsecase.ValidateSetting succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Bool("valid", result.IsValid),
	)
	return &validation, nil
}

// ValidateAdHocEndpoint probes a URL that is not stored anywhere. Any
// hospital manager may use it.
func (uc *hospitalSettingUsecase) ValidateAdHocEndpoint(ctx context.Context, request *requests.ValidateAdHocEndpoint) (*responses.EndpointValidation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("hospitalSettingUsecase.ValidateAdHocEndpoint called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataTypeKey, request.DataType),
	)

	caller, err := directory.RequireHospitalManager(ctx, uc.UserRepository, request.CallerUserID, "")
	if err != nil {
		return nil, err
	}

	samplePatientID := request.SamplePatientID
	if samplePatientID == "" {
		samplePatientID = uc.DefaultSamplePatientID
	}
	target := &models.FhirTarget{
		URL:         endpoints.ResolvePreflightURL(strings.TrimSpace(request.URL), nil, samplePatientID),
		HTTPMethod:  constvars.MethodGet,
		APIKey:      request.APIKey,
		BearerToken: request.BearerToken,
		Timeout:     time.Duration(uc.DefaultTimeoutSeconds) * time.Second,
	}

	result := uc.FhirValidator.Validate(ctx, target)
	uc.audit(ctx, constvars.AuditActionValidateAdHocTarget, caller.ID, "", caller.HospitalID, result.IsValid, errorMessageOf(result))

	validation := responses.NewEndpointValidation("", models.DataType(request.DataType), result)
	utils.LogBusinessEvent(uc.Log, "adhoc_endpoint_validated", requestID,
		zap.Bool("valid", result.IsValid),
		zap.Int64(constvars.LoggingLatencyMsKey, result.LatencyMs),
	)
	return &validation, nil
}

func (uc *hospitalSettingUsecase) findManaged(ctx context.Context, callerID, settingID string) (*models.HospitalSetting, *models.User, error) {
	setting, err := uc.HospitalSettingRepository.FindByID(ctx, settingID)
	if err != nil {
		return nil, nil, err
	}
	if setting == nil {
		return nil, nil, exceptions.ErrHospitalSettingNotFound(nil)
	}
	caller, err := directory.RequireHospitalManager(ctx, uc.UserRepository, callerID, setting.HospitalID)
	if err != nil {
		return nil, nil, err
	}
	return setting, caller, nil
}

func (uc *hospitalSettingUsecase) seal(secret string) (*string, error) {
	if secret == "" {
		return nil, nil
	}
	sealed, err := uc.Cipher.Encrypt(secret)
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}

func (uc *hospitalSettingUsecase) timeoutOrDefault(seconds int) int {
	if seconds > 0 {
		return seconds
	}
	return uc.DefaultTimeoutSeconds
}

func (uc *hospitalSettingUsecase) audit(ctx context.Context, action, actorID, settingID, hospitalID string, success bool, errorMessage string) {
	outcome := constvars.AuditOutcomeSuccess
	if !success {
		outcome = constvars.AuditOutcomeFailure
	}
	audit.Record(ctx, uc.AuditSink, uc.Log, &models.AuditLogEntry{
		Action:       action,
		ActorUserID:  actorID,
		EntityType:   constvars.AuditEntityHospitalSetting,
		EntityID:     settingID,
		HospitalID:   hospitalID,
		Success:      success,
		Outcome:      outcome,
		ErrorMessage: errorMessage,
	})
}

func httpMethodOrDefault(method string) string {
	if method == "" {
		return constvars.MethodGet
	}
	return strings.ToUpper(method)
}

func errorMessageOf(result *models.ValidationResult) string {
	if result.ErrorMessage == nil {
		return ""
	}
	return *result.ErrorMessage
}
