package endpoints

import (
	"context"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/core/directory"
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
	"golang.org/x/sync/errgroup"
)

type endpointUsecase struct {
	EndpointRepository        contracts.EndpointRepository
	HospitalSettingRepository contracts.HospitalSettingRepository
	UserRepository            contracts.UserRepository
	FhirValidator             contracts.FhirValidator
	AuditSink                 contracts.AuditSink
	Cipher                    *utils.SecretCipher
	DefaultSamplePatientID    string
	DefaultTimeout            time.Duration
	ValidateAllConcurrency    int
	Log                       *zap.Logger
	Now                       func() time.Time
}

var (
	endpointUsecaseInstance contracts.EndpointRegistry
	onceEndpointUsecase     sync.Once
)

// NewEndpointUsecase returns the registry. It also serves as the
// EndpointResolver used by the approval gateway.
func NewEndpointUsecase(
	endpointRepository contracts.EndpointRepository,
	hospitalSettingRepository contracts.HospitalSettingRepository,
	userRepository contracts.UserRepository,
	fhirValidator contracts.FhirValidator,
	auditSink contracts.AuditSink,
	cipher *utils.SecretCipher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.EndpointRegistry {
	onceEndpointUsecase.Do(func() {
		endpointUsecaseInstance = newEndpointUsecase(
			endpointRepository,
			hospitalSettingRepository,
			userRepository,
			fhirValidator,
			auditSink,
			cipher,
			internalConfig.FHIR.DefaultSamplePatientID,
			time.Duration(internalConfig.FHIR.OutboundTimeoutInSeconds)*time.Second,
			internalConfig.FHIR.ValidateAllConcurrency,
			logger,
		)
	})
	return endpointUsecaseInstance
}

func newEndpointUsecase(
	endpointRepository contracts.EndpointRepository,
	hospitalSettingRepository contracts.HospitalSettingRepository,
	userRepository contracts.UserRepository,
	fhirValidator contracts.FhirValidator,
	auditSink contracts.AuditSink,
	cipher *utils.SecretCipher,
	defaultSamplePatientID string,
	defaultTimeout time.Duration,
	concurrency int,
	logger *zap.Logger,
) *endpointUsecase {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &endpointUsecase{
		EndpointRepository:        endpointRepository,
		HospitalSettingRepository: hospitalSettingRepository,
		UserRepository:            userRepository,
		FhirValidator:             fhirValidator,
		AuditSink:                 auditSink,
		Cipher:                    cipher,
		DefaultSamplePatientID:    defaultSamplePatientID,
		DefaultTimeout:            defaultTimeout,
		ValidateAllConcurrency:    concurrency,
		Log:                       logger,
		Now:                       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *endpointUsecase) CreateEndpoint(ctx context.Context, request *requests.CreateEndpoint) (*responses.Endpoint, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.CreateEndpoint called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHospitalIDKey, request.HospitalID),
		zap.String(constvars.LoggingDataTypeKey, request.DataType),
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
	endpoint := &models.EndpointConfig{
		ID:                uuid.NewString(),
		HospitalID:        request.HospitalID,
		DataType:          models.DataType(request.DataType),
		URLTemplate:       strings.TrimSpace(request.URLTemplate),
		HTTPMethod:        httpMethodOrDefault(request.HTTPMethod),
		APIKeyCipher:      apiKeyCipher,
		BearerTokenCipher: bearerTokenCipher,
		Parameters:        toParameters(request.Parameters),
		AllowedRoles:      toRoles(request.AllowedRoles),
		SamplePatientID:   optionalString(request.SamplePatientID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.EndpointRepository.Create(ctx, endpoint); err != nil {
		uc.Log.Error("endpointUsecase.CreateEndpoint error storing endpoint",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	uc.audit(ctx, constvars.AuditActionCreateEndpoint, caller.ID, endpoint, true, "")

	response := responses.NewEndpoint(endpoint)
	uc.Log.Info("endpointUsecase.CreateEndpoint succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
	)
	return &response, nil
}

func (uc *endpointUsecase) UpdateEndpoint(ctx context.Context, request *requests.UpdateEndpoint) (*responses.Endpoint, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.UpdateEndpoint called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, request.EndpointID),
	)

	endpoint, caller, err := uc.findManaged(ctx, request.CallerUserID, request.EndpointID)
	if err != nil {
		return nil, err
	}

	if request.APIKey != nil {
		if endpoint.APIKeyCipher, err = uc.seal(*request.APIKey); err != nil {
			return nil, err
		}
	}
	if request.BearerToken != nil {
		if endpoint.BearerTokenCipher, err = uc.seal(*request.BearerToken); err != nil {
			return nil, err
		}
	}
	endpoint.URLTemplate = strings.TrimSpace(request.URLTemplate)
	endpoint.HTTPMethod = httpMethodOrDefault(request.HTTPMethod)
	endpoint.Parameters = toParameters(request.Parameters)
	endpoint.AllowedRoles = toRoles(request.AllowedRoles)
	endpoint.SamplePatientID = optionalString(request.SamplePatientID)
	endpoint.IsValid = nil
	endpoint.LastValidationError = nil
	endpoint.LastValidatedAt = nil
	endpoint.UpdatedAt = uc.Now()

	if err := uc.EndpointRepository.Update(ctx, endpoint); err != nil {
		return nil, err
	}
	uc.audit(ctx, constvars.AuditActionUpdateEndpoint, caller.ID, endpoint, true, "")

	response := responses.NewEndpoint(endpoint)
	uc.Log.Info("endpointUsecase.UpdateEndpoint succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
	)
	return &response, nil
}

// DeleteEndpoint removes the row for good. Hospital settings are only ever
// deactivated.
func (uc *endpointUsecase) DeleteEndpoint(ctx context.Context, callerID, endpointID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.DeleteEndpoint called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, endpointID),
	)

	endpoint, caller, err := uc.findManaged(ctx, callerID, endpointID)
	if err != nil {
		return err
	}
	if err := uc.EndpointRepository.Delete(ctx, endpoint.ID); err != nil {
		return err
	}
	uc.audit(ctx, constvars.AuditActionDeleteEndpoint, caller.ID, endpoint, true, "")

	uc.Log.Info("endpointUsecase.DeleteEndpoint succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, endpointID),
	)
	return nil
}

func (uc *endpointUsecase) FindEndpointByID(ctx context.Context, callerID, endpointID string) (*responses.Endpoint, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.FindEndpointByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, endpointID),
	)

	endpoint, _, err := uc.findManaged(ctx, callerID, endpointID)
	if err != nil {
		return nil, err
	}
	response := responses.NewEndpoint(endpoint)
	return &response, nil
}

func (uc *endpointUsecase) FindEndpointsByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.Endpoint, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.FindEndpointsByHospital called",
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

	endpoints, err := uc.EndpointRepository.FindByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("endpointUsecase.FindEndpointsByHospital succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(endpoints)),
	)
	return responses.NewEndpoints(endpoints), nil
}

func (uc *endpointUsecase) ValidateEndpoint(ctx context.Context, callerID, endpointID string) (*responses.EndpointValidation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.ValidateEndpoint called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEndpointIDKey, endpointID),
	)

	endpoint, caller, err := uc.findManaged(ctx, callerID, endpointID)
	if err != nil {
		return nil, err
	}

	validation, err := uc.validate(ctx, caller.ID, endpoint)
	if err != nil {
		return nil, err
	}
	return &validation, nil
}

// ValidateAllEndpoints probes every endpoint of a hospital concurrently.
// Each result is stored on its own; one failure never hides the others.
func (uc *endpointUsecase) ValidateAllEndpoints(ctx context.Context, callerID, hospitalID string) ([]responses.EndpointValidation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.ValidateAllEndpoints called",
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

	endpoints, err := uc.EndpointRepository.FindByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	results := make([]responses.EndpointValidation, len(endpoints))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.ValidateAllConcurrency)
	for i := range endpoints {
		i := i
		group.Go(func() error {
			validation, err := uc.validate(groupCtx, caller.ID, &endpoints[i])
			if err != nil {
				message := err.Error()
				validation = responses.EndpointValidation{
					EndpointID:   endpoints[i].ID,
					DataType:     string(endpoints[i].DataType),
					IsValid:      false,
					ErrorMessage: &message,
					ValidatedAt:  uc.Now(),
				}
			}
			results[i] = validation
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	valid := 0
	for _, result := range results {
		if result.IsValid {
			valid++
		}
	}
	uc.Log.Info("endpointUsecase.ValidateAllEndpoints succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(results)),
		zap.Int("valid", valid),
	)
	return results, nil
}

// ResolveURL picks the per data type endpoint when one exists and falls back
// to the hospital's active setting. It returns nil when neither exists.
func (uc *endpointUsecase) ResolveURL(ctx context.Context, hospitalID string, dataType models.DataType, patientID string) (*models.FhirTarget, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("endpointUsecase.ResolveURL called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHospitalIDKey, hospitalID),
		zap.String(constvars.LoggingDataTypeKey, string(dataType)),
	)

	endpoint, err := uc.EndpointRepository.FindByHospitalAndDataType(ctx, hospitalID, dataType)
	if err != nil {
		return nil, err
	}
	if endpoint != nil {
		target, err := uc.targetFor(endpoint, ResolveProductionURL(endpoint.URLTemplate, patientID))
		if err != nil {
			return nil, err
		}
		uc.Log.Info("endpointUsecase.ResolveURL resolved data type endpoint",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
		)
		return target, nil
	}

	setting, err := uc.HospitalSettingRepository.FindActiveByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		uc.Log.Warn("endpointUsecase.ResolveURL nothing configured",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHospitalIDKey, hospitalID),
			zap.String(constvars.LoggingDataTypeKey, string(dataType)),
		)
		return nil, nil
	}

	target, err := SettingTarget(uc.Cipher, setting, PatientEverythingURL(setting.FhirBaseURL, patientID))
	if err != nil {
		return nil, err
	}
	uc.Log.Info("endpointUsecase.ResolveURL resolved hospital setting fallback",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSettingIDKey, setting.ID),
	)
	return target, nil
}

// validate runs the pre-flight probe for one endpoint and stores the outcome.
func (uc *endpointUsecase) validate(ctx context.Context, callerID string, endpoint *models.EndpointConfig) (responses.EndpointValidation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	samplePatientID := uc.DefaultSamplePatientID
	if endpoint.SamplePatientID != nil && *endpoint.SamplePatientID != "" {
		samplePatientID = *endpoint.SamplePatientID
	}
	target, err := uc.targetFor(endpoint, ResolvePreflightURL(endpoint.URLTemplate, endpoint.Parameters, samplePatientID))
	if err != nil {
		return responses.EndpointValidation{}, err
	}

	result := uc.FhirValidator.Validate(ctx, target)
	if err := uc.EndpointRepository.UpdateValidation(ctx, endpoint.ID, result); err != nil {
		uc.Log.Error("endpointUsecase.validate error storing validation result",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
			zap.Error(err),
		)
		return responses.EndpointValidation{}, err
	}

	errorMessage := ""
	if result.ErrorMessage != nil {
		errorMessage = *result.ErrorMessage
	}
	uc.audit(ctx, constvars.AuditActionValidateEndpoint, callerID, endpoint, result.IsValid, errorMessage)
	utils.LogBusinessEvent(uc.Log, "endpoint_validated", requestID,
		zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
		zap.Bool("valid", result.IsValid),
		zap.Int64(constvars.LoggingLatencyMsKey, result.LatencyMs),
	)
	return responses.NewEndpointValidation(endpoint.ID, endpoint.DataType, result), nil
}

func (uc *endpointUsecase) targetFor(endpoint *models.EndpointConfig, resolvedURL string) (*models.FhirTarget, error) {
	apiKey, err := open(uc.Cipher, endpoint.APIKeyCipher)
	if err != nil {
		return nil, err
	}
	bearerToken, err := open(uc.Cipher, endpoint.BearerTokenCipher)
	if err != nil {
		return nil, err
	}
	return &models.FhirTarget{
		URL:          resolvedURL,
		HTTPMethod:   httpMethodOrDefault(endpoint.HTTPMethod),
		APIKey:       apiKey,
		BearerToken:  bearerToken,
		Timeout:      uc.DefaultTimeout,
		EndpointID:   endpoint.ID,
		AllowedRoles: endpoint.AllowedRoles,
	}, nil
}

// findManaged loads an endpoint the caller administers.
func (uc *endpointUsecase) findManaged(ctx context.Context, callerID, endpointID string) (*models.EndpointConfig, *models.User, error) {
	endpoint, err := uc.EndpointRepository.FindByID(ctx, endpointID)
	if err != nil {
		return nil, nil, err
	}
	if endpoint == nil {
		return nil, nil, exceptions.ErrEndpointNotFound(nil)
	}
	caller, err := directory.RequireHospitalManager(ctx, uc.UserRepository, callerID, endpoint.HospitalID)
	if err != nil {
		return nil, nil, err
	}
	return endpoint, caller, nil
}

func (uc *endpointUsecase) seal(secret string) (*string, error) {
	if secret == "" {
		return nil, nil
	}
	sealed, err := uc.Cipher.Encrypt(secret)
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}

func (uc *endpointUsecase) audit(ctx context.Context, action, actorID string, endpoint *models.EndpointConfig, success bool, errorMessage string) {
	outcome := constvars.AuditOutcomeSuccess
	if !success {
		outcome = constvars.AuditOutcomeFailure
	}
	audit.Record(ctx, uc.AuditSink, uc.Log, &models.AuditLogEntry{
		Action:       action,
		ActorUserID:  actorID,
		EntityType:   constvars.AuditEntityEndpointConfig,
		EntityID:     endpoint.ID,
		HospitalID:   endpoint.HospitalID,
		Success:      success,
		Outcome:      outcome,
		ErrorMessage: errorMessage,
	})
}

// SettingTarget builds the outbound call for a hospital setting.
func SettingTarget(cipher *utils.SecretCipher, setting *models.HospitalSetting, resolvedURL string) (*models.FhirTarget, error) {
	apiKey, err := open(cipher, setting.APIKeyCipher)
	if err != nil {
		return nil, err
	}
	bearerToken, err := open(cipher, setting.BearerTokenCipher)
	if err != nil {
		return nil, err
	}
	return &models.FhirTarget{
		URL:                 resolvedURL,
		HTTPMethod:          httpMethodOrDefault(setting.HTTPMethod),
		APIKey:              apiKey,
		BearerToken:         bearerToken,
		Timeout:             time.Duration(setting.TimeoutSeconds) * time.Second,
		SettingID:           setting.ID,
		IsPatientEverything: true,
	}, nil
}

func open(cipher *utils.SecretCipher, sealed *string) (string, error) {
	if sealed == nil || *sealed == "" {
		return "", nil
	}
	return cipher.Decrypt(*sealed)
}

func httpMethodOrDefault(method string) string {
	if method == "" {
		return constvars.MethodGet
	}
	return strings.ToUpper(method)
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func toParameters(parameters []requests.EndpointParameter) []models.EndpointParameter {
	out := make([]models.EndpointParameter, 0, len(parameters))
	for _, parameter := range parameters {
		out = append(out, models.EndpointParameter{
			Name:         parameter.Name,
			Placeholder:  normalizePlaceholder(parameter.Placeholder),
			ExampleValue: parameter.ExampleValue,
		})
	}
	return out
}

func toRoles(roles []string) []models.Role {
	out := make([]models.Role, 0, len(roles))
	for _, role := range roles {
		out = append(out, models.Role(role))
	}
	return out
}
