package datarequests

import (
	"context"
	"fmt"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/core/directory"
	"medbridge-service/internal/app/services/shared/audit"
	"medbridge-service/internal/app/services/shared/notification"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/dto/responses"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/metrics"
	"medbridge-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type dataRequestUsecase struct {
	DataRequestRepository contracts.DataRequestRepository
	UserRepository        contracts.UserRepository
	PatientRepository     contracts.PatientRepository
	ConsentRepository     contracts.ConsentRepository
	FhirSynthesizer       contracts.FhirSynthesizer
	Dispatcher            contracts.NotificationDispatcher
	AuditSink             contracts.AuditSink
	RedisRepository       contracts.RedisRepository
	Metrics               *metrics.Metrics
	DedupWindow           time.Duration
	Log                   *zap.Logger
	Now                   func() time.Time
}

var (
	dataRequestUsecaseInstance contracts.DataRequestUsecase
	onceDataRequestUsecase     sync.Once
)

func NewDataRequestUsecase(
	dataRequestRepository contracts.DataRequestRepository,
	userRepository contracts.UserRepository,
	patientRepository contracts.PatientRepository,
	consentRepository contracts.ConsentRepository,
	fhirSynthesizer contracts.FhirSynthesizer,
	dispatcher contracts.NotificationDispatcher,
	auditSink contracts.AuditSink,
	redisRepository contracts.RedisRepository,
	m *metrics.Metrics,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.DataRequestUsecase {
	onceDataRequestUsecase.Do(func() {
		dataRequestUsecaseInstance = &dataRequestUsecase{
			DataRequestRepository: dataRequestRepository,
			UserRepository:        userRepository,
			PatientRepository:     patientRepository,
			ConsentRepository:     consentRepository,
			FhirSynthesizer:       fhirSynthesizer,
			Dispatcher:            dispatcher,
			AuditSink:             auditSink,
			RedisRepository:       redisRepository,
			Metrics:               m,
			DedupWindow:           time.Duration(internalConfig.DataRequest.DedupWindowInSeconds) * time.Second,
			Log:                   logger,
			Now:                   func() time.Time { return time.Now().UTC() },
		}
	})
	return dataRequestUsecaseInstance
}

func (uc *dataRequestUsecase) SubmitRequest(ctx context.Context, request *requests.SubmitDataRequest) (*responses.DataRequestResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("dataRequestUsecase.SubmitRequest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, request.RequesterUserID),
		zap.String(constvars.LoggingDataTypeKey, request.DataType),
	)

	start := uc.Now()
	dataType := models.DataType(request.DataType)

	requester, err := uc.UserRepository.FindByID(ctx, request.RequesterUserID)
	if err != nil {
		uc.Log.Error("dataRequestUsecase.SubmitRequest error finding requester",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if requester == nil || !requester.IsActive {
		return uc.reject(ctx, request, "", exceptions.CodeInvalidUser, constvars.ReasonInvalidUser, start), nil
	}

	patient, err := uc.PatientRepository.FindByExternalID(ctx, request.PatientID)
	if err != nil {
		uc.Log.Error("dataRequestUsecase.SubmitRequest error finding patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if patient == nil {
		return uc.reject(ctx, request, requester.HospitalID, exceptions.CodePatientNotFound, constvars.ReasonPatientNotFound, start), nil
	}

	dataRequestID := uuid.NewString()
	dedupKey := fmt.Sprintf(constvars.RedisKeyDataRequestDedupFormat, requester.ID, patient.ID, dataType)
	claimed, holderID, existing := uc.claimSubmission(ctx, dedupKey, dataRequestID)
	if existing != nil {
		uc.Log.Info("dataRequestUsecase.SubmitRequest duplicate submission, returning existing request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, existing.ID),
		)
		return responses.NewDataRequestResult(existing), nil
	}
	if holderID != "" {
		uc.Log.Info("dataRequestUsecase.SubmitRequest duplicate submission still in flight",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, holderID),
		)
		return &responses.DataRequestResult{
			Success:                true,
			RequestID:              holderID,
			Status:                 models.RequestStatusPending,
			IsCrossHospitalRequest: requester.HospitalID != patient.HospitalID,
			Message:                constvars.SubmitDataRequestInFlightMessage,
		}, nil
	}

	dataRequest := &models.DataRequest{
		ID:                     dataRequestID,
		RequestingUserID:       requester.ID,
		RequestingHospitalID:   requester.HospitalID,
		PatientID:              patient.ID,
		PatientHospitalID:      patient.HospitalID,
		DataType:               dataType,
		Purpose:                request.Purpose,
		IsCrossHospitalRequest: requester.HospitalID != patient.HospitalID,
		IsRoleAuthorized:       models.CanRequest(requester.Role, dataType),
		Status:                 models.RequestStatusPending,
		RequestDate:            start,
		UpdatedAt:              start,
	}
	if !dataRequest.IsCrossHospitalRequest {
		dataRequest.IsConsentValid = uc.hasConsent(ctx, patient.ID, requester, dataType, start)
	}

	switch {
	case !dataRequest.IsRoleAuthorized:
		now := uc.Now()
		dataRequest.FailWith(exceptions.CodeInsufficientRole, constvars.ReasonInsufficientRole, now, now.Sub(start).Milliseconds())
		utils.LogSecurityEvent(uc.Log, "data_request_role_denied", requestID, "medium",
			zap.String(constvars.LoggingUserIDKey, requester.ID),
			zap.String("role", string(requester.Role)),
			zap.String(constvars.LoggingDataTypeKey, string(dataType)),
		)

	case dataRequest.IsCrossHospitalRequest:
		// Stays Pending until the patient's hospital resolves it.

	default:
		payload, err := uc.FhirSynthesizer.Synthesize(ctx, patient, dataType, dataRequest.ID)
		now := uc.Now()
		if err != nil {
			uc.Log.Error("dataRequestUsecase.SubmitRequest error synthesizing FHIR resource",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
				zap.Error(err),
			)
			dataRequest.FailWith(exceptions.CodeSerializationError, fmt.Sprintf(constvars.ReasonSerialization, err.Error()), now, now.Sub(start).Milliseconds())
		} else {
			dataRequest.Complete(payload, now, now.Sub(start).Milliseconds())
		}
	}

	if err := uc.DataRequestRepository.CreateDataRequest(ctx, dataRequest); err != nil {
		uc.Log.Error("dataRequestUsecase.SubmitRequest error persisting data request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
			zap.Error(err),
		)
		if claimed {
			uc.releaseSubmission(ctx, dedupKey)
		}
		return nil, err
	}

	uc.Metrics.RecordDataRequest(string(dataRequest.Status), dataRequest.IsCrossHospitalRequest)
	if dataRequest.Status == models.RequestStatusPending {
		uc.Dispatcher.Dispatch(ctx, notification.EventFor(dataRequest, dataRequest.PatientHospitalID))
	}
	uc.audit(ctx, dataRequest, start)

	utils.LogBusinessEvent(uc.Log, "data_request_submitted", requestID,
		zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
		zap.String(constvars.LoggingStatusKey, string(dataRequest.Status)),
		zap.Bool("cross_hospital", dataRequest.IsCrossHospitalRequest),
	)
	uc.Log.Info("dataRequestUsecase.SubmitRequest succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
		zap.String(constvars.LoggingStatusKey, string(dataRequest.Status)),
	)
	return responses.NewDataRequestResult(dataRequest), nil
}

func (uc *dataRequestUsecase) FindRequestByID(ctx context.Context, callerID, dataRequestID string) (*responses.DataRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("dataRequestUsecase.FindRequestByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, dataRequestID),
	)

	caller, err := directory.RequireActiveUser(ctx, uc.UserRepository, callerID)
	if err != nil {
		return nil, err
	}

	dataRequest, err := uc.DataRequestRepository.FindByID(ctx, dataRequestID)
	if err != nil {
		return nil, err
	}
	if dataRequest == nil {
		return nil, exceptions.ErrDataRequestNotFound(nil)
	}
	if caller.HospitalID != dataRequest.RequestingHospitalID && caller.HospitalID != dataRequest.PatientHospitalID {
		utils.LogSecurityEvent(uc.Log, "data_request_read_forbidden", requestID, "low",
			zap.String(constvars.LoggingUserIDKey, caller.ID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequestID),
		)
		return nil, exceptions.ErrCallerNotPermitted(nil)
	}

	response := responses.NewDataRequest(dataRequest)
	uc.Log.Info("dataRequestUsecase.FindRequestByID succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingStatusKey, string(dataRequest.Status)),
	)
	return &response, nil
}

func (uc *dataRequestUsecase) FindPendingByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.DataRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("dataRequestUsecase.FindPendingByHospital called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHospitalIDKey, hospitalID),
	)

	caller, err := directory.RequireActiveUser(ctx, uc.UserRepository, callerID)
	if err != nil {
		return nil, err
	}
	if hospitalID == "" {
		hospitalID = caller.HospitalID
	}
	if caller.HospitalID != hospitalID {
		return nil, exceptions.ErrCallerNotPermitted(nil)
	}

	pending, err := uc.DataRequestRepository.FindPendingByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("dataRequestUsecase.FindPendingByHospital succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(pending)),
	)
	return responses.NewDataRequests(pending), nil
}

func (uc *dataRequestUsecase) FindHistoryByUser(ctx context.Context, callerID, userID string) ([]responses.DataRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("dataRequestUsecase.FindHistoryByUser called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	caller, err := directory.RequireActiveUser(ctx, uc.UserRepository, callerID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID {
		target, err := uc.UserRepository.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if caller.Role != models.RoleHospitalManager || target == nil || target.HospitalID != caller.HospitalID {
			return nil, exceptions.ErrCallerNotPermitted(nil)
		}
	}

	history, err := uc.DataRequestRepository.FindHistoryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("dataRequestUsecase.FindHistoryByUser succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(history)),
	)
	return responses.NewDataRequests(history), nil
}

// claimSubmission reserves the dedup key for dataRequestID. When another
// submission already holds the key, its id is returned together with its
// stored request; the request is nil while the holder has not persisted it
// yet. Redis failures never block a submission.
func (uc *dataRequestUsecase) claimSubmission(ctx context.Context, key, dataRequestID string) (bool, string, *models.DataRequest) {
	if uc.DedupWindow <= 0 || uc.RedisRepository == nil {
		return false, "", nil
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	claimed, err := uc.RedisRepository.TrySetNX(ctx, key, dataRequestID, uc.DedupWindow)
	if err != nil {
		uc.Log.Warn("dataRequestUsecase.claimSubmission redis unavailable, skipping dedup",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return false, "", nil
	}
	if claimed {
		return true, "", nil
	}

	// An empty holder means the key expired between the two calls.
	holderID, err := uc.RedisRepository.Get(ctx, key)
	if err != nil || holderID == "" {
		return false, "", nil
	}
	existing, err := uc.DataRequestRepository.FindByID(ctx, holderID)
	if err != nil {
		uc.Log.Warn("dataRequestUsecase.claimSubmission error loading existing request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, holderID),
			zap.Error(err),
		)
		return false, holderID, nil
	}
	return false, holderID, existing
}

func (uc *dataRequestUsecase) releaseSubmission(ctx context.Context, key string) {
	if err := uc.RedisRepository.Delete(ctx, key); err != nil {
		uc.Log.Warn("dataRequestUsecase.releaseSubmission error deleting dedup key",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
	}
}

// hasConsent records whether a same-hospital request is backed by consent.
// It does not gate the request, so lookup failures count as no consent.
func (uc *dataRequestUsecase) hasConsent(ctx context.Context, patientID string, requester *models.User, dataType models.DataType, at time.Time) bool {
	consent, err := uc.ConsentRepository.FindLatest(ctx, patientID, requester.ID, requester.HospitalID, dataType)
	if err != nil {
		uc.Log.Warn("dataRequestUsecase.hasConsent error finding consent",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingPatientIDKey, patientID),
			zap.Error(err),
		)
		return false
	}
	return consent.IsValidAt(at)
}

// reject answers a submission that could not be tied to a requester and
// patient. Nothing is persisted.
func (uc *dataRequestUsecase) reject(ctx context.Context, request *requests.SubmitDataRequest, hospitalID string, code exceptions.ErrorCode, reason string, start time.Time) *responses.DataRequestResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Warn("dataRequestUsecase.SubmitRequest rejected",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingErrorCodeKey, string(code)),
		zap.String(constvars.LoggingUserIDKey, request.RequesterUserID),
	)

	audit.Record(ctx, uc.AuditSink, uc.Log, &models.AuditLogEntry{
		Action:       constvars.AuditActionSubmitDataRequest,
		ActorUserID:  request.RequesterUserID,
		EntityType:   constvars.AuditEntityDataRequest,
		EntityID:     request.PatientID,
		HospitalID:   hospitalID,
		Success:      false,
		Outcome:      string(code),
		LatencyMs:    uc.Now().Sub(start).Milliseconds(),
		ErrorMessage: reason,
	})
	return responses.NewRejectedResult(string(code), reason)
}

func (uc *dataRequestUsecase) audit(ctx context.Context, dataRequest *models.DataRequest, start time.Time) {
	entry := &models.AuditLogEntry{
		Action:      constvars.AuditActionSubmitDataRequest,
		ActorUserID: dataRequest.RequestingUserID,
		EntityType:  constvars.AuditEntityDataRequest,
		EntityID:    dataRequest.ID,
		HospitalID:  dataRequest.RequestingHospitalID,
		Success:     dataRequest.Status == models.RequestStatusCompleted || dataRequest.Status == models.RequestStatusPending,
		Outcome:     string(dataRequest.Status),
		LatencyMs:   uc.Now().Sub(start).Milliseconds(),
	}
	if dataRequest.DenialReason != nil {
		entry.ErrorMessage = *dataRequest.DenialReason
	}
	audit.Record(ctx, uc.AuditSink, uc.Log, entry)
}
