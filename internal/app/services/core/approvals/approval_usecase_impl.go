package approvals

import (
	"context"
	"fmt"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/fhir_spark/remote"
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

	"go.uber.org/zap"
)

type approvalUsecase struct {
	DataRequestRepository contracts.DataRequestRepository
	UserRepository        contracts.UserRepository
	PatientRepository     contracts.PatientRepository
	ConsentRepository     contracts.ConsentRepository
	EndpointResolver      contracts.EndpointResolver
	RemoteClient          contracts.FhirRemoteClient
	FhirValidator         contracts.FhirValidator
	Dispatcher            contracts.NotificationDispatcher
	Archive               contracts.ResponseArchive
	AuditSink             contracts.AuditSink
	Metrics               *metrics.Metrics
	DefaultTimeout        time.Duration
	Log                   *zap.Logger
	Now                   func() time.Time
}

var (
	approvalUsecaseInstance contracts.ApprovalUsecase
	onceApprovalUsecase     sync.Once
)

func NewApprovalUsecase(
	dataRequestRepository contracts.DataRequestRepository,
	userRepository contracts.UserRepository,
	patientRepository contracts.PatientRepository,
	consentRepository contracts.ConsentRepository,
	endpointResolver contracts.EndpointResolver,
	remoteClient contracts.FhirRemoteClient,
	fhirValidator contracts.FhirValidator,
	dispatcher contracts.NotificationDispatcher,
	archive contracts.ResponseArchive,
	auditSink contracts.AuditSink,
	m *metrics.Metrics,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ApprovalUsecase {
	onceApprovalUsecase.Do(func() {
		approvalUsecaseInstance = &approvalUsecase{
			DataRequestRepository: dataRequestRepository,
			UserRepository:        userRepository,
			PatientRepository:     patientRepository,
			ConsentRepository:     consentRepository,
			EndpointResolver:      endpointResolver,
			RemoteClient:          remoteClient,
			FhirValidator:         fhirValidator,
			Dispatcher:            dispatcher,
			Archive:               archive,
			AuditSink:             auditSink,
			Metrics:               m,
			DefaultTimeout:        time.Duration(internalConfig.FHIR.OutboundTimeoutInSeconds) * time.Second,
			Log:                   logger,
			Now:                   func() time.Time { return time.Now().UTC() },
		}
	})
	return approvalUsecaseInstance
}

func (uc *approvalUsecase) ResolveRequest(ctx context.Context, request *requests.ResolveDataRequest) (*responses.DataRequestResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("approvalUsecase.ResolveRequest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, request.RequestID),
		zap.String(constvars.LoggingUserIDKey, request.ApproverUserID),
	)

	start := uc.Now()

	dataRequest, err := uc.DataRequestRepository.FindByID(ctx, request.RequestID)
	if err != nil {
		uc.Log.Error("approvalUsecase.ResolveRequest error finding data request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if dataRequest == nil {
		return uc.reject(ctx, request, "", exceptions.CodeRequestNotFound, constvars.ReasonRequestNotFound, start), nil
	}
	if dataRequest.Status != models.RequestStatusPending {
		return uc.reject(ctx, request, dataRequest.PatientHospitalID, exceptions.CodeRequestAlreadyResolved, constvars.ReasonAlreadyResolved, start), nil
	}

	approver, err := uc.UserRepository.FindByID(ctx, request.ApproverUserID)
	if err != nil {
		uc.Log.Error("approvalUsecase.ResolveRequest error finding approver",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if approver == nil || !approver.IsActive || approver.HospitalID != dataRequest.PatientHospitalID {
		utils.LogSecurityEvent(uc.Log, "data_request_unauthorized_approver", requestID, "high",
			zap.String(constvars.LoggingUserIDKey, request.ApproverUserID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
			zap.String(constvars.LoggingHospitalIDKey, dataRequest.PatientHospitalID),
		)
		return uc.reject(ctx, request, dataRequest.PatientHospitalID, exceptions.CodeUnauthorizedApprover, constvars.ReasonUnauthorizedApprover, start), nil
	}

	approvedAt := uc.Now()
	dataRequest.ApprovingUserID = &approver.ID
	dataRequest.ApprovalDate = &approvedAt

	var payload []byte
	if request.IsApproved != nil && *request.IsApproved {
		payload, err = uc.approve(ctx, dataRequest, start)
		if err != nil {
			return nil, err
		}
	} else {
		reason := request.Reason
		if reason == "" {
			reason = constvars.ReasonDeniedByApprover
		}
		now := uc.Now()
		dataRequest.Fail(models.RequestStatusDenied, "", reason, now, now.Sub(start).Milliseconds())
	}

	won, err := uc.DataRequestRepository.FinalizePending(ctx, dataRequest)
	if err != nil {
		uc.Log.Error("approvalUsecase.ResolveRequest error finalizing data request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
			zap.Error(err),
		)
		return nil, err
	}
	if !won {
		uc.Log.Warn("approvalUsecase.ResolveRequest lost finalize race",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
		)
		return uc.reject(ctx, request, dataRequest.PatientHospitalID, exceptions.CodeRequestAlreadyResolved, constvars.ReasonAlreadyResolved, start), nil
	}

	uc.Metrics.RecordDataRequest(string(dataRequest.Status), dataRequest.IsCrossHospitalRequest)
	uc.Dispatcher.Dispatch(ctx, notification.EventFor(dataRequest, dataRequest.RequestingHospitalID))
	if dataRequest.Status == models.RequestStatusCompleted {
		uc.archive(ctx, dataRequest.ID, payload)
	}
	uc.audit(ctx, dataRequest, approver.ID, start)

	utils.LogBusinessEvent(uc.Log, "data_request_resolved", requestID,
		zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
		zap.String(constvars.LoggingStatusKey, string(dataRequest.Status)),
		zap.Bool("approved", request.IsApproved != nil && *request.IsApproved),
	)
	uc.Log.Info("approvalUsecase.ResolveRequest succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
		zap.String(constvars.LoggingStatusKey, string(dataRequest.Status)),
	)
	return responses.NewDataRequestResult(dataRequest), nil
}

// approve moves dataRequest to its terminal state in memory. The returned
// payload is the raw remote body when the request completed. Only store
// faults come back as errors.
func (uc *approvalUsecase) approve(ctx context.Context, dataRequest *models.DataRequest, start time.Time) ([]byte, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	fail := func(code exceptions.ErrorCode, reason string) {
		now := uc.Now()
		dataRequest.FailWith(code, reason, now, now.Sub(start).Milliseconds())
		uc.Log.Warn("approvalUsecase.approve data request failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequest.ID),
			zap.String(constvars.LoggingErrorCodeKey, string(code)),
			zap.String(constvars.LoggingErrorMessageKey, reason),
		)
	}

	requester, err := uc.UserRepository.FindByID(ctx, dataRequest.RequestingUserID)
	if err != nil {
		return nil, err
	}
	if requester == nil || !requester.IsActive {
		fail(exceptions.CodeInvalidUser, constvars.ReasonInvalidUser)
		return nil, nil
	}

	consent, err := uc.ConsentRepository.FindLatest(ctx, dataRequest.PatientID, dataRequest.RequestingUserID, dataRequest.RequestingHospitalID, dataRequest.DataType)
	if err != nil {
		return nil, err
	}
	dataRequest.IsConsentValid = consent.IsValidAt(uc.Now())
	if !dataRequest.IsConsentValid {
		fail(exceptions.CodeConsentMissing, constvars.ReasonConsentMissing)
		return nil, nil
	}

	patient, err := uc.PatientRepository.FindByID(ctx, dataRequest.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		fail(exceptions.CodePatientNotFound, constvars.ReasonPatientNotFound)
		return nil, nil
	}

	target, err := uc.EndpointResolver.ResolveURL(ctx, dataRequest.PatientHospitalID, dataRequest.DataType, patient.ExternalID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		fail(exceptions.CodeEndpointNotConfigured,
			fmt.Sprintf(constvars.ReasonEndpointNotConfigured, dataRequest.PatientHospitalID, dataRequest.DataType))
		return nil, nil
	}
	if !target.AllowsRole(requester.Role) {
		fail(exceptions.CodeInsufficientRole, constvars.ReasonInsufficientRole)
		return nil, nil
	}

	if target.Timeout <= 0 {
		target.Timeout = uc.DefaultTimeout
	}
	resp, err := uc.RemoteClient.Fetch(ctx, target)
	if err != nil {
		cause := remote.Cause(err)
		if remote.IsTimeout(err) {
			cause = fmt.Sprintf("request timed out after %d seconds", int(target.Timeout.Seconds()))
		}
		fail(exceptions.CodeTransportError, fmt.Sprintf(constvars.ReasonTransport, cause))
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fail(exceptions.CodeUpstreamHttpError, fmt.Sprintf(constvars.ReasonUpstreamHTTP, resp.StatusCode, resp.Status))
		return nil, nil
	}

	if target.IsPatientEverything {
		err = uc.FhirValidator.ValidatePayload(resp.Body)
	} else {
		err = uc.FhirValidator.ValidateResource(resp.Body)
	}
	if err != nil {
		fail(exceptions.CodeMalformedFhirResponse, fmt.Sprintf(constvars.ReasonMalformedFhir, err.Error()))
		return nil, nil
	}

	now := uc.Now()
	dataRequest.Complete(resp.Body, now, now.Sub(start).Milliseconds())
	return resp.Body, nil
}

func (uc *approvalUsecase) archive(ctx context.Context, dataRequestID string, payload []byte) {
	if uc.Archive == nil || len(payload) == 0 {
		return
	}
	if err := uc.Archive.Archive(ctx, dataRequestID, payload); err != nil {
		uc.Log.Warn("approvalUsecase.archive error archiving response payload",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequestID),
			zap.Error(err),
		)
	}
}

// reject answers a resolve call that changed nothing.
func (uc *approvalUsecase) reject(ctx context.Context, request *requests.ResolveDataRequest, hospitalID string, code exceptions.ErrorCode, reason string, start time.Time) *responses.DataRequestResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Warn("approvalUsecase.ResolveRequest rejected",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, request.RequestID),
		zap.String(constvars.LoggingErrorCodeKey, string(code)),
	)

	audit.Record(ctx, uc.AuditSink, uc.Log, &models.AuditLogEntry{
		Action:       constvars.AuditActionResolveDataRequest,
		ActorUserID:  request.ApproverUserID,
		EntityType:   constvars.AuditEntityDataRequest,
		EntityID:     request.RequestID,
		HospitalID:   hospitalID,
		Success:      false,
		Outcome:      string(code),
		LatencyMs:    uc.Now().Sub(start).Milliseconds(),
		ErrorMessage: reason,
	})
	return responses.NewRejectedResult(string(code), reason)
}

func (uc *approvalUsecase) audit(ctx context.Context, dataRequest *models.DataRequest, approverID string, start time.Time) {
	entry := &models.AuditLogEntry{
		Action:      constvars.AuditActionResolveDataRequest,
		ActorUserID: approverID,
		EntityType:  constvars.AuditEntityDataRequest,
		EntityID:    dataRequest.ID,
		HospitalID:  dataRequest.PatientHospitalID,
		Success:     dataRequest.Status == models.RequestStatusCompleted,
		Outcome:     string(dataRequest.Status),
		LatencyMs:   uc.Now().Sub(start).Milliseconds(),
	}
	if dataRequest.DenialReason != nil {
		entry.ErrorMessage = *dataRequest.DenialReason
	}
	audit.Record(ctx, uc.AuditSink, uc.Log, entry)
}
