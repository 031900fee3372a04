package controllers

import (
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/utils"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

type DataRequestController struct {
	Log                *zap.Logger
	DataRequestUsecase contracts.DataRequestUsecase
	ApprovalUsecase    contracts.ApprovalUsecase
	RequestTimeout     time.Duration
}

var (
	dataRequestControllerInstance *DataRequestController
	onceDataRequestController     sync.Once
)

// NewDataRequestController takes the approval timeout because approving a
// request waits on the remote FHIR call.
func NewDataRequestController(logger *zap.Logger, dataRequestUsecase contracts.DataRequestUsecase, approvalUsecase contracts.ApprovalUsecase, requestTimeout time.Duration) *DataRequestController {
	onceDataRequestController.Do(func() {
		instance := &DataRequestController{
			Log:                logger,
			DataRequestUsecase: dataRequestUsecase,
			ApprovalUsecase:    approvalUsecase,
			RequestTimeout:     requestTimeout,
		}
		dataRequestControllerInstance = instance
	})
	return dataRequestControllerInstance
}

func (ctrl *DataRequestController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	request := new(requests.SubmitDataRequest)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.RequesterUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	result, err := ctrl.DataRequestUsecase.SubmitRequest(ctx, request)
	if err != nil {
		ctrl.Log.Error("Failed to submit data request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "usecase error"),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("Data request submitted",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, result.RequestID),
		zap.String(constvars.LoggingStatusKey, string(result.Status)),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildDataRequestResponse(w, constvars.SubmitDataRequestSuccessMessage, result)
}

func (ctrl *DataRequestController) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	dataRequestID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	request := new(requests.ResolveDataRequest)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.RequestID = dataRequestID
	request.ApproverUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	result, err := ctrl.ApprovalUsecase.ResolveRequest(ctx, request)
	if err != nil {
		ctrl.Log.Error("Failed to resolve data request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequestID),
			zap.String(constvars.LoggingErrorTypeKey, "usecase error"),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("Data request resolved",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDataRequestIDKey, dataRequestID),
		zap.String(constvars.LoggingStatusKey, string(result.Status)),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildDataRequestResponse(w, constvars.ResolveDataRequestSuccessMessage, result)
}

func (ctrl *DataRequestController) FindRequestByID(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	dataRequestID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.DataRequestUsecase.FindRequestByID(ctx, callerID, dataRequestID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetDataRequestSuccessMessage, response)
}

func (ctrl *DataRequestController) FindPendingByHospital(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	hospitalID := r.URL.Query().Get(constvars.URLQueryParamHospitalID)
	response, err := ctrl.DataRequestUsecase.FindPendingByHospital(ctx, callerID, hospitalID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPendingDataRequestsSuccessMessage, response)
}

func (ctrl *DataRequestController) FindHistoryByUser(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := r.URL.Query().Get(constvars.URLQueryParamUserID)
	response, err := ctrl.DataRequestUsecase.FindHistoryByUser(ctx, callerID, userID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetDataRequestHistorySuccessMessage, response)
}
