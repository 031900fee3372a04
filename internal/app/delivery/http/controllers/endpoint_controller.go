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

type EndpointController struct {
	Log             *zap.Logger
	EndpointUsecase contracts.EndpointUsecase
	ProbeTimeout    time.Duration
}

var (
	endpointControllerInstance *EndpointController
	onceEndpointController     sync.Once
)

func NewEndpointController(logger *zap.Logger, endpointUsecase contracts.EndpointUsecase, probeTimeout time.Duration) *EndpointController {
	onceEndpointController.Do(func() {
		instance := &EndpointController{
			Log:             logger,
			EndpointUsecase: endpointUsecase,
			ProbeTimeout:    probeTimeout,
		}
		endpointControllerInstance = instance
	})
	return endpointControllerInstance
}

func (ctrl *EndpointController) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	request := new(requests.CreateEndpoint)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.CallerUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.EndpointUsecase.CreateEndpoint(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "endpoint_created", requestID,
		zap.String(constvars.LoggingEndpointIDKey, response.ID),
		zap.String(constvars.LoggingHospitalIDKey, response.HospitalID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateEndpointSuccessMessage, response)
}

func (ctrl *EndpointController) UpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	endpointID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	request := new(requests.UpdateEndpoint)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.EndpointID = endpointID
	request.CallerUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.EndpointUsecase.UpdateEndpoint(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UpdateEndpointSuccessMessage, response)
}

func (ctrl *EndpointController) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	endpointID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := ctrl.EndpointUsecase.DeleteEndpoint(ctx, callerID, endpointID); err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.DeleteEndpointSuccessMessage, nil)
}

func (ctrl *EndpointController) FindEndpointByID(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	endpointID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.EndpointUsecase.FindEndpointByID(ctx, callerID, endpointID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetEndpointSuccessMessage, response)
}

func (ctrl *EndpointController) FindEndpointsByHospital(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	hospitalID := r.URL.Query().Get(constvars.URLQueryParamHospitalID)
	response, err := ctrl.EndpointUsecase.FindEndpointsByHospital(ctx, callerID, hospitalID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetEndpointsSuccessMessage, response)
}

func (ctrl *EndpointController) ValidateEndpoint(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	endpointID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.ProbeTimeout)
	defer cancel()

	response, err := ctrl.EndpointUsecase.ValidateEndpoint(ctx, callerID, endpointID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ValidateEndpointSuccessMessage, response)
}

func (ctrl *EndpointController) ValidateAllEndpoints(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	hospitalID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamHospitalID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.ProbeTimeout)
	defer cancel()

	response, err := ctrl.EndpointUsecase.ValidateAllEndpoints(ctx, callerID, hospitalID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ValidateAllEndpointsSuccessMessage, response)
}
