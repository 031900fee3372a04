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

type HospitalSettingController struct {
	Log                    *zap.Logger
	HospitalSettingUsecase contracts.HospitalSettingUsecase
	ProbeTimeout           time.Duration
}

var (
	hospitalSettingControllerInstance *HospitalSettingController
	onceHospitalSettingController     sync.Once
)

func NewHospitalSettingController(logger *zap.Logger, hospitalSettingUsecase contracts.HospitalSettingUsecase, probeTimeout time.Duration) *HospitalSettingController {
	onceHospitalSettingController.Do(func() {
		instance := &HospitalSettingController{
			Log:                    logger,
			HospitalSettingUsecase: hospitalSettingUsecase,
			ProbeTimeout:           probeTimeout,
		}
		hospitalSettingControllerInstance = instance
	})
	return hospitalSettingControllerInstance
}

func (ctrl *HospitalSettingController) CreateSetting(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	request := new(requests.CreateHospitalSetting)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.CallerUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.HospitalSettingUsecase.CreateSetting(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateHospitalSettingSuccessMessage, response)
}

func (ctrl *HospitalSettingController) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	settingID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	request := new(requests.UpdateHospitalSetting)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.SettingID = settingID
	request.CallerUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.HospitalSettingUsecase.UpdateSetting(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UpdateHospitalSettingSuccessMessage, response)
}

func (ctrl *HospitalSettingController) DeactivateSetting(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	settingID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := ctrl.HospitalSettingUsecase.DeactivateSetting(ctx, callerID, settingID); err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.DeactivateHospitalSettingSuccessMessage, nil)
}

func (ctrl *HospitalSettingController) FindSettingsByHospital(w http.ResponseWriter, r *http.Request) {
	_, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	hospitalID := r.URL.Query().Get(constvars.URLQueryParamHospitalID)
	response, err := ctrl.HospitalSettingUsecase.FindSettingsByHospital(ctx, callerID, hospitalID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetHospitalSettingsSuccessMessage, response)
}

func (ctrl *HospitalSettingController) ValidateSetting(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	settingID, ok := urlParamID(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.ProbeTimeout)
	defer cancel()

	response, err := ctrl.HospitalSettingUsecase.ValidateSetting(ctx, callerID, settingID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ValidateEndpointSuccessMessage, response)
}

func (ctrl *HospitalSettingController) ValidateAdHocEndpoint(w http.ResponseWriter, r *http.Request) {
	requestID, callerID, ok := requestContext(ctrl.Log, w, r)
	if !ok {
		return
	}

	request := new(requests.ValidateAdHocEndpoint)
	if !decodeBody(ctrl.Log, w, r, requestID, request) {
		return
	}
	request.CallerUserID = callerID

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.ProbeTimeout)
	defer cancel()

	response, err := ctrl.HospitalSettingUsecase.ValidateAdHocEndpoint(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ValidateEndpointSuccessMessage, response)
}
