package responses

import (
	"encoding/json"
	"medbridge-service/internal/app/models"
	"time"
)

// DataRequestResult is what submit and approve calls hand back. Failures
// travel in ErrorCode and DenialReason rather than as Go errors.
type DataRequestResult struct {
	Success                bool                 `json:"success"`
	RequestID              string               `json:"requestId,omitempty"`
	Status                 models.RequestStatus `json:"status,omitempty"`
	IsCrossHospitalRequest bool                 `json:"isCrossHospitalRequest"`
	ResponseData           json.RawMessage      `json:"responseData,omitempty"`
	DenialReason           string               `json:"denialReason,omitempty"`
	ErrorCode              string               `json:"errorCode,omitempty"`
	ResponseTimeMs         int64                `json:"responseTimeMs"`
	Message                string               `json:"message,omitempty"`
}

// NewDataRequestResult projects a persisted request onto a result.
func NewDataRequestResult(request *models.DataRequest) *DataRequestResult {
	result := &DataRequestResult{
		Success:                request.Status == models.RequestStatusCompleted || request.Status == models.RequestStatusPending,
		RequestID:              request.ID,
		Status:                 request.Status,
		IsCrossHospitalRequest: request.IsCrossHospitalRequest,
		ResponseData:           request.ResponseData,
	}
	if request.DenialReason != nil {
		result.DenialReason = *request.DenialReason
	}
	if request.ErrorCode != nil {
		result.ErrorCode = *request.ErrorCode
	}
	if request.ResponseTimeMs != nil {
		result.ResponseTimeMs = *request.ResponseTimeMs
	}
	return result
}

// NewRejectedResult is returned when a call is refused before any request
// row is written or changed.
func NewRejectedResult(code, reason string) *DataRequestResult {
	return &DataRequestResult{
		Success:      false,
		ErrorCode:    code,
		DenialReason: reason,
	}
}

type DataRequest struct {
	ID                     string               `json:"id"`
	RequestingUserID       string               `json:"requestingUserId"`
	RequestingHospitalID   string               `json:"requestingHospitalId"`
	PatientID              string               `json:"patientId"`
	PatientHospitalID      string               `json:"patientHospitalId"`
	ApprovingUserID        *string              `json:"approvingUserId,omitempty"`
	DataType               models.DataType      `json:"dataType"`
	Purpose                string               `json:"purpose,omitempty"`
	IsCrossHospitalRequest bool                 `json:"isCrossHospitalRequest"`
	IsRoleAuthorized       bool                 `json:"isRoleAuthorized"`
	IsConsentValid         bool                 `json:"isConsentValid"`
	Status                 models.RequestStatus `json:"status"`
	RequestDate            time.Time            `json:"requestDate"`
	ResponseDate           *time.Time           `json:"responseDate,omitempty"`
	ApprovalDate           *time.Time           `json:"approvalDate,omitempty"`
	ResponseTimeMs         *int64               `json:"responseTimeMs,omitempty"`
	ResponseData           json.RawMessage      `json:"responseData,omitempty"`
	DenialReason           *string              `json:"denialReason,omitempty"`
	ErrorCode              *string              `json:"errorCode,omitempty"`
}

func NewDataRequest(request *models.DataRequest) DataRequest {
	return DataRequest{
		ID:                     request.ID,
		RequestingUserID:       request.RequestingUserID,
		RequestingHospitalID:   request.RequestingHospitalID,
		PatientID:              request.PatientID,
		PatientHospitalID:      request.PatientHospitalID,
		ApprovingUserID:        request.ApprovingUserID,
		DataType:               request.DataType,
		Purpose:                request.Purpose,
		IsCrossHospitalRequest: request.IsCrossHospitalRequest,
		IsRoleAuthorized:       request.IsRoleAuthorized,
		IsConsentValid:         request.IsConsentValid,
		Status:                 request.Status,
		RequestDate:            request.RequestDate,
		ResponseDate:           request.ResponseDate,
		ApprovalDate:           request.ApprovalDate,
		ResponseTimeMs:         request.ResponseTimeMs,
		ResponseData:           request.ResponseData,
		DenialReason:           request.DenialReason,
		ErrorCode:              request.ErrorCode,
	}
}

func NewDataRequests(requests []models.DataRequest) []DataRequest {
	result := make([]DataRequest, 0, len(requests))
	for i := range requests {
		result = append(result, NewDataRequest(&requests[i]))
	}
	return result
}
