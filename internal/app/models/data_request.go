package models

import (
	"encoding/json"
	"medbridge-service/internal/pkg/exceptions"
	"time"
)

type DataRequest struct {
	ID                     string          `json:"id"`
	RequestingUserID       string          `json:"requestingUserId"`
	RequestingHospitalID   string          `json:"requestingHospitalId"`
	PatientID              string          `json:"patientId"`
	PatientHospitalID      string          `json:"patientHospitalId"`
	ApprovingUserID        *string         `json:"approvingUserId,omitempty"`
	DataType               DataType        `json:"dataType"`
	Purpose                string          `json:"purpose,omitempty"`
	IsCrossHospitalRequest bool            `json:"isCrossHospitalRequest"`
	IsRoleAuthorized       bool            `json:"isRoleAuthorized"`
	IsConsentValid         bool            `json:"isConsentValid"`
	Status                 RequestStatus   `json:"status"`
	RequestDate            time.Time       `json:"requestDate"`
	ResponseDate           *time.Time      `json:"responseDate,omitempty"`
	ApprovalDate           *time.Time      `json:"approvalDate,omitempty"`
	ResponseTimeMs         *int64          `json:"responseTimeMs,omitempty"`
	ResponseData           json.RawMessage `json:"responseData,omitempty"`
	DenialReason           *string         `json:"denialReason,omitempty"`
	ErrorCode              *string         `json:"errorCode,omitempty"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

// Complete moves the request to Completed with the given payload.
func (d *DataRequest) Complete(payload json.RawMessage, at time.Time, responseTimeMs int64) {
	d.Status = RequestStatusCompleted
	d.ResponseData = payload
	d.DenialReason = nil
	d.ErrorCode = nil
	d.ResponseDate = &at
	d.ResponseTimeMs = &responseTimeMs
	d.UpdatedAt = at
}

// Fail moves the request to Denied or Error. responseData is dropped so a
// payload and a reason never coexist.
func (d *DataRequest) Fail(status RequestStatus, code, reason string, at time.Time, responseTimeMs int64) {
	d.Status = status
	d.ResponseData = nil
	d.DenialReason = &reason
	if code != "" {
		d.ErrorCode = &code
	}
	d.ResponseDate = &at
	d.ResponseTimeMs = &responseTimeMs
	d.UpdatedAt = at
}

// FailWith fails the request with the status its code maps to.
func (d *DataRequest) FailWith(code exceptions.ErrorCode, reason string, at time.Time, responseTimeMs int64) {
	d.Fail(TerminalStatusFor(code), string(code), reason, at, responseTimeMs)
}
