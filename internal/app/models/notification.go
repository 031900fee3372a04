package models

import "time"

// NotificationEvent is emitted after a data request state change commits.
type NotificationEvent struct {
	ID                   string        `json:"id"`
	EventType            string        `json:"eventType"`
	DataRequestID        string        `json:"dataRequestId"`
	TargetHospitalID     string        `json:"targetHospitalId"`
	RequestingHospitalID string        `json:"requestingHospitalId"`
	PatientHospitalID    string        `json:"patientHospitalId"`
	DataType             DataType      `json:"dataType"`
	Status               RequestStatus `json:"status"`
	Reason               string        `json:"reason,omitempty"`
	OccurredAt           time.Time     `json:"occurredAt"`
}
