package exceptions

import "medbridge-service/internal/pkg/constvars"

// ErrorCode classifies why a data request could not be served.
type ErrorCode string

const (
	CodeInvalidUser            ErrorCode = "InvalidUser"
	CodePatientNotFound        ErrorCode = "PatientNotFound"
	CodeInsufficientRole       ErrorCode = "InsufficientRole"
	CodeConsentMissing         ErrorCode = "ConsentMissing"
	CodeUnauthorizedApprover   ErrorCode = "UnauthorizedApprover"
	CodeRequestNotFound        ErrorCode = "RequestNotFound"
	CodeRequestAlreadyResolved ErrorCode = "RequestAlreadyResolved"
	CodeEndpointNotConfigured  ErrorCode = "EndpointNotConfigured"
	CodeTransportError         ErrorCode = "TransportError"
	CodeUpstreamHttpError      ErrorCode = "UpstreamHttpError"
	CodeMalformedFhirResponse  ErrorCode = "MalformedFhirResponse"
	CodeSerializationError     ErrorCode = "SerializationError"
)

// IsDenial reports whether the code is an authorization or consent failure.
// All other codes are infrastructure or format failures.
func (c ErrorCode) IsDenial() bool {
	switch c {
	case CodeInvalidUser, CodeInsufficientRole, CodeConsentMissing, CodeUnauthorizedApprover:
		return true
	case CodePatientNotFound, CodeRequestNotFound, CodeRequestAlreadyResolved,
		CodeEndpointNotConfigured, CodeTransportError, CodeUpstreamHttpError,
		CodeMalformedFhirResponse, CodeSerializationError:
		return false
	}
	return false
}

// HTTPStatus is the status code used when the code rejects a call without a
// persisted data request behind it. Persisted outcomes are always 200.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeInvalidUser:
		return constvars.StatusUnauthorized
	case CodePatientNotFound, CodeRequestNotFound:
		return constvars.StatusNotFound
	case CodeUnauthorizedApprover:
		return constvars.StatusForbidden
	case CodeRequestAlreadyResolved:
		return constvars.StatusConflict
	case CodeInsufficientRole, CodeConsentMissing, CodeEndpointNotConfigured,
		CodeTransportError, CodeUpstreamHttpError, CodeMalformedFhirResponse,
		CodeSerializationError:
		return constvars.StatusOK
	}
	return constvars.StatusInternalServerError
}
