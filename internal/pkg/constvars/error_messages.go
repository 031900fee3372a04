package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"oneof":    "must be one of [%s]",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"datatype": "must be a supported data type",
	"role":     "must be a supported role",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
	"gte":   true,
	"lte":   true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientResourceNotFound              = "the requested resource does not exist"
	ErrClientEndpointAlreadyExists         = "an endpoint for this hospital and data type already exists"
)

// Error messages for developers
const (
	ErrDevInvalidInput              = "invalid input"
	ErrDevCannotParseJSON           = "cannot parse JSON into struct or other data types"
	ErrDevCannotMarshalJSON         = "cannot convert struct or other data types to JSON"
	ErrDevURLParamValidationFailed  = "invalid url param %s"
	ErrDevValidationFailed          = "request validation failed"
	ErrDevServerDeadlineExceeded    = "server deadline exceeded"
	ErrDevServerProcess             = "server process failed"
	ErrDevMissingRequestID          = "request id missing from context"
	ErrDevAuthTokenMissing          = "authorization token missing"
	ErrDevAuthTokenInvalid          = "authorization token invalid"
	ErrDevAuthSigningMethod         = "invalid token signing method"
	ErrDevCallerNotResolved         = "caller user could not be resolved"
	ErrDevCallerNotHospitalManager  = "caller is not a hospital manager of the target hospital"
	ErrDevCallerNotPermitted        = "caller is not a party to the requested resource"
	ErrDevEndpointNotFound          = "endpoint config not found"
	ErrDevEndpointDuplicate         = "endpoint config already exists for hospital and data type"
	ErrDevHospitalSettingNotFound   = "hospital setting not found"
	ErrDevDataRequestNotFound       = "data request not found"
	ErrDevEncryptSecret             = "failed to encrypt endpoint secret"
	ErrDevDecryptSecret             = "failed to decrypt endpoint secret"
	ErrDevDBFailedToFindData        = "failed to find data in postgres"
	ErrDevDBFailedToInsertData      = "failed to insert data into postgres"
	ErrDevDBFailedToUpdateData      = "failed to update data in postgres"
	ErrDevDBFailedToDeleteData      = "failed to delete data from postgres"
	ErrDevMongoDBInsertDocument     = "failed to insert document into mongodb"
	ErrDevRedisGetData              = "failed to get data from redis with key %s"
	ErrDevRedisSetData              = "failed to set data into redis"
	ErrDevRedisDeleteData           = "failed to delete data from redis"
	ErrDevRabbitMQPublishMessage    = "failed to publish message to queue %s"
	ErrDevMinioFailedToCreateObject = "failed to create object in bucket %s"
	ErrDevCreateHTTPRequest         = "failed to create http request"
	ErrDevSendHTTPRequest           = "failed to send http request"
)

// FHIR validation results, surfaced verbatim to operators.
const (
	FhirValidationURLRequired           = "Endpoint URL is required"
	FhirValidationURLMalformed          = "Invalid URL format: %s"
	FhirValidationUnresolvedPlaceholder = "Endpoint URL still contains unresolved placeholders: %s"
	FhirValidationTimeout               = "Request timed out after %d seconds"
	FhirValidationRequestFailed         = "Request failed: %s"
	FhirValidationHTTPStatus            = "HTTP %d: %s"
	FhirValidationEmptyBody             = "Response body is empty"
	FhirValidationInvalidJSON           = "Invalid JSON response: %s"
	FhirValidationMissingResourceType   = "Response has no resourceType"
	FhirValidationOperationOutcome      = "Endpoint returned an OperationOutcome: %s"
	FhirValidationResourceType          = "Expected 'Bundle' resourceType, but got '%s'"
	FhirValidationBundleType            = "Expected Bundle type 'searchset', but got '%s'"
	FhirValidationNoEntries             = "Bundle contains no entries"
	FhirValidationNoPatient             = "Bundle does not contain a Patient resource or any patient-referencing resources"
	FhirValidationNoExpectedTypes       = "Bundle does not contain any of the expected resource types: %s"
	FhirValidationPatientMissingID      = "Patient resource is missing required field 'id'"
	FhirValidationPatientMissingName    = "Patient resource is missing required field 'name'"
)

// Data request denial/error reasons stored in denial_reason.
const (
	ReasonInvalidUser           = "Requesting user not found"
	ReasonPatientNotFound       = "Patient not found"
	ReasonInsufficientRole      = "Insufficient role permissions"
	ReasonConsentMissing        = "No valid patient consent for the requested data"
	ReasonUnauthorizedApprover  = "Approver does not belong to the patient's hospital"
	ReasonRequestNotFound       = "Data request not found"
	ReasonAlreadyResolved       = "Data request already resolved"
	ReasonEndpointNotConfigured = "No FHIR endpoint configured for hospital %s and data type %s"
	ReasonDeniedByApprover      = "Request denied by patient's hospital"
	ReasonUpstreamHTTP          = "Remote FHIR endpoint returned HTTP %d: %s"
	ReasonTransport             = "Remote FHIR endpoint unreachable: %s"
	ReasonMalformedFhir         = "Remote FHIR response is malformed: %s"
	ReasonSerialization         = "Failed to build FHIR resource: %s"
)
