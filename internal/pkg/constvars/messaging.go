package constvars

const (
	NotificationEventDataRequestPending   = "data_request.pending"
	NotificationEventDataRequestCompleted = "data_request.completed"
	NotificationEventDataRequestDenied    = "data_request.denied"
	NotificationEventDataRequestError     = "data_request.error"
)

const (
	AuditActionSubmitDataRequest   = "DataRequest.Submit"
	AuditActionResolveDataRequest  = "DataRequest.Resolve"
	AuditActionCreateEndpoint      = "Endpoint.Create"
	AuditActionUpdateEndpoint      = "Endpoint.Update"
	AuditActionDeleteEndpoint      = "Endpoint.Delete"
	AuditActionValidateEndpoint    = "Endpoint.Validate"
	AuditActionCreateSetting       = "HospitalSetting.Create"
	AuditActionUpdateSetting       = "HospitalSetting.Update"
	AuditActionDeactivateSetting   = "HospitalSetting.Deactivate"
	AuditActionValidateSetting     = "HospitalSetting.Validate"
	AuditActionValidateAdHocTarget = "HospitalSetting.ValidateEndpoint"
)

const (
	AuditEntityDataRequest     = "DataRequest"
	AuditEntityEndpointConfig  = "EndpointConfig"
	AuditEntityHospitalSetting = "HospitalSetting"
)

const (
	AuditOutcomeSuccess = "Success"
	AuditOutcomeFailure = "Failure"
)

const (
	MongoCollectionAuditLogs = "audit_logs"
)

const (
	RedisKeyDataRequestDedupFormat = "datarequest:dedup:%s:%s:%s"
	MinioDataRequestObjectFormat   = "datarequests/%s.json"
)
