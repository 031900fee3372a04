package constvars

const (
	LoggingRequestIDKey     = "request_id"
	LoggingOperationKey     = "operation"
	LoggingDurationKey      = "duration"
	LoggingSuccessKey       = "success"
	LoggingErrorCodeKey     = "error_code"
	LoggingErrorMessageKey  = "error_message"
	LoggingErrorTypeKey     = "error_type"
	LoggingEndpointKey      = "endpoint"
	LoggingMethodKey        = "method"
	LoggingRemoteAddrKey    = "remote_addr"
	LoggingUserAgentKey     = "user_agent"
	LoggingQueryKey         = "query"
	LoggingStatusCodeKey    = "status_code"
	LoggingRedisKey         = "redis_key"
	LoggingQueueNameKey     = "queue_name"
	LoggingBucketNameKey    = "bucket_name"
	LoggingURLKey           = "url"
	LoggingCountKey         = "count"
	LoggingLatencyMsKey     = "latency_ms"
	LoggingDataRequestIDKey = "data_request_id"
	LoggingEndpointIDKey    = "endpoint_id"
	LoggingSettingIDKey     = "setting_id"
	LoggingHospitalIDKey    = "hospital_id"
	LoggingUserIDKey        = "user_id"
	LoggingPatientIDKey     = "patient_id"
	LoggingDataTypeKey      = "data_type"
	LoggingStatusKey        = "status"
	LoggingEventTypeKey     = "event_type"
	LoggingAuditActionKey   = "audit_action"
)
