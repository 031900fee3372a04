package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_CALLER_USER_ID_KEY       ContextKey = "caller_user_id"
)

const (
	REQUEST_ID_PREFIX = "MDBRG_SVC_"
)

const (
	AppEnvProduction  = "production"
	AppEnvDevelopment = "development"
)

const (
	ResourceDataRequests         = "datarequest"
	ResourceDataRequestEndpoints = "datarequestendpoint"
	ResourceHospitalSettings     = "hospitalsettings"
)

const (
	JWTClaimUserID = "user_id"
)
