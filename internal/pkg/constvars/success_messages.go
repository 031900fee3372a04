package constvars

const (
	ResponseUnknown = "unknown"

	SubmitDataRequestSuccessMessage      = "data request processed"
	SubmitDataRequestInFlightMessage     = "an identical data request is already being processed"
	ResolveDataRequestSuccessMessage     = "data request resolved"
	GetDataRequestSuccessMessage         = "get data request successfully"
	GetPendingDataRequestsSuccessMessage = "get pending data requests successfully"
	GetDataRequestHistorySuccessMessage  = "get data request history successfully"

	CreateEndpointSuccessMessage       = "endpoint created successfully"
	UpdateEndpointSuccessMessage       = "endpoint updated successfully"
	DeleteEndpointSuccessMessage       = "endpoint deleted successfully"
	GetEndpointSuccessMessage          = "get endpoint successfully"
	GetEndpointsSuccessMessage         = "get endpoints successfully"
	ValidateEndpointSuccessMessage     = "endpoint validated"
	ValidateAllEndpointsSuccessMessage = "endpoints validated"

	CreateHospitalSettingSuccessMessage     = "hospital setting created successfully"
	UpdateHospitalSettingSuccessMessage     = "hospital setting updated successfully"
	DeactivateHospitalSettingSuccessMessage = "hospital setting deactivated successfully"
	GetHospitalSettingsSuccessMessage       = "get hospital settings successfully"
)
