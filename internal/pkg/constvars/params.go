package constvars

const (
	URLParamID         = "id"
	URLParamHospitalID = "hospital_id"
)

const (
	URLQueryParamHospitalID = "hospitalId"
	URLQueryParamUserID     = "userId"
)
