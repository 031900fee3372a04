package requests

type SubmitDataRequest struct {
	PatientID       string `json:"patientId" validate:"required,max=128"`
	DataType        string `json:"dataType" validate:"required,datatype"`
	Purpose         string `json:"purpose" validate:"max=500"`
	RequesterUserID string `json:"-"`
}

type ResolveDataRequest struct {
	IsApproved     *bool  `json:"isApproved" validate:"required"`
	Reason         string `json:"reason" validate:"max=1000"`
	RequestID      string `json:"-"`
	ApproverUserID string `json:"-"`
}
