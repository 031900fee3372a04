package models

// Role is the closed set of user roles known to the exchange.
type Role string

const (
	RoleHospitalManager Role = "HospitalManager"
	RoleDoctor          Role = "Doctor"
	RoleNurse           Role = "Nurse"
	RoleStaff           Role = "Staff"
	RolePatient         Role = "Patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleHospitalManager, RoleDoctor, RoleNurse, RoleStaff, RolePatient:
		return true
	}
	return false
}

// DataType is the category of clinical data a request asks for.
type DataType string

const (
	DataTypeLabResults          DataType = "LabResults"
	DataTypeMedicalHistory      DataType = "MedicalHistory"
	DataTypeTreatmentRecords    DataType = "TreatmentRecords"
	DataTypePatientDemographics DataType = "PatientDemographics"
	DataTypeVitalSigns          DataType = "VitalSigns"
	DataTypeMedications         DataType = "Medications"
	DataTypeProcedures          DataType = "Procedures"
	DataTypeDiagnosticReports   DataType = "DiagnosticReports"
	DataTypeEncounters          DataType = "Encounters"
	DataTypeConditions          DataType = "Conditions"
	DataTypeAllergies           DataType = "Allergies"
	DataTypeImmunizations       DataType = "Immunizations"
)

var AllDataTypes = []DataType{
	DataTypeLabResults,
	DataTypeMedicalHistory,
	DataTypeTreatmentRecords,
	DataTypePatientDemographics,
	DataTypeVitalSigns,
	DataTypeMedications,
	DataTypeProcedures,
	DataTypeDiagnosticReports,
	DataTypeEncounters,
	DataTypeConditions,
	DataTypeAllergies,
	DataTypeImmunizations,
}

func (d DataType) IsValid() bool {
	for _, dataType := range AllDataTypes {
		if d == dataType {
			return true
		}
	}
	return false
}

// RequestStatus is the lifecycle state of a DataRequest. Every status other
// than Pending is terminal.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusCompleted RequestStatus = "Completed"
	RequestStatusDenied    RequestStatus = "Denied"
	RequestStatusError     RequestStatus = "Error"
)

func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusDenied, RequestStatusError:
		return true
	case RequestStatusPending:
		return false
	}
	return false
}
