package models

import "medbridge-service/internal/pkg/exceptions"

// CanRequest is the static role to data type permission table.
func CanRequest(role Role, dataType DataType) bool {
	switch role {
	case RoleHospitalManager:
		return dataType.IsValid()
	case RoleDoctor:
		switch dataType {
		case DataTypeLabResults, DataTypeMedicalHistory, DataTypeTreatmentRecords:
			return true
		}
		return false
	case RoleStaff:
		return dataType == DataTypeLabResults
	case RoleNurse, RolePatient:
		return false
	}
	return false
}

// TerminalStatusFor maps a failure code onto the status it finalizes a
// request with.
func TerminalStatusFor(code exceptions.ErrorCode) RequestStatus {
	if code.IsDenial() {
		return RequestStatusDenied
	}
	return RequestStatusError
}
