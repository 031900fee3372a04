package models

import (
	"testing"
	"time"

	"medbridge-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
)

func TestCanRequest(t *testing.T) {
	for _, dataType := range AllDataTypes {
		assert.True(t, CanRequest(RoleHospitalManager, dataType), dataType)
		assert.False(t, CanRequest(RoleNurse, dataType), dataType)
		assert.False(t, CanRequest(RolePatient, dataType), dataType)
	}

	assert.True(t, CanRequest(RoleDoctor, DataTypeLabResults))
	assert.True(t, CanRequest(RoleDoctor, DataTypeMedicalHistory))
	assert.True(t, CanRequest(RoleDoctor, DataTypeTreatmentRecords))
	assert.False(t, CanRequest(RoleDoctor, DataTypeVitalSigns))

	assert.True(t, CanRequest(RoleStaff, DataTypeLabResults))
	assert.False(t, CanRequest(RoleStaff, DataTypeMedicalHistory))

	assert.False(t, CanRequest(Role("Janitor"), DataTypeLabResults))
	assert.False(t, CanRequest(RoleHospitalManager, DataType("Genome")))
}

func TestTerminalStatusFor(t *testing.T) {
	assert.Equal(t, RequestStatusDenied, TerminalStatusFor(exceptions.CodeInsufficientRole))
	assert.Equal(t, RequestStatusDenied, TerminalStatusFor(exceptions.CodeConsentMissing))
	assert.Equal(t, RequestStatusError, TerminalStatusFor(exceptions.CodeUpstreamHttpError))
	assert.Equal(t, RequestStatusError, TerminalStatusFor(exceptions.CodeSerializationError))
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	assert.False(t, RequestStatusPending.IsTerminal())
	assert.True(t, RequestStatusCompleted.IsTerminal())
	assert.True(t, RequestStatusDenied.IsTerminal())
	assert.True(t, RequestStatusError.IsTerminal())
}

func TestDataRequest_PayloadAndReasonAreExclusive(t *testing.T) {
	now := time.Now()
	request := &DataRequest{Status: RequestStatusPending}

	request.Complete([]byte(`{"resourceType":"Bundle"}`), now, 12)
	assert.Equal(t, RequestStatusCompleted, request.Status)
	assert.Nil(t, request.DenialReason)

	request.Fail(RequestStatusError, string(exceptions.CodeTransportError), "boom", now, 15)
	assert.Nil(t, request.ResponseData)
	assert.Equal(t, "boom", *request.DenialReason)
	assert.Equal(t, int64(15), *request.ResponseTimeMs)
}

func TestDataRequest_FailWithDerivesStatus(t *testing.T) {
	now := time.Now()

	denied := &DataRequest{Status: RequestStatusPending}
	denied.FailWith(exceptions.CodeConsentMissing, "no consent", now, 3)
	assert.Equal(t, RequestStatusDenied, denied.Status)
	assert.Equal(t, string(exceptions.CodeConsentMissing), *denied.ErrorCode)

	errored := &DataRequest{Status: RequestStatusPending}
	errored.FailWith(exceptions.CodeEndpointNotConfigured, "no endpoint", now, 3)
	assert.Equal(t, RequestStatusError, errored.Status)
	assert.Equal(t, "no endpoint", *errored.DenialReason)
}

func TestPatientConsent_IsValidAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&PatientConsent{GrantedAt: past}).IsValidAt(now))
	assert.True(t, (&PatientConsent{GrantedAt: past, ExpiresAt: &future}).IsValidAt(now))
	assert.False(t, (&PatientConsent{GrantedAt: past, ExpiresAt: &past}).IsValidAt(now))
	assert.False(t, (&PatientConsent{GrantedAt: future}).IsValidAt(now))
	assert.False(t, (&PatientConsent{GrantedAt: past, IsRevoked: true}).IsValidAt(now))

	var missing *PatientConsent
	assert.False(t, missing.IsValidAt(now))
}

func TestEndpointConfig_AllowsRole(t *testing.T) {
	open := &EndpointConfig{}
	assert.True(t, open.AllowsRole(RoleStaff))

	restricted := &EndpointConfig{AllowedRoles: []Role{RoleDoctor}}
	assert.True(t, restricted.AllowsRole(RoleDoctor))
	assert.False(t, restricted.AllowsRole(RoleStaff))
}
