package approvals

import (
	"context"
	"errors"
	"fmt"
	"medbridge-service/internal/app/contracts/mocks"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/fhir_spark/remote"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/exceptions"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const remoteBody = `{"resourceType":"Condition","id":"c-1","subject":{"reference":"Patient/P-2"}}`

var (
	doctorH1  = &models.User{ID: "doctor-1", HospitalID: "hospital-1", Role: models.RoleDoctor, IsActive: true}
	managerH2 = &models.User{ID: "manager-2", HospitalID: "hospital-2", Role: models.RoleHospitalManager, IsActive: true}
	retiredH2 = &models.User{ID: "retired-2", HospitalID: "hospital-2", Role: models.RoleDoctor, IsActive: false}

	patientH2 = &models.Patient{ID: "patient-2", ExternalID: "P-2", HospitalID: "hospital-2"}
)

func pendingRequest() models.DataRequest {
	requestedAt := time.Now().UTC().Add(-time.Minute)
	return models.DataRequest{
		ID:                     "request-1",
		RequestingUserID:       doctorH1.ID,
		RequestingHospitalID:   "hospital-1",
		PatientID:              patientH2.ID,
		PatientHospitalID:      "hospital-2",
		DataType:               models.DataTypeMedicalHistory,
		IsCrossHospitalRequest: true,
		IsRoleAuthorized:       true,
		Status:                 models.RequestStatusPending,
		RequestDate:            requestedAt,
		UpdatedAt:              requestedAt,
	}
}

func validConsent() *models.PatientConsent {
	return &models.PatientConsent{
		ID:                   "consent-1",
		PatientID:            patientH2.ID,
		RequestingUserID:     doctorH1.ID,
		RequestingHospitalID: "hospital-1",
		DataType:             models.DataTypeMedicalHistory,
		GrantedAt:            time.Now().Add(-24 * time.Hour),
	}
}

type fixture struct {
	usecase    *approvalUsecase
	repo       *mocks.MemoryDataRequestRepository
	users      *mocks.MockUserRepository
	patients   *mocks.MockPatientRepository
	consents   *mocks.MockConsentRepository
	resolver   *mocks.MockEndpointResolver
	remote     *mocks.MockFhirRemoteClient
	validator  *mocks.MockFhirValidator
	archive    *mocks.MockResponseArchive
	dispatcher *mocks.RecordingDispatcher
	audit      *mocks.RecordingAuditSink
}

func newFixture(t *testing.T, consent *models.PatientConsent) *fixture {
	t.Helper()
	f := &fixture{
		repo:       mocks.NewMemoryDataRequestRepository(pendingRequest()),
		users:      new(mocks.MockUserRepository),
		patients:   new(mocks.MockPatientRepository),
		consents:   new(mocks.MockConsentRepository),
		resolver:   new(mocks.MockEndpointResolver),
		remote:     new(mocks.MockFhirRemoteClient),
		validator:  new(mocks.MockFhirValidator),
		archive:    new(mocks.MockResponseArchive),
		dispatcher: &mocks.RecordingDispatcher{},
		audit:      &mocks.RecordingAuditSink{},
	}
	for _, user := range []*models.User{doctorH1, managerH2, retiredH2} {
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	}
	f.users.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)
	f.patients.On("FindByID", mock.Anything, patientH2.ID).Return(patientH2, nil)
	f.consents.On("FindLatest", mock.Anything, patientH2.ID, doctorH1.ID, "hospital-1", models.DataTypeMedicalHistory).Return(consent, nil)
	f.archive.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f.usecase = &approvalUsecase{
		DataRequestRepository: f.repo,
		UserRepository:        f.users,
		PatientRepository:     f.patients,
		ConsentRepository:     f.consents,
		EndpointResolver:      f.resolver,
		RemoteClient:          f.remote,
		FhirValidator:         f.validator,
		Dispatcher:            f.dispatcher,
		Archive:               f.archive,
		AuditSink:             f.audit,
		DefaultTimeout:        30 * time.Second,
		Log:                   zap.NewNop(),
		Now:                   func() time.Time { return time.Now().UTC() },
	}
	return f
}

func (f *fixture) withTarget(target *models.FhirTarget) *fixture {
	f.resolver.On("ResolveURL", mock.Anything, "hospital-2", models.DataTypeMedicalHistory, "P-2").Return(target, nil)
	return f
}

func (f *fixture) stored(t *testing.T) *models.DataRequest {
	t.Helper()
	row, err := f.repo.FindByID(context.Background(), "request-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	return row
}

func resolve(approverID string, approved bool, reason string) *requests.ResolveDataRequest {
	return &requests.ResolveDataRequest{
		IsApproved:     &approved,
		Reason:         reason,
		RequestID:      "request-1",
		ApproverUserID: approverID,
	}
}

func conditionTarget(url string) *models.FhirTarget {
	return &models.FhirTarget{URL: url, HTTPMethod: constvars.MethodGet, EndpointID: "endpoint-1"}
}

func TestResolveRequest_ApproveCompletesWithRemotePayload(t *testing.T) {
	f := newFixture(t, validConsent()).withTarget(conditionTarget("https://h2.example.org/fhir/Condition?patient=P-2"))
	f.remote.On("Fetch", mock.Anything, mock.Anything).Return(&models.FhirResponse{StatusCode: 200, Status: "OK", Body: []byte(remoteBody)}, nil)
	f.validator.On("ValidateResource", []byte(remoteBody)).Return(nil)

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.RequestStatusCompleted, result.Status)
	assert.JSONEq(t, remoteBody, string(result.ResponseData))

	row := f.stored(t)
	assert.Equal(t, models.RequestStatusCompleted, row.Status)
	require.NotNil(t, row.ApprovingUserID)
	assert.Equal(t, managerH2.ID, *row.ApprovingUserID)
	assert.NotNil(t, row.ApprovalDate)
	assert.NotNil(t, row.ResponseTimeMs)
	assert.True(t, row.IsConsentValid)
	assert.Nil(t, row.DenialReason)

	events := f.dispatcher.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "hospital-1", events[0].TargetHospitalID)
	assert.Equal(t, constvars.NotificationEventDataRequestCompleted, events[0].EventType)

	f.archive.AssertCalled(t, "Archive", mock.Anything, "request-1", []byte(remoteBody))
	f.validator.AssertNotCalled(t, "ValidatePayload", mock.Anything)

	entries := f.audit.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, constvars.AuditActionResolveDataRequest, entries[0].Action)
	assert.Equal(t, managerH2.ID, entries[0].ActorUserID)
	assert.True(t, entries[0].Success)
}

func TestResolveRequest_PatientEverythingTargetUsesBundleChecks(t *testing.T) {
	target := conditionTarget("https://h2.example.org/fhir/Patient/P-2/$everything")
	target.IsPatientEverything = true
	f := newFixture(t, validConsent()).withTarget(target)
	f.remote.On("Fetch", mock.Anything, mock.Anything).Return(&models.FhirResponse{StatusCode: 200, Status: "OK", Body: []byte(`{"resourceType":"Patient"}`)}, nil)
	f.validator.On("ValidatePayload", mock.Anything).Return(errors.New("Expected 'Bundle' resourceType, but got 'Patient'"))

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.RequestStatusError, result.Status)
	assert.Equal(t, string(exceptions.CodeMalformedFhirResponse), result.ErrorCode)
	assert.Contains(t, result.DenialReason, "Expected 'Bundle' resourceType")
	assert.Empty(t, result.ResponseData)
	f.validator.AssertNotCalled(t, "ValidateResource", mock.Anything)
	f.archive.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveRequest_UpstreamServiceUnavailableEndsInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := newFixture(t, validConsent()).withTarget(conditionTarget(server.URL + "/Condition?patient=P-2"))
	f.usecase.RemoteClient = remote.NewRemoteFhirClient(zap.NewNop(), nil, remote.Options{DefaultTimeout: 5 * time.Second})

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.RequestStatusError, result.Status)
	assert.Equal(t, string(exceptions.CodeUpstreamHttpError), result.ErrorCode)
	assert.Contains(t, result.DenialReason, "503")
	assert.Empty(t, result.ResponseData)

	row := f.stored(t)
	assert.Equal(t, models.RequestStatusError, row.Status)
	require.NotNil(t, row.DenialReason)
	assert.Contains(t, *row.DenialReason, "503")

	events := f.dispatcher.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, constvars.NotificationEventDataRequestError, events[0].EventType)
	assert.Equal(t, "hospital-1", events[0].TargetHospitalID)
	f.archive.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveRequest_TransportFailureEndsInError(t *testing.T) {
	cases := []struct {
		name     string
		fetchErr error
		reason   string
	}{
		{
			name:     "timeout",
			fetchErr: exceptions.ErrSendHTTPRequest(context.DeadlineExceeded),
			reason:   fmt.Sprintf(constvars.ReasonTransport, "request timed out after 30 seconds"),
		},
		{
			name:     "connection refused",
			fetchErr: exceptions.ErrSendHTTPRequest(errors.New("dial tcp 10.0.0.9:443: connect: connection refused")),
			reason:   fmt.Sprintf(constvars.ReasonTransport, "dial tcp 10.0.0.9:443: connect: connection refused"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, validConsent()).withTarget(conditionTarget("https://h2.example.org/fhir/Condition"))
			f.remote.On("Fetch", mock.Anything, mock.Anything).Return(nil, tc.fetchErr)

			result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

			require.NoError(t, err)
			assert.Equal(t, models.RequestStatusError, result.Status)
			assert.Equal(t, string(exceptions.CodeTransportError), result.ErrorCode)
			assert.Equal(t, tc.reason, result.DenialReason)
		})
	}
}

func TestResolveRequest_TargetTimeoutDefaultsWhenUnset(t *testing.T) {
	f := newFixture(t, validConsent()).withTarget(conditionTarget("https://h2.example.org/fhir/Condition"))
	f.remote.On("Fetch", mock.Anything, mock.MatchedBy(func(target *models.FhirTarget) bool {
		return target.Timeout == 30*time.Second
	})).Return(&models.FhirResponse{StatusCode: 200, Status: "OK", Body: []byte(remoteBody)}, nil)
	f.validator.On("ValidateResource", mock.Anything).Return(nil)

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, result.Status)
	f.remote.AssertExpectations(t)
}

func TestResolveRequest_DenyRecordsReasonWithoutRemoteCall(t *testing.T) {
	cases := []struct {
		name   string
		reason string
		want   string
	}{
		{name: "explicit reason", reason: "Patient withdrew from the program", want: "Patient withdrew from the program"},
		{name: "default reason", reason: "", want: constvars.ReasonDeniedByApprover},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, validConsent())

			result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, false, tc.reason))

			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, models.RequestStatusDenied, result.Status)
			assert.Equal(t, tc.want, result.DenialReason)
			assert.Empty(t, result.ErrorCode)

			row := f.stored(t)
			assert.Equal(t, models.RequestStatusDenied, row.Status)
			require.NotNil(t, row.ApprovingUserID)
			assert.Equal(t, managerH2.ID, *row.ApprovingUserID)

			events := f.dispatcher.Snapshot()
			require.Len(t, events, 1)
			assert.Equal(t, constvars.NotificationEventDataRequestDenied, events[0].EventType)
			assert.Equal(t, tc.want, events[0].Reason)

			f.remote.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
			f.resolver.AssertNotCalled(t, "ResolveURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolveRequest_ApproverFromAnotherHospitalIsRejected(t *testing.T) {
	for _, approverID := range []string{doctorH1.ID, retiredH2.ID, "ghost"} {
		t.Run(approverID, func(t *testing.T) {
			f := newFixture(t, validConsent())

			result, err := f.usecase.ResolveRequest(context.Background(), resolve(approverID, true, ""))

			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Empty(t, result.RequestID)
			assert.Equal(t, string(exceptions.CodeUnauthorizedApprover), result.ErrorCode)
			assert.Equal(t, constvars.ReasonUnauthorizedApprover, result.DenialReason)

			row := f.stored(t)
			assert.Equal(t, models.RequestStatusPending, row.Status)
			assert.Nil(t, row.ApprovingUserID)
			assert.Empty(t, f.dispatcher.Snapshot())

			entries := f.audit.Snapshot()
			require.Len(t, entries, 1)
			assert.False(t, entries[0].Success)
			assert.Equal(t, string(exceptions.CodeUnauthorizedApprover), entries[0].Outcome)
		})
	}
}

func TestResolveRequest_UnknownOrResolvedRequest(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, validConsent())
		req := resolve(managerH2.ID, true, "")
		req.RequestID = "missing"

		result, err := f.usecase.ResolveRequest(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, string(exceptions.CodeRequestNotFound), result.ErrorCode)
		assert.Equal(t, constvars.ReasonRequestNotFound, result.DenialReason)
	})

	t.Run("already resolved", func(t *testing.T) {
		f := newFixture(t, validConsent())
		f.withTarget(conditionTarget("https://h2.example.org/fhir/Condition"))
		f.remote.On("Fetch", mock.Anything, mock.Anything).Return(&models.FhirResponse{StatusCode: 200, Status: "OK", Body: []byte(remoteBody)}, nil)
		f.validator.On("ValidateResource", mock.Anything).Return(nil)

		first, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))
		require.NoError(t, err)
		require.Equal(t, models.RequestStatusCompleted, first.Status)

		second, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, false, "too late"))

		require.NoError(t, err)
		assert.False(t, second.Success)
		assert.Equal(t, string(exceptions.CodeRequestAlreadyResolved), second.ErrorCode)
		assert.Equal(t, models.RequestStatusCompleted, f.stored(t).Status)
		assert.Len(t, f.dispatcher.Snapshot(), 1)
	})
}

func TestResolveRequest_MissingConsentIsDenied(t *testing.T) {
	expired := validConsent()
	expiredAt := time.Now().Add(-time.Hour)
	expired.ExpiresAt = &expiredAt
	revoked := validConsent()
	revoked.IsRevoked = true

	cases := map[string]*models.PatientConsent{
		"absent":  nil,
		"expired": expired,
		"revoked": revoked,
	}

	for name, consent := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, consent)

			result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

			require.NoError(t, err)
			assert.Equal(t, models.RequestStatusDenied, result.Status)
			assert.Equal(t, string(exceptions.CodeConsentMissing), result.ErrorCode)
			assert.Equal(t, constvars.ReasonConsentMissing, result.DenialReason)
			assert.False(t, f.stored(t).IsConsentValid)
			f.resolver.AssertNotCalled(t, "ResolveURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.remote.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
		})
	}
}

func TestResolveRequest_EndpointNotConfigured(t *testing.T) {
	f := newFixture(t, validConsent()).withTarget(nil)

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusError, result.Status)
	assert.Equal(t, string(exceptions.CodeEndpointNotConfigured), result.ErrorCode)
	assert.Equal(t, fmt.Sprintf(constvars.ReasonEndpointNotConfigured, "hospital-2", models.DataTypeMedicalHistory), result.DenialReason)
	f.remote.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestResolveRequest_EndpointRoleRestriction(t *testing.T) {
	target := conditionTarget("https://h2.example.org/fhir/Condition")
	target.AllowedRoles = []models.Role{models.RoleHospitalManager, models.RoleNurse}
	f := newFixture(t, validConsent()).withTarget(target)

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDenied, result.Status)
	assert.Equal(t, string(exceptions.CodeInsufficientRole), result.ErrorCode)
	assert.Equal(t, constvars.ReasonInsufficientRole, result.DenialReason)
	f.remote.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestResolveRequest_StoreFailureIsReturned(t *testing.T) {
	f := newFixture(t, validConsent())
	f.repo.FindErr = errors.New("connection reset")

	result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestResolveRequest_ConcurrentApprovalsHaveOneWinner(t *testing.T) {
	f := newFixture(t, validConsent()).withTarget(conditionTarget("https://h2.example.org/fhir/Condition"))
	f.validator.On("ValidateResource", mock.Anything).Return(nil)

	// Both callers must be inside Fetch, past the Pending read, before
	// either one is allowed to finalize.
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	go func() {
		deadline := time.After(5 * time.Second)
		for i := 0; i < 2; i++ {
			select {
			case <-arrived:
			case <-deadline:
			}
		}
		close(release)
	}()
	f.remote.On("Fetch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		arrived <- struct{}{}
		<-release
	}).Return(&models.FhirResponse{StatusCode: 200, Status: "OK", Body: []byte(remoteBody)}, nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	codes := make([]string, 2)
	statuses := make([]models.RequestStatus, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.usecase.ResolveRequest(context.Background(), resolve(managerH2.ID, true, ""))
			results[i] = err
			if result != nil {
				codes[i] = result.ErrorCode
				statuses[i] = result.Status
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, results[0])
	require.NoError(t, results[1])

	winners, losers := 0, 0
	for i := range codes {
		switch {
		case statuses[i] == models.RequestStatusCompleted:
			winners++
		case codes[i] == string(exceptions.CodeRequestAlreadyResolved):
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)
	assert.Equal(t, models.RequestStatusCompleted, f.stored(t).Status)
	assert.Len(t, f.dispatcher.Snapshot(), 1)
	f.archive.AssertNumberOfCalls(t, "Archive", 1)
}
