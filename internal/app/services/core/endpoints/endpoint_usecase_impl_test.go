package endpoints

import (
	"context"
	"errors"
	"medbridge-service/internal/app/contracts/mocks"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	hospital1 = "5d1c8a52-8d9b-4d7e-9d55-3c2f0f7e1a01"
	hospital2 = "5d1c8a52-8d9b-4d7e-9d55-3c2f0f7e1a02"
)

var (
	manager1 = &models.User{ID: "manager-1", HospitalID: hospital1, Role: models.RoleHospitalManager, IsActive: true}
	manager2 = &models.User{ID: "manager-2", HospitalID: hospital2, Role: models.RoleHospitalManager, IsActive: true}
	doctor1  = &models.User{ID: "doctor-1", HospitalID: hospital1, Role: models.RoleDoctor, IsActive: true}
)

type fixture struct {
	usecase   *endpointUsecase
	endpoints *mocks.MockEndpointRepository
	settings  *mocks.MockHospitalSettingRepository
	users     *mocks.MockUserRepository
	validator *mocks.MockFhirValidator
	audit     *mocks.RecordingAuditSink
	cipher    *utils.SecretCipher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cipher, err := utils.NewSecretCipher(strings.Repeat("3c", 32))
	require.NoError(t, err)

	f := &fixture{
		endpoints: new(mocks.MockEndpointRepository),
		settings:  new(mocks.MockHospitalSettingRepository),
		users:     new(mocks.MockUserRepository),
		validator: new(mocks.MockFhirValidator),
		audit:     &mocks.RecordingAuditSink{},
		cipher:    cipher,
	}
	for _, user := range []*models.User{manager1, manager2, doctor1} {
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	}
	f.users.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

	f.usecase = newEndpointUsecase(f.endpoints, f.settings, f.users, f.validator, f.audit, cipher, "sample-patient", 30*time.Second, 2, zap.NewNop())
	return f
}

func (f *fixture) sealed(t *testing.T, secret string) *string {
	t.Helper()
	value, err := f.cipher.Encrypt(secret)
	require.NoError(t, err)
	return &value
}

func storedEndpoint(id string, dataType models.DataType, template string) *models.EndpointConfig {
	return &models.EndpointConfig{
		ID:          id,
		HospitalID:  hospital1,
		DataType:    dataType,
		URLTemplate: template,
		HTTPMethod:  constvars.MethodGet,
	}
}

func TestCreateEndpoint_EncryptsSecretsAndHidesThem(t *testing.T) {
	f := newFixture(t)
	var created *models.EndpointConfig
	f.endpoints.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.EndpointConfig)
	}).Return(nil)

	response, err := f.usecase.CreateEndpoint(context.Background(), &requests.CreateEndpoint{
		HospitalID:   hospital1,
		DataType:     string(models.DataTypeLabResults),
		URLTemplate:  " https://h1.example.org/fhir/DiagnosticReport?patient={patientId} ",
		APIKey:       "key-123",
		BearerToken:  "",
		Parameters:   []requests.EndpointParameter{{Name: "date", Placeholder: "date", ExampleValue: "2024-01-01"}},
		AllowedRoles: []string{"Doctor"},
		CallerUserID: manager1.ID,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "https://h1.example.org/fhir/DiagnosticReport?patient={patientId}", created.URLTemplate)
	assert.Equal(t, constvars.MethodGet, created.HTTPMethod)
	require.NotNil(t, created.APIKeyCipher)
	assert.NotEqual(t, "key-123", *created.APIKeyCipher)
	plain, err := f.cipher.Decrypt(*created.APIKeyCipher)
	require.NoError(t, err)
	assert.Equal(t, "key-123", plain)
	assert.Nil(t, created.BearerTokenCipher)
	assert.Equal(t, "{date}", created.Parameters[0].Placeholder)
	assert.Equal(t, []models.Role{models.RoleDoctor}, created.AllowedRoles)

	assert.True(t, response.HasAPIKey)
	assert.False(t, response.HasBearerToken)
	assert.Equal(t, created.ID, response.ID)

	entries := f.audit.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, constvars.AuditActionCreateEndpoint, entries[0].Action)
	assert.Equal(t, manager1.ID, entries[0].ActorUserID)
}

func TestCreateEndpoint_RequiresManagerOfHospital(t *testing.T) {
	for _, callerID := range []string{doctor1.ID, manager2.ID, "ghost"} {
		t.Run(callerID, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.usecase.CreateEndpoint(context.Background(), &requests.CreateEndpoint{
				HospitalID:   hospital1,
				DataType:     string(models.DataTypeLabResults),
				URLTemplate:  "https://h1.example.org/fhir/DiagnosticReport",
				CallerUserID: callerID,
			})

			var customErr *exceptions.CustomError
			require.ErrorAs(t, err, &customErr)
			assert.Contains(t, []int{constvars.StatusForbidden, constvars.StatusUnauthorized}, customErr.StatusCode)
			f.endpoints.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateEndpoint_DuplicateIsPassedThrough(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("Create", mock.Anything, mock.Anything).Return(exceptions.ErrEndpointDuplicate(errors.New("duplicate key")))

	_, err := f.usecase.CreateEndpoint(context.Background(), &requests.CreateEndpoint{
		HospitalID:   hospital1,
		DataType:     string(models.DataTypeLabResults),
		URLTemplate:  "https://h1.example.org/fhir/DiagnosticReport",
		CallerUserID: manager1.ID,
	})

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestUpdateEndpoint_SecretsKeptClearedOrReplaced(t *testing.T) {
	f := newFixture(t)
	existing := storedEndpoint("endpoint-1", models.DataTypeLabResults, "https://h1.example.org/fhir/old")
	existing.APIKeyCipher = f.sealed(t, "old-key")
	existing.BearerTokenCipher = f.sealed(t, "old-token")
	valid := true
	existing.IsValid = &valid
	f.endpoints.On("FindByID", mock.Anything, "endpoint-1").Return(existing, nil)

	var updated *models.EndpointConfig
	f.endpoints.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*models.EndpointConfig)
	}).Return(nil)

	cleared := ""
	response, err := f.usecase.UpdateEndpoint(context.Background(), &requests.UpdateEndpoint{
		URLTemplate:  "https://h1.example.org/fhir/new?patient={patientId}",
		HTTPMethod:   "post",
		APIKey:       nil,
		BearerToken:  &cleared,
		EndpointID:   "endpoint-1",
		CallerUserID: manager1.ID,
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "POST", updated.HTTPMethod)
	require.NotNil(t, updated.APIKeyCipher)
	plain, err := f.cipher.Decrypt(*updated.APIKeyCipher)
	require.NoError(t, err)
	assert.Equal(t, "old-key", plain)
	assert.Nil(t, updated.BearerTokenCipher)
	assert.Nil(t, updated.IsValid)
	assert.True(t, response.HasAPIKey)
	assert.False(t, response.HasBearerToken)
}

func TestUpdateEndpoint_NotFound(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	_, err := f.usecase.UpdateEndpoint(context.Background(), &requests.UpdateEndpoint{
		URLTemplate:  "https://h1.example.org/fhir",
		EndpointID:   "missing",
		CallerUserID: manager1.ID,
	})

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}

func TestDeleteEndpoint_HardDeletes(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("FindByID", mock.Anything, "endpoint-1").Return(storedEndpoint("endpoint-1", models.DataTypeLabResults, "https://h1.example.org/fhir"), nil)
	f.endpoints.On("Delete", mock.Anything, "endpoint-1").Return(nil)

	err := f.usecase.DeleteEndpoint(context.Background(), manager1.ID, "endpoint-1")

	require.NoError(t, err)
	f.endpoints.AssertCalled(t, "Delete", mock.Anything, "endpoint-1")
	entries := f.audit.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, constvars.AuditActionDeleteEndpoint, entries[0].Action)
}

func TestDeleteEndpoint_OtherHospitalManagerIsForbidden(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("FindByID", mock.Anything, "endpoint-1").Return(storedEndpoint("endpoint-1", models.DataTypeLabResults, "https://h1.example.org/fhir"), nil)

	err := f.usecase.DeleteEndpoint(context.Background(), manager2.ID, "endpoint-1")

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusForbidden, customErr.StatusCode)
	f.endpoints.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestFindEndpointsByHospital_DefaultsToCallerHospital(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("FindByHospital", mock.Anything, hospital1).Return([]models.EndpointConfig{
		*storedEndpoint("endpoint-1", models.DataTypeLabResults, "https://h1.example.org/fhir/a"),
		*storedEndpoint("endpoint-2", models.DataTypeVitalSigns, "https://h1.example.org/fhir/b"),
	}, nil)

	endpoints, err := f.usecase.FindEndpointsByHospital(context.Background(), manager1.ID, "")

	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "endpoint-1", endpoints[0].ID)
	assert.NotNil(t, endpoints[0].Parameters)
	assert.NotNil(t, endpoints[0].AllowedRoles)
}

func TestValidateEndpoint_UsesSampleIDAndStoresResult(t *testing.T) {
	f := newFixture(t)
	endpoint := storedEndpoint("endpoint-1", models.DataTypeVitalSigns, "https://h1.example.org/fhir/Observation?patient={patientId}&date={date}")
	endpoint.Parameters = []models.EndpointParameter{{Name: "date", Placeholder: "{date}", ExampleValue: "2024-01-01"}}
	endpoint.APIKeyCipher = f.sealed(t, "key-123")
	f.endpoints.On("FindByID", mock.Anything, "endpoint-1").Return(endpoint, nil)

	message := "Bundle contains no entries"
	result := &models.ValidationResult{IsValid: false, ErrorMessage: &message, LatencyMs: 12, ValidatedAt: time.Now().UTC()}
	f.validator.On("Validate", mock.Anything, mock.MatchedBy(func(target *models.FhirTarget) bool {
		return target.URL == "https://h1.example.org/fhir/Observation?patient=sample-patient&date=2024-01-01" &&
			target.APIKey == "key-123" &&
			target.Timeout == 30*time.Second
	})).Return(result)
	f.endpoints.On("UpdateValidation", mock.Anything, "endpoint-1", result).Return(nil)

	validation, err := f.usecase.ValidateEndpoint(context.Background(), manager1.ID, "endpoint-1")

	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	require.NotNil(t, validation.ErrorMessage)
	assert.Equal(t, message, *validation.ErrorMessage)
	assert.Equal(t, "endpoint-1", validation.EndpointID)
	f.validator.AssertExpectations(t)
	f.endpoints.AssertExpectations(t)

	entries := f.audit.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, constvars.AuditActionValidateEndpoint, entries[0].Action)
	assert.False(t, entries[0].Success)
	assert.Equal(t, message, entries[0].ErrorMessage)
}

func TestValidateEndpoint_EndpointSampleIDWins(t *testing.T) {
	f := newFixture(t)
	endpoint := storedEndpoint("endpoint-1", models.DataTypeVitalSigns, "https://h1.example.org/fhir/Patient/{patientId}/$everything")
	sample := "P-42"
	endpoint.SamplePatientID = &sample
	f.endpoints.On("FindByID", mock.Anything, "endpoint-1").Return(endpoint, nil)

	result := &models.ValidationResult{IsValid: true, ValidatedAt: time.Now().UTC()}
	f.validator.On("Validate", mock.Anything, mock.MatchedBy(func(target *models.FhirTarget) bool {
		return target.URL == "https://h1.example.org/fhir/Patient/P-42/$everything"
	})).Return(result)
	f.endpoints.On("UpdateValidation", mock.Anything, "endpoint-1", result).Return(nil)

	validation, err := f.usecase.ValidateEndpoint(context.Background(), manager1.ID, "endpoint-1")

	require.NoError(t, err)
	assert.True(t, validation.IsValid)
}

func TestValidateAllEndpoints_IndependentResults(t *testing.T) {
	f := newFixture(t)
	endpoints := []models.EndpointConfig{
		*storedEndpoint("endpoint-1", models.DataTypeLabResults, "https://h1.example.org/fhir/a"),
		*storedEndpoint("endpoint-2", models.DataTypeVitalSigns, "https://h1.example.org/fhir/b"),
		*storedEndpoint("endpoint-3", models.DataTypeAllergies, "https://h1.example.org/fhir/c"),
	}
	f.endpoints.On("FindByHospital", mock.Anything, hospital1).Return(endpoints, nil)

	var inFlight, maxInFlight int32
	failure := "HTTP 503: Service Unavailable"
	track := func(mock.Arguments) {
		current := atomic.AddInt32(&inFlight, 1)
		for {
			seen := atomic.LoadInt32(&maxInFlight)
			if current <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}
	for _, endpoint := range endpoints {
		result := &models.ValidationResult{IsValid: true, ValidatedAt: time.Now().UTC()}
		if endpoint.ID == "endpoint-2" {
			result = &models.ValidationResult{IsValid: false, ErrorMessage: &failure, ValidatedAt: time.Now().UTC()}
		}
		url := endpoint.URLTemplate
		f.validator.On("Validate", mock.Anything, mock.MatchedBy(func(target *models.FhirTarget) bool {
			return target.URL == url
		})).Run(track).Return(result)
	}
	f.endpoints.On("UpdateValidation", mock.Anything, "endpoint-1", mock.Anything).Return(nil)
	f.endpoints.On("UpdateValidation", mock.Anything, "endpoint-2", mock.Anything).Return(nil)
	f.endpoints.On("UpdateValidation", mock.Anything, "endpoint-3", mock.Anything).Return(errors.New("connection reset"))

	results, err := f.usecase.ValidateAllEndpoints(context.Background(), manager1.ID, hospital1)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "endpoint-1", results[0].EndpointID)
	assert.True(t, results[0].IsValid)
	assert.Equal(t, "endpoint-2", results[1].EndpointID)
	assert.False(t, results[1].IsValid)
	require.NotNil(t, results[1].ErrorMessage)
	assert.Equal(t, failure, *results[1].ErrorMessage)
	assert.Equal(t, "endpoint-3", results[2].EndpointID)
	assert.False(t, results[2].IsValid)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
	f.endpoints.AssertNumberOfCalls(t, "UpdateValidation", 3)
}

func TestResolveURL_DataTypeEndpoint(t *testing.T) {
	f := newFixture(t)
	endpoint := storedEndpoint("endpoint-1", models.DataTypeLabResults, "https://h1.example.org/fhir/DiagnosticReport?patient={patientId}&date={date}")
	endpoint.BearerTokenCipher = f.sealed(t, "token-9")
	endpoint.AllowedRoles = []models.Role{models.RoleDoctor}
	f.endpoints.On("FindByHospitalAndDataType", mock.Anything, hospital1, models.DataTypeLabResults).Return(endpoint, nil)

	target, err := f.usecase.ResolveURL(context.Background(), hospital1, models.DataTypeLabResults, "P-1")

	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "https://h1.example.org/fhir/DiagnosticReport?patient=P-1", target.URL)
	assert.Equal(t, "token-9", target.BearerToken)
	assert.Equal(t, "endpoint-1", target.EndpointID)
	assert.False(t, target.IsPatientEverything)
	assert.True(t, target.AllowsRole(models.RoleDoctor))
	assert.False(t, target.AllowsRole(models.RoleStaff))
	f.settings.AssertNotCalled(t, "FindActiveByHospital", mock.Anything, mock.Anything)
}

func TestResolveURL_FallsBackToHospitalSetting(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("FindByHospitalAndDataType", mock.Anything, hospital2, models.DataTypeMedicalHistory).Return(nil, nil)
	f.settings.On("FindActiveByHospital", mock.Anything, hospital2).Return(&models.HospitalSetting{
		ID:             "setting-1",
		HospitalID:     hospital2,
		FhirBaseURL:    "https://h2.example.org/fhir/",
		TimeoutSeconds: 10,
		APIKeyCipher:   f.sealed(t, "h2-key"),
		IsActive:       true,
	}, nil)

	target, err := f.usecase.ResolveURL(context.Background(), hospital2, models.DataTypeMedicalHistory, "P-2")

	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "https://h2.example.org/fhir/Patient/P-2/$everything", target.URL)
	assert.True(t, target.IsPatientEverything)
	assert.Equal(t, "h2-key", target.APIKey)
	assert.Equal(t, 10*time.Second, target.Timeout)
	assert.Equal(t, constvars.MethodGet, target.HTTPMethod)
	assert.Equal(t, "setting-1", target.SettingID)
}

func TestResolveURL_NothingConfigured(t *testing.T) {
	f := newFixture(t)
	f.endpoints.On("FindByHospitalAndDataType", mock.Anything, hospital2, models.DataTypeMedicalHistory).Return(nil, nil)
	f.settings.On("FindActiveByHospital", mock.Anything, hospital2).Return(nil, nil)

	target, err := f.usecase.ResolveURL(context.Background(), hospital2, models.DataTypeMedicalHistory, "P-2")

	assert.NoError(t, err)
	assert.Nil(t, target)
}
