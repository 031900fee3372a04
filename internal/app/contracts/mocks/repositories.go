package mocks

import (
	"context"
	"medbridge-service/internal/app/models"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Patient, error) {
	args := m.Called(ctx, externalID)
	patient, _ := args.Get(0).(*models.Patient)
	return patient, args.Error(1)
}

func (m *MockPatientRepository) FindByID(ctx context.Context, patientID string) (*models.Patient, error) {
	args := m.Called(ctx, patientID)
	patient, _ := args.Get(0).(*models.Patient)
	return patient, args.Error(1)
}

type MockConsentRepository struct {
	mock.Mock
}

func (m *MockConsentRepository) FindLatest(ctx context.Context, patientID, requestingUserID, requestingHospitalID string, dataType models.DataType) (*models.PatientConsent, error) {
	args := m.Called(ctx, patientID, requestingUserID, requestingHospitalID, dataType)
	consent, _ := args.Get(0).(*models.PatientConsent)
	return consent, args.Error(1)
}

type MockEndpointRepository struct {
	mock.Mock
}

func (m *MockEndpointRepository) Create(ctx context.Context, endpoint *models.EndpointConfig) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *MockEndpointRepository) Update(ctx context.Context, endpoint *models.EndpointConfig) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *MockEndpointRepository) Delete(ctx context.Context, endpointID string) error {
	args := m.Called(ctx, endpointID)
	return args.Error(0)
}

func (m *MockEndpointRepository) FindByID(ctx context.Context, endpointID string) (*models.EndpointConfig, error) {
	args := m.Called(ctx, endpointID)
	endpoint, _ := args.Get(0).(*models.EndpointConfig)
	return endpoint, args.Error(1)
}

func (m *MockEndpointRepository) FindByHospital(ctx context.Context, hospitalID string) ([]models.EndpointConfig, error) {
	args := m.Called(ctx, hospitalID)
	endpoints, _ := args.Get(0).([]models.EndpointConfig)
	return endpoints, args.Error(1)
}

func (m *MockEndpointRepository) FindByHospitalAndDataType(ctx context.Context, hospitalID string, dataType models.DataType) (*models.EndpointConfig, error) {
	args := m.Called(ctx, hospitalID, dataType)
	endpoint, _ := args.Get(0).(*models.EndpointConfig)
	return endpoint, args.Error(1)
}

func (m *MockEndpointRepository) UpdateValidation(ctx context.Context, endpointID string, result *models.ValidationResult) error {
	args := m.Called(ctx, endpointID, result)
	return args.Error(0)
}

type MockHospitalSettingRepository struct {
	mock.Mock
}

func (m *MockHospitalSettingRepository) Create(ctx context.Context, setting *models.HospitalSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockHospitalSettingRepository) Update(ctx context.Context, setting *models.HospitalSetting) (bool, error) {
	args := m.Called(ctx, setting)
	return args.Bool(0), args.Error(1)
}

func (m *MockHospitalSettingRepository) Deactivate(ctx context.Context, settingID string, at time.Time) (bool, error) {
	args := m.Called(ctx, settingID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockHospitalSettingRepository) FindByID(ctx context.Context, settingID string) (*models.HospitalSetting, error) {
	args := m.Called(ctx, settingID)
	setting, _ := args.Get(0).(*models.HospitalSetting)
	return setting, args.Error(1)
}

func (m *MockHospitalSettingRepository) FindByHospital(ctx context.Context, hospitalID string) ([]models.HospitalSetting, error) {
	args := m.Called(ctx, hospitalID)
	settings, _ := args.Get(0).([]models.HospitalSetting)
	return settings, args.Error(1)
}

func (m *MockHospitalSettingRepository) FindActiveByHospital(ctx context.Context, hospitalID string) (*models.HospitalSetting, error) {
	args := m.Called(ctx, hospitalID)
	setting, _ := args.Get(0).(*models.HospitalSetting)
	return setting, args.Error(1)
}

func (m *MockHospitalSettingRepository) UpdateValidation(ctx context.Context, settingID string, result *models.ValidationResult) error {
	args := m.Called(ctx, settingID, result)
	return args.Error(0)
}

type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	args := m.Called(ctx, key, value, exp)
	return args.Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}
