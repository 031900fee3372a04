package mocks

import (
	"context"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/dto/responses"

	"github.com/stretchr/testify/mock"
)

type MockDataRequestUsecase struct {
	mock.Mock
}

func (m *MockDataRequestUsecase) SubmitRequest(ctx context.Context, request *requests.SubmitDataRequest) (*responses.DataRequestResult, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.DataRequestResult)
	return result, args.Error(1)
}

func (m *MockDataRequestUsecase) FindRequestByID(ctx context.Context, callerID, requestID string) (*responses.DataRequest, error) {
	args := m.Called(ctx, callerID, requestID)
	result, _ := args.Get(0).(*responses.DataRequest)
	return result, args.Error(1)
}

func (m *MockDataRequestUsecase) FindPendingByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.DataRequest, error) {
	args := m.Called(ctx, callerID, hospitalID)
	result, _ := args.Get(0).([]responses.DataRequest)
	return result, args.Error(1)
}

func (m *MockDataRequestUsecase) FindHistoryByUser(ctx context.Context, callerID, userID string) ([]responses.DataRequest, error) {
	args := m.Called(ctx, callerID, userID)
	result, _ := args.Get(0).([]responses.DataRequest)
	return result, args.Error(1)
}

type MockApprovalUsecase struct {
	mock.Mock
}

func (m *MockApprovalUsecase) ResolveRequest(ctx context.Context, request *requests.ResolveDataRequest) (*responses.DataRequestResult, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.DataRequestResult)
	return result, args.Error(1)
}

type MockEndpointUsecase struct {
	mock.Mock
}

func (m *MockEndpointUsecase) CreateEndpoint(ctx context.Context, request *requests.CreateEndpoint) (*responses.Endpoint, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.Endpoint)
	return result, args.Error(1)
}

func (m *MockEndpointUsecase) UpdateEndpoint(ctx context.Context, request *requests.UpdateEndpoint) (*responses.Endpoint, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.Endpoint)
	return result, args.Error(1)
}

func (m *MockEndpointUsecase) DeleteEndpoint(ctx context.Context, callerID, endpointID string) error {
	args := m.Called(ctx, callerID, endpointID)
	return args.Error(0)
}

func (m *MockEndpointUsecase) FindEndpointByID(ctx context.Context, callerID, endpointID string) (*responses.Endpoint, error) {
	args := m.Called(ctx, callerID, endpointID)
	result, _ := args.Get(0).(*responses.Endpoint)
	return result, args.Error(1)
}

func (m *MockEndpointUsecase) FindEndpointsByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.Endpoint, error) {
	args := m.Called(ctx, callerID, hospitalID)
	result, _ := args.Get(0).([]responses.Endpoint)
	return result, args.Error(1)
}

func (m *MockEndpointUsecase) ValidateEndpoint(ctx context.Context, callerID, endpointID string) (*responses.EndpointValidation, error) {
	args := m.Called(ctx, callerID, endpointID)
	result, _ := args.Get(0).(*responses.EndpointValidation)
	return result, args.Error(1)
}

func (m *MockEndpointUsecase) ValidateAllEndpoints(ctx context.Context, callerID, hospitalID string) ([]responses.EndpointValidation, error) {
	args := m.Called(ctx, callerID, hospitalID)
	result, _ := args.Get(0).([]responses.EndpointValidation)
	return result, args.Error(1)
}

type MockHospitalSettingUsecase struct {
	mock.Mock
}

func (m *MockHospitalSettingUsecase) CreateSetting(ctx context.Context, request *requests.CreateHospitalSetting) (*responses.HospitalSetting, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.HospitalSetting)
	return result, args.Error(1)
}

func (m *MockHospitalSettingUsecase) UpdateSetting(ctx context.Context, request *requests.UpdateHospitalSetting) (*responses.HospitalSetting, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.HospitalSetting)
	return result, args.Error(1)
}

func (m *MockHospitalSettingUsecase) DeactivateSetting(ctx context.Context, callerID, settingID string) error {
	args := m.Called(ctx, callerID, settingID)
	return args.Error(0)
}

func (m *MockHospitalSettingUsecase) FindSettingsByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.HospitalSetting, error) {
	args := m.Called(ctx, callerID, hospitalID)
	result, _ := args.Get(0).([]responses.HospitalSetting)
	return result, args.Error(1)
}

func (m *MockHospitalSettingUsecase) ValidateSetting(ctx context.Context, callerID, settingID string) (*responses.EndpointValidation, error) {
	args := m.Called(ctx, callerID, settingID)
	result, _ := args.Get(0).(*responses.EndpointValidation)
	return result, args.Error(1)
}

func (m *MockHospitalSettingUsecase) ValidateAdHocEndpoint(ctx context.Context, request *requests.ValidateAdHocEndpoint) (*responses.EndpointValidation, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*responses.EndpointValidation)
	return result, args.Error(1)
}
