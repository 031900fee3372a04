package mocks

import (
	"context"
	"encoding/json"
	"medbridge-service/internal/app/models"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockFhirRemoteClient struct {
	mock.Mock
}

func (m *MockFhirRemoteClient) Fetch(ctx context.Context, target *models.FhirTarget) (*models.FhirResponse, error) {
	args := m.Called(ctx, target)
	resp, _ := args.Get(0).(*models.FhirResponse)
	return resp, args.Error(1)
}

type MockFhirValidator struct {
	mock.Mock
}

func (m *MockFhirValidator) Validate(ctx context.Context, target *models.FhirTarget) *models.ValidationResult {
	args := m.Called(ctx, target)
	result, _ := args.Get(0).(*models.ValidationResult)
	return result
}

func (m *MockFhirValidator) ValidatePayload(body []byte) error {
	args := m.Called(body)
	return args.Error(0)
}

func (m *MockFhirValidator) ValidateResource(body []byte) error {
	args := m.Called(body)
	return args.Error(0)
}

type MockFhirSynthesizer struct {
	mock.Mock
}

func (m *MockFhirSynthesizer) Synthesize(ctx context.Context, patient *models.Patient, dataType models.DataType, requestID string) (json.RawMessage, error) {
	args := m.Called(ctx, patient, dataType, requestID)
	payload, _ := args.Get(0).(json.RawMessage)
	return payload, args.Error(1)
}

type MockEndpointResolver struct {
	mock.Mock
}

func (m *MockEndpointResolver) ResolveURL(ctx context.Context, hospitalID string, dataType models.DataType, patientID string) (*models.FhirTarget, error) {
	args := m.Called(ctx, hospitalID, dataType, patientID)
	target, _ := args.Get(0).(*models.FhirTarget)
	return target, args.Error(1)
}

type MockResponseArchive struct {
	mock.Mock
}

func (m *MockResponseArchive) Archive(ctx context.Context, requestID string, payload []byte) error {
	args := m.Called(ctx, requestID, payload)
	return args.Error(0)
}

// RecordingDispatcher keeps every dispatched event.
type RecordingDispatcher struct {
	mu     sync.Mutex
	Events []models.NotificationEvent
}

func (d *RecordingDispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, *event)
}

func (d *RecordingDispatcher) Snapshot() []models.NotificationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.NotificationEvent(nil), d.Events...)
}

// RecordingAuditSink keeps every appended entry. Err, when set, is returned
// from Append after recording.
type RecordingAuditSink struct {
	mu      sync.Mutex
	Entries []models.AuditLogEntry
	Err     error
}

func (s *RecordingAuditSink) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, *entry)
	return s.Err
}

func (s *RecordingAuditSink) Snapshot() []models.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLogEntry(nil), s.Entries...)
}
