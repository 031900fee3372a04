package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medbridge-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []*models.NotificationEvent
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *models.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestDispatcher_PublishesInBackground(t *testing.T) {
	publisher := &recordingPublisher{}
	dispatcher := NewDispatcher(publisher, zap.NewNop(), nil, 4)
	dispatcher.Start()

	dispatcher.Dispatch(context.Background(), &models.NotificationEvent{
		EventType:        "data_request.pending",
		DataRequestID:    "req-1",
		TargetHospitalID: "hospital-2",
	})

	require.Eventually(t, func() bool { return publisher.count() == 1 }, time.Second, 10*time.Millisecond)
	dispatcher.Stop()

	event := publisher.published[0]
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.OccurredAt.IsZero())
	assert.Equal(t, "hospital-2", event.TargetHospitalID)
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	publisher := &recordingPublisher{}
	dispatcher := NewDispatcher(publisher, zap.NewNop(), nil, 1)

	done := make(chan struct{})
	go func() {
		dispatcher.Dispatch(context.Background(), &models.NotificationEvent{DataRequestID: "req-1"})
		dispatcher.Dispatch(context.Background(), &models.NotificationEvent{DataRequestID: "req-2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full buffer")
	}

	dispatcher.Start()
	dispatcher.Stop()
	assert.Equal(t, 1, publisher.count())
	assert.Equal(t, "req-1", publisher.published[0].DataRequestID)
}

func TestDispatcher_StopDrainsBufferedEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	dispatcher := NewDispatcher(publisher, zap.NewNop(), nil, 8)

	for i := 0; i < 5; i++ {
		dispatcher.Dispatch(context.Background(), &models.NotificationEvent{DataRequestID: "req"})
	}
	dispatcher.Start()
	dispatcher.Stop()

	assert.Equal(t, 5, publisher.count())
}

func TestDispatcher_PublishFailureDoesNotStopLoop(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("channel closed")}
	dispatcher := NewDispatcher(publisher, zap.NewNop(), nil, 4)
	dispatcher.Start()

	dispatcher.Dispatch(context.Background(), &models.NotificationEvent{DataRequestID: "req-1"})
	dispatcher.Dispatch(context.Background(), &models.NotificationEvent{DataRequestID: "req-2"})

	require.Eventually(t, func() bool { return publisher.count() == 2 }, time.Second, 10*time.Millisecond)
	dispatcher.Stop()
}

func TestEventFor(t *testing.T) {
	reason := "Remote FHIR endpoint returned HTTP 503: Service Unavailable"
	request := &models.DataRequest{
		ID:                   "req-9",
		RequestingHospitalID: "hospital-1",
		PatientHospitalID:    "hospital-2",
		DataType:             models.DataTypeMedicalHistory,
		Status:               models.RequestStatusError,
		DenialReason:         &reason,
	}

	event := EventFor(request, "hospital-1")

	assert.Equal(t, "data_request.error", event.EventType)
	assert.Equal(t, "hospital-1", event.TargetHospitalID)
	assert.Equal(t, "hospital-2", event.PatientHospitalID)
	assert.Equal(t, reason, event.Reason)

	request.Status = models.RequestStatusPending
	request.DenialReason = nil
	assert.Equal(t, "data_request.pending", EventFor(request, "hospital-2").EventType)
}
