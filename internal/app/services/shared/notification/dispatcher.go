package notification

import (
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/metrics"
	"medbridge-service/internal/pkg/utils"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	publishTimeout = 5 * time.Second

	outcomePublished = "published"
	outcomeFailed    = "failed"
	outcomeDropped   = "dropped"
)

type dispatched struct {
	event     *models.NotificationEvent
	requestID string
}

// Dispatcher decouples data request decisions from notification delivery.
// Dispatch only enqueues; a single background goroutine publishes.
type Dispatcher struct {
	publisher contracts.NotificationPublisher
	log       *zap.Logger
	metrics   *metrics.Metrics
	events    chan dispatched
	stop      chan struct{}
	done      chan struct{}
}

func NewDispatcher(publisher contracts.NotificationPublisher, logger *zap.Logger, m *metrics.Metrics, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		publisher: publisher,
		log:       logger,
		metrics:   m,
		events:    make(chan dispatched, bufferSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Dispatch enqueues the event. When the buffer is full the event is dropped
// and logged rather than blocking the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) {
	requestID := utils.GetRequestID(ctx)
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	select {
	case d.events <- dispatched{event: event, requestID: requestID}:
		d.log.Debug("Dispatcher.Dispatch event queued",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, event.EventType),
			zap.String(constvars.LoggingDataRequestIDKey, event.DataRequestID),
		)
	default:
		d.metrics.RecordNotification(outcomeDropped)
		d.log.Warn("Dispatcher.Dispatch buffer full, event dropped",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, event.EventType),
			zap.String(constvars.LoggingDataRequestIDKey, event.DataRequestID),
			zap.String(constvars.LoggingHospitalIDKey, event.TargetHospitalID),
		)
	}
}

// Start runs the publishing loop until Stop is called.
func (d *Dispatcher) Start() {
	d.log.Info("Notification dispatcher started")
	go func() {
		defer close(d.done)
		for {
			select {
			case <-d.stop:
				d.drain()
				return
			case item := <-d.events:
				d.publish(item)
			}
		}
	}()
}

// Stop publishes whatever is still buffered and waits for the loop to exit.
func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
	d.log.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) drain() {
	for {
		select {
		case item := <-d.events:
			d.publish(item)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(item dispatched) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, item.requestID)

	start := time.Now()
	err := d.publisher.Publish(ctx, item.event)
	d.metrics.ObserveOutbound(metrics.OperationNotifyPublish, err == nil, time.Since(start))
	if err != nil {
		d.metrics.RecordNotification(outcomeFailed)
		d.log.Error("Dispatcher.publish failed",
			zap.String(constvars.LoggingRequestIDKey, item.requestID),
			zap.String(constvars.LoggingEventTypeKey, item.event.EventType),
			zap.String(constvars.LoggingDataRequestIDKey, item.event.DataRequestID),
			zap.Error(err),
		)
		return
	}
	d.metrics.RecordNotification(outcomePublished)
}

// EventFor builds the event announcing request's current status to
// targetHospitalID.
func EventFor(request *models.DataRequest, targetHospitalID string) *models.NotificationEvent {
	event := &models.NotificationEvent{
		EventType:            eventTypeFor(request.Status),
		DataRequestID:        request.ID,
		TargetHospitalID:     targetHospitalID,
		RequestingHospitalID: request.RequestingHospitalID,
		PatientHospitalID:    request.PatientHospitalID,
		DataType:             request.DataType,
		Status:               request.Status,
	}
	if request.DenialReason != nil {
		event.Reason = *request.DenialReason
	}
	return event
}

func eventTypeFor(status models.RequestStatus) string {
	switch status {
	case models.RequestStatusPending:
		return constvars.NotificationEventDataRequestPending
	case models.RequestStatusCompleted:
		return constvars.NotificationEventDataRequestCompleted
	case models.RequestStatusDenied:
		return constvars.NotificationEventDataRequestDenied
	case models.RequestStatusError:
		return constvars.NotificationEventDataRequestError
	}
	return constvars.ResponseUnknown
}
