package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedMessage struct {
	exchange  string
	key       string
	mandatory bool
	immediate bool
	msg       amqp091.Publishing
}

type fakeChannel struct {
	published []publishedMessage
	err       error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	c.published = append(c.published, publishedMessage{exchange, key, mandatory, immediate, msg})
	return c.err
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	channel := &fakeChannel{}
	publisher := &rabbitMQPublisher{channel: channel, queue: "datarequest.notifications", log: zap.NewNop()}
	occurredAt := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	event := &models.NotificationEvent{
		ID:                   "evt-1",
		EventType:            constvars.NotificationEventDataRequestPending,
		DataRequestID:        "dr-1",
		TargetHospitalID:     "hospital-2",
		RequestingHospitalID: "hospital-1",
		PatientHospitalID:    "hospital-2",
		DataType:             models.DataTypeLabResults,
		Status:               models.RequestStatusPending,
		OccurredAt:           occurredAt,
	}

	err := publisher.Publish(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, channel.published, 1)
	sent := channel.published[0]
	assert.Equal(t, "", sent.exchange)
	assert.Equal(t, "datarequest.notifications", sent.key)
	assert.False(t, sent.mandatory)
	assert.False(t, sent.immediate)
	assert.Equal(t, amqp091.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, constvars.MIMEApplicationJSON, sent.msg.ContentType)
	assert.Equal(t, "evt-1", sent.msg.MessageId)
	assert.Equal(t, constvars.NotificationEventDataRequestPending, sent.msg.Type)
	assert.Equal(t, occurredAt, sent.msg.Timestamp)
	assert.Equal(t, "hospital-2", sent.msg.Headers["target_hospital_id"])

	var decoded models.NotificationEvent
	require.NoError(t, json.Unmarshal(sent.msg.Body, &decoded))
	assert.Equal(t, "dr-1", decoded.DataRequestID)
	assert.Equal(t, models.RequestStatusPending, decoded.Status)
	assert.Equal(t, models.DataTypeLabResults, decoded.DataType)
}

func TestRabbitMQPublisher_PublishError(t *testing.T) {
	channel := &fakeChannel{err: errors.New("channel/connection is not open")}
	publisher := &rabbitMQPublisher{channel: channel, queue: "datarequest.notifications", log: zap.NewNop()}

	err := publisher.Publish(context.Background(), &models.NotificationEvent{ID: "evt-2", DataRequestID: "dr-2"})

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusInternalServerError, customErr.StatusCode)
	assert.Len(t, channel.published, 1)
}
