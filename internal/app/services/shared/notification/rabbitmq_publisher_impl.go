package notification

import (
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp091.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type rabbitMQPublisher struct {
	channel amqpChannel
	queue   string
	log     *zap.Logger
	mu      sync.Mutex
}

// NewRabbitMQPublisher opens a channel and declares the durable
// notification queue.
func NewRabbitMQPublisher(conn *amqp091.Connection, queue string, logger *zap.Logger) (contracts.NotificationPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return nil, err
	}

	return &rabbitMQPublisher{
		channel: channel,
		queue:   queue,
		log:     logger,
	}, nil
}

func (p *rabbitMQPublisher) Publish(ctx context.Context, event *models.NotificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         event.EventType,
		Headers: amqp091.Table{
			"message_type":       "JSON",
			"target_hospital_id": event.TargetHospitalID,
		},
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, message)
	p.mu.Unlock()
	if err != nil {
		p.log.Error("rabbitMQPublisher.Publish error publishing message",
			zap.String(constvars.LoggingQueueNameKey, p.queue),
			zap.String(constvars.LoggingDataRequestIDKey, event.DataRequestID),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err, p.queue)
	}

	p.log.Debug("rabbitMQPublisher.Publish succeeded",
		zap.String(constvars.LoggingQueueNameKey, p.queue),
		zap.String(constvars.LoggingEventTypeKey, event.EventType),
		zap.String(constvars.LoggingDataRequestIDKey, event.DataRequestID),
	)
	return nil
}
