package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
	"time"
)

type RedisRepository interface {
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
}

// NotificationDispatcher hands events to a background publisher and never
// blocks the caller.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event *models.NotificationEvent)
}

type NotificationPublisher interface {
	Publish(ctx context.Context, event *models.NotificationEvent) error
}

type AuditSink interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
}

type ResponseArchive interface {
	Archive(ctx context.Context, requestID string, payload []byte) error
}
