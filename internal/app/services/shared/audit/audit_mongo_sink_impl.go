package audit

import (
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type auditMongoSink struct {
	Collection *mongo.Collection
	Log        *zap.Logger
}

var (
	auditMongoSinkInstance contracts.AuditSink
	onceAuditMongoSink     sync.Once
)

// NewAuditMongoSink returns the append-only audit sink. It only ever
// inserts; entries are never updated or deleted.
func NewAuditMongoSink(db *mongo.Database, logger *zap.Logger) contracts.AuditSink {
	onceAuditMongoSink.Do(func() {
		auditMongoSinkInstance = &auditMongoSink{
			Collection: db.Collection(constvars.MongoCollectionAuditLogs),
			Log:        logger,
		}
	})
	return auditMongoSinkInstance
}

func (s *auditMongoSink) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	requestID := utils.GetRequestID(ctx)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = requestID
	}

	_, err := s.Collection.InsertOne(ctx, entry)
	if err != nil {
		s.Log.Error("auditMongoSink.Append error inserting document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAuditActionKey, entry.Action),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBInsertDocument(err)
	}

	s.Log.Debug("auditMongoSink.Append succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAuditActionKey, entry.Action),
		zap.String("entity_id", entry.EntityID),
	)
	return nil
}

// Record appends entry and only logs a failed append. Audit delivery never
// changes the outcome of the operation being audited.
func Record(ctx context.Context, sink contracts.AuditSink, logger *zap.Logger, entry *models.AuditLogEntry) {
	if sink == nil {
		return
	}
	if err := sink.Append(ctx, entry); err != nil {
		logger.Error("audit.Record error appending audit entry",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingAuditActionKey, entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}
