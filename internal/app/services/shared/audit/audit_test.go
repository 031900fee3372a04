package audit

import (
	"context"
	"errors"
	"medbridge-service/internal/app/contracts/mocks"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

func TestAppend(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fills identity and request id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		sink := &auditMongoSink{Collection: mt.Coll, Log: zap.NewNop()}
		ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")
		entry := &models.AuditLogEntry{Action: constvars.AuditActionResolveDataRequest, EntityID: "dr-1", Success: true}

		err := sink.Append(ctx, entry)

		require.NoError(mt, err)
		assert.NotEmpty(mt, entry.ID)
		assert.False(mt, entry.Timestamp.IsZero())
		assert.Equal(mt, "req-1", entry.RequestID)
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 0}, {Key: "errmsg", Value: "not primary"}})
		sink := &auditMongoSink{Collection: mt.Coll, Log: zap.NewNop()}

		err := sink.Append(context.Background(), &models.AuditLogEntry{Action: constvars.AuditActionResolveDataRequest})

		var customErr *exceptions.CustomError
		require.ErrorAs(mt, err, &customErr)
		assert.Equal(mt, constvars.StatusInternalServerError, customErr.StatusCode)
	})
}

func TestRecord_SwallowsSinkErrors(t *testing.T) {
	sink := &mocks.RecordingAuditSink{Err: errors.New("mongo down")}

	assert.NotPanics(t, func() {
		Record(context.Background(), sink, zap.NewNop(), &models.AuditLogEntry{Action: constvars.AuditActionResolveDataRequest})
	})
	assert.Len(t, sink.Snapshot(), 1)
}

func TestRecord_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		Record(context.Background(), nil, zap.NewNop(), &models.AuditLogEntry{})
	})
}
