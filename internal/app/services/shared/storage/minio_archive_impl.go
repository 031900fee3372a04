package storage

import (
	"bytes"
	"context"
	"fmt"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type minioArchive struct {
	MinioClient *minio.Client
	BucketName  string
	Log         *zap.Logger
}

// NewMinioArchive stores raw remote FHIR payloads of completed requests.
func NewMinioArchive(minioClient *minio.Client, bucketName string, logger *zap.Logger) contracts.ResponseArchive {
	return &minioArchive{
		MinioClient: minioClient,
		BucketName:  bucketName,
		Log:         logger,
	}
}

func ObjectName(requestID string) string {
	return fmt.Sprintf(constvars.MinioDataRequestObjectFormat, requestID)
}

func (m *minioArchive) Archive(ctx context.Context, requestID string, payload []byte) error {
	logRequestID := utils.GetRequestID(ctx)
	objectName := ObjectName(requestID)

	_, err := m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: constvars.MIMEApplicationFHIRJSON,
			UserMetadata: map[string]string{
				"data-request-id": requestID,
			},
		},
	)
	if err != nil {
		m.Log.Error("minioArchive.Archive error putting object",
			zap.String(constvars.LoggingRequestIDKey, logRequestID),
			zap.String(constvars.LoggingBucketNameKey, m.BucketName),
			zap.String(constvars.LoggingDataRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrMinioCreateObject(err, m.BucketName)
	}

	m.Log.Info("minioArchive.Archive succeeded",
		zap.String(constvars.LoggingRequestIDKey, logRequestID),
		zap.String(constvars.LoggingBucketNameKey, m.BucketName),
		zap.String(constvars.LoggingDataRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(payload)),
	)
	return nil
}
