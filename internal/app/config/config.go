package config

import (
	"medbridge-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		PostgresDB: PostgresDB{
			Host:     utils.GetEnvString("POSTGRES_HOST", "localhost"),
			Port:     utils.GetEnvString("POSTGRES_PORT", "5432"),
			Username: utils.GetEnvString("POSTGRES_USERNAME", "postgres"),
			Password: utils.GetEnvString("POSTGRES_PASSWORD", "postgres"),
			DBName:   utils.GetEnvString("POSTGRES_DB_NAME", "medbridge"),
			SSLMode:  utils.GetEnvString("POSTGRES_SSL_MODE", "disable"),
		},
		MongoDB: MongoDB{
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "medbridge_audit"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQ{
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", ":8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "UTC"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUESTS", 100),
			ShutdownTimeout:            utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 2),
		},
		FHIR: FHIR{
			OutboundTimeoutInSeconds:  utils.GetEnvInt("FHIR_OUTBOUND_TIMEOUT_IN_SECONDS", 30),
			OutboundRequestsPerSecond: utils.GetEnvFloat("FHIR_OUTBOUND_REQUESTS_PER_SECOND", 10),
			OutboundBurst:             utils.GetEnvInt("FHIR_OUTBOUND_BURST", 5),
			ResponseSampleLimit:       utils.GetEnvInt("FHIR_RESPONSE_SAMPLE_LIMIT", 500),
			DefaultSamplePatientID:    utils.GetEnvString("FHIR_DEFAULT_SAMPLE_PATIENT_ID", "example"),
			ValidateAllConcurrency:    utils.GetEnvInt("FHIR_VALIDATE_ALL_CONCURRENCY", 8),
		},
		DataRequest: DataRequest{
			DedupWindowInSeconds:   utils.GetEnvInt("DATA_REQUEST_DEDUP_WINDOW_IN_SECONDS", 60),
			NotificationBufferSize: utils.GetEnvInt("DATA_REQUEST_NOTIFICATION_BUFFER_SIZE", 256),
		},
		Security: Security{
			JWTSecret:         utils.GetEnvString("JWT_SECRET", "anyjwt"),
			EndpointSecretKey: utils.GetEnvString("ENDPOINT_SECRET_KEY", ""),
		},
		Messaging: Messaging{
			NotificationQueue: utils.GetEnvString("RABBITMQ_NOTIFICATION_QUEUE", "data_request_notifications"),
		},
		Archive: Archive{
			BucketName: utils.GetEnvString("MINIO_ARCHIVE_BUCKET_NAME", "medbridge-fhir-archive"),
		},
	}
}
