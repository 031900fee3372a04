package config

type (
	InternalConfig struct {
		App         App
		FHIR        FHIR
		DataRequest DataRequest
		Security    Security
		Messaging   Messaging
		Archive     Archive
	}

	DriverConfig struct {
		PostgresDB PostgresDB
		MongoDB    MongoDB
		Redis      Redis
		RabbitMQ   RabbitMQ
		Minio      Minio
		Logger     Logger
	}

	App struct {
		Env                        string
		Port                       string
		Version                    string
		Timezone                   string
		EndpointPrefix             string
		MaxRequests                int
		ShutdownTimeout            int
		MaxTimeRequestsPerSeconds  int
		RequestBodyLimitInMegabyte int
	}

	FHIR struct {
		OutboundTimeoutInSeconds  int
		OutboundRequestsPerSecond float64
		OutboundBurst             int
		ResponseSampleLimit       int
		DefaultSamplePatientID    string
		ValidateAllConcurrency    int
	}

	DataRequest struct {
		DedupWindowInSeconds   int
		NotificationBufferSize int
	}

	Security struct {
		JWTSecret         string
		EndpointSecretKey string
	}

	Messaging struct {
		NotificationQueue string
	}

	Archive struct {
		BucketName string
	}

	PostgresDB struct {
		Host     string
		Port     string
		Username string
		Password string
		DBName   string
		SSLMode  string
	}

	MongoDB struct {
		Host     string
		Port     string
		Username string
		Password string
		DbName   string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}

	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}

	Minio struct {
		Host     string
		Port     string
		Username string
		Password string
		UseSSL   bool
	}

	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)
