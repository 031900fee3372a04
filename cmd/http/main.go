package main

import (
	"context"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/delivery/http/controllers"
	"medbridge-service/internal/app/delivery/http/middlewares"
	"medbridge-service/internal/app/delivery/http/routers"
	"medbridge-service/internal/app/drivers/database"
	"medbridge-service/internal/app/drivers/logger"
	"medbridge-service/internal/app/drivers/messaging"
	"medbridge-service/internal/app/drivers/storage"
	"medbridge-service/internal/app/services/core/approvals"
	"medbridge-service/internal/app/services/core/datarequests"
	"medbridge-service/internal/app/services/core/directory"
	"medbridge-service/internal/app/services/core/endpoints"
	"medbridge-service/internal/app/services/core/hospitalsettings"
	"medbridge-service/internal/app/services/fhir_spark/remote"
	"medbridge-service/internal/app/services/fhir_spark/synthesis"
	"medbridge-service/internal/app/services/fhir_spark/validator"
	"medbridge-service/internal/app/services/shared/audit"
	"medbridge-service/internal/app/services/shared/notification"
	"medbridge-service/internal/app/services/shared/redis"
	archive "medbridge-service/internal/app/services/shared/storage"
	"medbridge-service/internal/pkg/metrics"
	"medbridge-service/internal/pkg/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Approval and validation handlers wait on a remote FHIR server; they get the
// outbound timeout plus this much for local bookkeeping.
const handlerTimeoutMargin = 10 * time.Second

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatal("Error loading location", zap.Error(err))
	}
	time.Local = location

	postgresDB := database.NewPostgresDB(driverConfig)
	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig, internalConfig.Archive.BucketName)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		PostgresDB:     postgresDB,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Minio:          minioClient,
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	bootstrapingTheApp(bootstrap)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		log.Info("Server listening", zap.String("address", internalConfig.App.Port))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to release resources", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) {
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger

	m := metrics.New(internalConfig.App.Version)

	cipher, err := utils.NewSecretCipher(internalConfig.Security.EndpointSecretKey)
	if err != nil {
		log.Fatal("Invalid endpoint secret key", zap.Error(err))
	}

	// Shared
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	auditSink := audit.NewAuditMongoSink(bootstrap.MongoDB.Database(bootstrap.DriverConfig.MongoDB.DbName), log)
	responseArchive := archive.NewMinioArchive(bootstrap.Minio, internalConfig.Archive.BucketName, log)

	publisher, err := notification.NewRabbitMQPublisher(bootstrap.RabbitMQ, internalConfig.Messaging.NotificationQueue, log)
	if err != nil {
		log.Fatal("Failed to declare notification queue", zap.Error(err))
	}
	dispatcher := notification.NewDispatcher(publisher, log, m, internalConfig.DataRequest.NotificationBufferSize)
	dispatcher.Start()
	bootstrap.WorkerStop = dispatcher.Stop

	// FHIR
	outboundTimeout := time.Duration(internalConfig.FHIR.OutboundTimeoutInSeconds) * time.Second
	remoteClient := remote.NewRemoteFhirClient(log, m, remote.Options{
		DefaultTimeout:    outboundTimeout,
		RequestsPerSecond: internalConfig.FHIR.OutboundRequestsPerSecond,
		Burst:             internalConfig.FHIR.OutboundBurst,
	})
	fhirValidator := validator.NewFhirValidator(remoteClient, log, m, internalConfig.FHIR.ResponseSampleLimit, outboundTimeout)
	fhirSynthesizer := synthesis.NewFhirSynthesizer(log)

	// Directory
	userRepository := directory.NewUserPostgresRepository(bootstrap.PostgresDB, log)
	patientRepository := directory.NewPatientPostgresRepository(bootstrap.PostgresDB, log)
	consentRepository := directory.NewConsentPostgresRepository(bootstrap.PostgresDB, log)

	// Hospital settings
	hospitalSettingRepository := hospitalsettings.NewHospitalSettingPostgresRepository(bootstrap.PostgresDB, log)
	hospitalSettingUsecase := hospitalsettings.NewHospitalSettingUsecase(
		hospitalSettingRepository,
		userRepository,
		fhirValidator,
		auditSink,
		cipher,
		internalConfig,
		log,
	)

	// Endpoints
	endpointRepository := endpoints.NewEndpointPostgresRepository(bootstrap.PostgresDB, log)
	endpointRegistry := endpoints.NewEndpointUsecase(
		endpointRepository,
		hospitalSettingRepository,
		userRepository,
		fhirValidator,
		auditSink,
		cipher,
		internalConfig,
		log,
	)

	// Data requests
	dataRequestRepository := datarequests.NewDataRequestPostgresRepository(bootstrap.PostgresDB, log)
	dataRequestUsecase := datarequests.NewDataRequestUsecase(
		dataRequestRepository,
		userRepository,
		patientRepository,
		consentRepository,
		fhirSynthesizer,
		dispatcher,
		auditSink,
		redisRepository,
		m,
		internalConfig,
		log,
	)
	approvalUsecase := approvals.NewApprovalUsecase(
		dataRequestRepository,
		userRepository,
		patientRepository,
		consentRepository,
		endpointRegistry,
		remoteClient,
		fhirValidator,
		dispatcher,
		responseArchive,
		auditSink,
		m,
		internalConfig,
		log,
	)

	// Delivery
	handlerTimeout := outboundTimeout + handlerTimeoutMargin
	middlewares := middlewares.NewMiddlewares(log, internalConfig, m)
	dataRequestController := controllers.NewDataRequestController(log, dataRequestUsecase, approvalUsecase, handlerTimeout)
	endpointController := controllers.NewEndpointController(log, endpointRegistry, handlerTimeout)
	hospitalSettingController := controllers.NewHospitalSettingController(log, hospitalSettingUsecase, handlerTimeout)

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewares,
		m,
		dataRequestController,
		endpointController,
		hospitalSettingController,
	)
}
