package database

import (
	"context"
	"log"
	"medbridge-service/internal/app/config"
	"net"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoDB connects to the audit log store. Credentials are passed
// separately so special characters in the password need no escaping.
func NewMongoDB(driverConfig *config.DriverConfig) *mongo.Client {
	clientOptions := options.Client().
		ApplyURI("mongodb://" + net.JoinHostPort(driverConfig.MongoDB.Host, driverConfig.MongoDB.Port)).
		SetAppName("medbridge-service").
		SetServerSelectionTimeout(5 * time.Second).
		SetAuth(options.Credential{
			Username: driverConfig.MongoDB.Username,
			Password: driverConfig.MongoDB.Password,
		})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to mongo database: %s", err.Error())
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping or test the connection to mongo database: %s", err.Error())
	}
	log.Println("Successfully connected to mongo database")
	return client
}
