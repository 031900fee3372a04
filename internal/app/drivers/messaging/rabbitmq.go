package messaging

import (
	"log"
	"medbridge-service/internal/app/config"
	"strconv"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// NewRabbitMQ dials the broker that carries data request notifications.
// The connection name shows up in the management UI.
func NewRabbitMQ(driverConfig *config.DriverConfig) *amqp091.Connection {
	port, err := strconv.Atoi(driverConfig.RabbitMQ.Port)
	if err != nil {
		log.Fatalf("Invalid rabbitMQ port %q: %s", driverConfig.RabbitMQ.Port, err.Error())
	}

	uri := amqp091.URI{
		Scheme:   "amqp",
		Host:     driverConfig.RabbitMQ.Host,
		Port:     port,
		Username: driverConfig.RabbitMQ.Username,
		Password: driverConfig.RabbitMQ.Password,
		Vhost:    "/",
	}

	properties := amqp091.NewConnectionProperties()
	properties.SetClientConnectionName("medbridge-service")

	conn, err := amqp091.DialConfig(uri.String(), amqp091.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: properties,
	})
	if err != nil {
		log.Fatalf("Failed to connect to rabbitMQ: %s", err.Error())
	}
	log.Println("Successfully connected to rabbitMQ")
	return conn
}
