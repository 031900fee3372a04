package database

import (
	"context"
	"log"
	"medbridge-service/internal/app/config"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance holding submission dedup
// keys. Timeouts are short because a slow Redis only disables dedup.
func NewRedisClient(driverConfig *config.DriverConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(driverConfig.Redis.Host, driverConfig.Redis.Port),
		Password:     driverConfig.Redis.Password,
		DB:           driverConfig.Redis.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}

	log.Println("Successfully connected to redis")
	return rdb
}
