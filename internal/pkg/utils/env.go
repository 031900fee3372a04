package utils

import (
	"log"
	"os"
	"strconv"
	"time"
)

func lookupEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return "", false
	}
	return value, true
}

func GetEnvString(key, defaultValue string) string {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return intValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return boolValue
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return floatValue
}

// GetEnvSeconds reads an integer number of seconds.
func GetEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(GetEnvInt(key, defaultValue)) * time.Second
}
