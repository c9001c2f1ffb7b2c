package config

import (
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	MongoDB   MongoDBConfig
	Server    ServerConfig
	Delivery  DeliveryConfig
	Trigger   TriggerConfig
	RateLimit RateLimitConfig
}

// MongoDBConfig holds MongoDB configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// DeliveryConfig holds outbound webhook call configuration
type DeliveryConfig struct {
	TimeoutSeconds int
}

// TriggerConfig holds the tick cadence for the trigger engines
type TriggerConfig struct {
	TickSpec string
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	deliveryTimeout, _ := strconv.Atoi(getEnv("DELIVERY_TIMEOUT_SECONDS", "10"))
	rps, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "50"), 64)
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "100"))

	return &Config{
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "webhook_scheduler"),
		},
		Server: ServerConfig{
			Port: getEnv("WEBHOOK_SCHEDULER_PORT", "8085"),
		},
		Delivery: DeliveryConfig{
			TimeoutSeconds: deliveryTimeout,
		},
		Trigger: TriggerConfig{
			TickSpec: getEnv("TRIGGER_TICK_SPEC", "@every 1m"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
