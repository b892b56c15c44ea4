package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	CORSOrigins     string // comma separated, "*" allows any origin

	// Storage
	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	// Question cache; caching is disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Session events; publishing is disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	RandomSeed    int64 // 0 seeds from the clock
	LookupWorkers int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   getenvDefault("SERVER_ADDRESS", ":8080"),
		ShutdownTimeout: mustGetDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     getenvDefault("CORS_ORIGINS", "*"),
		DBDriver:        getenvDefault("DB_DRIVER", "sqlite"),
		DBDSN:           os.Getenv("DB_DSN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         mustGetInt("REDIS_DB", 0),
		CacheTTL:        mustGetDuration("QUESTION_CACHE_TTL", 10*time.Minute),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    getenvDefault("AMQP_EXCHANGE", "study.sessions"),
		RandomSeed:      int64(mustGetInt("RANDOM_SEED", 0)),
		LookupWorkers:   mustGetInt("LOOKUP_WORKERS", 4),
	}
}

func mustGetDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func mustGetInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid integer: %v", k, v, err)
	}
	return n
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
