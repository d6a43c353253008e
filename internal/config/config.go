package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI             string
	MongoDatabase        string
	RedisAddr            string
	RabbitURL            string
	HTTPAddr             string
	PartnerHTTPAddr      string
	IdempotencyTTL       time.Duration
	ReconcileInterval    time.Duration
	ReconcileConcurrency int
	OTLPEndpoint         string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMPOTENCY_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}

	interval, _ := time.ParseDuration(os.Getenv("RECONCILE_INTERVAL"))
	if interval == 0 {
		interval = time.Hour
	}

	concurrency, _ := strconv.Atoi(os.Getenv("RECONCILE_CONCURRENCY"))
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Config{
		MongoURI:             getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getenv("MONGO_DB", "travelita"),
		RedisAddr:            getenv("REDIS_ADDR", "localhost:6379"),
		RabbitURL:            os.Getenv("RABBIT_URL"),
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		PartnerHTTPAddr:      getenv("PARTNER_HTTP_ADDR", ":8081"),
		IdempotencyTTL:       idempTTL,
		ReconcileInterval:    interval,
		ReconcileConcurrency: concurrency,
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
