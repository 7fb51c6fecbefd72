package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	CORSOrigin    string        `env:"CORS_ORIGIN" envDefault:"*"`
	MongoURI      string        `env:"MONGO_URI"`
	MongoDatabase string        `env:"MONGO_DB" envDefault:"marketplace"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	FiscalBaseURL string        `env:"FISCAL_BASE_URL"`
	FiscalAPIKey  string        `env:"FISCAL_API_KEY"`
	FiscalTimeout time.Duration `env:"FISCAL_TIMEOUT" envDefault:"10s"`
	KafkaBrokers  []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string        `env:"KAFKA_TOPIC" envDefault:"trade-events"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	SeedData      bool          `env:"SEED_SAMPLE_DATA" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	return cfg, env.Parse(&cfg)
}
