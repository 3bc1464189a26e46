package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	// ResetDB wipes the catalog and loads the embedded fixtures at startup.
	ResetDB bool `env:"RESET_DB, default=false"`

	Mongo       MongoConfig
	Redis       RedisConfig
	Admin       AdminConfig
	Images      ImageConfig
	Fulfillment FulfillmentConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,           default=closet"`

	// Transactions requires a replica set.
	Transactions bool `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	// Addr left empty disables the product cache.
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB,          default=0"`
	ProductTTL time.Duration `env:"PRODUCT_CACHE_TTL, default=10m"`
}

type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type ImageConfig struct {
	MaxBytes int64 `env:"IMAGE_MAX_BYTES, default=5242880"`
}

type FulfillmentConfig struct {
	Workers     int           `env:"FULFILLMENT_WORKERS,      default=4"`
	MaxAttempts int           `env:"FULFILLMENT_MAX_ATTEMPTS, default=5"`
	RetryDelay  time.Duration `env:"FULFILLMENT_RETRY_DELAY,  default=500ms"`
}

// IsDevelopment reports whether logs should be human readable.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger zerolog.Logger) *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	return cfg
}

// LoadFrom reads configuration through lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
