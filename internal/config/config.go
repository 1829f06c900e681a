package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Account  AccountConfig
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Snapshot SnapshotConfig
}

// AppConfig holds service identity and logging settings
type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"pnl-service"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// AccountConfig identifies the trading account this instance tracks
type AccountConfig struct {
	ID string `envconfig:"ACCOUNT_ID" default:"system"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port string `envconfig:"SERVER_PORT" default:"8081"`
}

// Address returns the listen address in host:port format
func (s ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"postgres"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"trader"`
	Password string `envconfig:"DB_PASSWORD" default:"trader5"`
	DBName   string `envconfig:"DB_NAME" default:"trading_platform"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ConnectionString returns the PostgreSQL connection string
func (d DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Brokers       []string `envconfig:"KAFKA_BROKERS" default:"localhost:19092"`
	TradesTopic   string   `envconfig:"KAFKA_TRADES_TOPIC" default:"trading.trades"`
	PricesTopic   string   `envconfig:"KAFKA_PRICES_TOPIC" default:"trading.prices"`
	PnLTopic      string   `envconfig:"KAFKA_PNL_TOPIC" default:"trading.pnl"`
	ConsumerGroup string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"pnl-service"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string        `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"30s"`
}

// Address returns the Redis address in host:port format
func (r RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

// SnapshotConfig controls the periodic persistence worker
type SnapshotConfig struct {
	Enabled  bool          `envconfig:"SNAPSHOT_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"1m"`
}

// Load reads configuration from the environment, first applying a .env
// file when one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}
