package config

import (
	"flag"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultServerAddress  = ":8080"
	defaultDatabaseDSN    = ""
	defaultLogLevel       = "info"
	defaultTokenKey       = "streetmart-dev-key"
	defaultTokenTTL       = 24 * time.Hour
	defaultKafkaTopic     = "streetmart.order-events"
	defaultOutboxInterval = 5 * time.Second
	defaultCurrency       = "INR"
)

// Config is server configuration
type Config struct {
	ServerAddr     string        `env:"RUN_ADDRESS"`
	DatabaseDSN    string        `env:"DATABASE_URI"`
	LogLevel       string        `env:"LOG_LEVEL"`
	TokenKey       string        `env:"AUTH_TOKEN_KEY"`
	TokenTTL       time.Duration `env:"TOKEN_TTL"`
	KafkaBrokers   string        `env:"KAFKA_BROKERS"`
	KafkaTopic     string        `env:"KAFKA_TOPIC"`
	OutboxInterval time.Duration `env:"OUTBOX_INTERVAL"`
	Currency       string        `env:"CURRENCY"`
	OTelEndpoint   string        `env:"OTEL_ENDPOINT"`
}

var (
	once      sync.Once
	singleton *Config
	loadErr   error
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		singleton, loadErr = Load(os.Args[0], os.Args[1:], env.ToMap(os.Environ()))
	})

	return singleton, loadErr
}

// Load parses args and then environ, so set environment variables win over flags
func Load(name string, args []string, environ map[string]string) (*Config, error) {
	cfg := Config{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "server address")
	fs.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "database DSN, in-memory store when empty")
	fs.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
	fs.StringVar(&cfg.TokenKey, "k", defaultTokenKey, "auth token signing key")
	fs.DurationVar(&cfg.TokenTTL, "t", defaultTokenTTL, "auth token lifetime")
	fs.StringVar(&cfg.KafkaBrokers, "b", "", "comma separated kafka brokers, relay is off when empty")
	fs.StringVar(&cfg.KafkaTopic, "T", defaultKafkaTopic, "kafka topic of order events")
	fs.DurationVar(&cfg.OutboxInterval, "i", defaultOutboxInterval, "outbox relay interval")
	fs.StringVar(&cfg.Currency, "c", defaultCurrency, "ISO 4217 currency of prices")
	fs.StringVar(&cfg.OTelEndpoint, "o", "", "OTLP HTTP endpoint, tracing is off when empty")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// if environment variable is set, then using it
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, err
	}

	return &cfg, nil
}
