package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds service level configuration loaded from environment and flags.
type Config struct {
	ServiceName string
	RunAddress  string
	DatabaseURI string

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	BasketTTL     time.Duration

	KafkaBrokers []string
	KafkaGroupID string

	JWTSecret string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxWorkers      int
	OutboxLease        time.Duration

	HandlerMaxAttempts  int
	HandlerRetryBackoff time.Duration

	PaymentDeclinePercent int
	PaymentDeclineReason  string

	NotificationWebhookURL string

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress           = ":8080"
	defaultRedisAddress         = "localhost:6379"
	defaultBasketTTL            = 30 * 24 * time.Hour
	defaultJWTSecret            = "change-me-in-production"
	defaultOutboxPollInterval   = time.Second
	defaultOutboxBatchSize      = 64
	defaultOutboxWorkers        = 4
	defaultOutboxLease          = 30 * time.Second
	defaultHandlerMaxAttempts   = 5
	defaultHandlerRetryBackoff  = 200 * time.Millisecond
	defaultPaymentDeclineReason = "insufficient funds (simulated)"
	defaultShutdownTimeout      = 10 * time.Second
	defaultEnvFile              = ".env"
)

// Requirement validates settings a particular service cannot run without.
type Requirement func(*Config) error

// RequireDatabase demands a PostgreSQL DSN.
func RequireDatabase(cfg *Config) error {
	if cfg.DatabaseURI == "" {
		return errors.New("database URI must be provided")
	}
	return nil
}

// RequireRedis demands a Redis address.
func RequireRedis(cfg *Config) error {
	if cfg.RedisAddress == "" {
		return errors.New("redis address must be provided")
	}
	return nil
}

// RequireBrokers demands at least one Kafka broker.
func RequireBrokers(cfg *Config) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("kafka brokers must be provided")
	}
	return nil
}

// Load parses configuration for the named service from flags, environment variables
// and an optional .env file.
func Load(service string, requirements ...Requirement) (*Config, error) {
	if err := loadEnvFile(os.LookupEnv); err != nil {
		return nil, err
	}
	return load(service, os.Args[1:], os.LookupEnv, requirements...)
}

// loadEnvFile exports variables from ENV_FILE (default .env) without overriding
// the ones already set. A missing file is not an error.
func loadEnvFile(lookup envLookup) error {
	envFile := getString(lookup, "ENV_FILE", defaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(service string, args []string, lookup envLookup, requirements ...Requirement) (*Config, error) {
	cfg := &Config{
		ServiceName:            getString(lookup, "SERVICE_NAME", service),
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		RedisAddress:           getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		RedisPassword:          getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:                getInt(lookup, "REDIS_DB", 0),
		BasketTTL:              getDuration(lookup, "BASKET_TTL", defaultBasketTTL),
		KafkaBrokers:           splitList(getString(lookup, "KAFKA_BROKERS", "")),
		KafkaGroupID:           getString(lookup, "KAFKA_GROUP_ID", service),
		JWTSecret:              getString(lookup, "JWT_SECRET", defaultJWTSecret),
		OutboxPollInterval:     getDuration(lookup, "OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		OutboxBatchSize:        getInt(lookup, "OUTBOX_BATCH_SIZE", defaultOutboxBatchSize),
		OutboxWorkers:          getInt(lookup, "OUTBOX_WORKERS", defaultOutboxWorkers),
		OutboxLease:            getDuration(lookup, "OUTBOX_LEASE", defaultOutboxLease),
		HandlerMaxAttempts:     getInt(lookup, "HANDLER_MAX_ATTEMPTS", defaultHandlerMaxAttempts),
		HandlerRetryBackoff:    getDuration(lookup, "HANDLER_RETRY_BACKOFF", defaultHandlerRetryBackoff),
		PaymentDeclinePercent:  getInt(lookup, "PAYMENT_DECLINE_PERCENT", 0),
		PaymentDeclineReason:   getString(lookup, "PAYMENT_DECLINE_REASON", defaultPaymentDeclineReason),
		NotificationWebhookURL: getString(lookup, "NOTIFICATION_WEBHOOK_URL", ""),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	flags := flag.NewFlagSet(service, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		brokersStr         = strings.Join(cfg.KafkaBrokers, ",")
		pollIntervalStr    = cfg.OutboxPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	flags.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	flags.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	flags.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address")
	flags.StringVar(&brokersStr, "brokers", brokersStr, "Comma separated Kafka brokers")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying bearer tokens")
	flags.IntVar(&cfg.OutboxWorkers, "outbox-workers", cfg.OutboxWorkers, "Number of concurrent outbox publishers")
	flags.IntVar(&cfg.OutboxBatchSize, "outbox-batch", cfg.OutboxBatchSize, "Maximum outbox messages per poll")
	flags.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between outbox polls")
	flags.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OutboxPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(brokersStr)

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.normalize()

	for _, require := range requirements {
		if err := require(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) normalize() {
	if c.OutboxWorkers <= 0 {
		c.OutboxWorkers = defaultOutboxWorkers
	}

	if c.OutboxBatchSize <= 0 {
		c.OutboxBatchSize = defaultOutboxBatchSize
	}

	if c.OutboxPollInterval <= 0 {
		c.OutboxPollInterval = defaultOutboxPollInterval
	}

	if c.OutboxLease <= 0 {
		c.OutboxLease = defaultOutboxLease
	}

	if c.HandlerMaxAttempts <= 0 {
		c.HandlerMaxAttempts = defaultHandlerMaxAttempts
	}

	if c.HandlerRetryBackoff < 0 {
		c.HandlerRetryBackoff = defaultHandlerRetryBackoff
	}

	if c.BasketTTL <= 0 {
		c.BasketTTL = defaultBasketTTL
	}

	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}

	if c.PaymentDeclinePercent < 0 {
		c.PaymentDeclinePercent = 0
	}

	if c.PaymentDeclinePercent > 100 {
		c.PaymentDeclinePercent = 100
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
