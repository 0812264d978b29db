// Package config provides configuration structures and validation for the
// service. It handles environment-based configuration for the HTTP gateway,
// PostgreSQL, Kafka, the remote ledger and fraud services, the outbox relay
// and the boleto settlement worker.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field covers one
// subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	Settlement  SettlementConfig
	Ledger      LedgerConfig
	Fraud       FraudConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// KafkaConfig contains the broker settings for the outbox relay. EventTopic
// receives every integration event; AlertTopic additionally receives
// manual-intervention failures.
type KafkaConfig struct {
	Brokers           string
	EventTopic        string
	AlertTopic        string
	NumPartitions     int
	ReplicationFactor int
	WriteTimeout      time.Duration
}

// OutboxConfig contains outbox relay configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// SettlementConfig drives the boleto settlement worker. Delay stands in for
// the multi-day real-world clearing window.
type SettlementConfig struct {
	PollInterval     time.Duration
	Delay            time.Duration
	BatchSize        int
	WebhookTimeout   time.Duration
	NotifierPoolSize int
}

// LedgerConfig points at the external account-of-record service that
// executes debits and credits.
type LedgerConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FraudConfig points at the optional fraud decision provider. When Enabled
// is false the saga skips the analysis gate entirely.
type FraudConfig struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

// validate performs comprehensive validation of all configuration values
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EventTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_EVENT_TOPIC is required")
	}
	if c.Kafka.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
	}

	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	if c.Settlement.PollInterval <= 0 {
		validationErrors = append(validationErrors, "SETTLEMENT_POLL_INTERVAL must be greater than 0")
	}
	if c.Settlement.Delay <= 0 {
		validationErrors = append(validationErrors, "SETTLEMENT_DELAY must be greater than 0")
	}
	if c.Settlement.BatchSize <= 0 {
		validationErrors = append(validationErrors, "SETTLEMENT_BATCH_SIZE must be greater than 0")
	}
	if c.Settlement.WebhookTimeout <= 0 {
		validationErrors = append(validationErrors, "SETTLEMENT_WEBHOOK_TIMEOUT must be greater than 0")
	}
	if c.Settlement.NotifierPoolSize <= 0 {
		validationErrors = append(validationErrors, "SETTLEMENT_NOTIFIER_POOL_SIZE must be greater than 0")
	}

	if c.Ledger.BaseURL == "" {
		validationErrors = append(validationErrors, "LEDGER_BASE_URL is required")
	}
	if c.Ledger.Timeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_TIMEOUT must be greater than 0")
	}

	if c.Fraud.Enabled && c.Fraud.BaseURL == "" {
		validationErrors = append(validationErrors, "FRAUD_BASE_URL is required when FRAUD_ENABLED is true")
	}
	if c.Fraud.Enabled && c.Fraud.Timeout <= 0 {
		validationErrors = append(validationErrors, "FRAUD_TIMEOUT must be greater than 0 when FRAUD_ENABLED is true")
	}

	if len(validationErrors) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(validationErrors, "; "))
	}

	return nil
}
