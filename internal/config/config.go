package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	HTTPPort        string
	Backend         string
	OperatorWorkers int
	StoreTimeout    time.Duration
	LogLevel        string

	// AMQPURL empty disables ledger event publishing.
	AMQPURL      string
	AMQPExchange string
}

func ProcessEnvironmentVariables() (*Config, error) {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",
		HTTPPort:         "9446",
		Backend:          BackendPostgres,
		OperatorWorkers:  4,
		StoreTimeout:     5 * time.Second,
		LogLevel:         "info",
		AMQPExchange:     "site-ledger",
	}

	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")
	setString(&env.HTTPPort, "HTTP_PORT")
	setString(&env.Backend, "LEDGER_BACKEND")
	setString(&env.LogLevel, "LOG_LEVEL")
	setString(&env.AMQPURL, "AMQP_URL")
	setString(&env.AMQPExchange, "AMQP_EXCHANGE")

	if raw := os.Getenv("OPERATOR_WORKERS"); len(raw) != 0 {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid OPERATOR_WORKERS %q: %w", raw, err)
		}
		env.OperatorWorkers = workers
	}

	if raw := os.Getenv("STORE_TIMEOUT"); len(raw) != 0 {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid STORE_TIMEOUT %q: %w", raw, err)
		}
		env.StoreTimeout = timeout
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func setString(target *string, key string) {
	if value := os.Getenv(key); len(value) != 0 {
		*target = value
	}
}

// Validate checks that the configuration can start the server.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port '%s': must be a number", c.HTTPPort)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid HTTP port %d: must be between 1 and 65535", port)
	}

	switch c.Backend {
	case BackendPostgres:
		if c.PostgresAddress == "" || c.PostgresDB == "" {
			return fmt.Errorf("postgres backend requires POSTGRES_ADDRESS and POSTGRES_DB")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid ledger backend '%s': must be one of [%s %s]", c.Backend, BackendPostgres, BackendMemory)
	}

	if c.OperatorWorkers < 1 {
		return fmt.Errorf("invalid operator workers %d: must be at least 1", c.OperatorWorkers)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("invalid store timeout %s: must be positive", c.StoreTimeout)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.LogLevel, err)
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		return fmt.Errorf("AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	return nil
}
