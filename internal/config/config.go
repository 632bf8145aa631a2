package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const (
	defaultPort                  = "8080"
	defaultLedgerSQLitePath      = "blacksmith.db"
	defaultSessionIdleTTL        = 30 * time.Minute
	defaultAllowedOriginSuffixes = "localhost"
)

type Config struct {
	port                  string
	dbConnectionString    string
	ledgerSQLitePath      string
	sentryDSN             string
	customerAPIURL        string
	customerAPIKey        string
	allowedOriginSuffixes []string
	sessionIdleTTL        time.Duration
	env                   environment
}

func (c *Config) Port() string {
	return c.port
}

// DBConnectionString is empty when the ledger should use SQLite
func (c *Config) DBConnectionString() string {
	return c.dbConnectionString
}

func (c *Config) LedgerSQLitePath() string {
	return c.ledgerSQLitePath
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

// CustomerAPIURL is empty when customers come from the static pool only
func (c *Config) CustomerAPIURL() string {
	return c.customerAPIURL
}

func (c *Config) CustomerAPIKey() string {
	return c.customerAPIKey
}

func (c *Config) AllowedOriginSuffixes() []string {
	return c.allowedOriginSuffixes
}

func (c *Config) SessionIdleTTL() time.Duration {
	return c.sessionIdleTTL
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, postgres: %t, customerAPI: %t, sessionIdleTTL: %s, ...}",
		string(c.env),
		c.port,
		c.dbConnectionString != "",
		c.customerAPIURL != "",
		c.sessionIdleTTL,
	)
}

func getenvOr(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("BLACKSMITH_ENVIRONMENT")
	if !ok {
		return missingKey("BLACKSMITH_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: BLACKSMITH_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	port := getenvOr("PORT", defaultPort)
	dbConnectionString := os.Getenv("DB_CONNECTION_STRING")
	ledgerSQLitePath := getenvOr("LEDGER_SQLITE_PATH", defaultLedgerSQLitePath)
	sentryDSN := os.Getenv("SENTRY_DSN")
	customerAPIURL := os.Getenv("CUSTOMER_API_URL")
	customerAPIKey := os.Getenv("CUSTOMER_API_KEY")

	var allowedOriginSuffixes []string
	for suffix := range strings.SplitSeq(getenvOr("ALLOWED_ORIGIN_SUFFIXES", defaultAllowedOriginSuffixes), ",") {
		suffix = strings.TrimSpace(suffix)
		if suffix != "" {
			allowedOriginSuffixes = append(allowedOriginSuffixes, suffix)
		}
	}
	if len(allowedOriginSuffixes) == 0 {
		return Config{}, fmt.Errorf("%w: ALLOWED_ORIGIN_SUFFIXES is empty", ErrInvalidValue)
	}

	sessionIdleTTL := defaultSessionIdleTTL
	if rawTTL := os.Getenv("SESSION_IDLE_TTL"); rawTTL != "" {
		parsed, err := time.ParseDuration(rawTTL)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("%w: SESSION_IDLE_TTL (%s)", ErrInvalidValue, rawTTL)
		}
		sessionIdleTTL = parsed
	}

	if env == production || env == staging {
		if dbConnectionString == "" {
			return missingKey("DB_CONNECTION_STRING")
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		port:                  port,
		dbConnectionString:    dbConnectionString,
		ledgerSQLitePath:      ledgerSQLitePath,
		sentryDSN:             sentryDSN,
		customerAPIURL:        customerAPIURL,
		customerAPIKey:        customerAPIKey,
		allowedOriginSuffixes: allowedOriginSuffixes,
		sessionIdleTTL:        sessionIdleTTL,
		env:                   env,
	}, nil
}
