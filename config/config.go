package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"wagerhub/database"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// Connection pool, zero keeps the pgx default
	DBMaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	DBMaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	DBMaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// HTTP server configuration
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Proxies allowed to set X-Forwarded-For. Empty trusts none, so the
	// login limiter keys on the peer address.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	// Auth configuration
	JWTSecret        string        `envconfig:"JWT_SECRET"`
	JWTTTL           time.Duration `envconfig:"JWT_TTL" default:"24h"`
	LoginRateLimit   int           `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	LoginRateWindow  time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`
	MinPasswordChars int           `envconfig:"MIN_PASSWORD_CHARS" default:"8"`

	// NATS configuration, empty disables external publishing
	NATSServers string `envconfig:"NATS_SERVERS"`

	// Redis configuration, empty disables the token rate cache
	RedisURL          string        `envconfig:"REDIS_URL"`
	TokenRateCacheTTL time.Duration `envconfig:"TOKEN_RATE_CACHE_TTL" default:"5m"`

	// Tokens issued per one unit of currency when no rate has been set
	DefaultTokenRate decimal.Decimal `envconfig:"DEFAULT_TOKEN_RATE" default:"100"`

	// Payment provider stubs
	PaymentProviderLatency time.Duration `envconfig:"PAYMENT_PROVIDER_LATENCY" default:"500ms"`

	// Subscription plan prices in currency units
	SubscriptionBasicPrice   decimal.Decimal `envconfig:"SUBSCRIPTION_BASIC_PRICE" default:"9.99"`
	SubscriptionPremiumPrice decimal.Decimal `envconfig:"SUBSCRIPTION_PREMIUM_PRICE" default:"19.99"`

	// Scheduler
	SchedulerTimezone string `envconfig:"SCHEDULER_TIMEZONE" default:"UTC"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// OpenTelemetry metrics
	OTelEnabled        bool          `envconfig:"OTEL_ENABLED" default:"false"`
	OTelServiceName    string        `envconfig:"OTEL_SERVICE_NAME" default:"wagerhub"`
	OTelExporterType   string        `envconfig:"OTEL_EXPORTER_TYPE" default:"none"` // "console", "otlp" or "none"
	OTelOTLPEndpoint   string        `envconfig:"OTEL_OTLP_ENDPOINT" default:"localhost:4317"`
	OTelExportInterval time.Duration `envconfig:"OTEL_EXPORT_INTERVAL" default:"30s"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings outside the test environment
func (c *Config) Validate() error {
	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if !c.DefaultTokenRate.IsPositive() {
		return fmt.Errorf("DEFAULT_TOKEN_RATE must be positive")
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(c.SchedulerTimezone); err != nil {
		return fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", c.SchedulerTimezone, err)
	}
	if c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	switch c.OTelExporterType {
	case "console", "otlp", "none", "":
	default:
		return fmt.Errorf("invalid OTEL_EXPORTER_TYPE %q", c.OTelExporterType)
	}
	return nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PoolConfig returns the database pool settings
func (c *Config) PoolConfig() database.PoolConfig {
	return database.PoolConfig{
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
		MaxConnLifetime: c.DBMaxConnLifetime,
	}
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ConfigureLogging applies the log level and formatter for this environment
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		HTTPAddr:                 ":0",
		ShutdownTimeout:          time.Second,
		JWTSecret:                "test-secret-key-0123456789",
		JWTTTL:                   time.Hour,
		LoginRateLimit:           5,
		LoginRateWindow:          time.Minute,
		MinPasswordChars:         8,
		TokenRateCacheTTL:        time.Minute,
		DefaultTokenRate:         decimal.NewFromInt(100),
		PaymentProviderLatency:   0,
		SubscriptionBasicPrice:   decimal.RequireFromString("9.99"),
		SubscriptionPremiumPrice: decimal.RequireFromString("19.99"),
		SchedulerTimezone:        "UTC",
		LogLevel:                 "debug",
	}
}
