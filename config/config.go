package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Query     QueryConfig
	Webhook   WebhookConfig
	Audit     AuditConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Name           string
	Environment    string
	Debug          bool
	Timeout        time.Duration
	Port           string
	LogsPath       string
	AllowedOrigins []string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type JWTConfig struct {
	Secret          string
	ExpirationTime  time.Duration
	RefreshDuration time.Duration
	Issuer          string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ListCacheTTL time.Duration
}

type RateLimitConfig struct {
	Request      int
	Duration     int
	AuthRequest  int
	AuthDuration int
}

// QueryConfig bounds the page size accepted by list endpoints.
type QueryConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type WebhookConfig struct {
	Workers          int
	Timeout          time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

type AuditConfig struct {
	Enabled       bool
	Workers       int
	RetentionDays int
}

type SchedulerConfig struct {
	Enabled          bool
	EventStatusSpec  string
	DataLogPurgeSpec string
	TokenCleanupSpec string
}

func LoadConfig() (*Config, error) {
	// missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "inventor-backend"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("APP_PORT", "8080"),
			Debug:          getEnvAsBool("APP_DEBUG", true),
			Timeout:        getEnvAsDuration("APP_TIMEOUT", 30*time.Second),
			LogsPath:       getEnv("LOGS_PATH", "./logs"),
			AllowedOrigins: getEnvAsList("APP_ALLOWED_ORIGINS", []string{"*"}),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "inventors"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:    uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 50)),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "inventors"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", true),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ListCacheTTL: getEnvAsDuration("REDIS_LIST_CACHE_TTL", 2*time.Minute),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "default_secret_key_change_in_production"),
			ExpirationTime:  getEnvAsDuration("JWT_EXPIRATION", 15*time.Minute),
			RefreshDuration: getEnvAsDuration("JWT_REFRESH_DURATION", 7*24*time.Hour),
			Issuer:          getEnv("JWT_ISSUER", "inventor-backend"),
		},
		RateLimit: RateLimitConfig{
			Request:      getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 100),
			Duration:     getEnvAsInt("RATE_LIMIT_DURATION", 60),
			AuthRequest:  getEnvAsInt("RATE_LIMIT_AUTH_MAX_REQUEST", 5),
			AuthDuration: getEnvAsInt("RATE_LIMIT_AUTH_DURATION", 60),
		},
		Query: QueryConfig{
			DefaultLimit: getEnvAsInt("QUERY_DEFAULT_LIMIT", 50),
			MaxLimit:     getEnvAsInt("QUERY_MAX_LIMIT", 100),
		},
		Webhook: WebhookConfig{
			Workers:          getEnvAsInt("WEBHOOK_WORKERS", 8),
			Timeout:          getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
			MaxRetries:       getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
			RetryBaseDelay:   getEnvAsDuration("WEBHOOK_RETRY_BASE_DELAY", 500*time.Millisecond),
			BreakerThreshold: getEnvAsInt("WEBHOOK_BREAKER_THRESHOLD", 5),
			BreakerTimeout:   getEnvAsDuration("WEBHOOK_BREAKER_TIMEOUT", time.Minute),
		},
		Audit: AuditConfig{
			Enabled:       getEnvAsBool("AUDIT_ENABLED", true),
			Workers:       getEnvAsInt("AUDIT_WORKERS", 4),
			RetentionDays: getEnvAsInt("AUDIT_RETENTION_DAYS", 30),
		},
		Scheduler: SchedulerConfig{
			Enabled:          getEnvAsBool("SCHEDULER_ENABLED", true),
			EventStatusSpec:  getEnv("SCHEDULER_EVENT_STATUS", "@every 1m"),
			DataLogPurgeSpec: getEnv("SCHEDULER_DATALOG_PURGE", "0 3 * * *"),
			TokenCleanupSpec: getEnv("SCHEDULER_TOKEN_CLEANUP", "@hourly"),
		},
	}

	if config.Query.MaxLimit < 1 {
		return nil, fmt.Errorf("QUERY_MAX_LIMIT must be positive, got %d", config.Query.MaxLimit)
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
