package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Notification drivers.
const (
	NotifySMTP  = "smtp"
	NotifyRedis = "redis"
	NotifyLog   = "log"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Mongo        MongoConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects the account store backend.
type StoreConfig struct {
	Driver string
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI                    string
	Database               string
	Collection             string
	TimeoutSeconds         int
	MaxPoolSize            uint64
	IdleConnTimeoutSeconds int
	RunIndexCreation       bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	LogToFile  bool
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// AuthConfig defines credential and code generation parameters.
type AuthConfig struct {
	BcryptCost int
	CodeBytes  int
}

// NotificationConfig selects and configures the outbound mailer.
type NotificationConfig struct {
	Driver    string
	EmailFrom string
	QueueKey  string
	SMTP      SMTPConfig
}

// SMTPConfig describes a single SMTP server, or points at a YAML server list.
type SMTPConfig struct {
	ServersFile        string
	Host               string
	Port               int
	Username           string
	Password           string
	Connections        int
	InsecureSkipVerify bool
	SendTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		},
		Mongo: MongoConfig{
			URI:                    getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:               getEnv("MONGO_DATABASE", "accounts"),
			Collection:             getEnv("MONGO_COLLECTION", "accounts"),
			TimeoutSeconds:         getEnvAsInt("MONGO_TIMEOUT_SECONDS", 10),
			MaxPoolSize:            uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 20)),
			IdleConnTimeoutSeconds: getEnvAsInt("MONGO_IDLE_CONN_TIMEOUT_SECONDS", 45),
			RunIndexCreation:       getEnvAsBool("MONGO_RUN_INDEX_CREATION", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			LogToFile:  getEnvAsBool("LOG_TO_FILE", false),
			Filename:   getEnv("LOG_FILE", "logs/account-service.log"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			Compress:   getEnvAsBool("LOG_COMPRESS", false),
		},
		Auth: AuthConfig{
			BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CodeBytes:  getEnvAsInt("AUTH_CODE_BYTES", 32),
		},
		Notification: NotificationConfig{
			Driver:    strings.ToLower(getEnv("NOTIFY_DRIVER", NotifyLog)),
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			QueueKey:  getEnv("NOTIFY_QUEUE_KEY", "account-service:outgoing-emails"),
			SMTP: SMTPConfig{
				ServersFile:        os.Getenv("SMTP_SERVERS_FILE"),
				Host:               getEnv("SMTP_HOST", "127.0.0.1"),
				Port:               getEnvAsInt("SMTP_PORT", 1025),
				Username:           os.Getenv("SMTP_USER"),
				Password:           os.Getenv("SMTP_PASSWORD"),
				Connections:        getEnvAsInt("SMTP_CONNECTIONS", 4),
				InsecureSkipVerify: getEnvAsBool("SMTP_INSECURE_SKIP_VERIFY", false),
				SendTimeoutSeconds: getEnvAsInt("SMTP_SEND_TIMEOUT_SECONDS", 10),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StoreMemory:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Notification.Driver {
	case NotifySMTP, NotifyRedis, NotifyLog:
	default:
		return fmt.Errorf("unsupported NOTIFY_DRIVER %q", c.Notification.Driver)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single store operation.
func (m MongoConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
