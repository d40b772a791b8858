package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by StorageConfig.Backend.
const (
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	Migrations  MigrationsConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Backup      BackupConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StorageConfig struct {
	Backend string
	Path    string
	Bucket  string
	// Timeout bounds every queued storage mutation.
	Timeout       time.Duration
	QueueSize     int
	CheckInterval time.Duration
}

type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type MigrationsConfig struct {
	Enabled bool
}

type JWTConfig struct {
	Secret string
	Issuer string
	// TTL of zero issues tokens that never expire.
	TTL time.Duration
}

type AuthConfig struct {
	DefaultPassword string
}

type BackupConfig struct {
	Enabled  bool
	Interval time.Duration
	Dir      string
	Keep     int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults suitable for a single-device install.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "medsched"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "127.0.0.1"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getString("STORAGE_BACKEND", BackendBolt)),
			Path:          getString("BOLTDB_PATH", "./data/medsched.db"),
			Bucket:        getString("BOLTDB_BUCKET", "medsched"),
			Timeout:       getDuration("STORAGE_TIMEOUT", 5*time.Second),
			QueueSize:     getInt("STORAGE_QUEUE_SIZE", 64),
			CheckInterval: getDuration("STORAGE_CHECK_INTERVAL", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:       getString("REDIS_URL", "redis://localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getInt("REDIS_DB", 0),
			KeyPrefix: getString("REDIS_KEY_PREFIX", "medsched:"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "medsched"),
			User:            getString("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			SSLMode:         getString("DB_SSLMODE", "disable"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "medsched"),
			TTL:    getDuration("SESSION_TTL", 0),
		},
		Auth: AuthConfig{
			DefaultPassword: getString("AUTH_DEFAULT_PASSWORD", "123456"),
		},
		Backup: BackupConfig{
			Enabled:  getBool("BACKUP_ENABLED", false),
			Interval: getDuration("BACKUP_INTERVAL", time.Hour),
			Dir:      getString("BACKUP_DIR", "./data/backups"),
			Keep:     getInt("BACKUP_KEEP", 5),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendBolt, BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Auth.DefaultPassword == "" {
		return fmt.Errorf("AUTH_DEFAULT_PASSWORD must not be empty")
	}
	if c.Backup.Enabled && c.Storage.Backend != BackendBolt {
		return fmt.Errorf("BACKUP_ENABLED requires the %s backend", BackendBolt)
	}
	return nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
